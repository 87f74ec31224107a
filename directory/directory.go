// Package directory manages the employee address book backing the From/To/CC
// selections: a flat CSV with a UTF-8 BOM, append on add, full rewrite on
// delete.
package directory

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

var header = []string{"名前", "メール"}

// seed keeps the directory non-empty on first use so the form always has a
// selectable entry.
var seed = Employee{Name: "田中課長", Email: "tanaka@test.com"}

const bom = "\uFEFF"

var (
	ErrNotFound  = errors.New("employee not found")
	ErrDuplicate = errors.New("employee already exists")
)

// Employee is one directory entry. Name is the unique key; changing a name
// means delete and recreate.
type Employee struct {
	Name  string
	Email string
}

type Directory struct {
	path string
}

func New(path string) *Directory {
	return &Directory{path: path}
}

// Load reads all entries. A missing file is seeded with one entry and that
// entry returned.
func (d *Directory) Load() ([]Employee, error) {
	data, err := os.ReadFile(d.path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := d.write([]Employee{seed}); err != nil {
			return nil, err
		}
		return []Employee{seed}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("directory: read %s: %w", d.path, err)
	}

	r := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(data), bom)))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("directory: parse %s: %w", d.path, err)
	}

	var out []Employee
	for i, row := range rows {
		if i == 0 && len(row) > 0 && row[0] == header[0] {
			continue
		}
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		e := Employee{Name: row[0]}
		if len(row) > 1 {
			e.Email = row[1]
		}
		out = append(out, e)
	}
	return out, nil
}

// Add appends an entry, creating the file with header and seed handling as
// needed. Name is the unique key, so an existing name is rejected with
// ErrDuplicate; renaming means Remove then Add.
func (d *Directory) Add(name, email string) error {
	existing, err := d.Load()
	if err != nil {
		return err
	}
	for _, e := range existing {
		if e.Name == name {
			return fmt.Errorf("directory: add %s: %w", name, ErrDuplicate)
		}
	}
	return d.write(append(existing, Employee{Name: name, Email: email}))
}

// Remove rewrites the file without the named entry.
func (d *Directory) Remove(name string) error {
	existing, err := d.Load()
	if err != nil {
		return err
	}
	kept := existing[:0]
	found := false
	for _, e := range existing {
		if e.Name == name {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	if !found {
		return ErrNotFound
	}
	return d.write(kept)
}

// Find returns the entry for name.
func (d *Directory) Find(name string) (Employee, error) {
	all, err := d.Load()
	if err != nil {
		return Employee{}, err
	}
	for _, e := range all {
		if e.Name == name {
			return e, nil
		}
	}
	return Employee{}, ErrNotFound
}

func (d *Directory) write(entries []Employee) error {
	var b strings.Builder
	b.WriteString(bom)
	w := csv.NewWriter(&b)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("directory: encode header: %w", err)
	}
	for _, e := range entries {
		if err := w.Write([]string{e.Name, e.Email}); err != nil {
			return fmt.Errorf("directory: encode %s: %w", e.Name, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("directory: encode: %w", err)
	}
	if err := os.WriteFile(d.path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("directory: write %s: %w", d.path, err)
	}
	return nil
}
