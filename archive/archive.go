// Package archive keeps generated analyses in SQLite so a period's report
// can be reopened without re-invoking the LLM collaborators.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"calldesk/analyze"
)

// Analysis kinds stored in the archive.
const (
	KindSummary  = "summary"
	KindKeywords = "keywords"
)

// Archive wraps SQLite access for analysis runs and their keyword tables.
type Archive struct {
	db *sql.DB
}

func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	a := &Archive{db: db}
	if err := a.migrate(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Archive) Close() error { return a.db.Close() }

func (a *Archive) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            period TEXT,
            kind TEXT,
            model TEXT,
            status TEXT,
            body TEXT,
            last_error TEXT,
            created_at TIMESTAMP
        );`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_period ON analyses(period, kind);`,
		`CREATE TABLE IF NOT EXISTS analysis_keywords (
            analysis_id INTEGER,
            keyword TEXT,
            count INTEGER
        );`,
	}
	for _, stmt := range stmts {
		if _, err := a.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Analysis is one stored collaborator run.
type Analysis struct {
	ID        int64
	Period    string // "2025-11"
	Kind      string
	Model     string
	Status    string // analyze.StatusOK / StatusFailed / StatusSkipped
	Body      string
	LastError string
	CreatedAt time.Time
}

func (a *Archive) SaveAnalysis(ctx context.Context, an *Analysis) (*Analysis, error) {
	if an.CreatedAt.IsZero() {
		an.CreatedAt = time.Now().UTC()
	}
	res, err := a.db.ExecContext(ctx,
		`INSERT INTO analyses(period, kind, model, status, body, last_error, created_at) VALUES(?,?,?,?,?,?,?)`,
		an.Period, an.Kind, an.Model, an.Status, an.Body, an.LastError, an.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("archive: save analysis: %w", err)
	}
	id, _ := res.LastInsertId()
	an.ID = id
	return an, nil
}

func (a *Archive) SaveKeywords(ctx context.Context, analysisID int64, keywords []analyze.Keyword) error {
	for _, kw := range keywords {
		if _, err := a.db.ExecContext(ctx,
			`INSERT INTO analysis_keywords(analysis_id, keyword, count) VALUES(?,?,?)`,
			analysisID, kw.Word, kw.Count); err != nil {
			return fmt.Errorf("archive: save keyword %q: %w", kw.Word, err)
		}
	}
	return nil
}

// LatestAnalysis returns the newest run for a period and kind, or nil when
// none exists.
func (a *Archive) LatestAnalysis(ctx context.Context, period, kind string) (*Analysis, error) {
	row := a.db.QueryRowContext(ctx,
		`SELECT id, period, kind, model, status, body, last_error, created_at
         FROM analyses WHERE period=? AND kind=? ORDER BY created_at DESC, id DESC LIMIT 1`,
		period, kind)
	var an Analysis
	switch err := row.Scan(&an.ID, &an.Period, &an.Kind, &an.Model, &an.Status, &an.Body, &an.LastError, &an.CreatedAt); err {
	case nil:
		return &an, nil
	case sql.ErrNoRows:
		return nil, nil
	default:
		return nil, err
	}
}

func (a *Archive) ListAnalyses(ctx context.Context, limit int) ([]Analysis, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, period, kind, model, status, body, last_error, created_at
         FROM analyses ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Analysis
	for rows.Next() {
		var an Analysis
		if err := rows.Scan(&an.ID, &an.Period, &an.Kind, &an.Model, &an.Status, &an.Body, &an.LastError, &an.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, an)
	}
	return out, rows.Err()
}

func (a *Archive) Keywords(ctx context.Context, analysisID int64) ([]analyze.Keyword, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT keyword, count FROM analysis_keywords WHERE analysis_id=? ORDER BY count DESC, rowid ASC`, analysisID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []analyze.Keyword
	for rows.Next() {
		var kw analyze.Keyword
		if err := rows.Scan(&kw.Word, &kw.Count); err != nil {
			return nil, err
		}
		out = append(out, kw)
	}
	return out, rows.Err()
}

// Health returns err if the DB is not reachable.
func (a *Archive) Health(ctx context.Context) error {
	row := a.db.QueryRowContext(ctx, `SELECT 1`)
	var v int
	if err := row.Scan(&v); err != nil {
		return fmt.Errorf("archive health: %w", err)
	}
	return nil
}
