package analyze

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
)

// lines longer than this are decoration or prose, never a keyword row
const maxKeywordLineBytes = 50

// ParseKeywordTable turns the model's reply into (keyword, count) pairs.
// The model is told to emit bare CSV but often wraps it in code fences or
// prose; cleanup keeps only short comma-bearing lines, drops the header
// row and anything that fails to parse as two columns with a numeric
// count. Returns nil when nothing usable remains.
func ParseKeywordTable(content string) []Keyword {
	content = strings.ReplaceAll(content, "```csv", "")
	content = strings.ReplaceAll(content, "```", "")
	content = strings.TrimSpace(content)

	var clean []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if !strings.Contains(line, ",") || len(line) >= maxKeywordLineBytes {
			continue
		}
		clean = append(clean, line)
	}
	if len(clean) == 0 {
		return nil
	}

	r := csv.NewReader(strings.NewReader(strings.Join(clean, "\n")))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var out []Keyword
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if len(row) < 2 {
			continue
		}
		word := strings.TrimSpace(row[0])
		if word == "" || word == "キーワード" {
			continue
		}
		count, err := strconv.Atoi(strings.TrimSpace(row[1]))
		if err != nil {
			continue
		}
		out = append(out, Keyword{Word: word, Count: count})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
