package record

import (
	"errors"
	"strings"
	"time"
)

// Columns lists the workbook headers in fixed write order. Every sheet's
// first row carries exactly these headers; loaded rows missing trailing
// columns are backfilled with empty strings.
var Columns = []string{"日時", "From", "To", "CC", "相手", "電話番号", "用件", "詳細"}

// FallbackPartition receives records whose timestamp cannot be parsed.
// It is a regular partition, not an error state.
const FallbackPartition = "Unknown"

// TimestampLayout is the layout new records are stamped with.
const TimestampLayout = "2006/01/02 15:04"

// parseLayouts covers the layouts the app has historically written, most
// specific first.
var parseLayouts = []string{
	"2006/01/02 15:04:05",
	TimestampLayout,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"2006-01-02",
}

// RequestUnselected is the form placeholder; it never reaches the store.
const RequestUnselected = "---"

// RequestTypes enumerates valid 用件 values.
var RequestTypes = []string{"伝言のみ", "折り返しのお願い", "また電話します", "お問い合わせ", "その他"}

var honorifics = []string{"様", "御中", "殿", "先生", "さん"}

var (
	ErrNoPersons      = errors.New("from and to must be selected")
	ErrNoCounterpart  = errors.New("counterpart name is required")
	ErrBadRequestType = errors.New("request type must be selected")
)

// CallRecord is one logged phone call. All fields are stored as text.
type CallRecord struct {
	Timestamp   string
	FromPerson  string
	ToPerson    string
	CCPerson    string
	Counterpart string
	PhoneNumber string
	RequestType string
	Memo        string
}

// Row returns the record's cells in Columns order.
func (r CallRecord) Row() []string {
	return []string{
		r.Timestamp,
		r.FromPerson,
		r.ToPerson,
		r.CCPerson,
		r.Counterpart,
		r.PhoneNumber,
		r.RequestType,
		r.Memo,
	}
}

// FromRow builds a record from a sheet row, backfilling absent trailing
// columns with empty strings so older partitions load with the full schema.
func FromRow(row []string) CallRecord {
	cell := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	return CallRecord{
		Timestamp:   cell(0),
		FromPerson:  cell(1),
		ToPerson:    cell(2),
		CCPerson:    cell(3),
		Counterpart: cell(4),
		PhoneNumber: cell(5),
		RequestType: cell(6),
		Memo:        cell(7),
	}
}

// Validate reports whether the record is complete enough to persist.
func (r CallRecord) Validate() error {
	if strings.TrimSpace(r.FromPerson) == "" || strings.TrimSpace(r.ToPerson) == "" {
		return ErrNoPersons
	}
	if strings.TrimSpace(r.Counterpart) == "" {
		return ErrNoCounterpart
	}
	if !ValidRequestType(r.RequestType) {
		return ErrBadRequestType
	}
	return nil
}

// ValidRequestType reports whether v is one of RequestTypes.
func ValidRequestType(v string) bool {
	for _, t := range RequestTypes {
		if v == t {
			return true
		}
	}
	return false
}

// NormalizeCounterpart appends 様 unless the name already ends with a known
// honorific. Empty input stays empty.
func NormalizeCounterpart(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	for _, h := range honorifics {
		if strings.HasSuffix(name, h) {
			return name
		}
	}
	return name + "様"
}

// ParseTimestamp parses a stored timestamp, reporting success. Parse
// failure is a normal outcome, never an error.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// PartitionKey maps a timestamp to its year-month partition, or to
// FallbackPartition when the timestamp does not parse. Deterministic:
// the same input always yields the same key.
func PartitionKey(timestamp string) string {
	t, ok := ParseTimestamp(timestamp)
	if !ok {
		return FallbackPartition
	}
	return t.Format("2006-01")
}
