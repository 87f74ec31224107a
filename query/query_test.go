package query

import (
	"testing"
	"time"

	"calldesk/record"
	"calldesk/store"
)

func row(ts string, counterpart, memo string) store.Row {
	at, ok := record.ParseTimestamp(ts)
	return store.Row{
		CallRecord: record.CallRecord{Timestamp: ts, Counterpart: counterpart, Memo: memo},
		At:         at,
		Dated:      ok,
	}
}

func sampleView() store.MergedView {
	return store.MergedView{
		Status: store.StatusOK,
		Rows: []store.Row{
			row("2025/11/15 10:00", "XYZ工業様", "納期確認"),
			row("2025/11/01 09:00", "ABC商事様", "見積もり依頼"),
			row("2025/10/30 08:00", "田中様", "折り返し希望"),
			row("2024/12/24 17:30", "ABC商事様", ""),
			row("メモなし日付", "謎の人様", "日付が壊れている"),
		},
	}
}

func TestFilterByPeriodExactMonth(t *testing.T) {
	got := FilterByPeriod(sampleView(), 2025, 11)
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	for _, r := range got {
		if r.At.Year() != 2025 || r.At.Month() != time.November {
			t.Fatalf("row outside period: %+v", r)
		}
	}
}

func TestFilterByPeriodWholeYear(t *testing.T) {
	got := FilterByPeriod(sampleView(), 2025, All)
	if len(got) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(got))
	}
}

func TestFilterByPeriodAllReturnsView(t *testing.T) {
	view := sampleView()
	got := FilterByPeriod(view, All, All)
	if len(got) != len(view.Rows) {
		t.Fatalf("expected whole view, got %d rows", len(got))
	}
}

func TestFilterByPeriodMonthAcrossYears(t *testing.T) {
	view := store.MergedView{
		Status: store.StatusOK,
		Rows: []store.Row{
			row("2025/11/15 10:00", "XYZ工業様", "納期確認"),
			row("2025/10/30 08:00", "田中様", "折り返し希望"),
			row("2024/11/05 13:00", "ABC商事様", "請求書の件"),
			row("メモなし日付", "謎の人様", "日付が壊れている"),
		},
	}
	got := FilterByPeriod(view, All, 11)
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	for _, r := range got {
		if r.At.Month() != time.November {
			t.Fatalf("row outside month: %+v", r)
		}
	}
	if got[0].At.Year() != 2025 || got[1].At.Year() != 2024 {
		t.Fatalf("unexpected years: %v, %v", got[0].At.Year(), got[1].At.Year())
	}
}

func TestFilterByPeriodExcludesUndated(t *testing.T) {
	for _, r := range FilterByPeriod(sampleView(), 2025, All) {
		if !r.Dated {
			t.Fatalf("undated row leaked into period filter: %+v", r)
		}
	}
}

func TestFilterByPeriodEmptyView(t *testing.T) {
	empty := store.MergedView{Status: store.StatusEmpty}
	if got := FilterByPeriod(empty, 2025, 11); len(got) != 0 {
		t.Fatalf("expected zero rows, got %d", len(got))
	}
}

func TestCounterpartFrequencyOrdering(t *testing.T) {
	rows := []store.Row{
		row("2025/11/01 09:00", "ABC", "a"),
		row("2025/11/02 09:00", "XYZ", "b"),
		row("2025/11/03 09:00", "ABC", "c"),
		row("2025/11/04 09:00", "ABC", "d"),
	}
	got := CounterpartFrequency(rows)
	if len(got) != 2 {
		t.Fatalf("expected 2 counterparts, got %d", len(got))
	}
	if got[0].Counterpart != "ABC" || got[0].Calls != 3 {
		t.Fatalf("unexpected leader: %+v", got[0])
	}
	if got[1].Counterpart != "XYZ" || got[1].Calls != 1 {
		t.Fatalf("unexpected second: %+v", got[1])
	}
}

func TestCounterpartFrequencyTiesFirstSeen(t *testing.T) {
	rows := []store.Row{
		row("2025/11/01 09:00", "先着様", "a"),
		row("2025/11/02 09:00", "後着様", "b"),
	}
	got := CounterpartFrequency(rows)
	if got[0].Counterpart != "先着様" || got[1].Counterpart != "後着様" {
		t.Fatalf("tie not broken by first appearance: %+v", got)
	}
}

func TestTop(t *testing.T) {
	counts := []Count{{"a", 3}, {"b", 2}, {"c", 1}}
	if got := Top(counts, 2); len(got) != 2 || got[1].Counterpart != "b" {
		t.Fatalf("unexpected top slice: %+v", got)
	}
	if got := Top(counts, 10); len(got) != 3 {
		t.Fatalf("expected all entries, got %d", len(got))
	}
}

func TestCorpusSkipsEmptyMemos(t *testing.T) {
	got := Corpus(sampleView().Rows)
	want := []string{"納期確認", "見積もり依頼", "折り返し希望", "日付が壊れている"}
	if len(got) != len(want) {
		t.Fatalf("expected %d memos, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("memo %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestYearsAndMonths(t *testing.T) {
	view := sampleView()
	years := Years(view)
	if len(years) != 2 || years[0] != 2025 || years[1] != 2024 {
		t.Fatalf("unexpected years: %v", years)
	}
	months := Months(view, 2025)
	if len(months) != 2 || months[0] != 10 || months[1] != 11 {
		t.Fatalf("unexpected months: %v", months)
	}
}
