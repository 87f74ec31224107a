// Package query provides pure, stateless projections over a merged view:
// period filtering, counterpart frequency, and the memo corpus consumed by
// the analysis collaborators.
package query

import (
	"sort"

	"calldesk/store"
)

// All selects every year or every month in FilterByPeriod.
const All = 0

// Count is one counterpart with its number of logged calls.
type Count struct {
	Counterpart string
	Calls       int
}

// FilterByPeriod returns the rows matching the given year and month.
// year == All with month == All returns the whole view unchanged. year == All
// with a concrete month matches that month in every year. month == All
// returns every record in the year. Rows whose timestamp did not parse are
// excluded from any date-constrained filter.
func FilterByPeriod(view store.MergedView, year, month int) []store.Row {
	if year == All && month == All {
		return view.Rows
	}
	var out []store.Row
	for _, row := range view.Rows {
		if !row.Dated {
			continue
		}
		if year != All && row.At.Year() != year {
			continue
		}
		if month != All && int(row.At.Month()) != month {
			continue
		}
		out = append(out, row)
	}
	return out
}

// CounterpartFrequency counts calls per counterpart, ordered by count
// descending with ties broken by first appearance. Callers typically take
// the top 10.
func CounterpartFrequency(rows []store.Row) []Count {
	index := make(map[string]int)
	var out []Count
	for _, row := range rows {
		name := row.Counterpart
		if name == "" {
			continue
		}
		if i, ok := index[name]; ok {
			out[i].Calls++
			continue
		}
		index[name] = len(out)
		out = append(out, Count{Counterpart: name, Calls: 1})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Calls > out[j].Calls
	})
	return out
}

// Top returns at most n leading entries.
func Top(counts []Count, n int) []Count {
	if len(counts) > n {
		return counts[:n]
	}
	return counts
}

// Corpus returns the non-empty memos in view order.
func Corpus(rows []store.Row) []string {
	var out []string
	for _, row := range rows {
		if row.Memo == "" {
			continue
		}
		out = append(out, row.Memo)
	}
	return out
}

// Years lists the distinct years present, descending.
func Years(view store.MergedView) []int {
	seen := make(map[int]bool)
	var out []int
	for _, row := range view.Rows {
		if !row.Dated || seen[row.At.Year()] {
			continue
		}
		seen[row.At.Year()] = true
		out = append(out, row.At.Year())
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

// Months lists the distinct months present for a year, ascending.
func Months(view store.MergedView, year int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, row := range view.Rows {
		if !row.Dated || row.At.Year() != year {
			continue
		}
		m := int(row.At.Month())
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	sort.Ints(out)
	return out
}
