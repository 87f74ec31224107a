package metrics

import (
	"errors"
	"testing"
)

func TestSnapshotCounts(t *testing.T) {
	m := New()
	m.RecordAppend(nil)
	m.RecordAppend(errors.New("disk full"))
	m.RecordLoad(false)
	m.RecordLoad(true)
	m.RecordAnalysis(nil)
	m.RecordAnalysis(errors.New("rate limited"))
	m.RecordMailFailure()

	s := m.Snapshot()
	if s.Appends != 2 || s.AppendFailures != 1 {
		t.Fatalf("unexpected append counts: %+v", s)
	}
	if s.Loads != 2 || s.DegradedLoads != 1 {
		t.Fatalf("unexpected load counts: %+v", s)
	}
	if s.Analyses != 2 || s.AnalysisErrors != 1 {
		t.Fatalf("unexpected analysis counts: %+v", s)
	}
	if s.MailFailures != 1 {
		t.Fatalf("unexpected mail failures: %+v", s)
	}
}
