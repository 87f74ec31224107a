package metrics

import "sync/atomic"

// Metrics captures shared operational stats for the store and the
// collaborator boundaries.
type Metrics struct {
	appends        int64
	appendFailures int64
	loads          int64
	degradedLoads  int64
	analyses       int64
	analysisErrors int64
	mailFailures   int64
}

// Snapshot provides a consistent view of the current metrics.
type Snapshot struct {
	Appends        int64
	AppendFailures int64
	Loads          int64
	DegradedLoads  int64
	Analyses       int64
	AnalysisErrors int64
	MailFailures   int64
}

// New creates a zeroed Metrics instance.
func New() *Metrics {
	return &Metrics{}
}

// RecordAppend counts an append attempt and its outcome.
func (m *Metrics) RecordAppend(err error) {
	atomic.AddInt64(&m.appends, 1)
	if err != nil {
		atomic.AddInt64(&m.appendFailures, 1)
	}
}

// RecordLoad counts a view load; degraded marks a corrupt-file fallback.
func (m *Metrics) RecordLoad(degraded bool) {
	atomic.AddInt64(&m.loads, 1)
	if degraded {
		atomic.AddInt64(&m.degradedLoads, 1)
	}
}

// RecordAnalysis counts a collaborator invocation and its outcome.
func (m *Metrics) RecordAnalysis(err error) {
	atomic.AddInt64(&m.analyses, 1)
	if err != nil {
		atomic.AddInt64(&m.analysisErrors, 1)
	}
}

// RecordMailFailure counts a failed notification send.
func (m *Metrics) RecordMailFailure() {
	atomic.AddInt64(&m.mailFailures, 1)
}

// Snapshot returns a read-only view of metrics.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		Appends:        atomic.LoadInt64(&m.appends),
		AppendFailures: atomic.LoadInt64(&m.appendFailures),
		Loads:          atomic.LoadInt64(&m.loads),
		DegradedLoads:  atomic.LoadInt64(&m.degradedLoads),
		Analyses:       atomic.LoadInt64(&m.analyses),
		AnalysisErrors: atomic.LoadInt64(&m.analysisErrors),
		MailFailures:   atomic.LoadInt64(&m.mailFailures),
	}
}
