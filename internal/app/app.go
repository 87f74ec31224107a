// Package app wires the store, directory, collaborators and archive behind
// the handlers the CLI exposes. Session-scoped state lives in an explicit
// Session value instead of globals; the store itself stays stateless
// between calls.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"calldesk/analyze"
	"calldesk/archive"
	"calldesk/config"
	"calldesk/directory"
	"calldesk/mailer"
	"calldesk/metrics"
	"calldesk/query"
	"calldesk/record"
	"calldesk/report"
	"calldesk/store"
)

var (
	ErrNoData      = errors.New("app: no records for the selected period")
	ErrAnalyzerOff = errors.New("app: analysis requires an api key")
)

// App owns the long-lived components.
type App struct {
	Cfg       config.Config
	Store     *store.Store
	Directory *directory.Directory
	Archive   *archive.Archive
	Analyzer  *analyze.Client
	Mailer    *mailer.Mailer
	Metrics   *metrics.Metrics

	mu     sync.Mutex
	cached *store.MergedView
}

// Session holds per-session state: the last generated analysis, kept so a
// report can be re-rendered (text, PDF) without another collaborator call.
// Never shared across sessions.
type Session struct {
	Year       int
	Month      int
	ReportText string
	Keywords   []analyze.Keyword
}

func NewSession() *Session { return &Session{} }

// Reset clears cached analysis state for a fresh session.
func (s *Session) Reset() { *s = Session{} }

func New(cfg config.Config) (*App, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("app: data dir %s: %w", cfg.DataDir, err)
	}

	arch, err := archive.Open(cfg.ArchivePath())
	if err != nil {
		return nil, fmt.Errorf("app: open archive: %w", err)
	}

	a := &App{
		Cfg:       cfg,
		Store:     store.New(cfg.HistoryPath()),
		Directory: directory.New(cfg.EmployeePath()),
		Archive:   arch,
		Mailer: mailer.New(mailer.Settings{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
		}),
		Metrics: metrics.New(),
	}

	if cfg.LLM.APIKey != "" {
		client, err := analyze.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model)
		if err != nil {
			return nil, fmt.Errorf("app: analyzer: %w", err)
		}
		a.Analyzer = client
	} else {
		log.Println("app: no api key, analysis disabled")
	}

	return a, nil
}

func (a *App) Close() error {
	return a.Archive.Close()
}

// View returns the merged view, loading it on first use. Invalidate drops
// the cache; the watcher hooks it up to external workbook edits.
func (a *App) View() store.MergedView {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cached == nil {
		view := a.Store.LoadAll()
		a.Metrics.RecordLoad(view.Status == store.StatusCorrupt)
		if view.Status == store.StatusCorrupt {
			log.Printf("app: history unreadable, showing empty view")
		}
		a.cached = &view
	}
	return *a.cached
}

func (a *App) Invalidate() {
	a.mu.Lock()
	a.cached = nil
	a.mu.Unlock()
}

// LogResult reports what happened to one submitted call.
type LogResult struct {
	Record   record.CallRecord
	MailSent bool
	MailErr  error
}

// LogCall normalizes, validates and persists a record, then sends the
// notification. Persistence happens first; a send failure is reported in
// the result, never rolled back.
func (a *App) LogCall(ctx context.Context, rec record.CallRecord, subject string) (LogResult, error) {
	rec.Counterpart = record.NormalizeCounterpart(rec.Counterpart)
	if rec.Timestamp == "" {
		rec.Timestamp = time.Now().Format(record.TimestampLayout)
	}
	if err := rec.Validate(); err != nil {
		return LogResult{}, err
	}

	err := a.Store.Append(rec)
	a.Metrics.RecordAppend(err)
	if err != nil {
		return LogResult{}, err
	}
	a.Invalidate()

	result := LogResult{Record: rec}
	if subject == "" {
		subject = mailer.DefaultSubject(rec.Counterpart)
	}

	to, err := a.Directory.Find(rec.ToPerson)
	if err != nil {
		result.MailErr = fmt.Errorf("app: recipient %q: %w", rec.ToPerson, err)
		a.Metrics.RecordMailFailure()
		return result, nil
	}
	var cc string
	if rec.CCPerson != "" {
		if e, err := a.Directory.Find(rec.CCPerson); err == nil {
			cc = e.Email
		}
	}

	sendErr := a.Mailer.Send(ctx, mailer.Message{
		From:    a.Cfg.SMTP.Username,
		To:      to.Email,
		CC:      cc,
		Subject: subject,
		Body:    mailer.Body(rec),
	})
	if sendErr != nil {
		result.MailErr = sendErr
		a.Metrics.RecordMailFailure()
		log.Printf("app: record saved, mail not sent: %v", sendErr)
		return result, nil
	}
	result.MailSent = true
	return result, nil
}

// MonthlyReport runs both collaborators over the period's corpus, archives
// the outcomes, caches them on the session and returns the assembled
// report data.
func (a *App) MonthlyReport(ctx context.Context, sess *Session, year, month int) (report.Data, error) {
	rows := query.FilterByPeriod(a.View(), year, month)
	if len(rows) == 0 {
		return report.Data{}, ErrNoData
	}
	if a.Analyzer == nil {
		return report.Data{}, ErrAnalyzerOff
	}

	period := fmt.Sprintf("%04d-%02d", year, month)
	counts := query.CounterpartFrequency(rows)
	corpus := query.Corpus(rows)

	summary, err := a.Analyzer.Summarize(ctx, year, month, corpus)
	a.Metrics.RecordAnalysis(err)
	a.archiveRun(ctx, period, archive.KindSummary, summary, nil, err)
	if err != nil {
		return report.Data{}, fmt.Errorf("app: summarize %s: %w", period, err)
	}

	keywords, kwErr := a.Analyzer.ExtractKeywords(ctx, corpus)
	a.Metrics.RecordAnalysis(kwErr)
	a.archiveRun(ctx, period, archive.KindKeywords, "", keywords, kwErr)
	if kwErr != nil {
		// keywords are optional in the rendered report
		log.Printf("app: keyword extraction failed: %v", kwErr)
		keywords = nil
	}

	sess.Year, sess.Month = year, month
	sess.ReportText = summary
	sess.Keywords = keywords

	return report.Data{
		Year:         year,
		Month:        month,
		Summary:      summary,
		Counterparts: counts,
		Keywords:     keywords,
		FontPath:     a.Cfg.ReportFont,
	}, nil
}

func (a *App) archiveRun(ctx context.Context, period, kind, body string, keywords []analyze.Keyword, runErr error) {
	an := &archive.Analysis{
		Period: period,
		Kind:   kind,
		Model:  a.Cfg.LLM.Model,
		Status: analyze.StatusOK,
		Body:   body,
	}
	if runErr != nil {
		an.Status = analyze.StatusFailed
		an.LastError = runErr.Error()
	}
	saved, err := a.Archive.SaveAnalysis(ctx, an)
	if err != nil {
		log.Printf("app: archive %s/%s: %v", period, kind, err)
		return
	}
	if len(keywords) > 0 {
		if err := a.Archive.SaveKeywords(ctx, saved.ID, keywords); err != nil {
			log.Printf("app: archive keywords %s: %v", period, err)
		}
	}
}
