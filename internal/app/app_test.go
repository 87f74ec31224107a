package app

import (
	"context"
	"errors"
	"testing"

	"calldesk/config"
	"calldesk/mailer"
	"calldesk/record"
	"calldesk/store"
)

func testApp(t *testing.T) *App {
	t.Helper()
	cfg := config.Config{
		DataDir:      t.TempDir(),
		HistoryFile:  "history.xlsx",
		EmployeeFile: "employees.csv",
		ArchiveFile:  "calldesk.db",
		// SMTP password and LLM api key deliberately unconfigured
		SMTP: config.SMTPConfig{Host: "smtp.gmail.com", Port: 587},
	}
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestLogCallPersistsBeforeMail(t *testing.T) {
	a := testApp(t)
	result, err := a.LogCall(context.Background(), record.CallRecord{
		Timestamp:   "2025/11/01 09:00",
		FromPerson:  "田中課長",
		ToPerson:    "田中課長",
		Counterpart: "ABC商事",
		RequestType: "伝言のみ",
		Memo:        "伝言です",
	}, "")
	if err != nil {
		t.Fatalf("log call failed: %v", err)
	}
	if result.MailSent {
		t.Fatalf("mail should not have been sent")
	}
	if !errors.Is(result.MailErr, mailer.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", result.MailErr)
	}
	if result.Record.Counterpart != "ABC商事様" {
		t.Fatalf("counterpart not normalized: %q", result.Record.Counterpart)
	}

	view := a.View()
	if len(view.Rows) != 1 || view.Rows[0].Counterpart != "ABC商事様" {
		t.Fatalf("record not persisted: %+v", view.Rows)
	}
}

func TestLogCallRejectsInvalidRecord(t *testing.T) {
	a := testApp(t)
	_, err := a.LogCall(context.Background(), record.CallRecord{
		FromPerson:  "受付",
		ToPerson:    "担当",
		Counterpart: "田中",
		RequestType: record.RequestUnselected,
	}, "")
	if !errors.Is(err, record.ErrBadRequestType) {
		t.Fatalf("expected ErrBadRequestType, got %v", err)
	}
	if view := a.View(); len(view.Rows) != 0 {
		t.Fatalf("invalid record must not persist: %+v", view.Rows)
	}
}

func TestViewCachingAndInvalidate(t *testing.T) {
	a := testApp(t)
	if view := a.View(); view.Status != store.StatusEmpty {
		t.Fatalf("expected empty status, got %q", view.Status)
	}
	if _, err := a.LogCall(context.Background(), record.CallRecord{
		Timestamp:   "2025/11/01 09:00",
		FromPerson:  "田中課長",
		ToPerson:    "田中課長",
		Counterpart: "田中",
		RequestType: "その他",
	}, ""); err != nil {
		t.Fatalf("log call failed: %v", err)
	}
	// LogCall invalidates; the next View must see the append
	if view := a.View(); len(view.Rows) != 1 {
		t.Fatalf("cache not invalidated: %+v", view.Rows)
	}
}

func TestMonthlyReportGuards(t *testing.T) {
	a := testApp(t)
	sess := NewSession()

	if _, err := a.MonthlyReport(context.Background(), sess, 2025, 11); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}

	if _, err := a.LogCall(context.Background(), record.CallRecord{
		Timestamp:   "2025/11/01 09:00",
		FromPerson:  "田中課長",
		ToPerson:    "田中課長",
		Counterpart: "田中",
		RequestType: "その他",
		Memo:        "メモ",
	}, ""); err != nil {
		t.Fatalf("log call failed: %v", err)
	}
	if _, err := a.MonthlyReport(context.Background(), sess, 2025, 11); !errors.Is(err, ErrAnalyzerOff) {
		t.Fatalf("expected ErrAnalyzerOff, got %v", err)
	}
}

func TestSessionReset(t *testing.T) {
	sess := NewSession()
	sess.Year, sess.Month, sess.ReportText = 2025, 11, "レポート"
	sess.Reset()
	if sess.Year != 0 || sess.ReportText != "" || sess.Keywords != nil {
		t.Fatalf("session not reset: %+v", sess)
	}
}
