package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"calldesk/analyze"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "calldesk.db"))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestSaveAndLatestAnalysis(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()

	old, err := a.SaveAnalysis(ctx, &Analysis{
		Period:    "2025-11",
		Kind:      KindSummary,
		Model:     analyze.DefaultModel,
		Status:    analyze.StatusOK,
		Body:      "旧レポート",
		CreatedAt: time.Date(2025, 11, 30, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if old.ID == 0 {
		t.Fatalf("expected assigned id")
	}

	if _, err := a.SaveAnalysis(ctx, &Analysis{
		Period:    "2025-11",
		Kind:      KindSummary,
		Model:     analyze.DefaultModel,
		Status:    analyze.StatusOK,
		Body:      "新レポート",
		CreatedAt: time.Date(2025, 11, 30, 10, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := a.LatestAnalysis(ctx, "2025-11", KindSummary)
	if err != nil {
		t.Fatalf("latest failed: %v", err)
	}
	if got == nil || got.Body != "新レポート" {
		t.Fatalf("unexpected latest analysis: %+v", got)
	}

	missing, err := a.LatestAnalysis(ctx, "2019-01", KindSummary)
	if err != nil {
		t.Fatalf("latest failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown period, got %+v", missing)
	}
}

func TestSaveFailedRunKeepsError(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()

	saved, err := a.SaveAnalysis(ctx, &Analysis{
		Period:    "2025-10",
		Kind:      KindSummary,
		Status:    analyze.StatusFailed,
		LastError: "llm status 429: rate limited",
	})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := a.LatestAnalysis(ctx, "2025-10", KindSummary)
	if err != nil {
		t.Fatalf("latest failed: %v", err)
	}
	if got.ID != saved.ID || got.Status != analyze.StatusFailed || got.LastError == "" {
		t.Fatalf("unexpected failed run: %+v", got)
	}
}

func TestKeywordsRoundTrip(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()

	an, err := a.SaveAnalysis(ctx, &Analysis{
		Period: "2025-11",
		Kind:   KindKeywords,
		Status: analyze.StatusOK,
	})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	want := []analyze.Keyword{
		{Word: "サーバー障害", Count: 5},
		{Word: "請求書", Count: 3},
	}
	if err := a.SaveKeywords(ctx, an.ID, want); err != nil {
		t.Fatalf("save keywords failed: %v", err)
	}
	got, err := a.Keywords(ctx, an.ID)
	if err != nil {
		t.Fatalf("load keywords failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d keywords, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("keyword %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestListAnalysesAndHealth(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := a.SaveAnalysis(ctx, &Analysis{Period: "2025-11", Kind: KindSummary, Status: analyze.StatusOK}); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}
	list, err := a.ListAnalyses(ctx, 2)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 analyses, got %d", len(list))
	}
	if err := a.Health(ctx); err != nil {
		t.Fatalf("health failed: %v", err)
	}
}
