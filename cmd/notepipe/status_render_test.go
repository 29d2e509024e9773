package main

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"notepipe/internal/runstore"
	"notepipe/internal/splitcache"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Cache", statusWarn, "stale", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Cache:", "[WARN] stale")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Cache", statusOK, "current", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestCacheStatusLines(t *testing.T) {
	lines := cacheStatusLines(splitcache.Status{Path: "/data/cached", Reason: "not cached"}, true, false)
	if len(lines) != 2 || !strings.Contains(lines[1], "[INFO] not cached") {
		t.Fatalf("unexpected lines for missing cache: %q", lines)
	}

	st := splitcache.Status{
		Path:      "/data/cached",
		Exists:    true,
		Readable:  true,
		Current:   true,
		Size:      2048,
		CreatedAt: time.Now().Add(-time.Hour),
		Train:     9,
		Test:      1,
		Labels:    4,
	}
	lines = cacheStatusLines(st, true, false)
	joined := strings.Join(lines, "\n")
	for _, want := range []string{"[OK] current", "2.0 KiB", "9 train / 1 test", "1 hour ago"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in:\n%s", want, joined)
		}
	}

	st.Current = false
	st.Reason = "recordings changed"
	lines = cacheStatusLines(st, false, false)
	if !strings.Contains(lines[1], "disabled") {
		t.Fatalf("expected disabled notice, got %q", lines[1])
	}
}

func TestTestSummary(t *testing.T) {
	run := runstore.Run{Scores: []runstore.Score{
		{Split: runstore.SplitTrain, Metric: "exact_match", Mean: 0.25},
		{Split: runstore.SplitTest, Metric: "exact_match", Mean: 0.5},
		{Split: runstore.SplitTest, Metric: "edit_similarity", Mean: 0.875},
	}}
	got := testSummary(run)
	if got != "Exact Match 0.500, Edit Similarity 0.875" {
		t.Fatalf("unexpected summary %q", got)
	}
	if testSummary(runstore.Run{}) != "-" {
		t.Fatal("expected placeholder for run without test scores")
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := formatCodes([]int{1, 3, 45}); got != "01 03 45" {
		t.Fatalf("formatCodes = %q", got)
	}
	if got := formatLabels(nil); got != "(none)" {
		t.Fatalf("formatLabels(nil) = %q", got)
	}
	if got := shortID("0123456789abcdef"); got != "01234567" {
		t.Fatalf("shortID = %q", got)
	}
}
