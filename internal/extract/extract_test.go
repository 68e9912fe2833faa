package extract_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"

	"arrimeta/internal/extract"
	"arrimeta/internal/failures"
	"arrimeta/internal/schema"
	"arrimeta/internal/testsupport"
)

func newExtractor(t *testing.T) *extract.Extractor {
	t.Helper()
	s, err := schema.ARRI(schema.DefaultSets())
	if err != nil {
		t.Fatalf("schema.ARRI: %v", err)
	}
	return extract.New(s, nil)
}

func TestFileExtractsSelectedFields(t *testing.T) {
	e := newExtractor(t)
	path := testsupport.SampleClip(t).WriteFile(filepath.Join(t.TempDir(), "A001C003.ari"), 1024)

	m, err := e.File(context.Background(), path, []string{"Reel", "ImageWidth", "MasterTC"})
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	names := m.Names()
	if len(names) != 3 || names[0] != "Reel" || names[2] != "MasterTC" {
		t.Fatalf("Names = %v", names)
	}
	tc, _ := m.Get("MasterTC")
	if s, _ := tc.Str(); s != "00:00:29:23" {
		t.Fatalf("MasterTC = %q", s)
	}
}

func TestFileRejectsUnknownFieldBeforeIO(t *testing.T) {
	e := newExtractor(t)
	missing := filepath.Join(t.TempDir(), "does-not-exist.ari")
	_, err := e.File(context.Background(), missing, []string{"ImageWidth", "NotAField"})
	if !errors.Is(err, failures.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField before opening the file, got %v", err)
	}
}

func TestFileHonoursCancelledContext(t *testing.T) {
	e := newExtractor(t)
	path := testsupport.SampleClip(t).WriteFile(filepath.Join(t.TempDir(), "clip.ari"), 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.File(ctx, path, []string{"Reel"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBatchIsolatesPerFileFailures(t *testing.T) {
	e := newExtractor(t)
	dir := t.TempDir()
	paths := []string{
		testsupport.SampleClip(t).WriteFile(filepath.Join(dir, "A001C001.ari"), 512),
		testsupport.WriteFile(t, filepath.Join(dir, "notes.ari"), 8192),
		testsupport.SampleClip(t).WriteFile(filepath.Join(dir, "A001C002.ari"), 512),
	}

	var calls atomic.Int32
	report, err := e.Batch(context.Background(), paths, []string{"CameraModel", "Reel"}, extract.BatchOptions{
		Workers:  2,
		Progress: func(done, total int, _ extract.Result) { calls.Add(1) },
	})
	if err != nil {
		t.Fatalf("Batch: %v", err)
	}
	if report.RunID == "" {
		t.Fatal("expected a run id")
	}
	if report.Succeeded != 2 || report.Failed != 1 || report.Skipped != 0 {
		t.Fatalf("report counts = %d/%d/%d", report.Succeeded, report.Failed, report.Skipped)
	}
	if calls.Load() != 3 {
		t.Fatalf("progress called %d times, want 3", calls.Load())
	}

	for i, res := range report.Results {
		if res.Path != paths[i] {
			t.Fatalf("result %d is %s, want input order", i, res.Path)
		}
	}
	bad := report.Results[1]
	if bad.OK() || bad.Kind != "format" || !errors.Is(bad.Err, failures.ErrFormat) {
		t.Fatalf("second file should fail with a format error, got %+v", bad)
	}
	if got := report.Failures(); len(got) != 1 || got[0].Clip != "notes" {
		t.Fatalf("Failures = %+v", got)
	}
	v, _ := report.Results[2].Metadata.Get("CameraModel")
	if s, _ := v.Str(); s != "ALEXA Mini" {
		t.Fatalf("CameraModel = %q", s)
	}
}

func TestBatchRejectsUnknownFieldBeforeIO(t *testing.T) {
	e := newExtractor(t)
	_, err := e.Batch(context.Background(), []string{"/nonexistent/a.ari"}, []string{"NotAField"}, extract.BatchOptions{})
	if !errors.Is(err, failures.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestBatchStopsSubmittingAfterCancel(t *testing.T) {
	e := newExtractor(t)
	dir := t.TempDir()
	paths := []string{
		testsupport.SampleClip(t).WriteFile(filepath.Join(dir, "a.ari"), 0),
		testsupport.SampleClip(t).WriteFile(filepath.Join(dir, "b.ari"), 0),
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := e.Batch(ctx, paths, []string{"Reel"}, extract.BatchOptions{Workers: 1})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if report == nil || len(report.Results) != 2 {
		t.Fatalf("expected a partial report covering every input, got %+v", report)
	}
	if report.Succeeded != 0 {
		t.Fatalf("no file should decode after cancellation, got %d", report.Succeeded)
	}
}

func TestBatchCountsCancelledFilesAsSkipped(t *testing.T) {
	e := newExtractor(t)
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.ari", "b.ari", "c.ari", "d.ari"} {
		paths = append(paths, testsupport.SampleClip(t).WriteFile(filepath.Join(dir, name), 0))
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	report, err := e.Batch(ctx, paths, []string{"Reel"}, extract.BatchOptions{
		Workers: 1,
		Progress: func(done, total int, _ extract.Result) {
			if done == 1 {
				cancel()
			}
		},
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if report.Succeeded != 1 || report.Failed != 0 || report.Skipped != 3 {
		t.Fatalf("succeeded=%d failed=%d skipped=%d, want 1/0/3", report.Succeeded, report.Failed, report.Skipped)
	}
	for _, res := range report.Results[1:] {
		if res.Kind != extract.KindSkipped {
			t.Fatalf("%s: kind %q, want %q", res.Path, res.Kind, extract.KindSkipped)
		}
	}
}

func TestClipName(t *testing.T) {
	if got := extract.ClipName("/media/A001/A001C003_240315_R1AB.0000001.ari"); got != "A001C003_240315_R1AB.0000001" {
		t.Fatalf("ClipName = %q", got)
	}
}
