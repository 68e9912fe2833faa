package main

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"arrimeta/internal/logging"
	"arrimeta/internal/testsupport"
)

func TestExtractJSONSkipsBadFiles(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeClip(t, "A001C001")
	env.writeClip(t, "A001C002")
	testsupport.WriteFile(t, filepath.Join(env.clipsDir, "A001C003", "A001C003.0000001.ari"), 8192)

	out, stderr, err := runCLI(t, []string{"extract", "--format", "json", "--fields", "Reel,MasterTC", env.clipsDir}, env.configPath)
	if err == nil {
		t.Fatal("expected an error when a file fails")
	}
	requireContains(t, err.Error(), "1 of 3 file(s) failed")
	requireContains(t, stderr, "A001C003")

	var got map[string]map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 clips, got %d: %v", len(got), got)
	}
	clip, ok := got["A001C001.0000001"]
	if !ok {
		t.Fatalf("missing clip A001C001.0000001 in %v", got)
	}
	if clip["Reel"] != "A001" || clip["MasterTC"] != "00:00:29:23" {
		t.Fatalf("unexpected values %v", clip)
	}
}

func TestExtractRejectsUnknownFieldBeforeReading(t *testing.T) {
	env := setupCLITestEnv(t)
	missing := filepath.Join(env.clipsDir, "missing.ari")

	out, _, err := runCLI(t, []string{"extract", "--fields", "ImageWidth,NotAField", missing}, env.configPath)
	if err == nil {
		t.Fatal("expected unknown field error")
	}
	requireContains(t, err.Error(), "NotAField")
	if out != "" {
		t.Fatalf("expected no output, got %q", out)
	}
}

func TestExtractCSVSingleClip(t *testing.T) {
	env := setupCLITestEnv(t)
	path := env.writeClip(t, "B002C010")

	out, _, err := runCLI(t, []string{"extract", "--format", "csv", "--fields", "CameraModel,ImageWidth", path}, env.configPath)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	want := [][]string{
		{"Clip", "CameraModel", "ImageWidth"},
		{"B002C010.0000001", "ALEXA Mini", "3840"},
	}
	if len(records) != len(want) {
		t.Fatalf("records = %v", records)
	}
	for i := range want {
		if strings.Join(records[i], "|") != strings.Join(want[i], "|") {
			t.Fatalf("row %d = %v, want %v", i, records[i], want[i])
		}
	}
}

func TestExtractFirstFramePerDirectory(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := filepath.Join(env.clipsDir, "A001C001")
	for _, frame := range []string{"0000001", "0000002", "0000003"} {
		testsupport.SampleClip(t).WriteFile(filepath.Join(dir, "A001C001."+frame+".ari"), 0)
	}

	out, _, err := runCLI(t, []string{"extract", "--format", "tsv", "--fields", "minimal", dir}, env.configPath)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %q", out)
	}

	out, _, err = runCLI(t, []string{"extract", "--format", "tsv", "--fields", "minimal", "--all-frames", dir}, env.configPath)
	if err != nil {
		t.Fatalf("extract --all-frames: %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(out), "\n"); len(lines) != 4 {
		t.Fatalf("expected header and three rows, got %q", out)
	}
}

func TestExtractOutputDirWritesOneFilePerClip(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeClip(t, "A001C001")
	env.writeClip(t, "A001C002")
	target := filepath.Join(t.TempDir(), "reports")

	_, stderr, err := runCLI(t, []string{"extract", "--format", "json", "--output-dir", target, env.clipsDir}, env.configPath)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	requireContains(t, stderr, "Wrote 2 file(s)")

	data, err := os.ReadFile(filepath.Join(target, "A001C002.0000001.json"))
	if err != nil {
		t.Fatalf("read per-clip output: %v", err)
	}
	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		t.Fatalf("decode per-clip output: %v", err)
	}
	if flat["CameraModel"] != "ALEXA Mini" {
		t.Fatalf("expected a flat record, got %v", flat)
	}
}

func TestExtractHonoursConfiguredFieldSets(t *testing.T) {
	env := setupCLITestEnv(t,
		testsupport.WithFieldSets([]string{"Take", "Reel"}, []string{"Reel"}),
		testsupport.WithWorkers(1),
		testsupport.WithLogDir(),
	)
	env.writeClip(t, "A001C004")
	env.writeClip(t, "A001C005")

	out, _, err := runCLI(t, []string{"extract", "--format", "csv", env.clipsDir}, env.configPath)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	header := strings.SplitN(out, "\n", 2)[0]
	if header != "Clip,Take,Reel" {
		t.Fatalf("header = %q", header)
	}

	logPath := filepath.Join(env.cfg.Paths.LogDir, logging.LogFileName)
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	requireContains(t, string(data), `"event_type":"batch_finished"`)
	requireContains(t, string(data), `"workers":1`)
}

func TestExtractKeepsFramesThatShareAName(t *testing.T) {
	env := setupCLITestEnv(t)
	cardA := testsupport.SampleClip(t).WriteFile(filepath.Join(env.clipsDir, "cardA", "frame.ari"), 256)
	reel := testsupport.ARRIOffset(t, "Reel")
	testsupport.SampleClip(t).String(reel, 8, "B002").WriteFile(filepath.Join(env.clipsDir, "cardB", "frame.ari"), 256)

	out, _, err := runCLI(t, []string{"extract", "--format", "csv", "--fields", "Reel", env.clipsDir}, env.configPath)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v\n%s", err, out)
	}
	if len(records) != 3 {
		t.Fatalf("expected a row per file, got %v", records)
	}
	if strings.Join(records[1], ",") != "cardA/frame,A001" || strings.Join(records[2], ",") != "cardB/frame,B002" {
		t.Fatalf("unexpected rows %v", records[1:])
	}

	target := filepath.Join(t.TempDir(), "reports")
	if _, _, err := runCLI(t, []string{"extract", "--format", "json", "--output-dir", target, "--catalog", env.clipsDir}, env.configPath); err != nil {
		t.Fatalf("extract --output-dir: %v", err)
	}
	for name, want := range map[string]string{"cardA_frame.json": "A001", "cardB_frame.json": "B002"} {
		data, err := os.ReadFile(filepath.Join(target, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		var flat map[string]any
		if err := json.Unmarshal(data, &flat); err != nil {
			t.Fatalf("decode %s: %v", name, err)
		}
		if flat["Reel"] != want {
			t.Fatalf("%s Reel = %v, want %s", name, flat["Reel"], want)
		}
	}

	out, _, err = runCLI(t, []string{"catalog", "show", "--format", "json", "frame"}, env.configPath)
	if err != nil {
		t.Fatalf("catalog show: %v", err)
	}
	var shown map[string]map[string]any
	if err := json.Unmarshal([]byte(out), &shown); err != nil {
		t.Fatalf("decode show: %v\n%s", err, out)
	}
	if len(shown) != 2 || shown["cardA/frame"]["Reel"] != "A001" || shown["cardB/frame"]["Reel"] != "B002" {
		t.Fatalf("catalog show collapsed rows: %v", shown)
	}

	out, _, err = runCLI(t, []string{"catalog", "list", "--json", "--reel", "A001"}, env.configPath)
	if err != nil {
		t.Fatalf("catalog list --reel: %v", err)
	}
	var rows []catalogRow
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode list: %v\n%s", err, out)
	}
	if len(rows) != 1 || rows[0].Reel != "A001" {
		t.Fatalf("unexpected rows %+v", rows)
	}
	if abs, _ := filepath.Abs(cardA); rows[0].Path != abs {
		t.Fatalf("path = %s, want %s", rows[0].Path, abs)
	}
}

func TestExtractXLSXNeedsAFile(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeClip(t, "A001C001")
	target := filepath.Join(t.TempDir(), "clips.xlsx")

	if _, _, err := runCLI(t, []string{"extract", "--format", "xlsx", "--output", target, env.clipsDir}, env.configPath); err != nil {
		t.Fatalf("extract xlsx: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read workbook: %v", err)
	}
	if len(data) < 4 || string(data[:2]) != "PK" {
		t.Fatalf("expected a zip container, got %q", data[:min(len(data), 8)])
	}
}
