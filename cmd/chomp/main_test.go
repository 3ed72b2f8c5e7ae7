package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"git.sr.ht/~whereswaldon/chomp/store"
)

type harness struct {
	t      *testing.T
	dbPath string
}

func newHarness(t *testing.T) *harness {
	t.Setenv("CHOMP_DB", "")
	t.Setenv("CHOMP_LOG_FILE", "")
	t.Setenv("CHOMP_HISTORY_DAYS", "")
	orig := now
	now = func() time.Time { return time.Date(2025, time.March, 20, 9, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = orig })
	return &harness{t: t, dbPath: filepath.Join(t.TempDir(), "data.db")}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(append([]string{"--db", h.dbPath, "--log-level", "error"}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	if err != nil {
		h.t.Fatalf("expected %v to succeed, got: %v", args, err)
	}
	return out
}

func TestWeightCommands(t *testing.T) {
	h := newHarness(t)
	h.mustRun("weight", "add", "2025-03-18", "81.2")
	if _, err := h.run("weight", "add", "2025-03-18", "80"); !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got: %v", err)
	}
	h.mustRun("weight", "set", "2025-03-18", "81.0")
	h.mustRun("weight", "update", "2025-03-18", "80.9")
	if _, err := h.run("weight", "update", "2025-03-17", "80"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound updating a missing day, got: %v", err)
	}
	h.mustRun("weight", "set", "today", "80.4")

	if out := h.mustRun("weight", "get", "2025-03-18"); out != "80.9\n" {
		t.Errorf("expected 80.9, got %q", out)
	}
	if out := h.mustRun("weight", "get", "today"); out != "80.4\n" {
		t.Errorf("expected today's weight 80.4, got %q", out)
	}

	out := h.mustRun("weight", "list")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "2025-03-20") {
		t.Errorf("expected two lines, newest first, got %q", out)
	}
	out = h.mustRun("weight", "list", "--from", "2025-03-19")
	if strings.Count(out, "\n") != 1 {
		t.Errorf("expected one weight from 2025-03-19, got %q", out)
	}

	h.mustRun("weight", "delete", "2025-03-18")
	if _, err := h.run("weight", "get", "2025-03-18"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got: %v", err)
	}

	for _, args := range [][]string{
		{"weight", "add", "18/03/2025", "80"},
		{"weight", "add", "2025-03-18", "-3"},
		{"weight", "set", "2025-03-18", "Inf"},
		{"weight", "set", "2025-03-18", "NaN"},
		{"weight", "set", "2025-03-18", "-inf"},
		{"weight", "get"},
	} {
		if _, err := h.run(args...); err == nil {
			t.Errorf("expected %v to fail", args)
		}
	}
}

func TestImportAndStats(t *testing.T) {
	h := newHarness(t)
	if out := h.mustRun("stats"); !strings.Contains(out, "no weight recorded") {
		t.Errorf("expected an empty report, got %q", out)
	}

	csvPath := filepath.Join(t.TempDir(), "fitnotes.csv")
	contents := "Date,Time,Measurement,Value\n" +
		"2025-03-05,07:00:00,Bodyweight,82.0\n" +
		"2025-03-10,07:00:00,Body Fat,20.5\n" +
		"2025-03-15,07:00:00,Bodyweight,81.0\n"
	if err := os.WriteFile(csvPath, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	if out := h.mustRun("import", csvPath); out != "imported 2 weights and 0 days of calories\n" {
		t.Errorf("expected 2 imported weights, got %q", out)
	}

	out := h.mustRun("stats")
	if !strings.Contains(out, "latest: 81.0 on 2025-03-15") {
		t.Errorf("expected the latest weight, got %q", out)
	}
	if !strings.Contains(out, "weekly change: -1.00") {
		t.Errorf("expected a weekly change of -1, got %q", out)
	}
}

func TestExport(t *testing.T) {
	h := newHarness(t)
	h.mustRun("weight", "set", "2025-03-01", "82.5")
	h.mustRun("weight", "set", "2025-03-19", "80.1")
	dir := t.TempDir()

	for _, format := range []string{"png", "svg"} {
		t.Run(format, func(t *testing.T) {
			out := filepath.Join(dir, "chart."+format)
			h.mustRun("export", "--format", format, "--out", out, "--width", "400", "--height", "200")
			info, err := os.Stat(out)
			if err != nil {
				t.Fatalf("expected %s to exist: %v", out, err)
			}
			if info.Size() == 0 {
				t.Errorf("expected a non-empty %s file", format)
			}
		})
	}

	bad := filepath.Join(dir, "chart.gif")
	if _, err := h.run("export", "--format", "gif", "--out", bad); err == nil {
		t.Errorf("expected an unknown format to fail")
	}
	if _, err := os.Stat(bad); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected no file left behind, got: %v", err)
	}
}

func TestFailedExportKeepsExistingFile(t *testing.T) {
	h := newHarness(t)
	h.mustRun("weight", "set", "2025-03-19", "80.1")
	dir := t.TempDir()
	existing := filepath.Join(dir, "keep.png")
	if err := os.WriteFile(existing, []byte("precious"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, args := range [][]string{
		{"export", "--format", "jpg", "--out", existing},
		{"export", "--format", "svg", "--out", existing},
		{"export", "--width", "0", "--out", existing},
	} {
		if _, err := h.run(args...); err == nil {
			t.Errorf("expected %v to fail", args)
		}
		contents, err := os.ReadFile(existing)
		if err != nil || string(contents) != "precious" {
			t.Errorf("expected %v to leave the existing file alone, got %q and %v", args, contents, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected no temporary files left behind, got %d entries", len(entries))
	}

	h.mustRun("export", "--out", existing, "--width", "200", "--height", "100")
	contents, _ := os.ReadFile(existing)
	if !bytes.HasPrefix(contents, []byte("\x89PNG")) {
		t.Errorf("expected a successful export to replace the file with a png")
	}
}

func TestCaloriesCommands(t *testing.T) {
	h := newHarness(t)
	if out := h.mustRun("calories", "target"); out != "2000\n" {
		t.Errorf("expected the default target 2000, got %q", out)
	}
	h.mustRun("calories", "target", "2200")

	h.mustRun("calories", "add", "450", "300")
	h.mustRun("calories", "add", "--date", "yesterday", "1900")
	h.mustRun("calories", "add", "800")
	h.mustRun("calories", "undo")
	h.mustRun("calories", "fill", "--date", "yesterday", "2100")

	out := h.mustRun("calories", "stats")
	for _, want := range []string{"entries: 450+300", "sum: 750", "left: 1450 (target: 2200)"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected stats to contain %q, got %q", want, out)
		}
	}

	out = h.mustRun("calories", "list")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two days, got %q", out)
	}
	if !strings.HasPrefix(lines[0], "2025-03-20") || !strings.Contains(lines[1], "2100") {
		t.Errorf("expected today then yesterday's filled 2100, got %q", out)
	}

	if _, err := h.run("calories", "fill", "--date", "yesterday", "1000"); !errors.Is(err, store.ErrOverTarget) {
		t.Errorf("expected ErrOverTarget, got: %v", err)
	}
	h.mustRun("calories", "delete", "yesterday")
	if out := h.mustRun("calories", "list", "--from", "2025-03-19"); strings.Count(out, "\n") != 1 {
		t.Errorf("expected only today after delete, got %q", out)
	}

	for _, args := range [][]string{
		{"calories", "add", "lots"},
		{"calories", "add", "-200"},
		{"calories", "add"},
		{"calories", "target", "0"},
	} {
		if _, err := h.run(args...); err == nil {
			t.Errorf("expected %v to fail", args)
		}
	}
}
