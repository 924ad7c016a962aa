package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// execute runs the root command with args and returns what it wrote to
// stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(strings.NewReader(""), &out, &errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// workspace writes a config file and the oligo pick-lists into a temp dir.
func workspace(t *testing.T) (cfg, lists, db string) {
	t.Helper()
	dir := t.TempDir()
	cfg = writeFile(t, dir, "config.yml", "name: liquidkit\nlogging:\n  level: error\n")
	lists = filepath.Join(dir, "lists")
	if err := os.Mkdir(lists, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, lists, "Picklist_Oligos_1.csv", "Destination Well,Volume\nA1,100\nB1,50\n")
	writeFile(t, lists, "Picklist_Oligos_2.csv", "Destination Well,Volume\nP24,20\n")
	return cfg, lists, filepath.Join(dir, "journal.db")
}

func TestRunAndExport(t *testing.T) {
	cfg, lists, db := workspace(t)

	out, err := execute(t, "run", "oligo-dilution", "-c", cfg, "--picklists", lists, "--journal", db, "-q")
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}
	for _, want := range []string{"oligo-dilution completed", "transfers  3", "dilute oligos_1, dilute oligos_2", "(simulated)"} {
		if !strings.Contains(out, want) {
			t.Errorf("run output missing %q:\n%s", want, out)
		}
	}

	out, err = execute(t, "journal", "list", "-c", cfg, "--journal", db)
	if err != nil {
		t.Fatalf("journal list failed: %v", err)
	}
	if !strings.Contains(out, "oligo-dilution") || !strings.Contains(out, "completed sim") {
		t.Errorf("unexpected journal list:\n%s", out)
	}

	out, err = execute(t, "journal", "export", "latest", "-c", cfg, "--journal", db)
	if err != nil {
		t.Fatalf("journal export failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 transfers, got %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "Seq,Batch,Row") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.Contains(lines[3], "P24 of oligos_2") {
		t.Errorf("expected last transfer into P24, got %q", lines[3])
	}

	file := filepath.Join(t.TempDir(), "run.csv")
	if _, err := execute(t, "journal", "export", "latest", "-c", cfg, "--journal", db, "-o", file); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != out {
		t.Error("file export differs from stdout export")
	}
}

func TestRunFailures(t *testing.T) {
	cfg, lists, db := workspace(t)
	tests := []struct {
		name string
		args []string
	}{
		{
			name: "unknown protocol",
			args: []string{"run", "serial-dilution"},
		},
		{
			name: "no protocol",
			args: []string{"run"},
		},
		{
			name: "bad override",
			args: []string{"run", "oligo-dilution", "--set", "speed"},
		},
		{
			name: "bad operator mode",
			args: []string{"run", "oligo-dilution", "--operator", "pager"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			args := append(tc.args, "-c", cfg, "--picklists", lists, "--journal", db, "-q")
			if _, err := execute(t, args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestRunReportsFailedRun(t *testing.T) {
	cfg, lists, db := workspace(t)
	if err := os.Remove(filepath.Join(lists, "Picklist_Oligos_2.csv")); err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, "run", "oligo-dilution", "-c", cfg, "--picklists", lists, "--journal", db, "-q")
	if err == nil {
		t.Fatal("expected the run to fail")
	}
	if !strings.Contains(out, "oligo-dilution failed (") || !strings.Contains(out, "transfers  2") {
		t.Errorf("unexpected report:\n%s", out)
	}

	out, err = execute(t, "journal", "list", "-c", cfg, "--journal", db)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "failed") {
		t.Errorf("expected a failed run in the journal:\n%s", out)
	}
}

func TestProtocols(t *testing.T) {
	out, err := execute(t, "protocols")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"oligo-dilution", "primer-dilution", "pcr-cleanup", "pcr-cleanup-8"} {
		if !strings.Contains(out, name) {
			t.Errorf("protocols missing %s:\n%s", name, out)
		}
	}
}

func TestProtocolShow(t *testing.T) {
	cfg, _, _ := workspace(t)
	out, err := execute(t, "protocols", "show", "pcr-cleanup", "-c", cfg, "--set", "samples=48", "--set", "magnet_delay=8m")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"# pcr-cleanup", "samples: 48", "magnet_delay: 8m0s", "variant: plate", "magnet (magneticModuleV2)"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}
}

func TestPicklistCheck(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.csv", "Source Well,Destination Well,Volume\nA1,B2,10\nA2,B3,2.5\n")
	bad := writeFile(t, dir, "bad.csv", "Source Well,Volume\nA1,10\n")

	out, err := execute(t, "picklist", "check", good, "-v")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "2 rows, 12.5 µL") || !strings.Contains(out, "row 2: 2.50 µL A2 -> B3") {
		t.Errorf("unexpected check output:\n%s", out)
	}

	out, err = execute(t, "picklist", "check", good, bad)
	if err == nil {
		t.Fatal("expected the bad pick-list to fail")
	}
	if !strings.Contains(out, "bad.csv:") {
		t.Errorf("expected bad.csv to be reported:\n%s", out)
	}
}

func TestLabware(t *testing.T) {
	cfg, _, _ := workspace(t)
	out, err := execute(t, "labware", "-c", cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "opentrons_96_tiprack_300ul") || !strings.Contains(out, "corning_384_wellplate_112ul_flat") {
		t.Errorf("unexpected labware list:\n%s", out)
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "liquidkit ") {
		t.Errorf("unexpected version output %q", out)
	}
}

func TestParseOverrides(t *testing.T) {
	got, err := parseOverrides([]string{"samples=48", " mount =left", "pause_message=a=b"})
	if err != nil {
		t.Fatal(err)
	}
	if got["samples"] != "48" || got["mount"] != "left" || got["pause_message"] != "a=b" {
		t.Errorf("unexpected overrides %v", got)
	}
	if _, err := parseOverrides([]string{"=1"}); err == nil {
		t.Error("expected an error for an empty key")
	}
}
