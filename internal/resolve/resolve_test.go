// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePDF(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("%PDF-1.4 fake"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTargets(t *testing.T) {
	t.Run("mixed files and bad paths", func(t *testing.T) {
		dir := t.TempDir()
		a := writePDF(t, dir, "a.pdf")
		b := writePDF(t, dir, "B.PDF")
		txt := filepath.Join(dir, "notes.txt")
		if err := os.WriteFile(txt, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		missing := filepath.Join(dir, "gone.pdf")

		var log bytes.Buffer
		targets, warnings := Targets([]string{a, b, txt, missing}, &log)

		if len(targets) != 2 {
			t.Fatalf("got %d targets, want 2", len(targets))
		}
		if warnings != 2 {
			t.Errorf("got %d warnings, want 2", warnings)
		}
		if !strings.Contains(log.String(), "not a PDF file") {
			t.Errorf("log missing non-PDF warning: %q", log.String())
		}
	})

	t.Run("directory walked recursively", func(t *testing.T) {
		dir := t.TempDir()
		writePDF(t, dir, "top.pdf")
		sub := filepath.Join(dir, "nested")
		if err := os.MkdirAll(sub, 0o755); err != nil {
			t.Fatal(err)
		}
		writePDF(t, sub, "deep.pdf")
		if err := os.WriteFile(filepath.Join(sub, "skip.doc"), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}

		var log bytes.Buffer
		targets, warnings := Targets([]string{dir}, &log)

		if len(targets) != 2 {
			t.Fatalf("got %d targets, want 2", len(targets))
		}
		// Non-PDF files inside a directory are not warnings.
		if warnings != 0 {
			t.Errorf("got %d warnings, want 0", warnings)
		}
	})

	t.Run("duplicates kept once", func(t *testing.T) {
		dir := t.TempDir()
		a := writePDF(t, dir, "a.pdf")

		var log bytes.Buffer
		targets, _ := Targets([]string{a, a, dir}, &log)

		if len(targets) != 1 {
			t.Fatalf("got %d targets, want 1", len(targets))
		}
	})

	t.Run("empty input", func(t *testing.T) {
		var log bytes.Buffer
		targets, warnings := Targets(nil, &log)
		if len(targets) != 0 || warnings != 0 {
			t.Errorf("got %d targets, %d warnings; want 0, 0", len(targets), warnings)
		}
	})
}

func TestStem(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"dir/report.pdf", "report"},
		{"dir/Annual Report 2024.PDF", "Annual_Report_2024"},
		{"plain.pdf", "plain"},
	}
	for _, tt := range tests {
		if got := Stem(tt.path); got != tt.want {
			t.Errorf("Stem(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestIsPDF(t *testing.T) {
	for path, want := range map[string]bool{
		"a.pdf":  true,
		"a.PDF":  true,
		"a.Pdf":  true,
		"a.pdfx": false,
		"a.txt":  false,
		"pdf":    false,
	} {
		if got := IsPDF(path); got != want {
			t.Errorf("IsPDF(%q) = %v, want %v", path, got, want)
		}
	}
}
