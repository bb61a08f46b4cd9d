// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve turns command-line arguments into the ordered target
// list for a scan run.
package resolve

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/pdforensic/pkg/types"
)

// IsPDF reports whether path carries a .pdf extension, case-insensitively.
func IsPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// Stem derives the output directory base name from a PDF path: the file
// name without extension, with spaces replaced by underscores.
func Stem(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return strings.ReplaceAll(base, " ", "_")
}

// Targets resolves each argument to zero or more targets. Files must carry
// a .pdf extension; directories are walked recursively collecting PDFs.
// Missing paths and explicitly named non-PDF files produce a warning on w
// and are skipped; the returned warning count includes them. Duplicate
// paths are kept once, first occurrence wins.
func Targets(args []string, w io.Writer) ([]types.Target, int) {
	var targets []types.Target
	warnings := 0
	seen := make(map[string]bool)

	add := func(path string) {
		if seen[path] {
			return
		}
		seen[path] = true
		targets = append(targets, types.Target{Path: path, Stem: Stem(path)})
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			fmt.Fprintf(w, "warning: skipping %s: %v\n", arg, err)
			warnings++
			continue
		}

		if !info.IsDir() {
			if !IsPDF(arg) {
				fmt.Fprintf(w, "warning: skipping %s: not a PDF file\n", arg)
				warnings++
				continue
			}
			add(arg)
			continue
		}

		walkErr := filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				fmt.Fprintf(w, "warning: skipping %s: %v\n", path, err)
				warnings++
				return nil
			}
			if d.IsDir() || !IsPDF(path) {
				return nil
			}
			add(path)
			return nil
		})
		if walkErr != nil {
			fmt.Fprintf(w, "warning: walking %s: %v\n", arg, walkErr)
			warnings++
		}
	}

	return targets, warnings
}
