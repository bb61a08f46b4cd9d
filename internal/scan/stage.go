// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scan

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pdiddy/pdforensic/internal/toolchain"
	"github.com/pdiddy/pdforensic/pkg/types"
)

// Dirs lays out one target's output directory.
type Dirs struct {
	Root      string
	Meta      string
	Text      string
	Structure string
	Objects   string
	Pages     string
	Images    string
	Hex       string
	OCR       string
}

func newDirs(root string) Dirs {
	return Dirs{
		Root:      root,
		Meta:      filepath.Join(root, "meta"),
		Text:      filepath.Join(root, "text"),
		Structure: filepath.Join(root, "structure"),
		Objects:   filepath.Join(root, "structure", "objects"),
		Pages:     filepath.Join(root, "pages"),
		Images:    filepath.Join(root, "images"),
		Hex:       filepath.Join(root, "hex"),
		OCR:       filepath.Join(root, "ocr"),
	}
}

func (d Dirs) create() error {
	for _, dir := range []string{
		d.Root, d.Meta, d.Text, d.Structure, d.Objects,
		d.Pages, d.Images, d.Hex, d.OCR,
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// Context carries everything a stage needs for one target.
type Context struct {
	Cfg  types.Config
	Exec toolchain.Executor
	GOOS string

	// PDF is the source file path.
	PDF string

	// Dirs is the target's output layout.
	Dirs Dirs

	// Rec is the target record under construction. Stages may fill
	// fields (the hash stage sets MD5/SHA256).
	Rec *types.TargetRecord

	// Log receives stage diagnostics (tool stderr, warnings).
	Log io.Writer

	// Client is used by the intel stage.
	Client *http.Client
}

// Command is one external invocation within a stage.
type Command struct {
	// Tool is the binary name, resolved on PATH.
	Tool string

	// Args builds the argument list for this target.
	Args func(c *Context) []string

	// Dir optionally sets the working directory (mutool extract writes
	// into the current directory).
	Dir func(c *Context) string

	// Artifact is a path relative to the target root where captured
	// stdout is written. Empty discards stdout unless Embed is set.
	Artifact string

	// Embed includes captured stdout in the report section body.
	Embed bool

	// Creates names the file or directory the tool writes on its own
	// (not via stdout), mentioned in the section body on success.
	Creates string

	// BenignExits lists non-zero exit codes that do not count as
	// failure (e.g. "no signature found").
	BenignExits []int
}

// Stage is one step of the per-target pipeline, executed in table order.
type Stage struct {
	// Name is the stage identifier used in logs and target.yaml.
	Name string

	// Heading is the report section title.
	Heading string

	// Platform restricts the stage to one GOOS. Empty means all.
	Platform string

	// Optional marks stages whose tool may legitimately be absent; a
	// missing binary skips the stage instead of failing it.
	Optional bool

	// Enabled gates the stage on configuration. Nil means always on.
	Enabled func(cfg types.Config) bool

	// Commands are run in order. Ignored when Custom is set.
	Commands []Command

	// Custom runs in-process logic and returns the section body.
	Custom func(c *Context) (string, error)
}

func benign(code int, list []int) bool {
	for _, b := range list {
		if code == b {
			return true
		}
	}
	return false
}
