// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scan

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/pdforensic/internal/intel"
	"github.com/pdiddy/pdforensic/pkg/types"
)

// stageTable is the fixed per-target pipeline. Unpack-style stages come
// before the stages that read their output (strings dump before the
// hidden-marker search, stream decode before the keyword grep).
func stageTable() []Stage {
	return []Stage{
		{
			Name:    "hashes",
			Heading: "Content Hashes",
			Custom:  hashStage,
		},
		{
			Name:    "metadata",
			Heading: "Metadata",
			Commands: []Command{
				{
					Tool:     "pdfinfo",
					Args:     func(c *Context) []string { return []string{c.PDF} },
					Artifact: "meta/pdfinfo.txt",
					Embed:    true,
				},
				{
					Tool:     "exiftool",
					Args:     func(c *Context) []string { return []string{"-a", "-G1", "-s", c.PDF} },
					Artifact: "meta/exiftool.txt",
				},
			},
		},
		{
			Name:     "spotlight",
			Heading:  "Spotlight Metadata",
			Platform: "darwin",
			Commands: []Command{
				{
					Tool:     "mdls",
					Args:     func(c *Context) []string { return []string{c.PDF} },
					Artifact: "meta/mdls.txt",
				},
			},
		},
		{
			Name:    "text",
			Heading: "Extracted Text",
			Commands: []Command{
				{
					Tool: "pdftotext",
					Args: func(c *Context) []string {
						return []string{c.PDF, filepath.Join(c.Dirs.Text, "text.txt")}
					},
					Creates: "text/text.txt",
				},
			},
		},
		{
			Name:    "structure",
			Heading: "Structure Check",
			Commands: []Command{
				{
					Tool:     "qpdf",
					Args:     func(c *Context) []string { return []string{"--check", c.PDF} },
					Artifact: "structure/qpdf_check.txt",
					Embed:    true,
					// qpdf reports recoverable damage via exits 2 and 3;
					// the findings are the point of the stage.
					BenignExits: []int{2, 3},
				},
				{
					Tool:     "qpdf",
					Args:     func(c *Context) []string { return []string{"--json", c.PDF} },
					Artifact: "structure/qpdf_structure.json",
					BenignExits: []int{3},
				},
			},
		},
		{
			Name:    "objects",
			Heading: "Object Inventory",
			Commands: []Command{
				{
					Tool:     "mutool",
					Args:     func(c *Context) []string { return []string{"info", c.PDF} },
					Artifact: "structure/mutool_info.txt",
					Embed:    true,
				},
				{
					Tool: "mutool",
					Args: func(c *Context) []string { return []string{"extract", c.PDF} },
					// mutool extract writes into the working directory.
					Dir:     func(c *Context) string { return c.Dirs.Objects },
					Creates: "structure/objects/",
				},
			},
		},
		{
			Name:     "objstats",
			Heading:  "Object Statistics",
			Optional: true,
			Commands: []Command{
				{
					Tool:     "pdf-parser.py",
					Args:     func(c *Context) []string { return []string{"--stats", c.PDF} },
					Artifact: "structure/pdf_parser_stats.txt",
					Embed:    true,
				},
			},
		},
		{
			Name:    "fonts",
			Heading: "Fonts",
			Commands: []Command{
				{
					Tool:     "pdffonts",
					Args:     func(c *Context) []string { return []string{c.PDF} },
					Artifact: "structure/pdffonts.txt",
					Embed:    true,
				},
			},
		},
		{
			Name:    "pages",
			Heading: "Page Separation",
			Commands: []Command{
				{
					Tool: "pdfseparate",
					Args: func(c *Context) []string {
						return []string{c.PDF, filepath.Join(c.Dirs.Pages, "page-%d.pdf")}
					},
					Creates: "pages/",
				},
			},
		},
		{
			Name:    "images",
			Heading: "Image Extraction",
			Commands: []Command{
				{
					Tool: "pdfimages",
					Args: func(c *Context) []string {
						return []string{"-all", c.PDF, filepath.Join(c.Dirs.Images, "img")}
					},
					Creates: "images/",
				},
			},
		},
		{
			Name:    "hexdump",
			Heading: "Hex Dump",
			Commands: []Command{
				{
					Tool:     "xxd",
					Args:     func(c *Context) []string { return []string{c.PDF} },
					Artifact: "hex/pdf_hex_dump.txt",
				},
			},
		},
		{
			Name:    "hidden",
			Heading: "Hidden Text Markers",
			Custom:  hiddenStage,
		},
		{
			Name:    "deepscan",
			Heading: "Decoded Stream Keywords",
			Enabled: func(cfg types.Config) bool { return cfg.Scan.DeepScan },
			Custom:  deepScanStage,
		},
		{
			Name:    "ocr",
			Heading: "OCR Reconstruction",
			Enabled: func(cfg types.Config) bool { return cfg.Scan.OCR },
			Commands: []Command{
				{
					Tool: "ocrmypdf",
					Args: ocrArgs,
					// Exit 6 means a prior text layer was found.
					BenignExits: []int{6},
					Creates:     "ocr/ocr.pdf",
				},
			},
		},
		{
			Name:    "binwalk",
			Heading: "Embedded Content Scan",
			Enabled: func(cfg types.Config) bool { return cfg.Scan.Binwalk },
			Commands: []Command{
				{
					Tool:     "binwalk",
					Args:     func(c *Context) []string { return []string{c.PDF} },
					Artifact: "structure/binwalk.txt",
					Embed:    true,
				},
			},
		},
		{
			Name:    "encryption",
			Heading: "Encryption Check",
			Enabled: func(cfg types.Config) bool { return cfg.Scan.Crack },
			Custom:  encryptionStage,
		},
		{
			Name:    "yara",
			Heading: "YARA Scan",
			Enabled: func(cfg types.Config) bool { return cfg.Scan.YaraRules != "" },
			Commands: []Command{
				{
					Tool: "yara",
					Args: func(c *Context) []string {
						return []string{"-r", c.Cfg.Scan.YaraRules, c.PDF}
					},
					Artifact: "structure/yara.txt",
					Embed:    true,
				},
			},
		},
		{
			Name:    "signature",
			Heading: "Digital Signatures",
			Commands: []Command{
				{
					Tool:     "pdfsig",
					Args:     func(c *Context) []string { return []string{c.PDF} },
					Artifact: "meta/pdfsig.txt",
					Embed:    true,
					// Exit 1 is "document does not contain any signatures".
					BenignExits: []int{1},
				},
			},
		},
		{
			Name:    "intel",
			Heading: "Reputation Lookup",
			Enabled: func(cfg types.Config) bool { return cfg.Scan.Intel },
			Custom:  intelStage,
		},
		{
			Name:    "composite",
			Heading: "Composite PDF",
			Enabled: func(cfg types.Config) bool { return cfg.Scan.Composite },
			Commands: []Command{
				{
					Tool: "qpdf",
					Args: func(c *Context) []string {
						return []string{
							"--qdf", "--object-streams=disable",
							c.PDF, filepath.Join(c.Dirs.Root, "decoded_output.pdf"),
						}
					},
					BenignExits: []int{3},
					Creates:     "decoded_output.pdf",
				},
				{
					Tool: "mutool",
					Args: func(c *Context) []string {
						return []string{
							"merge", "-o", filepath.Join(c.Dirs.Root, "composite.pdf"),
							c.PDF, filepath.Join(c.Dirs.Root, "decoded_output.pdf"),
						}
					},
					Creates: "composite.pdf",
				},
			},
		},
	}
}

// ocrArgs builds the ocrmypdf invocation from OCRConfig.
func ocrArgs(c *Context) []string {
	cfg := c.Cfg.OCR
	args := []string{}
	if cfg.ForceOCR {
		args = append(args, "--force-ocr")
	}
	args = append(args, "--rotate-pages", "--deskew")
	if cfg.Languages != "" {
		args = append(args, "-l", cfg.Languages)
	}
	if cfg.DPI > 0 {
		args = append(args, "--image-dpi", fmt.Sprintf("%d", cfg.DPI))
	}
	args = append(args,
		"--sidecar", filepath.Join(c.Dirs.OCR, "ocr.txt"),
		c.PDF, filepath.Join(c.Dirs.OCR, "ocr.pdf"),
	)
	return args
}

// encryptionStage checks whether the document is encrypted and, when it
// is, attempts password recovery with pdfcrack.
func encryptionStage(c *Context) (string, error) {
	exit, err := c.Exec.Run("qpdf", []string{"--is-encrypted", c.PDF}, "", io.Discard, c.Log)
	if err != nil {
		return "", fmt.Errorf("qpdf: %w", err)
	}

	switch exit {
	case 2:
		return "Encryption: none", nil
	case 0:
		// Encrypted. Fall through to recovery.
	default:
		return "", fmt.Errorf("qpdf --is-encrypted exited %d", exit)
	}

	crackPath := filepath.Join(c.Dirs.Structure, "pdfcrack.txt")
	out, err := os.Create(crackPath)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", crackPath, err)
	}
	defer out.Close()

	exit, err = c.Exec.Run("pdfcrack", []string{"-f", c.PDF}, "", out, c.Log)
	if err != nil {
		return "", fmt.Errorf("pdfcrack: %w", err)
	}
	if exit != 0 {
		return "", fmt.Errorf("pdfcrack exited %d", exit)
	}
	return "Encryption: present\nRecovery output: structure/pdfcrack.txt", nil
}

// intelStage looks up the target's SHA-256 against the reputation API.
// It depends on the hash stage having run first.
func intelStage(c *Context) (string, error) {
	if c.Rec.SHA256 == "" {
		return "", fmt.Errorf("no SHA-256 recorded for target")
	}
	r, err := intel.Lookup(context.Background(), c.Client, c.Rec.SHA256, c.Cfg.Intel)
	if err != nil {
		return "", err
	}
	return r.String(), nil
}
