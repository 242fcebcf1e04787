// Package emitter renders an aggregated document to JSON or YAML and writes
// it to a file or stdout.
package emitter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/capture2openapi/internal/openapi"
)

// Format selects the output rendering.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Options controls how the emitter renders and writes a document.
type Options struct {
	OutPath string // target file; empty writes JSON to Stdout
	Format  Format // derived from OutPath extension when empty
	Force   bool   // overwrite an existing file
	DryRun  bool   // don't write, only plan
	Stdout  io.Writer
	Logger  log.FieldLogger
}

// Result reports what was (or would be) written.
type Result struct {
	Path     string // empty when the document went to stdout
	Format   Format
	FellBack bool // YAML was requested but JSON was written
	Size     int
}

// ParseFormat validates a user-supplied format name. The empty string is
// valid and means "derive from the output path".
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return "", nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format %q (allowed: json, yaml)", name)
	}
}

// Emit renders doc and writes it according to opts. A YAML rendering failure
// degrades to JSON instead of failing: the document still gets written, the
// result says which format actually landed, and the output extension is
// rewritten to match.
func Emit(doc *openapi.Document, opts Options) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("emitter: nil document")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}

	outPath := strings.TrimSpace(opts.OutPath)
	format := opts.Format
	if format == "" {
		format = formatForPath(outPath)
	}

	fellBack := false
	var data []byte
	if format == FormatYAML {
		rendered, err := yaml.Marshal(doc)
		if err != nil {
			logger.WithError(err).Warn("YAML rendering unavailable, writing JSON instead")
			format = FormatJSON
			fellBack = true
			if outPath != "" {
				outPath = replaceExtension(outPath, ".json")
			}
		} else {
			data = rendered
		}
	}
	if format == FormatJSON {
		rendered, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("emitter: render JSON: %w", err)
		}
		data = append(rendered, '\n')
	}

	result := &Result{Path: outPath, Format: format, FellBack: fellBack, Size: len(data)}

	if outPath == "" {
		if opts.DryRun {
			return result, nil
		}
		w := opts.Stdout
		if w == nil {
			w = os.Stdout
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("emitter: write stdout: %w", err)
		}
		return result, nil
	}

	if st, err := os.Stat(outPath); err == nil && st.Mode().IsRegular() && !opts.Force {
		return nil, fmt.Errorf("emitter: output file %q already exists (use --force to overwrite)", outPath)
	}
	if opts.DryRun {
		return result, nil
	}

	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("emitter: create output directory: %w", err)
		}
	}

	// Atomic write via temp + rename
	tmp := outPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return nil, fmt.Errorf("emitter: write temp file: %w", err)
	}
	if err := os.Rename(tmp, outPath); err != nil {
		_ = os.Remove(tmp)
		return nil, fmt.Errorf("emitter: place file at %s: %w", outPath, err)
	}
	return result, nil
}

func formatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

func replaceExtension(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
