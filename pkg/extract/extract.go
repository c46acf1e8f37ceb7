// Package extract pulls embedded Python and R payloads out of shell wrapper
// scripts and materializes them as standalone files in per-language
// destination directories. Destinations are recreated on every run, so the
// output never carries stale payloads from removed or renamed sources.
package extract

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔧 Options configures an extraction run.
type Options struct {
	// SourceDir holds the shell wrapper scripts. Only files directly inside
	// it are considered; it must exist.
	SourceDir string

	// PythonDest and RDest receive extracted payloads. Both are removed and
	// recreated at the start of a run.
	PythonDest string
	RDest      string

	// FunctionsDir is the shared helper source duplicated verbatim into
	// every FunctionsDests entry after extraction. Empty disables the copy.
	FunctionsDir   string
	FunctionsDests []string

	// IgnoreGlobs filters files out of the functions copy (base names).
	IgnoreGlobs []string
}

// 📤 Payload records one extracted payload.
type Payload struct {
	Source string // wrapper script path
	Kind   Kind
	Dest   string // written payload path
}

// 📊 Summary reports what an extraction run produced.
type Summary struct {
	Payloads []Payload
	Skipped  []string // wrapper paths skipped for a kind (unterminated block)
}

// 🎯 Extractor runs payload extraction for a fixed set of options.
type Extractor struct {
	opts Options
}

// 🏭 New creates an Extractor.
func New(opts Options) (*Extractor, error) {
	if opts.SourceDir == "" {
		return nil, errors.Errorf("source dir is required")
	}
	if opts.PythonDest == "" || opts.RDest == "" {
		return nil, errors.Errorf("both destination dirs are required")
	}
	return &Extractor{opts: opts}, nil
}

// destFor maps a kind to its destination directory.
func (e *Extractor) destFor(kind Kind) string {
	if kind == KindPython {
		return e.opts.PythonDest
	}
	return e.opts.RDest
}

// 🏃 Extract runs a full extraction pass. A missing source directory or an
// uncreatable destination is fatal; a wrapper whose embedded block never
// closes is skipped for that kind with a warning.
func (e *Extractor) Extract(ctx context.Context) (*Summary, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("source", e.opts.SourceDir).Msg("extracting payloads")

	entries, err := os.ReadDir(e.opts.SourceDir)
	if err != nil {
		return nil, errors.Errorf("reading source dir: %w", err)
	}

	// Recreate destinations so no stale payload survives
	for _, kind := range Kinds() {
		dest := e.destFor(kind)
		if err := os.RemoveAll(dest); err != nil {
			return nil, errors.Errorf("clearing %s destination: %w", kind, err)
		}
		if err := os.MkdirAll(dest, 0755); err != nil {
			return nil, errors.Errorf("creating %s destination: %w", kind, err)
		}
	}

	summary := &Summary{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sh") {
			continue
		}
		path := filepath.Join(e.opts.SourceDir, entry.Name())
		if err := e.extractFile(ctx, path, summary); err != nil {
			return nil, err
		}
	}

	if e.opts.FunctionsDir != "" {
		if err := e.copyFunctions(ctx); err != nil {
			return nil, err
		}
	}

	logger.Debug().
		Int("payloads", len(summary.Payloads)).
		Int("skipped", len(summary.Skipped)).
		Msg("extraction pass complete")
	return summary, nil
}

// extractFile extracts at most one payload per kind from a single wrapper.
func (e *Extractor) extractFile(ctx context.Context, path string, summary *Summary) error {
	logger := zerolog.Ctx(ctx)

	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Errorf("reading wrapper %s: %w", path, err)
	}
	lines := strings.Split(string(raw), "\n")
	blocks := sliceBlocks(lines)

	for _, kind := range Kinds() {
		marker := markerLine(lines, kind)
		if marker < 0 {
			continue
		}
		b, ok := blockFor(blocks, marker, lines[marker])
		if !ok {
			// Marker but no embedded block: nothing to extract
			continue
		}
		if !b.terminated {
			logger.Warn().Str("file", path).Str("kind", string(kind)).Msg("embedded block never closes, skipping")
			summary.Skipped = append(summary.Skipped, path)
			continue
		}

		body := unescape(strings.Join(b.body, "\n"), kind)
		if !strings.HasSuffix(body, "\n") {
			body += "\n"
		}

		base := strings.TrimSuffix(filepath.Base(path), ".sh")
		dest := filepath.Join(e.destFor(kind), base+kind.Extension())
		if err := os.WriteFile(dest, []byte(body), 0644); err != nil {
			return errors.Errorf("writing payload %s: %w", dest, err)
		}

		summary.Payloads = append(summary.Payloads, Payload{Source: path, Kind: kind, Dest: dest})
		logger.Debug().Str("file", path).Str("dest", dest).Msg("payload extracted")
	}
	return nil
}
