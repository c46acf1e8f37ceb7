// Package localize rewrites remote-only path fragments inside a script tree
// to their local equivalents. Replacement is literal (no pattern syntax),
// applied in declared rule order, across every file whose name matches a
// configured suffix glob. Files operate as raw bytes, so content that does
// not decode as UTF-8 passes through untouched.
package localize

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔄 Rule is one literal substitution. Later rules see the output of
// earlier rules within the same file.
type Rule struct {
	From string
	To   string
}

// 🎯 Localizer applies an ordered rule list across a directory tree.
type Localizer struct {
	rules   []Rule
	filters []string // doublestar globs matched against base names
}

// 🏭 New creates a Localizer. Every rule needs a non-empty From; at least
// one filter glob is required.
func New(rules []Rule, filters []string) (*Localizer, error) {
	for i, r := range rules {
		if r.From == "" {
			return nil, errors.Errorf("rule %d: from is required", i)
		}
	}
	if len(filters) == 0 {
		return nil, errors.Errorf("at least one filter glob is required")
	}
	for _, f := range filters {
		if !doublestar.ValidatePattern(f) {
			return nil, errors.Errorf("invalid filter glob %q", f)
		}
	}
	return &Localizer{rules: rules, filters: filters}, nil
}

// 📄 FileResult records the outcome for one visited file.
type FileResult struct {
	Path         string
	Replacements int
	Modified     bool
	Err          error
}

// 📊 Report collects per-file outcomes for a whole pass.
type Report struct {
	Files []FileResult
}

// ❌ Failed returns the subset of files that could not be processed.
func (r *Report) Failed() []FileResult {
	var failed []FileResult
	for _, f := range r.Files {
		if f.Err != nil {
			failed = append(failed, f)
		}
	}
	return failed
}

// 🔢 TotalReplacements sums replacements across all files.
func (r *Report) TotalReplacements() int {
	n := 0
	for _, f := range r.Files {
		n += f.Replacements
	}
	return n
}

// 🔄 ReplaceAll applies the ordered rule list to content, returning the new
// content and the number of occurrences replaced.
func ReplaceAll(content []byte, rules []Rule) ([]byte, int) {
	count := 0
	current := content
	for _, rule := range rules {
		if rule.From == "" {
			continue
		}
		n := bytes.Count(current, []byte(rule.From))
		if n == 0 {
			continue
		}
		count += n
		current = bytes.ReplaceAll(current, []byte(rule.From), []byte(rule.To))
	}
	return current, count
}

// 🏃 Localize walks root and rewrites every matching file in place. A file
// is written back only when its content changed, preserving its mode. Errors
// on individual files are collected into the report, not fatal; only a
// missing or unwalkable root aborts the pass. No file is renamed, created,
// or deleted.
func (l *Localizer) Localize(ctx context.Context, root string) (*Report, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("root", root).Int("rules", len(l.rules)).Msg("localizing script tree")

	if _, err := os.Stat(root); err != nil {
		return nil, errors.Errorf("localize root: %w", err)
	}

	report := &Report{}
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				report.Files = append(report.Files, FileResult{Path: path, Err: err})
				return fs.SkipDir
			}
			report.Files = append(report.Files, FileResult{Path: path, Err: err})
			return nil
		}
		if d.IsDir() || !l.matches(d.Name()) {
			return nil
		}
		report.Files = append(report.Files, l.localizeFile(ctx, path))
		return nil
	})
	if walkErr != nil {
		return nil, errors.Errorf("walking %s: %w", root, walkErr)
	}

	for _, f := range report.Failed() {
		logger.Warn().Str("file", f.Path).Err(f.Err).Msg("file skipped during localization")
	}
	logger.Debug().
		Int("files", len(report.Files)).
		Int("replacements", report.TotalReplacements()).
		Msg("localization pass complete")
	return report, nil
}

// localizeFile rewrites a single file in place when any rule matches.
func (l *Localizer) localizeFile(ctx context.Context, path string) FileResult {
	res := FileResult{Path: path}

	info, err := os.Stat(path)
	if err != nil {
		res.Err = errors.Errorf("stat: %w", err)
		return res
	}

	content, err := os.ReadFile(path)
	if err != nil {
		res.Err = errors.Errorf("reading: %w", err)
		return res
	}

	modified, count := ReplaceAll(content, l.rules)
	res.Replacements = count
	if count == 0 || bytes.Equal(content, modified) {
		return res
	}

	if err := os.WriteFile(path, modified, info.Mode().Perm()); err != nil {
		res.Err = errors.Errorf("writing: %w", err)
		return res
	}
	res.Modified = true

	zerolog.Ctx(ctx).Debug().Str("file", path).Int("replacements", count).Msg("file localized")
	return res
}

// matches checks the base name against the filter globs.
func (l *Localizer) matches(name string) bool {
	for _, f := range l.filters {
		if ok, err := doublestar.Match(f, name); err == nil && ok {
			return true
		}
	}
	return false
}
