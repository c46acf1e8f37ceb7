package extract

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// copyFunctions duplicates the shared helper directory into every configured
// destination. Each destination gets a full independent copy, not a symlink,
// so the production-mirror and flat layouts both work standalone. A missing
// functions directory is a warning, not fatal.
func (e *Extractor) copyFunctions(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	if _, err := os.Stat(e.opts.FunctionsDir); err != nil {
		logger.Warn().Str("dir", e.opts.FunctionsDir).Err(err).Msg("functions dir missing, skipping duplication")
		return nil
	}

	for _, dest := range e.opts.FunctionsDests {
		if filepath.Clean(dest) == filepath.Clean(e.opts.FunctionsDir) {
			continue
		}
		if err := os.RemoveAll(dest); err != nil {
			return errors.Errorf("clearing functions dest %s: %w", dest, err)
		}
		if err := e.copyDir(e.opts.FunctionsDir, dest); err != nil {
			return errors.Errorf("duplicating functions into %s: %w", dest, err)
		}
		logger.Debug().Str("dest", dest).Msg("functions duplicated")
	}
	return nil
}

// copyDir copies src into dst recursively, skipping ignored base names.
func (e *Extractor) copyDir(src, dst string) error {
	if err := os.MkdirAll(dst, 0755); err != nil {
		return errors.Errorf("creating %s: %w", dst, err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return errors.Errorf("reading %s: %w", src, err)
	}

	for _, entry := range entries {
		if e.ignored(entry.Name()) {
			continue
		}
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := e.copyDir(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}
		if err := copyFile(srcPath, dstPath); err != nil {
			return err
		}
	}
	return nil
}

// ignored checks a base name against the ignore globs.
func (e *Extractor) ignored(name string) bool {
	for _, g := range e.opts.IgnoreGlobs {
		if ok, err := doublestar.Match(g, name); err == nil && ok {
			return true
		}
	}
	return false
}

// copyFile copies one regular file preserving its mode.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return errors.Errorf("stat %s: %w", src, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return errors.Errorf("creating %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return errors.Errorf("copying %s: %w", src, err)
	}
	return nil
}
