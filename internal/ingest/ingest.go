// Package ingest resolves the -in argument of the CLI into the list of
// documents to process.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/docs-extractor/constants"
)

var ErrUnsupportedExt = errors.New("unsupported or missing extension")

// Input is one document found on disk.
type Input struct {
	Path    string
	Ext     string
	Size    int64
	HashHex string
}

// DirStats summarizes a directory walk.
type DirStats struct {
	Scanned uint32
	Matched uint32
	Failed  uint32
}

// AllowedExt checks if a file extension is in the allowed set (pdf/txt/images).
func AllowedExt(ext string) bool {
	_, ok := constants.AllowedExtensions[constants.NormalizeExt(ext)]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return base != "." && base != ".." && strings.HasPrefix(base, ".")
}

// Stat hashes a single document and checks its extension.
func Stat(path string) (Input, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Input{}, err
	}
	ext := constants.NormalizeExt(filepath.Ext(abs))
	if ext == "" || !AllowedExt(ext) {
		return Input{}, fmt.Errorf("%s: %w", path, ErrUnsupportedExt)
	}

	f, err := os.Open(abs)
	if err != nil {
		return Input{}, err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return Input{}, fmt.Errorf("hash %s: %w", path, err)
	}
	return Input{Path: abs, Ext: ext, Size: n, HashHex: hex.EncodeToString(h.Sum(nil))}, nil
}

// Collect returns the documents under root in lexical path order. A file
// root yields itself. Files that cannot be read are counted as failed and
// skipped; the walk continues.
func Collect(ctx context.Context, root string, skipHidden bool) ([]Input, DirStats, error) {
	var stats DirStats
	if strings.TrimSpace(root) == "" {
		return nil, stats, errors.New("input path is required")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, stats, err
	}
	if !info.IsDir() {
		in, err := Stat(root)
		if err != nil {
			return nil, stats, err
		}
		stats.Scanned, stats.Matched = 1, 1
		return []Input{in}, stats, nil
	}

	var out []Input
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++
		in, err := Stat(path)
		if err != nil {
			stats.Failed++
			return nil
		}
		out = append(out, in)
		return nil
	})
	if err != nil {
		return out, stats, fmt.Errorf("walk: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, stats, nil
}
