package notes

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"habitmap/internal/scanner"

	"github.com/djherbis/times"
)

// Vault lists and reads notes below one or more root directories
type Vault struct {
	roots []string
}

// NewVault creates a vault over the given root directories
func NewVault(roots ...string) *Vault {
	return &Vault{roots: roots}
}

// Roots returns the configured root directories
func (v *Vault) Roots() []string {
	return v.roots
}

// List scans every root and returns the markdown files found, roots in
// configured order and files in walk order.
func (v *Vault) List(ctx context.Context) ([]File, error) {
	var files []File
	for _, root := range v.roots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		scan, err := scanner.ScanVault(root)
		if err != nil {
			return nil, fmt.Errorf("scan vault %s: %w", root, err)
		}
		for _, p := range scan.NotePaths {
			files = append(files, fileInfo(p, scan.RootDir))
		}
	}
	return files, nil
}

// Read loads and parses a single note
func (v *Vault) Read(ctx context.Context, f File) (Note, error) {
	if err := ctx.Err(); err != nil {
		return Note{}, err
	}
	content, err := os.ReadFile(f.Path)
	if err != nil {
		return Note{}, fmt.Errorf("read note %s: %w", f.RelPath, err)
	}
	return Parse(f, content), nil
}

// Search reads every note and returns those matching the query
func (v *Vault) Search(ctx context.Context, query string) ([]Note, error) {
	q := ParseQuery(query)
	files, err := v.List(ctx)
	if err != nil {
		return nil, err
	}

	var matches []Note
	for _, f := range files {
		if !q.IsEmpty() && !q.NeedsContent() && !q.MatchFile(f) {
			continue
		}
		n, err := v.Read(ctx, f)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			continue
		}
		if q.Match(n) {
			matches = append(matches, n)
		}
	}
	return matches, nil
}

// FileFromPath describes a single note outside of a listing, e.g. one named
// on the command line.
func FileFromPath(path string) (File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return File{}, err
	}
	if _, err := os.Stat(abs); err != nil {
		return File{}, err
	}
	return fileInfo(abs, filepath.Dir(abs)), nil
}

func fileInfo(absPath, root string) File {
	relPath, err := filepath.Rel(root, absPath)
	if err != nil {
		relPath = filepath.Base(absPath)
	}

	return File{
		Path:     absPath,
		RelPath:  filepath.ToSlash(relPath),
		BaseName: strings.TrimSuffix(filepath.Base(absPath), filepath.Ext(absPath)),
		Created:  createdAt(absPath),
	}
}

func createdAt(path string) time.Time {
	ts, err := times.Stat(path)
	if err != nil {
		return time.Time{}
	}
	if ts.HasBirthTime() {
		return ts.BirthTime()
	}
	return ts.ModTime()
}
