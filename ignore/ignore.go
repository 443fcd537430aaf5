// Package ignore applies a repository's own gitignore rules when walking an
// extracted snapshot on disk.
package ignore

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// Matcher answers whether a path inside the extracted repository is ignored
// by its .gitignore files. A nil Matcher ignores nothing, which lets callers
// treat "don't respect gitignore" as the zero value.
type Matcher struct {
	matcher gitignore.Matcher
}

// NewMatcher reads every .gitignore under root and compiles the patterns.
func NewMatcher(root string) (*Matcher, error) {
	patterns, err := gitignore.ReadPatterns(osfs.New(root), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read gitignore patterns: %w", err)
	}
	return &Matcher{matcher: gitignore.NewMatcher(patterns)}, nil
}

// Ignored reports whether the relative path should be skipped. The .git
// directory is always skipped.
func (m *Matcher) Ignored(relPath string, isDir bool) bool {
	if relPath == "." || relPath == "" {
		return false
	}
	parts := strings.Split(filepath.ToSlash(relPath), "/")
	if isDir && parts[len(parts)-1] == ".git" {
		return true
	}
	if m == nil {
		return false
	}
	return m.matcher.Match(parts, isDir)
}

// WalkFiles visits every non-ignored file under root, calling fn with the
// slash-separated path relative to root.
func (m *Matcher) WalkFiles(root string, fn func(relPath string, info fs.FileInfo) error) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if m.Ignored(relPath, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		return fn(filepath.ToSlash(relPath), info)
	})
}
