package ignore

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for relPath, content := range files {
		path := filepath.Join(root, relPath)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func walkAll(t *testing.T, m *Matcher, root string) []string {
	t.Helper()
	var paths []string
	err := m.WalkFiles(root, func(relPath string, info fs.FileInfo) error {
		paths = append(paths, relPath)
		return nil
	})
	assert.NoError(t, err)
	sort.Strings(paths)
	return paths
}

func TestMatcher_RespectsGitignore(t *testing.T) {
	assert := assert.New(t)

	root := writeFiles(t, map[string]string{
		".gitignore":     "*.log\nbuild/\n",
		"main.go":        "package main",
		"debug.log":      "noise",
		"build/out.bin":  "bin",
		"src/app.go":     "package src",
		"src/trace.log":  "noise",
		".git/HEAD":      "ref: refs/heads/main",
		".git/config":    "",
		"docs/README.md": "docs",
	})

	m, err := NewMatcher(root)
	assert.NoError(err)

	assert.Equal([]string{
		".gitignore",
		"docs/README.md",
		"main.go",
		"src/app.go",
	}, walkAll(t, m, root))
}

func TestMatcher_NilIgnoresNothingButGit(t *testing.T) {
	assert := assert.New(t)

	root := writeFiles(t, map[string]string{
		"a.txt":     "a",
		".git/HEAD": "ref",
	})

	var m *Matcher
	assert.False(m.Ignored("a.txt", false))
	assert.True(m.Ignored(".git", true))
	assert.Equal([]string{"a.txt"}, walkAll(t, m, root))
}
