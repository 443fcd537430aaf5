package textractor

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/aliok/repo-textractor/internal/metrics"
	"github.com/stretchr/testify/assert"
)

func writeSnapshot(t *testing.T, files map[string][]byte) string {
	t.Helper()
	root := t.TempDir()
	for relPath, content := range files {
		path := filepath.Join(root, relPath)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, content, 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func newTestDigestWriter() *DigestWriter {
	return &DigestWriter{
		Counter: metrics.SimpleCounter{},
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestDigestWriter_Write(t *testing.T) {
	assert := assert.New(t)

	root := writeSnapshot(t, map[string][]byte{
		"README.md":  []byte("# hello\n"),
		"src/a.go":   []byte("package src\n"),
		"img/le.png": {0x89, 'P', 'N', 'G', 0x00, 0x01, 0x02, 0x03, 0xff, 0xfe},
	})

	var buf bytes.Buffer
	info, err := newTestDigestWriter().Write(&buf, root, "octo/demo", "main", &Filter{IncludedPaths: []string{""}})
	assert.NoError(err)

	assert.Equal("octo/demo", info.Repo)
	assert.Equal("main", info.Ref)
	assert.Equal(2, info.FileCount)
	assert.Equal(1, info.IgnoredCount, "binary file is skipped")

	out := buf.String()
	assert.Contains(out, "Repository: octo/demo (ref: main)")
	assert.Contains(out, "Total files included: 2")
	assert.Contains(out, "# Directory Structure")
	assert.Contains(out, "└── src/")
	assert.Contains(out, "FILE: README.md")
	assert.Contains(out, "FILE: src/a.go")
	assert.Contains(out, "package src")
	assert.NotContains(out, "le.png")
}

func TestDigestWriter_AppliesFilter(t *testing.T) {
	assert := assert.New(t)

	root := writeSnapshot(t, map[string][]byte{
		"keep/a.txt": []byte("a"),
		"drop/b.txt": []byte("b"),
	})

	var buf bytes.Buffer
	info, err := newTestDigestWriter().Write(&buf, root, "octo/demo", "main", &Filter{IncludedPaths: []string{"keep"}})
	assert.NoError(err)

	assert.Equal(1, info.FileCount)
	assert.Equal(1, info.IgnoredCount)
	assert.Contains(buf.String(), "FILE: keep/a.txt")
	assert.NotContains(buf.String(), "FILE: drop/b.txt")
}

func TestDigestWriter_RespectGitignore(t *testing.T) {
	assert := assert.New(t)

	root := writeSnapshot(t, map[string][]byte{
		".gitignore": []byte("*.log\n"),
		"a.txt":      []byte("a"),
		"noise.log":  []byte("zzz"),
	})

	d := newTestDigestWriter()
	d.RespectGitignore = true

	var buf bytes.Buffer
	info, err := d.Write(&buf, root, "octo/demo", "main", &Filter{IncludedPaths: []string{""}})
	assert.NoError(err)
	assert.Equal(2, info.FileCount, ".gitignore itself and a.txt")
	assert.NotContains(buf.String(), "noise.log")
}

func TestIsBinary(t *testing.T) {
	assert := assert.New(t)

	assert.False(IsBinary([]byte("plain text\nwith lines\n")))
	assert.False(IsBinary(nil))
	assert.False(IsBinary([]byte("unicode: héllo wörld ✓")))
	assert.True(IsBinary([]byte{0x00, 0x01, 0x02, 0x03, 0x04, 0xff, 0xfe, 0xfd}))
}
