package textractor

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aliok/repo-textractor/ignore"
	"github.com/aliok/repo-textractor/internal/metrics"
)

const fileSeparator = "================================================"

// DigestWriter flattens an extracted repository snapshot into one annotated
// text document: summary header, directory listing, then every surviving
// file's contents.
type DigestWriter struct {
	Counter          metrics.Counter
	RespectGitignore bool
	Logger           *slog.Logger
}

// DigestInfo summarizes one generation run.
type DigestInfo struct {
	Repo         string
	Ref          string
	FileCount    int
	IgnoredCount int
	Stats        metrics.Stats
}

// Write walks the snapshot at root, applies the filter, and writes the
// digest document to w.
func (d *DigestWriter) Write(w io.Writer, root, repo, ref string, filter *Filter) (*DigestInfo, error) {
	var matcher *ignore.Matcher
	if d.RespectGitignore {
		m, err := ignore.NewMatcher(root)
		if err != nil {
			return nil, err
		}
		matcher = m
	}

	included := make(map[string]string)
	ignoredCount := 0

	err := matcher.WalkFiles(root, func(relPath string, info fs.FileInfo) error {
		if !filter.Match(relPath, info.Size()) {
			ignoredCount++
			return nil
		}
		content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(relPath)))
		if err != nil {
			d.Logger.Warn("skipping unreadable file", "path", relPath, "error", err)
			ignoredCount++
			return nil
		}
		if IsBinary(content) {
			ignoredCount++
			return nil
		}
		included[relPath] = string(content)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk snapshot: %w", err)
	}

	paths := make([]string, 0, len(included))
	var stats metrics.Stats
	for path, content := range included {
		paths = append(paths, path)
		stats.Add(d.Counter.Count(content))
	}
	sort.Strings(paths)

	info := &DigestInfo{
		Repo:         repo,
		Ref:          ref,
		FileCount:    len(paths),
		IgnoredCount: ignoredCount,
		Stats:        stats,
	}

	fmt.Fprintln(w, "# Repository Summary")
	fmt.Fprintf(w, "Repository: %s (ref: %s)\n", repo, ref)
	fmt.Fprintf(w, "Total files included: %d\n", info.FileCount)
	fmt.Fprintf(w, "Ignored files: %d\n", info.IgnoredCount)
	fmt.Fprintf(w, "Approximate token count: %d\n", info.Stats.Tokens)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "# Directory Structure")
	if err := WriteTreeDiagram(w, paths); err != nil {
		return nil, err
	}
	fmt.Fprintln(w)

	for _, path := range paths {
		content := included[path]
		fmt.Fprintln(w, fileSeparator)
		fmt.Fprintf(w, "FILE: %s\n", path)
		fmt.Fprintln(w, fileSeparator)
		fmt.Fprint(w, content)
		if !strings.HasSuffix(content, "\n") {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w)
	}
	return info, nil
}

// IsBinary samples the first 100 runes of content and reports whether more
// than 10% are non-printable, which catches compiled artifacts and images
// without needing an extension list.
func IsBinary(content []byte) bool {
	const sampleSize = 100
	var nonPrintable, total int

	for i := 0; i < len(content) && total < sampleSize; {
		r, size := utf8.DecodeRune(content[i:])
		if r == utf8.RuneError && size == 1 {
			nonPrintable++
		} else if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			nonPrintable++
		}
		i += size
		total++
	}
	if total == 0 {
		return false
	}
	return float64(nonPrintable)/float64(total) > 0.1
}
