package textractor

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter is the wire-level filter object sent alongside a generate request.
// The three fields are independent: a file must pass all of them.
type Filter struct {
	// MaxSizeKB rejects files larger than this many kilobytes. Zero means
	// unlimited.
	MaxSizeKB int `json:"maxSizeKb"`

	// GlobPatterns filter by path. Patterns starting with "!" exclude; if
	// any non-negated patterns are present, a path must match at least one.
	GlobPatterns []string `json:"globPatterns"`

	// IncludedPaths is the minimal inclusion set produced by the selection
	// tree. An entry includes that path and everything beneath it; the
	// empty-string entry means "everything". An empty list includes
	// nothing.
	IncludedPaths []string `json:"includedPaths"`
}

// Match reports whether the file at relPath (slash-separated, relative to
// the repository root) with the given size passes the filter.
func (f *Filter) Match(relPath string, size int64) bool {
	if !f.pathIncluded(relPath) {
		return false
	}
	if f.MaxSizeKB > 0 && size > int64(f.MaxSizeKB)*1024 {
		return false
	}
	return f.globsAllow(relPath)
}

// pathIncluded checks relPath against the inclusion set. Entries match on
// whole path segments: "src" covers "src/a.go" but not "src2/a.go".
func (f *Filter) pathIncluded(relPath string) bool {
	for _, p := range f.IncludedPaths {
		if p == "" || p == relPath || strings.HasPrefix(relPath, p+"/") {
			return true
		}
	}
	return false
}

func (f *Filter) globsAllow(relPath string) bool {
	if len(f.GlobPatterns) == 0 {
		return true
	}

	hasPositive := false
	for _, pattern := range f.GlobPatterns {
		if negated, ok := strings.CutPrefix(pattern, "!"); ok {
			if match, err := doublestar.Match(negated, relPath); err == nil && match {
				return false
			}
		} else {
			hasPositive = true
		}
	}
	if !hasPositive {
		return true
	}
	for _, pattern := range f.GlobPatterns {
		if strings.HasPrefix(pattern, "!") {
			continue
		}
		if match, err := doublestar.Match(pattern, relPath); err == nil && match {
			return true
		}
	}
	return false
}
