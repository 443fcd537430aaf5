package textractor

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// ErrTreeTruncated is returned when the repository is too large for the
// recursive tree API to return in one response.
var ErrTreeTruncated = errors.New("repository is too large to fetch the file tree")

// StatusError carries the upstream HTTP status so the server can map it to
// its own response code.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("github api: %s (status %d)", e.Message, e.Status)
}

// RepoRef identifies a repository plus the kind of ref the URL pointed at.
type RepoRef struct {
	Owner    string
	Repo     string
	RefType  string // "default", "branch", "commit", or "pull"
	RefValue string
}

func (r *RepoRef) String() string {
	return r.Owner + "/" + r.Repo
}

var repoURLPatterns = []struct {
	re      *regexp.Regexp
	refType string
}{
	{regexp.MustCompile(`^https://github\.com/([^/]+)/([^/]+?)(?:\.git)?/?$`), "default"},
	{regexp.MustCompile(`^https://github\.com/([^/]+)/([^/]+)/tree/([^/]+)`), "branch"},
	{regexp.MustCompile(`^https://github\.com/([^/]+)/([^/]+)/commit/([0-9a-fA-F]+)`), "commit"},
	{regexp.MustCompile(`^https://github\.com/([^/]+)/([^/]+)/pull/(\d+)`), "pull"},
}

// ParseRepoURL extracts owner, repo, and ref from the supported GitHub URL
// forms: plain repo, tree/<branch>, commit/<sha>, and pull/<n>.
func ParseRepoURL(url string) (*RepoRef, error) {
	url = strings.TrimSpace(url)
	for _, p := range repoURLPatterns {
		m := p.re.FindStringSubmatch(url)
		if m == nil {
			continue
		}
		ref := &RepoRef{Owner: m[1], Repo: m[2], RefType: p.refType}
		if len(m) > 3 {
			ref.RefValue = m[3]
		}
		return ref, nil
	}
	return nil, fmt.Errorf("invalid or unsupported GitHub URL: %q", url)
}

// TreeEntry is one blob in the repository tree.
type TreeEntry struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// GitHubClient talks to the GitHub REST API. A token is optional but
// strongly recommended to avoid anonymous rate limits.
type GitHubClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewGitHubClient creates a client against api.github.com.
func NewGitHubClient(token string, logger *slog.Logger) *GitHubClient {
	return &GitHubClient{
		BaseURL:    "https://api.github.com",
		Token:      token,
		HTTPClient: &http.Client{Timeout: 5 * time.Minute},
		Logger:     logger,
	}
}

func (c *GitHubClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if c.Token != "" {
		req.Header.Set("Authorization", "token "+c.Token)
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read github response: %w", err)
	}
	c.Logger.Debug("github api request",
		"path", path, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(body, "message").String()
		if msg == "" {
			msg = resp.Status
		}
		return nil, &StatusError{Status: resp.StatusCode, Message: msg}
	}
	return body, nil
}

// ResolveRef determines the concrete ref to fetch: the head sha for a pull
// request, the default branch for a bare repo URL, or the literal value for
// branch/tag/commit URLs.
func (c *GitHubClient) ResolveRef(ctx context.Context, ref *RepoRef) (string, error) {
	switch ref.RefType {
	case "pull":
		body, err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/pulls/%s", ref.Owner, ref.Repo, ref.RefValue))
		if err != nil {
			return "", err
		}
		return gjson.GetBytes(body, "head.sha").String(), nil
	case "default":
		body, err := c.get(ctx, fmt.Sprintf("/repos/%s/%s", ref.Owner, ref.Repo))
		if err != nil {
			return "", err
		}
		return gjson.GetBytes(body, "default_branch").String(), nil
	default:
		return ref.RefValue, nil
	}
}

// FetchTree lists every blob reachable from the resolved ref via the
// recursive tree API. Directories are omitted; the selection tree rebuilds
// them from the blob paths. Returns ErrTreeTruncated when GitHub cannot
// return the full listing in one response.
func (c *GitHubClient) FetchTree(ctx context.Context, ref *RepoRef) (string, []TreeEntry, error) {
	resolved, err := c.ResolveRef(ctx, ref)
	if err != nil {
		return "", nil, err
	}

	body, err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/git/trees/%s?recursive=1", ref.Owner, ref.Repo, resolved))
	if err != nil {
		return "", nil, err
	}
	if gjson.GetBytes(body, "truncated").Bool() {
		return "", nil, ErrTreeTruncated
	}

	var entries []TreeEntry
	gjson.GetBytes(body, "tree").ForEach(func(_, item gjson.Result) bool {
		if item.Get("type").String() == "blob" {
			entries = append(entries, TreeEntry{
				Path: item.Get("path").String(),
				Size: item.Get("size").Int(),
			})
		}
		return true
	})
	return resolved, entries, nil
}

// DownloadSnapshot fetches the zipball for the resolved ref and extracts it
// into a fresh temp directory, returning the path of the archive's single
// top-level folder. The caller removes the directory via cleanup.
func (c *GitHubClient) DownloadSnapshot(ctx context.Context, ref *RepoRef, resolved string) (string, func(), error) {
	body, err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/zipball/%s", ref.Owner, ref.Repo, resolved))
	if err != nil {
		return "", nil, err
	}

	tempDir, err := os.MkdirTemp("", "textract-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(tempDir) }

	if err := extractZip(body, tempDir); err != nil {
		cleanup()
		return "", nil, err
	}

	// GitHub zipballs wrap everything in one generated top-level folder.
	entries, err := os.ReadDir(tempDir)
	if err != nil || len(entries) != 1 || !entries[0].IsDir() {
		cleanup()
		return "", nil, fmt.Errorf("unexpected zipball layout for %s", ref)
	}
	return filepath.Join(tempDir, entries[0].Name()), cleanup, nil
}

func extractZip(data []byte, dest string) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("failed to open zipball: %w", err)
	}
	for _, f := range zr.File {
		target := filepath.Join(dest, filepath.FromSlash(f.Name))
		rel, err := filepath.Rel(dest, target)
		if err != nil || strings.HasPrefix(rel, "..") {
			return fmt.Errorf("zip entry escapes extract dir: %q", f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		out, err := os.Create(target)
		if err != nil {
			rc.Close()
			return err
		}
		_, err = io.Copy(out, rc)
		rc.Close()
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
	}
	return nil
}
