package textractor

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aliok/repo-textractor/internal/metrics"
	"github.com/stretchr/testify/assert"
)

func newTestServer(t *testing.T, zipball []byte) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := newStubClient(t, newGitHubStub(t, zipball))

	pipeline := &GeneratePipeline{
		Client: client,
		Digest: &DigestWriter{Counter: metrics.SimpleCounter{}, Logger: logger},
		Logger: logger,
	}
	return NewServer(client, pipeline, logger)
}

func TestServer_Tree(t *testing.T) {
	assert := assert.New(t)

	server := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tree?url=https://github.com/octo/demo", nil)
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(http.StatusOK, rec.Code)
	assert.JSONEq(`[
		{"path": "README.md", "size": 8},
		{"path": "src/a.go", "size": 12}
	]`, rec.Body.String())
}

func TestServer_Tree_MissingURL(t *testing.T) {
	assert := assert.New(t)

	server := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tree", nil))
	assert.Equal(http.StatusBadRequest, rec.Code)
	assert.Contains(rec.Body.String(), "URL parameter is required")
}

func TestServer_Tree_InvalidURL(t *testing.T) {
	assert := assert.New(t)

	server := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tree?url=https://example.com/x", nil))
	assert.Equal(http.StatusBadRequest, rec.Code)
}

func TestServer_Tree_NotFound(t *testing.T) {
	assert := assert.New(t)

	server := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tree?url=https://github.com/octo/missing", nil))
	assert.Equal(http.StatusNotFound, rec.Code)
	assert.Contains(rec.Body.String(), "Repository not found")
}

func TestServer_Tree_Truncated(t *testing.T) {
	assert := assert.New(t)

	server := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tree?url=https://github.com/octo/huge", nil))
	assert.Equal(http.StatusRequestEntityTooLarge, rec.Code)
}

func TestServer_Generate(t *testing.T) {
	assert := assert.New(t)

	zipball := makeZipball(t, "octo-demo-abc123", map[string]string{
		"README.md":   "# demo\n",
		"src/a.go":    "package src\n",
		"src/big.txt": strings.Repeat("x", 4096),
	})
	server := newTestServer(t, zipball)

	body := `{
		"url": "https://github.com/octo/demo",
		"filters": {
			"maxSizeKb": 2,
			"globPatterns": [],
			"includedPaths": [""]
		}
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(http.StatusOK, rec.Code)
	out := rec.Body.String()
	assert.Contains(out, "Repository: octo/demo (ref: main)")
	assert.Contains(out, "FILE: README.md")
	assert.Contains(out, "FILE: src/a.go")
	assert.NotContains(out, "big.txt", "size filter applies")
}

func TestServer_Generate_SubsetSelection(t *testing.T) {
	assert := assert.New(t)

	zipball := makeZipball(t, "octo-demo-abc123", map[string]string{
		"README.md": "# demo\n",
		"src/a.go":  "package src\n",
	})
	server := newTestServer(t, zipball)

	body := `{
		"url": "https://github.com/octo/demo",
		"filters": {"includedPaths": ["src"]}
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(http.StatusOK, rec.Code)
	assert.Contains(rec.Body.String(), "FILE: src/a.go")
	assert.NotContains(rec.Body.String(), "FILE: README.md")
}

func TestServer_Generate_MissingURL(t *testing.T) {
	assert := assert.New(t)

	server := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{"filters": {}}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(http.StatusBadRequest, rec.Code)
	assert.Contains(rec.Body.String(), "URL is required")
}
