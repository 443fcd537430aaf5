package textractor

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"
)

// Server exposes the digest pipeline over HTTP: a fast metadata-only tree
// endpoint for building the selection UI, and the long-running generate
// endpoint that returns the flattened document.
type Server struct {
	Client   *GitHubClient
	Pipeline *GeneratePipeline
	Logger   *slog.Logger

	echo *echo.Echo
}

// NewServer builds the echo instance and routes.
func NewServer(client *GitHubClient, pipeline *GeneratePipeline, logger *slog.Logger) *Server {
	s := &Server{
		Client:   client,
		Pipeline: pipeline,
		Logger:   logger,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(slogecho.New(logger))
	e.Use(middleware.Recover())

	e.GET("/api/tree", s.handleTree)
	e.POST("/api/generate", s.handleGenerate)

	s.echo = e
	return s
}

// Start blocks serving HTTP on addr.
func (s *Server) Start(addr string) error {
	s.Logger.Info("listening", "addr", addr)
	return s.echo.Start(addr)
}

// Handler exposes the underlying handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func errorJSON(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"error": message})
}

// statusFor maps upstream failures onto the API's response codes.
func statusFor(err error) (int, string) {
	var statusErr *StatusError
	switch {
	case errors.Is(err, ErrTreeTruncated):
		return http.StatusRequestEntityTooLarge, err.Error()
	case errors.As(err, &statusErr):
		if statusErr.Status == http.StatusNotFound {
			return http.StatusNotFound, "Repository not found or is private. Please check the URL."
		}
		return http.StatusBadGateway, err.Error()
	default:
		return http.StatusBadGateway, err.Error()
	}
}

// handleTree responds quickly with blob metadata only; no contents are
// fetched.
func (s *Server) handleTree(c echo.Context) error {
	url := c.QueryParam("url")
	if url == "" {
		return errorJSON(c, http.StatusBadRequest, "URL parameter is required.")
	}
	ref, err := ParseRepoURL(url)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	_, entries, err := s.Client.FetchTree(c.Request().Context(), ref)
	if err != nil {
		status, msg := statusFor(err)
		return errorJSON(c, status, msg)
	}
	if entries == nil {
		entries = []TreeEntry{}
	}
	return c.JSON(http.StatusOK, entries)
}

// GenerateRequest is the wire payload for the generate endpoint. Filters
// are orthogonal: the inclusion set from the selection tree, a size cap,
// and glob patterns.
type GenerateRequest struct {
	URL     string `json:"url"`
	Filters Filter `json:"filters"`
}

// handleGenerate downloads, filters, and flattens the repository. The
// response is the digest document as plain text.
func (s *Server) handleGenerate(c echo.Context) error {
	var req GenerateRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	if req.URL == "" {
		return errorJSON(c, http.StatusBadRequest, "URL is required.")
	}
	if _, err := ParseRepoURL(req.URL); err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	var buf bytes.Buffer
	if _, err := s.Pipeline.Run(c.Request().Context(), &buf, req.URL, &req.Filters); err != nil {
		status, msg := statusFor(err)
		return errorJSON(c, status, msg)
	}
	return c.Blob(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
}
