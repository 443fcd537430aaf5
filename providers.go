package textractor

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aliok/repo-textractor/internal/metrics"
	"github.com/jmoiron/sqlx"

	_ "github.com/mattn/go-sqlite3" // sqlite driver for the history store
)

// ProvideLogger builds the application logger. Logs go to stderr so digest
// output can be piped from stdout.
func ProvideLogger(cfg *Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Logging.Debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// ProvideCounter selects the token counter from config.
func ProvideCounter(cfg *Config) metrics.Counter {
	return metrics.NewCounter(cfg.Digest.TokenCounter)
}

// ProvideGitHubClient builds the API client with the configured token.
func ProvideGitHubClient(cfg *Config, logger *slog.Logger) *GitHubClient {
	return NewGitHubClient(cfg.GitHub.Token, logger)
}

// ProvideDigestWriter builds the digest generator.
func ProvideDigestWriter(cfg *Config, counter metrics.Counter, logger *slog.Logger) *DigestWriter {
	return &DigestWriter{
		Counter:          counter,
		RespectGitignore: cfg.Digest.RespectGitignore,
		Logger:           logger,
	}
}

// ProvideDB opens the sqlite database backing the history store.
func ProvideDB(cfg *Config) (*sqlx.DB, func(), error) {
	db, err := sqlx.Open("sqlite3", cfg.Digest.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database %s: %w", cfg.Digest.DBPath, err)
	}
	return db, func() { db.Close() }, nil
}

// ProvideHistoryStore builds the history store and runs its migration.
func ProvideHistoryStore(db *sqlx.DB, logger *slog.Logger) (*HistoryStore, error) {
	hs := &HistoryStore{DB: db, Logger: logger}
	if err := hs.Migrate(); err != nil {
		return nil, err
	}
	return hs, nil
}
