package textractor

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Generation is one recorded digest run.
type Generation struct {
	ID           int64     `db:"id"`
	Repo         string    `db:"repo"`
	Ref          string    `db:"ref"`
	FileCount    int       `db:"file_count"`
	IgnoredCount int       `db:"ignored_count"`
	TokenCount   int       `db:"token_count"`
	CreatedAt    time.Time `db:"created_at"`
}

// HistoryStore persists past generation runs in sqlite.
type HistoryStore struct {
	DB     *sqlx.DB
	Logger *slog.Logger
}

// Migrate creates the schema if it does not exist yet.
func (hs *HistoryStore) Migrate() error {
	_, err := hs.DB.Exec(`
		CREATE TABLE IF NOT EXISTS generations (
			id INTEGER PRIMARY KEY,
			repo TEXT NOT NULL,
			ref TEXT NOT NULL,
			file_count INTEGER NOT NULL,
			ignored_count INTEGER NOT NULL,
			token_count INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to migrate history store: %w", err)
	}
	return nil
}

// Record inserts a finished run.
func (hs *HistoryStore) Record(info *DigestInfo) (int64, error) {
	result, err := hs.DB.Exec(
		"INSERT INTO generations (repo, ref, file_count, ignored_count, token_count, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		info.Repo, info.Ref, info.FileCount, info.IgnoredCount, info.Stats.Tokens, time.Now(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record generation: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	hs.Logger.Debug("recorded generation", "id", id, "repo", info.Repo, "ref", info.Ref)
	return id, nil
}

// List returns runs newest first.
func (hs *HistoryStore) List() ([]Generation, error) {
	var generations []Generation
	err := hs.DB.Select(&generations, "SELECT * FROM generations ORDER BY id DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list generations: %w", err)
	}
	return generations, nil
}
