package textractor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// GeneratePipeline groups the services needed to turn a repository URL plus
// a filter into a digest document.
type GeneratePipeline struct {
	Client *GitHubClient
	Digest *DigestWriter
	Store  *HistoryStore
	Logger *slog.Logger
}

// Run resolves the URL's ref, downloads the snapshot, writes the digest to
// w, and records the run in the history store.
func (p *GeneratePipeline) Run(ctx context.Context, w io.Writer, rawURL string, filter *Filter) (*DigestInfo, error) {
	ref, err := ParseRepoURL(rawURL)
	if err != nil {
		return nil, err
	}

	resolved, err := p.Client.ResolveRef(ctx, ref)
	if err != nil {
		return nil, err
	}

	root, cleanup, err := p.Client.DownloadSnapshot(ctx, ref, resolved)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	info, err := p.Digest.Write(w, root, ref.String(), resolved, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to generate digest: %w", err)
	}

	if p.Store != nil {
		if _, err := p.Store.Record(info); err != nil {
			// History is best effort; the digest itself succeeded.
			p.Logger.Warn("failed to record generation", "error", err)
		}
	}

	p.Logger.Info("generated digest",
		"repo", info.Repo, "ref", info.Ref,
		"files", info.FileCount, "ignored", info.IgnoredCount,
		"tokens", info.Stats.Tokens)
	return info, nil
}
