package textractor

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/hayeah/goo"
)

// Config is the application configuration, parsed from the environment and
// an optional config file via goo.
type Config struct {
	goo.Config
	GitHub  GitHubConfig
	Server  ServerConfig
	Digest  DigestConfig
	Logging LoggingConfig
}

type LoggingConfig struct {
	Debug bool
}

type GitHubConfig struct {
	// Token is a personal access token. Optional, but anonymous requests
	// are rate limited hard.
	Token string
}

type ServerConfig struct {
	Addr string
}

type DigestConfig struct {
	// TokenCounter selects "tiktoken" or the simple bytes/4 estimator.
	TokenCounter     string
	RespectGitignore bool
	DBPath           string
}

// ProvideConfig parses config and fills defaults.
func ProvideConfig() (*Config, error) {
	cfg, err := goo.ParseConfig[Config]("")
	if err != nil {
		return nil, err
	}
	if cfg.GitHub.Token == "" {
		cfg.GitHub.Token = os.Getenv("GITHUB_TOKEN")
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":15001"
	}
	if cfg.Digest.DBPath == "" {
		cfg.Digest.DBPath = "textract.db"
	}
	return cfg, nil
}

// ServeCmd runs the HTTP API.
type ServeCmd struct {
	Addr string `arg:"--addr" help:"Listen address; overrides config"`
}

// PickCmd selects files interactively, then generates.
type PickCmd struct {
	URL       string   `arg:"positional,required" help:"GitHub repository URL"`
	Output    string   `arg:"-o,--output" help:"Write the digest to a file instead of stdout"`
	MaxSizeKB int      `arg:"--max-size-kb" help:"Skip files larger than this many KB"`
	Globs     []string `arg:"--glob,separate" help:"Glob patterns; prefix with ! to exclude"`
}

// GetCmd generates non-interactively.
type GetCmd struct {
	URL       string   `arg:"positional,required" help:"GitHub repository URL"`
	Output    string   `arg:"-o,--output" help:"Write the digest to a file instead of stdout"`
	Include   []string `arg:"--include,separate" help:"Path prefixes to include (default: everything)"`
	MaxSizeKB int      `arg:"--max-size-kb" help:"Skip files larger than this many KB"`
	Globs     []string `arg:"--glob,separate" help:"Glob patterns; prefix with ! to exclude"`
}

// HistoryCmd lists past generation runs.
type HistoryCmd struct{}

// Args defines the command-line arguments with subcommands.
type Args struct {
	Serve   *ServeCmd   `arg:"subcommand:serve" help:"Run the HTTP API"`
	Pick    *PickCmd    `arg:"subcommand:pick" help:"Pick files interactively and generate a digest"`
	Get     *GetCmd     `arg:"subcommand:get" help:"Generate a digest without interaction"`
	History *HistoryCmd `arg:"subcommand:history" help:"List past generation runs"`
}

// App wires the subcommands to the pipeline.
type App struct {
	Args     *Args
	Config   *Config
	Logger   *slog.Logger
	Client   *GitHubClient
	Pipeline *GeneratePipeline
	Store    *HistoryStore
}

// Run dispatches to the selected subcommand.
func (app *App) Run() error {
	ctx := context.Background()
	args := app.Args

	switch {
	case args.Serve != nil:
		addr := app.Config.Server.Addr
		if args.Serve.Addr != "" {
			addr = args.Serve.Addr
		}
		return NewServer(app.Client, app.Pipeline, app.Logger).Start(addr)
	case args.Pick != nil:
		return app.runPick(ctx, args.Pick)
	case args.Get != nil:
		return app.runGet(ctx, args.Get)
	case args.History != nil:
		return app.runHistory()
	default:
		return fmt.Errorf("no subcommand specified, use 'serve', 'pick', 'get', or 'history'")
	}
}

func (app *App) runPick(ctx context.Context, cmd *PickCmd) error {
	ref, err := ParseRepoURL(cmd.URL)
	if err != nil {
		return err
	}
	resolved, entries, err := app.Client.FetchTree(ctx, ref)
	if err != nil {
		return err
	}

	includedPaths, confirmed, err := PickPaths(entries, fmt.Sprintf("%s (ref: %s)", ref, resolved))
	if err != nil {
		return err
	}
	if !confirmed {
		app.Logger.Info("selection aborted")
		return nil
	}

	filter := &Filter{
		MaxSizeKB:     cmd.MaxSizeKB,
		GlobPatterns:  cmd.Globs,
		IncludedPaths: includedPaths,
	}
	return app.generateTo(ctx, cmd.URL, cmd.Output, filter)
}

func (app *App) runGet(ctx context.Context, cmd *GetCmd) error {
	includedPaths := cmd.Include
	if len(includedPaths) == 0 {
		includedPaths = []string{""}
	}
	filter := &Filter{
		MaxSizeKB:     cmd.MaxSizeKB,
		GlobPatterns:  cmd.Globs,
		IncludedPaths: includedPaths,
	}
	return app.generateTo(ctx, cmd.URL, cmd.Output, filter)
}

func (app *App) generateTo(ctx context.Context, url, output string, filter *Filter) error {
	out := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	_, err := app.Pipeline.Run(ctx, out, url, filter)
	return err
}

func (app *App) runHistory() error {
	generations, err := app.Store.List()
	if err != nil {
		return err
	}
	for _, g := range generations {
		fmt.Printf("%d\t%s\t%s (ref: %s)\t%d files, %d ignored, ~%d tokens\n",
			g.ID, g.CreatedAt.Format("2006-01-02 15:04:05"),
			g.Repo, g.Ref, g.FileCount, g.IgnoredCount, g.TokenCount)
	}
	return nil
}
