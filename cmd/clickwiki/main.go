// Package main is the entry point for the clickwiki CLI tool.
//
// clickwiki mirrors ClickUp documents into a folder of markdown files and
// rewrites the links between pages into relative file paths. Documents
// linked from the seeds are mirrored too, up to a configurable depth.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/maruel/clickwiki/internal/clickup"
	"github.com/maruel/clickwiki/internal/config"
	"github.com/maruel/clickwiki/internal/gitmirror"
	"github.com/maruel/clickwiki/internal/syncer"
)

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "clickwiki: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	version := flag.Bool("version", false, "Print version and exit")
	configPath := flag.String("config", config.DefaultPath, "YAML configuration file")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	output := flag.String("output", "", "Output directory (overrides output_path)")
	maxDepth := flag.Int("max-depth", 0, "Max cross-document hops from the seeds, -1 for unlimited (overrides max_document_depth)")
	pageDepth := flag.Int("page-depth", 0, "Max page depth fetched per document, -1 for unlimited (overrides max_page_fetch_depth)")
	debugMode := flag.Bool("debug", false, "Dump the catalog and log every rewritten link")
	useGit := flag.Bool("git", false, "Commit the mirror to a git repository in the output directory")
	dryRun := flag.Bool("dry-run", false, "Print the seed documents' page trees as JSON without writing anything")
	history := flag.Int("history", 0, "Print the last N mirror commits of the output directory and exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: clickwiki [flags] <document URL>...\n")
		fmt.Fprintf(flag.CommandLine.Output(), "       clickwiki -history N [flags]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *version {
		printVersion()
		return nil
	}
	if *history < 0 {
		return fmt.Errorf("-history must be >= 0, got %d", *history)
	}
	if flag.NArg() == 0 && *history == 0 {
		flag.Usage()
		return syncer.ErrNoSeeds
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()
	ll := &slog.LevelVar{}
	ll.Set(slog.LevelInfo)
	logger := slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      ll,
		TimeFormat: "15:04:05.000", // Like time.TimeOnly plus milliseconds.
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			val := a.Value.Any()
			skip := false
			switch t := val.(type) {
			case string:
				skip = t == ""
			case bool:
				skip = !t
			case uint64:
				skip = t == 0
			case int64:
				skip = t == 0
			case float64:
				skip = t == 0
			case time.Time:
				skip = t.IsZero()
			case time.Duration:
				skip = t == 0
			case nil:
				skip = true
			}
			if skip {
				return slog.Attr{}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv(os.Getenv)

	// Explicit flags win over the file.
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	if set["output"] {
		cfg.OutputPath = *output
	}
	if set["max-depth"] {
		cfg.MaxDocumentDepth = *maxDepth
	}
	if set["page-depth"] {
		cfg.MaxPageFetchDepth = *pageDepth
	}
	if set["debug"] {
		cfg.Debug = *debugMode
	}
	if set["git"] {
		cfg.Git.Enabled = *useGit
	}
	if *history > 0 {
		return showHistory(ctx, &cfg, *history)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	switch *logLevel {
	case "debug":
		ll.Set(slog.LevelDebug)
	case "info":
	case "warn":
		ll.Set(slog.LevelWarn)
	case "error":
		ll.Set(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level: %q", *logLevel)
	}
	if cfg.Debug {
		ll.Set(slog.LevelDebug)
	}

	client := clickup.NewClient(ctx, clickup.Options{
		APIKey:            cfg.ClickUp.APIKey,
		AccessToken:       cfg.ClickUp.AccessToken,
		BaseURL:           cfg.ClickUp.APIURL,
		RequestsPerMinute: cfg.ClickUp.RequestsPerMinute,
	})
	progress := &syncer.CLIProgress{
		Out: os.Stdout,
		Err: os.Stderr,
	}
	s := syncer.New(client, syncer.Options{
		OutputDir:        cfg.OutputPath,
		Host:             cfg.ClickUp.Host,
		MaxPageDepth:     cfg.MaxPageFetchDepth,
		MaxDocumentDepth: cfg.MaxDocumentDepth,
		Debug:            cfg.Debug,
	}, progress)

	if *dryRun {
		docs, err := s.Preview(ctx, flag.Args()...)
		if err != nil {
			return fmt.Errorf("dry run failed: %w", err)
		}
		data, err := json.MarshalIndent(docs, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	var repo *gitmirror.Repo
	if cfg.Git.Enabled {
		if repo, err = gitmirror.Open(ctx, cfg.OutputPath, cfg.Git.AuthorName, cfg.Git.AuthorEmail); err != nil {
			return err
		}
	}

	stats, err := s.Run(ctx, flag.Args()...)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	fmt.Printf("\nOutput: %s\n", cfg.OutputPath)

	if repo != nil {
		msg := fmt.Sprintf("Sync %d documents\n\n%d pages, %d links rewritten in %d files.\n", stats.Documents, stats.Pages, stats.LinksRewritten, stats.FilesRewritten)
		h, err := repo.CommitAll(ctx, msg)
		if err != nil {
			return err
		}
		if h != "" {
			slog.InfoContext(ctx, "Committed mirror", "commit", h)
		}
	}

	if stats.Errors > 0 {
		return fmt.Errorf("%d errors occurred during sync", stats.Errors)
	}
	return nil
}

// showHistory prints the most recent mirror commits without touching the
// network.
func showHistory(ctx context.Context, cfg *config.Config, n int) error {
	if cfg.OutputPath == "" {
		return errors.New("output_path is required")
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputPath, ".git")); err != nil {
		return fmt.Errorf("%s is not a git mirror: %w", cfg.OutputPath, err)
	}
	repo, err := gitmirror.Open(ctx, cfg.OutputPath, cfg.Git.AuthorName, cfg.Git.AuthorEmail)
	if err != nil {
		return err
	}
	commits, err := repo.History(ctx, n)
	if err != nil {
		return err
	}
	for _, c := range commits {
		fmt.Printf("%s %s %-20s %s\n", c.Hash[:12], c.When.Format(time.DateTime), c.Author, c.Message)
	}
	return nil
}

func printVersion() {
	version, goVersion, revision, dirty := getBuildInfo()
	fmt.Printf("clickwiki %s\n", version)
	fmt.Printf("  Go version: %s\n", goVersion)
	fmt.Printf("  Revision:   %s\n", revision)
	if dirty {
		fmt.Printf("  Modified:   true\n")
	}
}

func getBuildInfo() (version, goVersion, revision string, dirty bool) {
	version = "unknown"
	goVersion = "unknown"
	revision = "unknown"
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	version = info.Main.Version
	if version == "" || version == "(devel)" {
		version = "dev"
	}
	goVersion = info.GoVersion
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	return
}
