package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/siteindex"
	"github.com/fwojciec/siteindex/crawl"
	"github.com/fwojciec/siteindex/fs"
	"github.com/fwojciec/siteindex/goquery"
	"github.com/fwojciec/siteindex/htmltomarkdown"
	sihttp "github.com/fwojciec/siteindex/http"
	"github.com/fwojciec/siteindex/readability"
	sislog "github.com/fwojciec/siteindex/slog"
	"github.com/fwojciec/siteindex/sqlite"
	"github.com/fwojciec/siteindex/toml"
	"github.com/fwojciec/siteindex/trafilatura"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Getenv and HomeDir locate the config file and database.
	// They default to os.Getenv and os.UserHomeDir.
	Getenv  func(string) string
	HomeDir func() (string, error)

	// Fetcher replaces the HTTP fetcher when set.
	Fetcher siteindex.Fetcher

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		Getenv:  os.Getenv,
		HomeDir: os.UserHomeDir,
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments. Errors are reported on
// stderr as "error: <message>" before being returned.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) (err error) {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "error: %s\n", siteindex.ErrorMessage(err))
		}
	}()

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("siteindex"),
		kong.Description("Plan, crawl and search documentation sites."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return siteindex.Errorf(siteindex.EINVALID, "no command specified. Run 'siteindex --help' to see available commands")
	}

	switch args[0] {
	case "help", "--help", "-h":
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return siteindex.Errorf(siteindex.EINVALID, "%s", err)
	}

	loader := &toml.Loader{Getenv: m.flagEnv(cli), HomeDir: m.HomeDir}
	cfg, err := loader.Load()
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	m.DB = sqlite.NewDB(cfg.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set %s or use --db to choose a different database path\n", toml.DBEnv)
		return fmt.Errorf("failed to open database at %q: %w", cfg.DBPath, err)
	}
	defer m.Close()

	m.wire(deps, cfg, logger)

	return kongCtx.Run(deps)
}

// flagEnv returns a Getenv that lets --config and --db take precedence
// over the environment.
func (m *Main) flagEnv(cli *CLI) func(string) string {
	getenv := m.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	return func(key string) string {
		switch {
		case key == toml.ConfigEnv && cli.Config != "":
			return cli.Config
		case key == toml.DBEnv && cli.DB != "":
			return cli.DB
		}
		return getenv(key)
	}
}

// wire builds the services for every command from cfg.
func (m *Main) wire(deps *Dependencies, cfg siteindex.Config, logger *slog.Logger) {
	var fetcher siteindex.Fetcher = m.Fetcher
	if fetcher == nil {
		fetcher = sihttp.NewFetcher(
			sihttp.WithUserAgent(cfg.UserAgent),
			sihttp.WithTimeout(cfg.Timeout),
		)
	}
	fetcher = &crawl.LimitedFetcher{
		Fetcher: fetcher,
		Limiter: crawl.NewDomainLimiter(cfg.RateLimit),
	}
	fetcher = sislog.NewLoggingFetcher(fetcher, logger)

	sitemaps := sislog.NewLoggingSitemapService(
		sihttp.NewSitemapService(fetcher, sihttp.WithMaxSitemaps(cfg.MaxSitemaps)),
		logger,
	)

	var extractor siteindex.Extractor = trafilatura.NewExtractor()
	if cfg.Extractor == siteindex.ExtractorReadability {
		extractor = readability.NewExtractor()
	}
	var converter siteindex.Converter
	if cfg.ContentFormat == siteindex.ContentFormatMarkdown {
		converter = htmltomarkdown.NewConverter()
	}

	plans := sqlite.NewPlanService(m.DB)
	pages := sqlite.NewPageService(m.DB)
	runs := sqlite.NewRunService(m.DB)

	deps.Logger = logger
	deps.Plans = plans
	deps.Pages = pages
	deps.Runs = runs
	deps.Search = sislog.NewLoggingSearchService(sqlite.NewSearchService(m.DB), logger)
	deps.Inspector = sqlite.NewInspector(m.DB)
	deps.Exporter = &fs.Exporter{Pages: pages}
	deps.Planner = sislog.NewLoggingPlanner(&crawl.Planner{
		Sitemaps:        sitemaps,
		Fetcher:         fetcher,
		Links:           goquery.NewLinkExtractor(),
		Plans:           plans,
		MaxSitemapDepth: cfg.MaxSitemapDepth,
	}, logger)
	deps.Indexer = sislog.NewLoggingIndexer(&crawl.Indexer{
		Plans:         plans,
		Pages:         pages,
		Chunks:        sqlite.NewChunkService(m.DB),
		Fetcher:       fetcher,
		Extractor:     extractor,
		Converter:     converter,
		Runs:          runs,
		MaxChunkChars: cfg.MaxChunkChars,
	}, logger)
}
