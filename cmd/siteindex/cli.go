package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/siteindex"
	"github.com/fwojciec/siteindex/fs"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
	Planner   siteindex.Planner
	Indexer   siteindex.Indexer
	Plans     siteindex.PlanService
	Pages     siteindex.PageService
	Runs      siteindex.RunService
	Search    siteindex.SearchService
	Inspector siteindex.Inspector
	Exporter  *fs.Exporter
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string `help:"Config file path (overrides SITEINDEX_CONFIG)" type:"path"`
	DB      string `name:"db" help:"Database path (overrides SITEINDEX_DB and db_path)"`
	Verbose bool   `short:"v" help:"Log every request and stage to stderr"`

	Plan     PlanCmd     `cmd:"" help:"Discover the URLs of a site without fetching content"`
	Run      RunCmd      `cmd:"" help:"Fetch, chunk and index every URL of a saved plan"`
	Refresh  RefreshCmd  `cmd:"" help:"Plan and run in one step"`
	Search   SearchCmd   `cmd:"" help:"Search indexed pages"`
	Page     PageCmd     `cmd:"" help:"Show a stored page"`
	Sources  SourcesCmd  `cmd:"" help:"List indexed sources"`
	Runs     RunsCmd     `cmd:"" help:"List recorded runs"`
	Tables   TablesCmd   `cmd:"" help:"List database tables"`
	Describe DescribeCmd `cmd:"" help:"Describe a database table"`
	Export   ExportCmd   `cmd:"" help:"Write a source's pages as markdown files"`
	Serve    ServeCmd    `cmd:"" help:"Serve MCP tools over stdio"`
}

// PlanFlags are the plan parameters shared by plan and refresh.
type PlanFlags struct {
	Source   string   `arg:"" help:"Source name"`
	URL      string   `arg:"" help:"Root URL"`
	Scope    string   `short:"s" default:"subpath" help:"Scope mode: page, subpath or domain"`
	MaxPages int      `short:"n" name:"max-pages" default:"25" help:"Maximum number of URLs to plan"`
	Include  []string `short:"i" help:"Only plan URLs matching this regex (repeatable)"`
	Exclude  []string `short:"x" help:"Never plan URLs matching this regex (repeatable)"`
}

func (f *PlanFlags) request() siteindex.PlanRequest {
	return siteindex.PlanRequest{
		SourceName: f.Source,
		URL:        f.URL,
		ScopeMode:  siteindex.ScopeMode(f.Scope),
		MaxPages:   f.MaxPages,
		Include:    f.Include,
		Exclude:    f.Exclude,
	}
}

// PlanCmd is the "plan" subcommand.
type PlanCmd struct {
	PlanFlags `embed:""`
	JSON      bool `help:"Print the plan as JSON"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	PlanID string `arg:"" help:"Plan ID printed by plan"`
}

// RefreshCmd is the "refresh" subcommand.
type RefreshCmd struct {
	PlanFlags `embed:""`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query  string `arg:"" help:"Full-text query"`
	TopK   int    `short:"k" name:"top-k" default:"5" help:"Maximum number of hits"`
	Source string `short:"s" help:"Restrict hits to one source"`
	JSON   bool   `help:"Print hits as JSON"`
}

// PageCmd is the "page" subcommand.
type PageCmd struct {
	Source string `arg:"" help:"Source name"`
	URL    string `arg:"" help:"Page URL"`
}

// SourcesCmd is the "sources" subcommand.
type SourcesCmd struct{}

// RunsCmd is the "runs" subcommand.
type RunsCmd struct {
	Source string `short:"s" help:"Only show runs of this source"`
	Limit  int    `short:"n" default:"10" help:"Maximum number of runs"`
}

// TablesCmd is the "tables" subcommand.
type TablesCmd struct{}

// DescribeCmd is the "describe" subcommand.
type DescribeCmd struct {
	Table string `arg:"" help:"Table name"`
	Limit int    `short:"n" default:"5" help:"Number of sample rows"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	Source string `arg:"" help:"Source name"`
	Dir    string `arg:"" help:"Output directory, replaced on success" type:"path"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct{}
