package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/siteindex"
	"github.com/fwojciec/siteindex/crawl"
)

// Run executes the sources command.
func (c *SourcesCmd) Run(deps *Dependencies) error {
	stats, err := deps.Inspector.ListSources(deps.Ctx)
	if err != nil {
		return err
	}

	if len(stats) == 0 {
		fmt.Fprintln(deps.Stdout, "No sources indexed. Use 'siteindex plan' to start one.")
		return nil
	}

	for _, s := range stats {
		fmt.Fprintf(deps.Stdout, "%s  %d pages  last fetched %s\n",
			s.SourceName, s.PageCount, s.LastFetched.Format(time.RFC3339))
	}
	return nil
}

// Run executes the runs command.
func (c *RunsCmd) Run(deps *Dependencies) error {
	filter := siteindex.RunFilter{Limit: c.Limit}
	if c.Source != "" {
		filter.SourceName = &c.Source
	}

	runs, err := deps.Runs.FindRuns(deps.Ctx, filter)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs recorded.")
		return nil
	}

	for _, r := range runs {
		fmt.Fprintf(deps.Stdout, "%d  %s  %s  %s\n  %s\n",
			r.ID, r.StartedAt.Format(time.RFC3339), r.SourceName, r.PlanID, crawl.FormatRunSummary(r))
	}
	return nil
}

// Run executes the tables command.
func (c *TablesCmd) Run(deps *Dependencies) error {
	tables, err := deps.Inspector.ListTables(deps.Ctx)
	if err != nil {
		return err
	}

	for _, t := range tables {
		fmt.Fprintln(deps.Stdout, t)
	}
	return nil
}

// Run executes the describe command.
func (c *DescribeCmd) Run(deps *Dependencies) error {
	info, err := deps.Inspector.DescribeTable(deps.Ctx, c.Table, c.Limit)
	if err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "%s (%d rows)\n", info.Name, info.RowCount)
	for _, col := range info.Columns {
		var flags string
		if col.PrimaryKey {
			flags += " PRIMARY KEY"
		}
		if col.NotNull {
			flags += " NOT NULL"
		}
		fmt.Fprintf(deps.Stdout, "  %s %s%s\n", col.Name, col.Type, flags)
	}

	if len(info.Sample) == 0 {
		return nil
	}
	fmt.Fprintln(deps.Stdout, "\nSample:")
	return writeJSON(deps, info.Sample)
}
