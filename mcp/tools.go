package mcp

import (
	"context"
	"time"

	"github.com/fwojciec/siteindex"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// PlanInput is the input schema for plan_index and refresh.
type PlanInput struct {
	SourceName string   `json:"source_name" jsonschema:"unique identifier for the documentation source, 3-33 chars, letters, digits, underscores and hyphens, starting with a letter"`
	URL        string   `json:"url" jsonschema:"root URL to start indexing from"`
	ScopeMode  string   `json:"scope_mode,omitempty" jsonschema:"page (single page), subpath (pages under this path, default) or domain (entire host)"`
	MaxPages   int      `json:"max_pages,omitempty" jsonschema:"maximum number of pages to plan (default 25)"`
	Include    []string `json:"include,omitempty" jsonschema:"regex patterns; only matching URLs are planned"`
	Exclude    []string `json:"exclude,omitempty" jsonschema:"regex patterns; matching URLs are never planned"`
}

func (in PlanInput) request() siteindex.PlanRequest {
	return siteindex.PlanRequest{
		SourceName: in.SourceName,
		URL:        in.URL,
		ScopeMode:  siteindex.ScopeMode(in.ScopeMode),
		MaxPages:   in.MaxPages,
		Include:    in.Include,
		Exclude:    in.Exclude,
	}
}

// PlanOutput describes a saved plan.
type PlanOutput struct {
	PlanID     string   `json:"plan_id"`
	SourceName string   `json:"source_name"`
	RootURL    string   `json:"root_url"`
	ScopeMode  string   `json:"scope_mode"`
	MaxPages   int      `json:"max_pages"`
	Include    []string `json:"include"`
	Exclude    []string `json:"exclude"`
	URLCount   int      `json:"url_count"`
	URLs       []string `json:"urls"`
	Note       string   `json:"note"`
}

func planOutput(p *siteindex.Plan) PlanOutput {
	return PlanOutput{
		PlanID:     p.ID,
		SourceName: p.SourceName,
		RootURL:    p.RootURL,
		ScopeMode:  string(p.Scope.Mode),
		MaxPages:   p.MaxPages,
		Include:    nonNil(p.Include),
		Exclude:    nonNil(p.Exclude),
		URLCount:   len(p.URLs),
		URLs:       nonNil(p.URLs),
		Note:       "Review the URLs, then call run_index with plan_id.",
	}
}

// RunInput is the input schema for run_index.
type RunInput struct {
	PlanID string `json:"plan_id" jsonschema:"plan ID returned by plan_index"`
}

// FailureOutput describes a URL that could not be indexed.
type FailureOutput struct {
	URL        string `json:"url"`
	StatusCode int    `json:"status_code"`
	Error      string `json:"error"`
}

// RunOutput summarizes an executed plan.
type RunOutput struct {
	PlanID       string          `json:"plan_id"`
	SourceName   string          `json:"source_name"`
	StartedAt    string          `json:"started_at"`
	FinishedAt   string          `json:"finished_at"`
	DurationSec  float64         `json:"duration_sec"`
	URLsPlanned  int             `json:"urls_planned"`
	URLsFetched  int             `json:"urls_fetched"`
	PagesStored  int             `json:"pages_stored"`
	ChunksStored int             `json:"chunks_stored"`
	FailureCount int             `json:"failure_count"`
	Failures     []FailureOutput `json:"failures"`
	Next         string          `json:"next"`
}

func runOutput(r *siteindex.RunResult) RunOutput {
	out := RunOutput{
		PlanID:       r.PlanID,
		SourceName:   r.SourceName,
		StartedAt:    r.StartedAt.Format(time.RFC3339),
		FinishedAt:   r.FinishedAt.Format(time.RFC3339),
		DurationSec:  r.Duration.Seconds(),
		URLsPlanned:  r.URLsPlanned,
		URLsFetched:  r.URLsFetched,
		PagesStored:  r.PagesStored,
		ChunksStored: r.ChunksStored,
		FailureCount: r.FailureCount,
		Failures:     make([]FailureOutput, 0, len(r.Failures)),
		Next:         "Use search with a query to retrieve passages with citations.",
	}
	for _, f := range r.Failures {
		out.Failures = append(out.Failures, FailureOutput{URL: f.URL, StatusCode: f.StatusCode, Error: f.Error})
	}
	return out
}

// RefreshOutput holds the plan and run of a refresh.
type RefreshOutput struct {
	Plan PlanOutput `json:"plan"`
	Run  RunOutput  `json:"run"`
}

// SearchInput is the input schema for search.
type SearchInput struct {
	Query      string `json:"query" jsonschema:"full-text query; FTS5 syntax such as phrases and prefix* is supported"`
	TopK       int    `json:"top_k,omitempty" jsonschema:"maximum number of hits to return (default 5)"`
	SourceName string `json:"source_name,omitempty" jsonschema:"restrict hits to one source; all sources when omitted"`
}

// HitOutput is a single search hit with its citation.
type HitOutput struct {
	ChunkID     int64   `json:"chunk_id"`
	Text        string  `json:"text"`
	HeadingPath string  `json:"heading_path,omitempty"`
	SourceName  string  `json:"source_name"`
	URL         string  `json:"url"`
	Title       string  `json:"title,omitempty"`
	FetchedAt   string  `json:"fetched_at"`
	Score       float64 `json:"score"`
}

// SearchOutput is the output schema for search.
type SearchOutput struct {
	Query      string      `json:"query"`
	TopK       int         `json:"top_k"`
	SourceName string      `json:"source_name,omitempty"`
	Hits       []HitOutput `json:"hits"`
}

// PageInput is the input schema for get_page.
type PageInput struct {
	SourceName string `json:"source_name" jsonschema:"source the page was indexed under"`
	URL        string `json:"url" jsonschema:"URL of the page"`
}

// PageOutput is stored page content.
type PageOutput struct {
	SourceName  string `json:"source_name"`
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	FetchedAt   string `json:"fetched_at"`
	StatusCode  int    `json:"status_code,omitempty"`
	ContentText string `json:"content_text"`
}

// TablesOutput lists stored tables.
type TablesOutput struct {
	Tables []string `json:"tables"`
}

// DescribeInput is the input schema for db_describe_table.
type DescribeInput struct {
	Table string `json:"table" jsonschema:"table name as returned by db_list_tables"`
	Limit *int   `json:"limit,omitempty" jsonschema:"number of sample rows (default 5)"`
}

// ColumnOutput describes a table column.
type ColumnOutput struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	NotNull    bool   `json:"not_null"`
	Default    string `json:"default,omitempty"`
	PrimaryKey bool   `json:"primary_key"`
}

// TableOutput describes a table.
type TableOutput struct {
	Table    string           `json:"table"`
	Columns  []ColumnOutput   `json:"columns"`
	RowCount int              `json:"row_count"`
	Sample   []map[string]any `json:"sample"`
}

// SourceOutput summarizes one indexed source.
type SourceOutput struct {
	SourceName   string `json:"source_name"`
	PageCount    int    `json:"page_count"`
	FirstFetched string `json:"first_fetched"`
	LastFetched  string `json:"last_fetched"`
}

// SourcesOutput lists indexed sources.
type SourcesOutput struct {
	Sources []SourceOutput `json:"sources"`
}

// EmptyInput is the input schema for tools without parameters.
type EmptyInput struct{}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "plan_index",
		Description: "Plan an index run without fetching page content. Returns the exact list of URLs that run_index will fetch.",
	}, s.handlePlanIndex)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "run_index",
		Description: "Execute a saved plan: fetch, extract, chunk and store every planned URL.",
	}, s.handleRunIndex)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search indexed documentation with full-text search ranked by BM25.",
	}, s.handleSearch)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_page",
		Description: "Return stored page content without fetching it again.",
	}, s.handleGetPage)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "refresh",
		Description: "Plan and run in one call, skipping the review step.",
	}, s.handleRefresh)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "db_list_tables",
		Description: "List the tables of the index database.",
	}, s.handleListTables)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "db_describe_table",
		Description: "Describe a table's columns and row count with sample rows.",
	}, s.handleDescribeTable)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_sources",
		Description: "List indexed sources with page counts and fetch times.",
	}, s.handleListSources)
}

func (s *Server) handlePlanIndex(ctx context.Context, _ *mcp.CallToolRequest, in PlanInput) (*mcp.CallToolResult, PlanOutput, error) {
	plan, err := s.svc.Planner.Plan(ctx, in.request())
	if err != nil {
		return nil, PlanOutput{}, s.toolError("plan_index", err)
	}
	return nil, planOutput(plan), nil
}

func (s *Server) handleRunIndex(ctx context.Context, _ *mcp.CallToolRequest, in RunInput) (*mcp.CallToolResult, RunOutput, error) {
	result, err := s.runShared(ctx, in.PlanID)
	if err != nil {
		return nil, RunOutput{}, s.toolError("run_index", err)
	}
	return nil, runOutput(result), nil
}

func (s *Server) handleRefresh(ctx context.Context, _ *mcp.CallToolRequest, in PlanInput) (*mcp.CallToolResult, RefreshOutput, error) {
	plan, err := s.svc.Planner.Plan(ctx, in.request())
	if err != nil {
		return nil, RefreshOutput{}, s.toolError("refresh", err)
	}
	result, err := s.runShared(ctx, plan.ID)
	if err != nil {
		return nil, RefreshOutput{}, s.toolError("refresh", err)
	}
	return nil, RefreshOutput{Plan: planOutput(plan), Run: runOutput(result)}, nil
}

func (s *Server) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, in SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	topK := in.TopK
	if topK <= 0 {
		topK = siteindex.DefaultSearchLimit
	}

	hits, err := s.svc.Search.Search(ctx, in.Query, siteindex.SearchOptions{SourceName: in.SourceName, Limit: topK})
	if err != nil {
		return nil, SearchOutput{}, s.toolError("search", err)
	}

	out := SearchOutput{Query: in.Query, TopK: topK, SourceName: in.SourceName, Hits: make([]HitOutput, 0, len(hits))}
	for _, h := range hits {
		out.Hits = append(out.Hits, HitOutput{
			ChunkID:     h.ChunkID,
			Text:        h.Text,
			HeadingPath: h.HeadingPath,
			SourceName:  h.SourceName,
			URL:         h.URL,
			Title:       h.Title,
			FetchedAt:   h.FetchedAt.Format(time.RFC3339),
			Score:       h.Score,
		})
	}
	return nil, out, nil
}

func (s *Server) handleGetPage(ctx context.Context, _ *mcp.CallToolRequest, in PageInput) (*mcp.CallToolResult, PageOutput, error) {
	page, err := s.svc.Pages.FindPage(ctx, in.SourceName, in.URL)
	if err != nil {
		return nil, PageOutput{}, s.toolError("get_page", err)
	}
	return nil, PageOutput{
		SourceName:  page.SourceName,
		URL:         page.URL,
		Title:       page.Title,
		FetchedAt:   page.FetchedAt.Format(time.RFC3339),
		StatusCode:  page.StatusCode,
		ContentText: page.Content,
	}, nil
}

func (s *Server) handleListTables(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, TablesOutput, error) {
	tables, err := s.svc.Inspector.ListTables(ctx)
	if err != nil {
		return nil, TablesOutput{}, s.toolError("db_list_tables", err)
	}
	return nil, TablesOutput{Tables: nonNil(tables)}, nil
}

func (s *Server) handleDescribeTable(ctx context.Context, _ *mcp.CallToolRequest, in DescribeInput) (*mcp.CallToolResult, TableOutput, error) {
	limit := siteindex.DefaultSampleRows
	if in.Limit != nil {
		limit = *in.Limit
	}

	info, err := s.svc.Inspector.DescribeTable(ctx, in.Table, limit)
	if err != nil {
		return nil, TableOutput{}, s.toolError("db_describe_table", err)
	}

	out := TableOutput{
		Table:    info.Name,
		Columns:  make([]ColumnOutput, 0, len(info.Columns)),
		RowCount: info.RowCount,
		Sample:   info.Sample,
	}
	if out.Sample == nil {
		out.Sample = []map[string]any{}
	}
	for _, c := range info.Columns {
		out.Columns = append(out.Columns, ColumnOutput{
			Name:       c.Name,
			Type:       c.Type,
			NotNull:    c.NotNull,
			Default:    c.DefaultValue,
			PrimaryKey: c.PrimaryKey,
		})
	}
	return nil, out, nil
}

func (s *Server) handleListSources(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, SourcesOutput, error) {
	stats, err := s.svc.Inspector.ListSources(ctx)
	if err != nil {
		return nil, SourcesOutput{}, s.toolError("list_sources", err)
	}

	out := SourcesOutput{Sources: make([]SourceOutput, 0, len(stats))}
	for _, st := range stats {
		out.Sources = append(out.Sources, SourceOutput{
			SourceName:   st.SourceName,
			PageCount:    st.PageCount,
			FirstFetched: st.FirstFetched.Format(time.RFC3339),
			LastFetched:  st.LastFetched.Format(time.RFC3339),
		})
	}
	return nil, out, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
