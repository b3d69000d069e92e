package crawl

import (
	"context"
	"strings"
	"time"

	"github.com/fwojciec/siteindex"
)

var _ siteindex.Indexer = (*Indexer)(nil)

// Indexer executes saved plans one URL at a time.
type Indexer struct {
	Plans     siteindex.PlanService
	Pages     siteindex.PageService
	Chunks    siteindex.ChunkService
	Fetcher   siteindex.Fetcher
	Extractor siteindex.Extractor

	// Converter, when set, stores page content as Markdown converted from
	// the extracted HTML instead of plain text.
	Converter siteindex.Converter

	// Runs records finished runs. Optional.
	Runs siteindex.RunService

	// MaxChunkChars bounds chunk size; zero selects the default.
	MaxChunkChars int

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Run fetches, extracts, chunks and stores every URL of the plan in order.
func (ix *Indexer) Run(ctx context.Context, planID string, progress siteindex.ProgressFunc) (*siteindex.RunResult, error) {
	plan, err := ix.Plans.FindPlanByID(ctx, planID)
	if err != nil {
		if siteindex.ErrorCode(err) == siteindex.ENOTFOUND {
			return nil, siteindex.Errorf(siteindex.ENOTFOUND, "Unknown plan_id: %s", planID)
		}
		return nil, err
	}

	result := &siteindex.RunResult{
		PlanID:      plan.ID,
		SourceName:  plan.SourceName,
		StartedAt:   ix.now(),
		URLsPlanned: len(plan.URLs),
		Failures:    []siteindex.Failure{},
	}

	for i, url := range plan.URLs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		chunks, failure := ix.indexURL(ctx, plan.SourceName, url, result)
		if failure != nil {
			result.AddFailure(*failure)
		}

		if progress != nil {
			progress(siteindex.Progress{
				URL:       url,
				Completed: i + 1,
				Total:     len(plan.URLs),
				Chunks:    chunks,
				Failure:   failure,
			})
		}
	}

	result.FinishedAt = ix.now()
	result.Duration = result.FinishedAt.Sub(result.StartedAt)

	if ix.Runs != nil {
		if err := ix.Runs.CreateRun(ctx, result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// indexURL processes one planned URL and returns the number of chunks
// stored, or the failure that stopped it. Every URL counts as fetched,
// whatever the outcome of the request.
func (ix *Indexer) indexURL(ctx context.Context, sourceName, url string, result *siteindex.RunResult) (int, *siteindex.Failure) {
	result.URLsFetched++

	resp, err := ix.Fetcher.Fetch(ctx, url)
	if err != nil || !resp.OK() || !resp.IsHTML() {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		failure := &siteindex.Failure{URL: url, StatusCode: status, Error: siteindex.NoHTMLFetched}
		if err := ix.storeEmpty(ctx, sourceName, url, status); err != nil {
			failure.Error = err.Error()
		}
		return 0, failure
	}

	extracted, err := ix.Extractor.Extract(string(resp.Body))
	if err != nil {
		failure := &siteindex.Failure{URL: url, StatusCode: resp.StatusCode, Error: err.Error()}
		if err := ix.storeEmpty(ctx, sourceName, url, resp.StatusCode); err != nil {
			failure.Error = err.Error()
		}
		return 0, failure
	}

	content, markdown := ix.content(extracted)
	page := &siteindex.Page{
		SourceName: sourceName,
		URL:        url,
		Title:      extracted.Title,
		FetchedAt:  ix.now(),
		StatusCode: resp.StatusCode,
		Content:    content,
	}
	if err := ix.Pages.UpsertPage(ctx, page); err != nil {
		return 0, &siteindex.Failure{URL: url, StatusCode: resp.StatusCode, Error: err.Error()}
	}
	result.PagesStored++

	chunks := siteindex.ChunkText(page.Content, ix.MaxChunkChars)
	if markdown {
		siteindex.SetHeadingPaths(chunks)
	}
	if err := ix.Chunks.ReplaceChunks(ctx, page.ID, chunks); err != nil {
		return 0, &siteindex.Failure{URL: url, StatusCode: resp.StatusCode, Error: err.Error()}
	}
	result.ChunksStored += len(chunks)

	return len(chunks), nil
}

// content returns the text to store for an extracted page and whether it is
// markdown. Markdown is used when a converter is configured and conversion
// succeeds.
func (ix *Indexer) content(r *siteindex.ExtractResult) (string, bool) {
	if ix.Converter != nil && r.ContentHTML != "" {
		if md, err := ix.Converter.Convert(r.ContentHTML); err == nil && strings.TrimSpace(md) != "" {
			return md, true
		}
	}
	return strings.TrimSpace(r.Text), false
}

// storeEmpty records a page with no content and drops its chunks so stale
// text from an earlier run is no longer searchable.
func (ix *Indexer) storeEmpty(ctx context.Context, sourceName, url string, status int) error {
	page := &siteindex.Page{
		SourceName: sourceName,
		URL:        url,
		FetchedAt:  ix.now(),
		StatusCode: status,
	}
	if err := ix.Pages.UpsertPage(ctx, page); err != nil {
		return err
	}
	return ix.Chunks.ReplaceChunks(ctx, page.ID, nil)
}

func (ix *Indexer) now() time.Time {
	if ix.Now != nil {
		return ix.Now().UTC()
	}
	return time.Now().UTC()
}
