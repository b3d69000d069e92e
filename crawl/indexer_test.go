package crawl_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/siteindex"
	"github.com/fwojciec/siteindex/crawl"
	"github.com/fwojciec/siteindex/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore records pages and chunks written through mock services.
type memStore struct {
	pages  map[string]*siteindex.Page
	chunks map[int64][]*siteindex.Chunk
	nextID int64
}

func newMemStore() *memStore {
	return &memStore{pages: map[string]*siteindex.Page{}, chunks: map[int64][]*siteindex.Chunk{}}
}

func (s *memStore) pageService() *mock.PageService {
	return &mock.PageService{
		UpsertPageFn: func(_ context.Context, page *siteindex.Page) error {
			if existing, ok := s.pages[page.URL]; ok {
				page.ID = existing.ID
			} else {
				s.nextID++
				page.ID = s.nextID
			}
			cp := *page
			s.pages[page.URL] = &cp
			return nil
		},
	}
}

func (s *memStore) chunkService() *mock.ChunkService {
	return &mock.ChunkService{
		ReplaceChunksFn: func(_ context.Context, pageID int64, chunks []*siteindex.Chunk) error {
			s.chunks[pageID] = chunks
			return nil
		},
	}
}

func planWith(urls ...string) *mock.PlanService {
	return &mock.PlanService{
		FindPlanByIDFn: func(_ context.Context, id string) (*siteindex.Plan, error) {
			if id != "plan_0123456789ab" {
				return nil, siteindex.Errorf(siteindex.ENOTFOUND, "plan not found")
			}
			return &siteindex.Plan{ID: id, SourceName: "docs", URLs: urls}, nil
		},
	}
}

func htmlFetcher(bodies map[string]string) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) (*siteindex.Response, error) {
			body, ok := bodies[url]
			if !ok {
				return &siteindex.Response{URL: url, StatusCode: 404, ContentType: "text/html"}, nil
			}
			return &siteindex.Response{URL: url, StatusCode: 200, ContentType: "text/html", Body: []byte(body)}, nil
		},
	}
}

// bodyExtractor uses the raw body as text and the first line as title.
func bodyExtractor() *mock.Extractor {
	return &mock.Extractor{
		ExtractFn: func(html string) (*siteindex.ExtractResult, error) {
			title, _, _ := strings.Cut(html, "\n")
			return &siteindex.ExtractResult{Title: title, Text: html, ContentHTML: "<p>" + html + "</p>"}, nil
		},
	}
}

func TestIndexer_Run(t *testing.T) {
	t.Parallel()

	t.Run("returns ENOTFOUND for unknown plan without side effects", func(t *testing.T) {
		t.Parallel()

		ix := &crawl.Indexer{
			Plans: planWith(),
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, _ string) (*siteindex.Response, error) {
					t.Fatal("fetch should not be called")
					return nil, nil
				},
			},
			Runs: &mock.RunService{
				CreateRunFn: func(_ context.Context, _ *siteindex.RunResult) error {
					t.Fatal("run should not be recorded")
					return nil
				},
			},
		}

		result, err := ix.Run(context.Background(), "plan_missing", nil)

		assert.Nil(t, result)
		assert.Equal(t, siteindex.ENOTFOUND, siteindex.ErrorCode(err))
		assert.Equal(t, "Unknown plan_id: plan_missing", siteindex.ErrorMessage(err))
	})

	t.Run("stores pages and chunks in plan order", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		var order []string
		fetcher := htmlFetcher(map[string]string{
			"https://example.com/a": "Alpha\nfirst paragraph",
			"https://example.com/b": "Beta\nsecond paragraph",
		})
		fetch := fetcher.FetchFn
		fetcher.FetchFn = func(ctx context.Context, url string) (*siteindex.Response, error) {
			order = append(order, url)
			return fetch(ctx, url)
		}

		ix := &crawl.Indexer{
			Plans:     planWith("https://example.com/a", "https://example.com/b"),
			Pages:     store.pageService(),
			Chunks:    store.chunkService(),
			Fetcher:   fetcher,
			Extractor: bodyExtractor(),
		}

		result, err := ix.Run(context.Background(), "plan_0123456789ab", nil)

		require.NoError(t, err)
		assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, order)
		assert.Equal(t, "plan_0123456789ab", result.PlanID)
		assert.Equal(t, "docs", result.SourceName)
		assert.Equal(t, 2, result.URLsPlanned)
		assert.Equal(t, 2, result.URLsFetched)
		assert.Equal(t, 2, result.PagesStored)
		assert.Equal(t, 2, result.ChunksStored)
		assert.Equal(t, 0, result.FailureCount)
		assert.NotNil(t, result.Failures)

		page := store.pages["https://example.com/a"]
		require.NotNil(t, page)
		assert.Equal(t, "Alpha", page.Title)
		assert.Equal(t, 200, page.StatusCode)
		assert.Equal(t, "Alpha\nfirst paragraph", page.Content)
		require.Len(t, store.chunks[page.ID], 1)
		assert.Equal(t, "Alpha\nfirst paragraph", store.chunks[page.ID][0].Text)
	})

	t.Run("records pages that produced no HTML as failures", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		ix := &crawl.Indexer{
			Plans:  planWith("https://example.com/missing", "https://example.com/data", "https://example.com/down"),
			Pages:  store.pageService(),
			Chunks: store.chunkService(),
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, url string) (*siteindex.Response, error) {
					switch url {
					case "https://example.com/missing":
						return &siteindex.Response{URL: url, StatusCode: 404, ContentType: "text/html"}, nil
					case "https://example.com/data":
						return &siteindex.Response{URL: url, StatusCode: 200, ContentType: "application/json", Body: []byte("{}")}, nil
					default:
						return nil, errors.New("connection refused")
					}
				},
			},
			Extractor: &mock.Extractor{
				ExtractFn: func(_ string) (*siteindex.ExtractResult, error) {
					t.Fatal("extract should not be called")
					return nil, nil
				},
			},
		}

		result, err := ix.Run(context.Background(), "plan_0123456789ab", nil)

		require.NoError(t, err)
		assert.Equal(t, 3, result.URLsFetched)
		assert.Equal(t, 0, result.PagesStored)
		assert.Equal(t, 3, result.FailureCount)
		assert.Equal(t, []siteindex.Failure{
			{URL: "https://example.com/missing", StatusCode: 404, Error: siteindex.NoHTMLFetched},
			{URL: "https://example.com/data", StatusCode: 200, Error: siteindex.NoHTMLFetched},
			{URL: "https://example.com/down", StatusCode: 0, Error: siteindex.NoHTMLFetched},
		}, result.Failures)

		missing := store.pages["https://example.com/missing"]
		require.NotNil(t, missing, "failed pages are still recorded")
		assert.Equal(t, 404, missing.StatusCode)
		assert.Empty(t, missing.Content)
		assert.Empty(t, store.chunks[missing.ID])

		down := store.pages["https://example.com/down"]
		require.NotNil(t, down)
		assert.Equal(t, 0, down.StatusCode)
	})

	t.Run("clears stale chunks when a page stops producing HTML", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		bodies := map[string]string{"https://example.com/a": "Alpha\ntext"}
		ix := &crawl.Indexer{
			Plans:     planWith("https://example.com/a"),
			Pages:     store.pageService(),
			Chunks:    store.chunkService(),
			Fetcher:   htmlFetcher(bodies),
			Extractor: bodyExtractor(),
		}

		_, err := ix.Run(context.Background(), "plan_0123456789ab", nil)
		require.NoError(t, err)
		id := store.pages["https://example.com/a"].ID
		require.Len(t, store.chunks[id], 1)

		delete(bodies, "https://example.com/a")
		_, err = ix.Run(context.Background(), "plan_0123456789ab", nil)
		require.NoError(t, err)

		assert.Equal(t, id, store.pages["https://example.com/a"].ID)
		assert.Empty(t, store.chunks[id])
	})

	t.Run("reports storage errors while clearing failed pages", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		chunks := store.chunkService()
		chunks.ReplaceChunksFn = func(_ context.Context, _ int64, _ []*siteindex.Chunk) error {
			return errors.New("disk I/O error")
		}
		pages := store.pageService()
		upsert := pages.UpsertPageFn
		pages.UpsertPageFn = func(ctx context.Context, page *siteindex.Page) error {
			if page.URL == "https://example.com/locked" {
				return errors.New("database is locked")
			}
			return upsert(ctx, page)
		}

		ix := &crawl.Indexer{
			Plans:     planWith("https://example.com/gone", "https://example.com/locked"),
			Pages:     pages,
			Chunks:    chunks,
			Fetcher:   htmlFetcher(nil),
			Extractor: bodyExtractor(),
		}

		result, err := ix.Run(context.Background(), "plan_0123456789ab", nil)

		require.NoError(t, err)
		assert.Equal(t, 2, result.URLsFetched)
		assert.Equal(t, []siteindex.Failure{
			{URL: "https://example.com/gone", StatusCode: 404, Error: "disk I/O error"},
			{URL: "https://example.com/locked", StatusCode: 404, Error: "database is locked"},
		}, result.Failures)
	})

	t.Run("continues after extraction and storage failures", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		pages := store.pageService()
		upsert := pages.UpsertPageFn
		pages.UpsertPageFn = func(ctx context.Context, page *siteindex.Page) error {
			if page.URL == "https://example.com/locked" {
				return errors.New("database is locked")
			}
			return upsert(ctx, page)
		}

		ix := &crawl.Indexer{
			Plans:  planWith("https://example.com/broken", "https://example.com/locked", "https://example.com/ok"),
			Pages:  pages,
			Chunks: store.chunkService(),
			Fetcher: htmlFetcher(map[string]string{
				"https://example.com/broken": "broken",
				"https://example.com/locked": "locked",
				"https://example.com/ok":     "ok\nbody",
			}),
			Extractor: &mock.Extractor{
				ExtractFn: func(html string) (*siteindex.ExtractResult, error) {
					if html == "broken" {
						return nil, siteindex.Errorf(siteindex.EINVALID, "empty document")
					}
					return &siteindex.ExtractResult{Text: html}, nil
				},
			},
		}

		result, err := ix.Run(context.Background(), "plan_0123456789ab", nil)

		require.NoError(t, err)
		assert.Equal(t, 3, result.URLsFetched)
		assert.Equal(t, 1, result.PagesStored)
		assert.Equal(t, 2, result.FailureCount)
		require.Len(t, result.Failures, 2)
		assert.Equal(t, "https://example.com/broken", result.Failures[0].URL)
		assert.Contains(t, result.Failures[0].Error, "empty document")
		assert.Equal(t, "https://example.com/locked", result.Failures[1].URL)
		assert.Equal(t, "database is locked", result.Failures[1].Error)
		assert.Contains(t, store.pages, "https://example.com/ok")
	})

	t.Run("caps reported failures but counts all", func(t *testing.T) {
		t.Parallel()

		urls := make([]string, 25)
		for i := range urls {
			urls[i] = "https://example.com/p" + string(rune('a'+i))
		}
		store := newMemStore()
		ix := &crawl.Indexer{
			Plans:     planWith(urls...),
			Pages:     store.pageService(),
			Chunks:    store.chunkService(),
			Fetcher:   htmlFetcher(nil),
			Extractor: bodyExtractor(),
		}

		result, err := ix.Run(context.Background(), "plan_0123456789ab", nil)

		require.NoError(t, err)
		assert.Equal(t, 25, result.FailureCount)
		assert.Len(t, result.Failures, siteindex.MaxReportedFailures)
		assert.Equal(t, urls[0], result.Failures[0].URL)
	})

	t.Run("stores markdown when a converter is configured", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		ix := &crawl.Indexer{
			Plans:     planWith("https://example.com/a", "https://example.com/b"),
			Pages:     store.pageService(),
			Chunks:    store.chunkService(),
			Fetcher:   htmlFetcher(map[string]string{"https://example.com/a": "a", "https://example.com/b": "b"}),
			Extractor: bodyExtractor(),
			Converter: &mock.Converter{
				ConvertFn: func(html string) (string, error) {
					if html == "<p>b</p>" {
						return "", errors.New("unsupported node")
					}
					return "# " + html, nil
				},
			},
		}

		_, err := ix.Run(context.Background(), "plan_0123456789ab", nil)

		require.NoError(t, err)
		assert.Equal(t, "# <p>a</p>", store.pages["https://example.com/a"].Content)
		assert.Equal(t, "b", store.pages["https://example.com/b"].Content, "falls back to text")
		a := store.pages["https://example.com/a"]
		require.Len(t, store.chunks[a.ID], 1)
		assert.Equal(t, "<p>a</p>", store.chunks[a.ID][0].HeadingPath, "markdown chunks carry heading paths")
		b := store.pages["https://example.com/b"]
		require.Len(t, store.chunks[b.ID], 1)
		assert.Empty(t, store.chunks[b.ID][0].HeadingPath)
	})

	t.Run("splits content by max chunk chars", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		ix := &crawl.Indexer{
			Plans:         planWith("https://example.com/a"),
			Pages:         store.pageService(),
			Chunks:        store.chunkService(),
			Fetcher:       htmlFetcher(map[string]string{"https://example.com/a": "aaaa\nbbbb\ncccc"}),
			Extractor:     bodyExtractor(),
			MaxChunkChars: 10,
		}

		result, err := ix.Run(context.Background(), "plan_0123456789ab", nil)

		require.NoError(t, err)
		assert.Equal(t, 2, result.ChunksStored)
	})

	t.Run("reports progress for every URL", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		ix := &crawl.Indexer{
			Plans:     planWith("https://example.com/a", "https://example.com/gone"),
			Pages:     store.pageService(),
			Chunks:    store.chunkService(),
			Fetcher:   htmlFetcher(map[string]string{"https://example.com/a": "a"}),
			Extractor: bodyExtractor(),
		}

		var events []siteindex.Progress
		_, err := ix.Run(context.Background(), "plan_0123456789ab", func(p siteindex.Progress) {
			events = append(events, p)
		})

		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, siteindex.Progress{URL: "https://example.com/a", Completed: 1, Total: 2, Chunks: 1}, events[0])
		assert.Equal(t, 2, events[1].Completed)
		require.NotNil(t, events[1].Failure)
		assert.Equal(t, 404, events[1].Failure.StatusCode)
	})

	t.Run("records the run with timing", func(t *testing.T) {
		t.Parallel()

		start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		calls := 0
		var recorded *siteindex.RunResult
		store := newMemStore()
		ix := &crawl.Indexer{
			Plans:     planWith("https://example.com/a"),
			Pages:     store.pageService(),
			Chunks:    store.chunkService(),
			Fetcher:   htmlFetcher(map[string]string{"https://example.com/a": "a"}),
			Extractor: bodyExtractor(),
			Runs: &mock.RunService{
				CreateRunFn: func(_ context.Context, run *siteindex.RunResult) error {
					run.ID = 7
					recorded = run
					return nil
				},
			},
			Now: func() time.Time {
				calls++
				return start.Add(time.Duration(calls-1) * time.Second)
			},
		}

		result, err := ix.Run(context.Background(), "plan_0123456789ab", nil)

		require.NoError(t, err)
		assert.Same(t, recorded, result)
		assert.Equal(t, int64(7), result.ID)
		assert.Equal(t, start, result.StartedAt)
		assert.True(t, result.FinishedAt.After(result.StartedAt))
		assert.Equal(t, result.FinishedAt.Sub(result.StartedAt), result.Duration)
	})

	t.Run("returns run recording errors", func(t *testing.T) {
		t.Parallel()

		recordErr := errors.New("readonly database")
		ix := &crawl.Indexer{
			Plans: planWith(),
			Runs: &mock.RunService{
				CreateRunFn: func(_ context.Context, _ *siteindex.RunResult) error { return recordErr },
			},
		}

		_, err := ix.Run(context.Background(), "plan_0123456789ab", nil)

		assert.ErrorIs(t, err, recordErr)
	})

	t.Run("stops between URLs when context is canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		store := newMemStore()
		fetched := 0
		ix := &crawl.Indexer{
			Plans:  planWith("https://example.com/a", "https://example.com/b"),
			Pages:  store.pageService(),
			Chunks: store.chunkService(),
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, url string) (*siteindex.Response, error) {
					fetched++
					cancel()
					return &siteindex.Response{URL: url, StatusCode: 200, ContentType: "text/html", Body: []byte("a")}, nil
				},
			},
			Extractor: bodyExtractor(),
		}

		_, err := ix.Run(ctx, "plan_0123456789ab", nil)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, fetched)
	})
}
