package mock

import (
	"context"

	"github.com/fwojciec/siteindex"
)

// Compile-time interface verification.
var (
	_ siteindex.PageService   = (*PageService)(nil)
	_ siteindex.ChunkService  = (*ChunkService)(nil)
	_ siteindex.SearchService = (*SearchService)(nil)
	_ siteindex.Inspector     = (*Inspector)(nil)
)

// PageService is a mock implementation of siteindex.PageService.
type PageService struct {
	UpsertPageFn func(ctx context.Context, page *siteindex.Page) error
	FindPageFn   func(ctx context.Context, sourceName, url string) (*siteindex.Page, error)
	FindPagesFn  func(ctx context.Context, filter siteindex.PageFilter) ([]*siteindex.Page, error)
}

func (s *PageService) UpsertPage(ctx context.Context, page *siteindex.Page) error {
	return s.UpsertPageFn(ctx, page)
}

func (s *PageService) FindPage(ctx context.Context, sourceName, url string) (*siteindex.Page, error) {
	return s.FindPageFn(ctx, sourceName, url)
}

func (s *PageService) FindPages(ctx context.Context, filter siteindex.PageFilter) ([]*siteindex.Page, error) {
	return s.FindPagesFn(ctx, filter)
}

// ChunkService is a mock implementation of siteindex.ChunkService.
type ChunkService struct {
	ReplaceChunksFn func(ctx context.Context, pageID int64, chunks []*siteindex.Chunk) error
	FindChunksFn    func(ctx context.Context, pageID int64) ([]*siteindex.Chunk, error)
}

func (s *ChunkService) ReplaceChunks(ctx context.Context, pageID int64, chunks []*siteindex.Chunk) error {
	return s.ReplaceChunksFn(ctx, pageID, chunks)
}

func (s *ChunkService) FindChunks(ctx context.Context, pageID int64) ([]*siteindex.Chunk, error) {
	return s.FindChunksFn(ctx, pageID)
}

// SearchService is a mock implementation of siteindex.SearchService.
type SearchService struct {
	SearchFn func(ctx context.Context, query string, opts siteindex.SearchOptions) ([]*siteindex.SearchHit, error)
}

func (s *SearchService) Search(ctx context.Context, query string, opts siteindex.SearchOptions) ([]*siteindex.SearchHit, error) {
	return s.SearchFn(ctx, query, opts)
}

// Inspector is a mock implementation of siteindex.Inspector.
type Inspector struct {
	ListTablesFn    func(ctx context.Context) ([]string, error)
	DescribeTableFn func(ctx context.Context, name string, sampleRows int) (*siteindex.TableInfo, error)
	ListSourcesFn   func(ctx context.Context) ([]*siteindex.SourceStats, error)
}

func (i *Inspector) ListTables(ctx context.Context) ([]string, error) {
	return i.ListTablesFn(ctx)
}

func (i *Inspector) DescribeTable(ctx context.Context, name string, sampleRows int) (*siteindex.TableInfo, error) {
	return i.DescribeTableFn(ctx, name, sampleRows)
}

func (i *Inspector) ListSources(ctx context.Context) ([]*siteindex.SourceStats, error) {
	return i.ListSourcesFn(ctx)
}
