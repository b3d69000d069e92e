package http_test

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/fwojciec/siteindex"
	sihttp "github.com/fwojciec/siteindex/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSitemapService_DiscoverSitemaps(t *testing.T) {
	t.Parallel()

	t.Run("returns responding candidates then robots directives", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/robots.txt": "User-agent: *\nDisallow: /private/\nSitemap: {{BASE}}/sitemap.xml\nsitemap: {{BASE}}/extra.xml\nSITEMAP: {{BASE}}/extra.xml\n",
			"/sitemap.xml":        urlset("{{BASE}}/a"),
			"/sitemapindex.xml":   urlset("{{BASE}}/b"),
			"/sitemap_index.xml":  "",
			"/sitemap.xml.gz":     urlset("{{BASE}}/c"),
			"/unrelated-page.xml": urlset("{{BASE}}/d"),
		})

		svc := sihttp.NewSitemapService(sihttp.NewFetcher(sihttp.WithClient(srv.Client())))
		got, err := svc.DiscoverSitemaps(context.Background(), srv.URL+"/docs/intro")

		require.NoError(t, err)
		assert.Equal(t, []string{
			srv.URL + "/sitemap.xml",
			srv.URL + "/sitemapindex.xml",
			srv.URL + "/sitemap.xml.gz",
			srv.URL + "/extra.xml",
		}, got)
	})

	t.Run("missing robots.txt yields only candidates", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/sitemap_index.xml": urlset("{{BASE}}/a"),
		})

		svc := sihttp.NewSitemapService(sihttp.NewFetcher(sihttp.WithClient(srv.Client())))
		got, err := svc.DiscoverSitemaps(context.Background(), srv.URL)

		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/sitemap_index.xml"}, got)
	})

	t.Run("returns empty list when nothing is found", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{})

		svc := sihttp.NewSitemapService(sihttp.NewFetcher(sihttp.WithClient(srv.Client())))
		got, err := svc.DiscoverSitemaps(context.Background(), srv.URL)

		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("caps the number of sitemaps", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/robots.txt": "Sitemap: {{BASE}}/one.xml\nSitemap: {{BASE}}/two.xml\nSitemap: {{BASE}}/three.xml\n",
		})

		svc := sihttp.NewSitemapService(
			sihttp.NewFetcher(sihttp.WithClient(srv.Client())),
			sihttp.WithMaxSitemaps(2),
		)
		got, err := svc.DiscoverSitemaps(context.Background(), srv.URL)

		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/one.xml", srv.URL + "/two.xml"}, got)
	})

	t.Run("rejects relative root URL", func(t *testing.T) {
		t.Parallel()

		svc := sihttp.NewSitemapService(sihttp.NewFetcher())
		_, err := svc.DiscoverSitemaps(context.Background(), "/docs")

		assert.Equal(t, siteindex.EINVALID, siteindex.ErrorCode(err))
	})

	t.Run("returns context error when canceled", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		svc := sihttp.NewSitemapService(sihttp.NewFetcher(sihttp.WithClient(srv.Client())))
		_, err := svc.DiscoverSitemaps(ctx, srv.URL)

		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestSitemapService_CollectURLs(t *testing.T) {
	t.Parallel()

	collect := func(t *testing.T, srv *testServer, seeds []string, opts siteindex.CollectOptions) []string {
		t.Helper()
		svc := sihttp.NewSitemapService(sihttp.NewFetcher(sihttp.WithClient(srv.Client())))
		got, err := svc.CollectURLs(context.Background(), seeds, opts)
		require.NoError(t, err)
		return got
	}

	domainOpts := func(srv *testServer, maxPages int) siteindex.CollectOptions {
		return siteindex.CollectOptions{
			Scope:    siteindex.NewScope(siteindex.ScopeDomain, srv.URL),
			MaxPages: maxPages,
			MaxDepth: siteindex.DefaultMaxSitemapDepth,
		}
	}

	t.Run("stops at max pages in discovery order", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/sitemap.xml": sitemapIndex("{{BASE}}/leaf1.xml", "{{BASE}}/leaf2.xml"),
			"/leaf1.xml":   urlset("{{BASE}}/p1", "{{BASE}}/p2", "{{BASE}}/p3"),
			"/leaf2.xml":   urlset("{{BASE}}/p4", "{{BASE}}/p5", "{{BASE}}/p6"),
		})

		got := collect(t, srv, []string{srv.URL + "/sitemap.xml"}, domainOpts(srv, 4))

		assert.Equal(t, []string{srv.URL + "/p1", srv.URL + "/p2", srv.URL + "/p3", srv.URL + "/p4"}, got)
	})

	t.Run("stops fetching once max pages is reached", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/sitemap.xml": sitemapIndex("{{BASE}}/leaf1.xml", "{{BASE}}/leaf2.xml"),
			"/leaf1.xml":   urlset("{{BASE}}/p1", "{{BASE}}/p2", "{{BASE}}/p3"),
			"/leaf2.xml":   urlset("{{BASE}}/p4"),
		})

		collect(t, srv, []string{srv.URL + "/sitemap.xml"}, domainOpts(srv, 2))

		assert.Zero(t, srv.hits("/leaf2.xml"))
	})

	t.Run("visits each sitemap once despite cycles", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/sitemap.xml": sitemapIndex("{{BASE}}/sitemap.xml", "{{BASE}}/other.xml", "{{BASE}}/leaf.xml"),
			"/other.xml":   sitemapIndex("{{BASE}}/sitemap.xml", "{{BASE}}/leaf.xml"),
			"/leaf.xml":    urlset("{{BASE}}/p1"),
		})

		got := collect(t, srv, []string{srv.URL + "/sitemap.xml", srv.URL + "/sitemap.xml"}, domainOpts(srv, 10))

		assert.Equal(t, []string{srv.URL + "/p1"}, got)
		assert.Equal(t, 1, srv.hits("/sitemap.xml"))
		assert.Equal(t, 1, srv.hits("/other.xml"))
		assert.Equal(t, 1, srv.hits("/leaf.xml"))
	})

	t.Run("does not follow indexes beyond max depth", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/d0.xml": sitemapIndex("{{BASE}}/d1.xml"),
			"/d1.xml": sitemapIndex("{{BASE}}/d2.xml"),
			"/d2.xml": urlset("{{BASE}}/deep"),
		})

		opts := domainOpts(srv, 10)
		opts.MaxDepth = 1
		got := collect(t, srv, []string{srv.URL + "/d0.xml"}, opts)

		assert.Empty(t, got)
		assert.Zero(t, srv.hits("/d2.xml"))

		opts.MaxDepth = 2
		got = collect(t, srv, []string{srv.URL + "/d0.xml"}, opts)
		assert.Equal(t, []string{srv.URL + "/deep"}, got)
	})

	t.Run("zero max depth visits only seeds", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/sitemap.xml": sitemapIndex("{{BASE}}/leaf.xml"),
			"/leaf.xml":    urlset("{{BASE}}/p1"),
			"/seed.xml":    urlset("{{BASE}}/p0"),
		})

		opts := domainOpts(srv, 10)
		opts.MaxDepth = 0
		got := collect(t, srv, []string{srv.URL + "/sitemap.xml", srv.URL + "/seed.xml"}, opts)

		assert.Equal(t, []string{srv.URL + "/p0"}, got)
		assert.Zero(t, srv.hits("/leaf.xml"))
	})

	t.Run("skips malformed and unrecognized sitemaps", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/sitemap.xml": sitemapIndex("{{BASE}}/broken.xml", "{{BASE}}/feed.xml", "{{BASE}}/missing.xml", "{{BASE}}/leaf.xml"),
			"/broken.xml":  "<urlset><url><loc>{{BASE}}/nope</loc></url><</urlset>",
			"/feed.xml":    `<rss><channel><item><loc>{{BASE}}/rss</loc></item></channel></rss>`,
			"/leaf.xml":    urlset("{{BASE}}/ok"),
		})

		got := collect(t, srv, []string{srv.URL + "/sitemap.xml"}, domainOpts(srv, 10))

		assert.Equal(t, []string{srv.URL + "/ok"}, got)
	})

	t.Run("decompresses gzip sitemaps", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/sitemap.xml.gz": urlset("{{BASE}}/gz1", "{{BASE}}/gz2"),
		})

		got := collect(t, srv, []string{srv.URL + "/sitemap.xml.gz"}, domainOpts(srv, 10))

		assert.Equal(t, []string{srv.URL + "/gz1", srv.URL + "/gz2"}, got)
	})

	t.Run("skips gzip sitemap that fails to decompress", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/sitemap.xml": sitemapIndex("{{BASE}}/bad.xml.gz", "{{BASE}}/leaf.xml"),
			"/leaf.xml":    urlset("{{BASE}}/p1"),
		})
		srv.raw["/bad.xml.gz"] = []byte("not gzip at all")

		got := collect(t, srv, []string{srv.URL + "/sitemap.xml"}, domainOpts(srv, 10))

		assert.Equal(t, []string{srv.URL + "/p1"}, got)
	})

	t.Run("matches elements regardless of namespace prefix", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/index.xml": `<?xml version="1.0"?>
<sm:sitemapindex xmlns:sm="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sm:sitemap><sm:loc>{{BASE}}/leaf.xml</sm:loc></sm:sitemap>
</sm:sitemapindex>`,
			"/leaf.xml": `<?xml version="1.0"?>
<ns0:urlset xmlns:ns0="http://www.sitemaps.org/schemas/sitemap/0.9">
  <ns0:url><ns0:loc> {{BASE}}/prefixed </ns0:loc></ns0:url>
</ns0:urlset>`,
		})

		got := collect(t, srv, []string{srv.URL + "/index.xml"}, domainOpts(srv, 10))

		assert.Equal(t, []string{srv.URL + "/prefixed"}, got)
	})

	t.Run("normalizes and deduplicates page URLs", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/one.xml": urlset("{{BASE}}/a/", "{{BASE}}/a#top", "{{BASE}}/b"),
			"/two.xml": urlset("{{BASE}}/b/", "{{BASE}}/c"),
		})

		got := collect(t, srv, []string{srv.URL + "/one.xml", srv.URL + "/two.xml"}, domainOpts(srv, 10))

		assert.Equal(t, []string{srv.URL + "/a", srv.URL + "/b", srv.URL + "/c"}, got)
	})

	t.Run("filters by scope and rules", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/sitemap.xml": urlset(
				"{{BASE}}/docs/intro",
				"{{BASE}}/docs/internal/debug",
				"{{BASE}}/blog/post",
				"https://elsewhere.example.com/docs/x",
				"{{BASE}}/docs/guide",
			),
		})

		rules, err := siteindex.CompileRules(nil, []string{`/internal/`})
		require.NoError(t, err)

		got := collect(t, srv, []string{srv.URL + "/sitemap.xml"}, siteindex.CollectOptions{
			Scope:    siteindex.NewScope(siteindex.ScopeSubpath, srv.URL+"/docs/"),
			Rules:    rules,
			MaxPages: 10,
			MaxDepth: 3,
		})

		assert.Equal(t, []string{srv.URL + "/docs/intro", srv.URL + "/docs/guide"}, got)
	})

	t.Run("returns context error when canceled", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{"/sitemap.xml": urlset("{{BASE}}/a")})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		svc := sihttp.NewSitemapService(sihttp.NewFetcher(sihttp.WithClient(srv.Client())))
		_, err := svc.CollectURLs(ctx, []string{srv.URL + "/sitemap.xml"}, domainOpts(srv, 10))

		require.ErrorIs(t, err, context.Canceled)
	})
}

func urlset(locs ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, loc := range locs {
		b.WriteString("  <url><loc>" + loc + "</loc></url>\n")
	}
	b.WriteString("</urlset>")
	return b.String()
}

func sitemapIndex(locs ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, loc := range locs {
		b.WriteString("  <sitemap><loc>" + loc + "</loc></sitemap>\n")
	}
	b.WriteString("</sitemapindex>")
	return b.String()
}

type testServer struct {
	*httptest.Server

	// raw holds bodies served verbatim, bypassing templating and gzip.
	raw map[string][]byte

	mu     sync.Mutex
	counts map[string]int
}

func (s *testServer) hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[path]
}

// newTestServer creates a test HTTP server with the given path->content mapping.
// Content strings may contain {{BASE}} which is replaced with the server URL.
// Paths ending in .gz are served gzip-compressed.
func newTestServer(t *testing.T, content map[string]string) *testServer {
	t.Helper()

	ts := &testServer{raw: map[string][]byte{}, counts: map[string]int{}}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.mu.Lock()
		ts.counts[r.URL.Path]++
		raw, isRaw := ts.raw[r.URL.Path]
		ts.mu.Unlock()

		if isRaw {
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write(raw)
			return
		}

		body, ok := content[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		body = strings.ReplaceAll(body, "{{BASE}}", ts.URL)

		switch {
		case r.URL.Path == "/robots.txt":
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte(body))
		case strings.HasSuffix(r.URL.Path, ".gz"):
			w.Header().Set("Content-Type", "application/gzip")
			_, _ = w.Write(gzipBytes(body))
		default:
			w.Header().Set("Content-Type", "application/xml")
			_, _ = w.Write([]byte(body))
		}
	}))
	t.Cleanup(ts.Close)

	return ts
}

func gzipBytes(s string) []byte {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, _ = zw.Write([]byte(s))
	_ = zw.Close()
	return buf.Bytes()
}
