package fs

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/siteindex"
)

// exportBatchSize is the number of pages read per FindPages call.
const exportBatchSize = 100

// ExportResult summarizes an export.
type ExportResult struct {
	Dir     string   `json:"dir"`
	Written []string `json:"written"`
	Skipped int      `json:"skipped"`
}

// Exporter writes a source's stored pages as markdown files.
type Exporter struct {
	Pages siteindex.PageService
}

// Export writes every page of sourceName that has content into dir,
// replacing dir only once all pages are written. Pages without content
// are skipped. On error dir is left untouched.
//
// dir must be missing, empty, or a previous export. The filesystem root,
// the home directory and the working directory or any of its parents are
// refused.
func (e *Exporter) Export(ctx context.Context, sourceName, dir string) (_ *ExportResult, err error) {
	if err := siteindex.ValidateSourceName(sourceName); err != nil {
		return nil, err
	}
	dir, err = exportDir(dir)
	if err != nil {
		return nil, err
	}

	store := NewFileStore(filepath.Dir(dir), filepath.Base(dir))
	if err := store.CheckTarget(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dir), 0755); err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = store.Abort()
		}
	}()

	result := &ExportResult{Dir: dir, Written: []string{}}
	for offset := 0; ; offset += exportBatchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pages, err := e.Pages.FindPages(ctx, siteindex.PageFilter{
			SourceName: &sourceName,
			Offset:     offset,
			Limit:      exportBatchSize,
		})
		if err != nil {
			return nil, err
		}

		for _, page := range pages {
			if strings.TrimSpace(page.Content) == "" {
				result.Skipped++
				continue
			}
			rel, err := store.Save(page)
			if err != nil {
				return nil, err
			}
			result.Written = append(result.Written, rel)
		}

		if len(pages) < exportBatchSize {
			break
		}
	}

	if len(result.Written) == 0 {
		return nil, siteindex.Errorf(siteindex.ENOTFOUND, "no indexed pages for source %q", sourceName)
	}

	if err := store.Commit(); err != nil {
		return nil, err
	}
	return result, nil
}

// exportDir resolves dir to an absolute path and refuses locations whose
// replacement would take unrelated files with it.
func exportDir(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", siteindex.Errorf(siteindex.EINVALID, "export directory required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	if filepath.Dir(abs) == abs {
		return "", siteindex.Errorf(siteindex.EINVALID, "export directory %s is a filesystem root", abs)
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" && contains(abs, filepath.Clean(home)) {
		return "", siteindex.Errorf(siteindex.EINVALID, "export directory %s contains the home directory", abs)
	}
	if wd, err := os.Getwd(); err == nil && contains(abs, wd) {
		return "", siteindex.Errorf(siteindex.EINVALID, "export directory %s contains the working directory", abs)
	}
	return abs, nil
}

// contains reports whether path lies at or below dir.
func contains(dir, path string) bool {
	if dir == path {
		return true
	}
	return strings.HasPrefix(path, strings.TrimSuffix(dir, string(filepath.Separator))+string(filepath.Separator))
}
