package fs

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/fwojciec/siteindex"
)

// MarkerFile is written into every committed export directory. A directory
// without it is never replaced.
const MarkerFile = ".siteindex-export"

// FileStore writes pages with atomic update semantics.
// Pages are saved to a temporary directory, then moved into place on Commit.
type FileStore struct {
	baseDir string
	name    string
	tmp     string
}

// NewFileStore creates a new FileStore.
// baseDir is the parent directory, name is the output directory name.
// Files are saved to a fresh hidden directory inside baseDir and moved to
// baseDir/name on Commit.
func NewFileStore(baseDir, name string) *FileStore {
	return &FileStore{
		baseDir: baseDir,
		name:    name,
	}
}

// TempDir returns the staging directory, or "" before the first Save.
func (s *FileStore) TempDir() string {
	return s.tmp
}

func (s *FileStore) finalDir() string {
	return filepath.Join(s.baseDir, s.name)
}

func (s *FileStore) tempDir() (string, error) {
	if s.tmp != "" {
		return s.tmp, nil
	}
	dir, err := os.MkdirTemp(s.baseDir, "."+s.name+".tmp-*")
	if err != nil {
		return "", err
	}
	s.tmp = dir
	return dir, nil
}

// CheckTarget reports whether the output directory may be replaced: it must
// be missing, empty, or a previous export carrying MarkerFile.
func (s *FileStore) CheckTarget() error {
	final := s.finalDir()
	info, err := os.Lstat(final)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	} else if err != nil {
		return err
	}
	if !info.IsDir() {
		return siteindex.Errorf(siteindex.EINVALID, "export target %s is not a directory", final)
	}

	entries, err := os.ReadDir(final)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	if _, err := os.Lstat(filepath.Join(final, MarkerFile)); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return siteindex.Errorf(siteindex.EINVALID, "export target %s is not empty and was not created by an export", final)
}

// Save writes page into the temporary directory and returns its relative path.
func (s *FileStore) Save(page *siteindex.Page) (string, error) {
	relPath, err := URLToPath(page.URL)
	if err != nil {
		return "", err
	}

	tmp, err := s.tempDir()
	if err != nil {
		return "", err
	}

	fullPath := filepath.Join(tmp, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", err
	}

	return relPath, os.WriteFile(fullPath, []byte(FormatPage(page)), 0644)
}

// Commit replaces the output directory with the temporary one. The output
// directory is only removed when CheckTarget allows it.
func (s *FileStore) Commit() error {
	if err := s.CheckTarget(); err != nil {
		return err
	}
	tmp, err := s.tempDir()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(tmp, MarkerFile), nil, 0644); err != nil {
		return err
	}
	if err := os.RemoveAll(s.finalDir()); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.finalDir()); err != nil {
		return err
	}
	s.tmp = ""
	return nil
}

// Abort discards everything saved since the store was created.
func (s *FileStore) Abort() error {
	if s.tmp == "" {
		return nil
	}
	if err := os.RemoveAll(s.tmp); err != nil {
		return err
	}
	s.tmp = ""
	return nil
}
