package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// URLPrefix is where locally stored files are served
const URLPrefix = "/uploads"

// LocalStore keeps files in an afero filesystem served under URLPrefix
type LocalStore struct {
	fs afero.Fs
}

// NewLocalStore creates a store on fs
func NewLocalStore(fs afero.Fs) *LocalStore {
	return &LocalStore{fs: fs}
}

// NewDiskStore creates a store rooted at dir on the OS filesystem
func NewDiskStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return NewLocalStore(afero.NewBasePathFs(afero.NewOsFs(), dir)), nil
}

// Save writes r to a new file under dir
func (s *LocalStore) Save(_ context.Context, dir, contentType string, r io.Reader, _ int64) (string, error) {
	key, err := ObjectKey(dir, contentType)
	if err != nil {
		return "", err
	}

	if err := s.fs.MkdirAll(path.Dir("/"+key), 0o755); err != nil {
		return "", fmt.Errorf("create dir: %w", err)
	}

	f, err := s.fs.Create("/" + key)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		s.fs.Remove("/" + key)
		return "", fmt.Errorf("write file: %w", err)
	}

	return URLPrefix + "/" + key, nil
}

// Delete removes the file behind url. Missing files are not an error.
func (s *LocalStore) Delete(_ context.Context, url string) error {
	key, ok := strings.CutPrefix(url, URLPrefix+"/")
	if !ok || key == "" || strings.Contains(key, "..") {
		return ErrForeignURL
	}

	err := s.fs.Remove("/" + key)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// Handler serves stored files; mount it under URLPrefix with the prefix
// stripped. Directory listings are not served.
func (s *LocalStore) Handler() http.Handler {
	files := http.FileServer(afero.NewHttpFs(s.fs).Dir("/"))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}
