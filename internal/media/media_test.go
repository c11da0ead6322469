package media

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/findosh/showroom/internal/config"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestExtension(t *testing.T) {
	ext, err := Extension("image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, ".jpg", ext)

	_, err = Extension("application/pdf")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestSniff(t *testing.T) {
	contentType, r, err := Sniff(bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)

	all, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, all, "sniffing must not consume the stream")

	contentType, _, err = Sniff(strings.NewReader("%PDF-1.7"))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
}

func TestLocalStore(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewLocalStore(fs)
	ctx := context.Background()

	url, err := store.Save(ctx, "vehicles", "image/png", bytes.NewReader(pngHeader), int64(len(pngHeader)))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/vehicles/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	key := strings.TrimPrefix(url, URLPrefix)
	data, err := afero.ReadFile(fs, key)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	t.Run("serves file", func(t *testing.T) {
		h := http.StripPrefix(URLPrefix, store.Handler())
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, pngHeader, rec.Body.Bytes())
	})

	t.Run("no directory listing", func(t *testing.T) {
		h := http.StripPrefix(URLPrefix, store.Handler())
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/vehicles/", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	require.NoError(t, store.Delete(ctx, url))
	exists, err := afero.Exists(fs, key)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, store.Delete(ctx, url), "deleting twice is fine")
	assert.ErrorIs(t, store.Delete(ctx, "https://elsewhere/x.png"), ErrForeignURL)
	assert.ErrorIs(t, store.Delete(ctx, "/uploads/../etc/passwd"), ErrForeignURL)
}

func TestLocalStore_RejectsUnsupportedType(t *testing.T) {
	store := NewLocalStore(afero.NewMemMapFs())

	_, err := store.Save(context.Background(), "banners", "text/html", strings.NewReader("<html>"), 6)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

type s3Request struct {
	method string
	path   string
}

func TestS3Store(t *testing.T) {
	var mu sync.Mutex
	var requests []s3Request

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		mu.Lock()
		requests = append(requests, s3Request{r.Method, r.URL.Path})
		mu.Unlock()

		switch r.Method {
		case http.MethodPut:
			w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
			w.WriteHeader(http.StatusOK)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotImplemented)
		}
	}))
	defer srv.Close()

	cfg := config.S3Config{
		Endpoint:      srv.URL,
		AccessKey:     "access",
		SecretKey:     "secret",
		Bucket:        "cars",
		Region:        "us-east-1",
		PublicBaseURL: "https://cdn.showroom.test/",
	}
	client, err := newMinioClient(cfg)
	require.NoError(t, err)
	store := newS3Store(client, cfg)
	ctx := context.Background()

	url, err := store.Save(ctx, "vehicles", "image/png", bytes.NewReader(pngHeader), int64(len(pngHeader)))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://cdn.showroom.test/vehicles/"), url)

	key := strings.TrimPrefix(url, "https://cdn.showroom.test/")
	require.NoError(t, store.Delete(ctx, url))
	assert.ErrorIs(t, store.Delete(ctx, "/uploads/x.png"), ErrForeignURL)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, requests, 2)
	assert.Equal(t, s3Request{http.MethodPut, "/cars/" + key}, requests[0])
	assert.Equal(t, s3Request{http.MethodDelete, "/cars/" + key}, requests[1])
}
