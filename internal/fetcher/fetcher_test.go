package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestFetcher(t *testing.T, retries int) *Fetcher {
	f := NewFetcher(5*time.Second, retries, "heinscrape-test", zaptest.NewLogger(t))
	f.backoff = func(int) time.Duration { return time.Millisecond }
	return f
}

func TestFetchLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "HeinOnline-1000.html")
	require.NoError(t, os.WriteFile(path, []byte("<html></html>"), 0o644))

	res, err := newTestFetcher(t, 3).Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(res.Body))
	assert.Equal(t, 1, res.Attempts)
}

func TestFetchMissingFile(t *testing.T) {
	_, err := newTestFetcher(t, 3).Fetch(context.Background(), filepath.Join(t.TempDir(), "nope.html"))
	assert.Error(t, err)
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "heinscrape-test", r.Header.Get("User-Agent"))
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	res, err := newTestFetcher(t, 3).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(res.Body))
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestFetchDoesNotRetryNotFound(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := newTestFetcher(t, 3).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://heinonline.org/HOL/x"))
	assert.True(t, IsRemote("http://localhost/x"))
	assert.False(t, IsRemote("pages/HeinOnline-1000.html"))
}

func TestBackoffDuration(t *testing.T) {
	assert.Equal(t, time.Second, backoffDuration(1))
	assert.Equal(t, 4*time.Second, backoffDuration(3))
	assert.Equal(t, 30*time.Second, backoffDuration(10))
}
