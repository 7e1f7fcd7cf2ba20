package download

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

	"github.com/fetchd/fetchd/internal/log"
	"github.com/fetchd/fetchd/internal/security"
)

const testBody = `{"message":"hello from fetchd tests"}`

func newTestFetcher(t *testing.T) *Fetcher {
	t.Helper()
	f, err := NewFetcher(security.NewURL(false), "fetchd-test/1.0", log.NewNop())
	require.NoError(t, err)
	return f
}

func TestNewFetcher(t *testing.T) {
	t.Parallel()

	t.Run("valid dependencies", func(t *testing.T) {
		t.Parallel()
		f, err := NewFetcher(security.NewURL(false), "", log.NewNop())
		require.NoError(t, err)
		assert.NotNil(t, f)
	})

	t.Run("nil validator fails", func(t *testing.T) {
		t.Parallel()
		f, err := NewFetcher(nil, "", log.NewNop())
		assert.Error(t, err)
		assert.Nil(t, f)
	})

	t.Run("nil logger fails", func(t *testing.T) {
		t.Parallel()
		f, err := NewFetcher(security.NewURL(false), "", nil)
		assert.Error(t, err)
		assert.Nil(t, f)
	})
}

func TestFetch_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(testBody))
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	result := newTestFetcher(t).Fetch(context.Background(), Request{
		URL: srv.URL + "/data.json",
		Dir: dir,
	})

	require.True(t, result.Success, "unexpected failure: %s", result.Error)
	assert.Equal(t, "data.json", result.FileName)
	assert.Equal(t, filepath.Join(dir, "data.json"), result.FilePath)
	assert.Equal(t, int64(len(testBody)), result.FileSize)
	assert.Contains(t, result.ContentType, "json")
	assert.Empty(t, result.Error)
	assert.NoError(t, result.Cause)

	content, err := os.ReadFile(result.FilePath)
	require.NoError(t, err)
	assert.Equal(t, testBody, string(content))
}

func TestFetch_BrowserHeaders(t *testing.T) {
	t.Parallel()

	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			gotUA = r.Header.Get("User-Agent")
			gotAccept = r.Header.Get("Accept")
		}
		_, _ = w.Write([]byte("x"))
	}))
	t.Cleanup(srv.Close)

	result := newTestFetcher(t).Fetch(context.Background(), Request{
		URL: srv.URL + "/a.bin",
		Dir: t.TempDir(),
	})

	require.True(t, result.Success)
	assert.Equal(t, "fetchd-test/1.0", gotUA)
	assert.Equal(t, "*/*", gotAccept)
}

func TestFetch_InvalidScheme(t *testing.T) {
	t.Parallel()

	result := newTestFetcher(t).Fetch(context.Background(), Request{
		URL: "ftp://example.com/file.zip",
		Dir: t.TempDir(),
	})

	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Cause, ErrInvalidURL)
	assert.NotEmpty(t, result.Error)
	assert.Empty(t, result.FilePath)
	assert.Zero(t, result.FileSize)
}

func TestFetch_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	result := newTestFetcher(t).Fetch(context.Background(), Request{
		URL: srv.URL + "/missing.pdf",
		Dir: dir,
	})

	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Cause, ErrTransport)
	assert.Contains(t, result.Error, "404")

	_, err := os.Stat(filepath.Join(dir, "missing.pdf"))
	assert.True(t, os.IsNotExist(err), "no file may remain after a failed download")
}

func TestFetch_ProbeRejectsOversized(t *testing.T) {
	t.Parallel()

	var gets atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodHead:
			w.Header().Set("Content-Length", "1048576") // 1 MiB
		case http.MethodGet:
			gets.Add(1)
		}
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	result := newTestFetcher(t).Fetch(context.Background(), Request{
		URL:      srv.URL + "/big.iso",
		Dir:      dir,
		MaxBytes: 1024,
	})

	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Cause, ErrSizeExceeded)
	assert.Contains(t, result.Error, "MB")
	assert.Equal(t, int32(0), gets.Load(), "probe rejection must prevent any body transfer")

	_, err := os.Stat(filepath.Join(dir, "big.iso"))
	assert.True(t, os.IsNotExist(err))
}

func TestFetch_ProbeFailureIsAdvisory(t *testing.T) {
	t.Parallel()

	// Servers that reject HEAD must still be downloadable.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		_, _ = w.Write([]byte(testBody))
	}))
	t.Cleanup(srv.Close)

	result := newTestFetcher(t).Fetch(context.Background(), Request{
		URL: srv.URL + "/data.json",
		Dir: t.TempDir(),
	})

	require.True(t, result.Success, "unexpected failure: %s", result.Error)
	assert.Equal(t, int64(len(testBody)), result.FileSize)
}

func TestFetch_MidStreamSizeExceeded(t *testing.T) {
	t.Parallel()

	// Chunked response with no Content-Length: the probe cannot help,
	// the running total during streaming has to catch it.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		flusher := w.(http.Flusher)
		chunk := make([]byte, 4*1024)
		for range 16 { // 64 KiB total
			_, _ = w.Write(chunk)
			flusher.Flush()
		}
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	result := newTestFetcher(t).Fetch(context.Background(), Request{
		URL:      srv.URL + "/stream.bin",
		Dir:      dir,
		MaxBytes: 16 * 1024,
	})

	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Cause, ErrSizeExceeded)
	assert.Contains(t, result.Error, "transfer reached")

	_, err := os.Stat(filepath.Join(dir, "stream.bin"))
	assert.True(t, os.IsNotExist(err), "partial file must be deleted on size overrun")
}

func TestFetch_MidStreamTransportFailureCleansUp(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		_, _ = w.Write(make([]byte, 16*1024))
		w.(http.Flusher).Flush()
		panic(http.ErrAbortHandler) // drop the connection mid-body
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	result := newTestFetcher(t).Fetch(context.Background(), Request{
		URL: srv.URL + "/broken.bin",
		Dir: dir,
	})

	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Cause, ErrTransport)

	_, err := os.Stat(filepath.Join(dir, "broken.bin"))
	assert.True(t, os.IsNotExist(err), "partial file must be deleted on mid-stream failure")
}

func TestFetch_Timeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte("too late"))
	}))
	t.Cleanup(srv.Close)

	result := newTestFetcher(t).Fetch(context.Background(), Request{
		URL:     srv.URL + "/slow.bin",
		Dir:     t.TempDir(),
		Timeout: 50 * time.Millisecond,
	})

	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Cause, ErrTransport)
}

func TestFetch_CollisionSuffix(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testBody))
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	f := newTestFetcher(t)

	first := f.Fetch(context.Background(), Request{URL: srv.URL + "/data.json", Dir: dir})
	second := f.Fetch(context.Background(), Request{URL: srv.URL + "/data.json", Dir: dir})

	require.True(t, first.Success)
	require.True(t, second.Success)
	assert.Equal(t, "data.json", first.FileName)
	assert.Equal(t, "data_1.json", second.FileName)

	for _, r := range []Result{first, second} {
		_, err := os.Stat(r.FilePath)
		assert.NoError(t, err)
	}
}

func TestFetch_CustomFilenameSanitized(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("x"))
	}))
	t.Cleanup(srv.Close)

	result := newTestFetcher(t).Fetch(context.Background(), Request{
		URL:      srv.URL + "/whatever",
		Dir:      t.TempDir(),
		Filename: `my:report*2026.pdf`,
	})

	require.True(t, result.Success)
	assert.Equal(t, "my_report_2026.pdf", result.FileName)
}

func TestFetch_CreatesDestinationDir(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("x"))
	}))
	t.Cleanup(srv.Close)

	dir := filepath.Join(t.TempDir(), "nested", "deep")
	result := newTestFetcher(t).Fetch(context.Background(), Request{
		URL: srv.URL + "/a.bin",
		Dir: dir,
	})

	require.True(t, result.Success)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

// recordingEmitter captures lifecycle events for assertions.
type recordingEmitter struct {
	starts    atomic.Int32
	completes atomic.Int32
	errors    atomic.Int32
}

func (e *recordingEmitter) OnStart(string)             { e.starts.Add(1) }
func (e *recordingEmitter) OnComplete(string, int64)   { e.completes.Add(1) }
func (e *recordingEmitter) OnError(string, error)      { e.errors.Add(1) }

func TestFetch_EmitsLifecycleEvents(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("x"))
	}))
	t.Cleanup(srv.Close)

	emitter := &recordingEmitter{}
	ctx := ContextWithEmitter(context.Background(), emitter)
	f := newTestFetcher(t)

	f.Fetch(ctx, Request{URL: srv.URL + "/ok.bin", Dir: t.TempDir()})
	f.Fetch(ctx, Request{URL: srv.URL + "/bad", Dir: t.TempDir()})

	assert.Equal(t, int32(2), emitter.starts.Load())
	assert.Equal(t, int32(1), emitter.completes.Load())
	assert.Equal(t, int32(1), emitter.errors.Load())
}
