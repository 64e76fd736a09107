package footage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"autotube/config"

	"github.com/stretchr/testify/require"
)

func testAdapter(key, searchURL string) *Adapter {
	cfg := config.Default().Footage
	return &Adapter{
		apiKey:         key,
		searchURL:      searchURL,
		perPage:        cfg.PerPage,
		minFileWidth:   cfg.MinFileWidth,
		searchClient:   &http.Client{Timeout: 5 * time.Second},
		downloadClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestFetch_NoCredentialMakesNoNetworkCall(t *testing.T) {
	var calls int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
	}))
	defer ts.Close()

	a := testAdapter("", ts.URL)
	_, ok := a.Fetch(context.Background(), "ocean", 5, filepath.Join(t.TempDir(), "clip.mp4"))

	require.False(t, ok)
	require.Zero(t, atomic.LoadInt64(&calls))
}

func TestFetch_PicksFirstAdequateCandidateWidestVariant(t *testing.T) {
	var downloaded atomic.Value
	mux := http.NewServeMux()
	ts := httptest.NewServer(mux)
	defer ts.Close()

	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "test-key", r.Header.Get("Authorization"))
		require.Equal(t, "landscape", r.URL.Query().Get("orientation"))
		require.Equal(t, "medium", r.URL.Query().Get("size"))

		resp := searchResponse{Videos: []video{
			{ID: 1, Duration: 3, VideoFiles: []videoFile{{Width: 1920, Link: ts.URL + "/dl/too-short"}}},
			{ID: 2, Duration: 12, VideoFiles: []videoFile{
				{Width: 640, Link: ts.URL + "/dl/sd"},
				{Width: 1280, Link: ts.URL + "/dl/hd"},
				{Width: 1920, Link: ts.URL + "/dl/fhd"},
			}},
			{ID: 3, Duration: 30, VideoFiles: []videoFile{{Width: 3840, Link: ts.URL + "/dl/uhd"}}},
		}}
		json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/dl/", func(w http.ResponseWriter, r *http.Request) {
		downloaded.Store(r.URL.Path)
		fmt.Fprint(w, "fake-video-bytes")
	})

	a := testAdapter("test-key", ts.URL+"/search")
	dest := filepath.Join(t.TempDir(), "clip.mp4")
	path, ok := a.Fetch(context.Background(), "ocean", 5, dest)

	require.True(t, ok)
	require.Equal(t, dest, path)
	// candidate 1 is too short; candidate 2 is the first adequate one, and
	// its widest variant above the floor wins
	require.Equal(t, "/dl/fhd", downloaded.Load())

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, "fake-video-bytes", string(data))
}

func TestFetch_AllCandidatesTooShort(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(searchResponse{Videos: []video{
			{Duration: 2, VideoFiles: []videoFile{{Width: 1920, Link: "http://example.com/x"}}},
			{Duration: 4, VideoFiles: []videoFile{{Width: 1920, Link: "http://example.com/y"}}},
		}})
	}))
	defer ts.Close()

	a := testAdapter("k", ts.URL)
	_, ok := a.Fetch(context.Background(), "ocean", 5, filepath.Join(t.TempDir(), "clip.mp4"))
	require.False(t, ok)
}

func TestFetch_NoVariantWideEnough(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(searchResponse{Videos: []video{
			{Duration: 20, VideoFiles: []videoFile{{Width: 360, Link: "http://example.com/x"}}},
		}})
	}))
	defer ts.Close()

	a := testAdapter("k", ts.URL)
	_, ok := a.Fetch(context.Background(), "ocean", 5, filepath.Join(t.TempDir(), "clip.mp4"))
	require.False(t, ok)
}

func TestFetch_ServerErrorIsAbsentNotError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer ts.Close()

	a := testAdapter("k", ts.URL)
	_, ok := a.Fetch(context.Background(), "ocean", 5, filepath.Join(t.TempDir(), "clip.mp4"))
	require.False(t, ok)
}

func TestFetch_MalformedResponseIsAbsent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>not json</html>")
	}))
	defer ts.Close()

	a := testAdapter("k", ts.URL)
	_, ok := a.Fetch(context.Background(), "ocean", 5, filepath.Join(t.TempDir(), "clip.mp4"))
	require.False(t, ok)
}

func TestBestVariant(t *testing.T) {
	files := []videoFile{
		{Width: 640, Link: "sd"},
		{Width: 2560, Link: "qhd"},
		{Width: 1280, Link: "hd"},
	}
	require.Equal(t, "qhd", bestVariant(files, 720))
	require.Equal(t, "", bestVariant(files, 4000))
	require.Equal(t, "", bestVariant(nil, 720))
}
