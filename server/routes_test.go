package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"autotube/jobs"
	"autotube/types"

	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	mu     sync.Mutex
	topics []string
	done   chan struct{}
}

func (s *stubRunner) Run(ctx context.Context, jobID, topic string) {
	s.mu.Lock()
	s.topics = append(s.topics, topic)
	s.mu.Unlock()
	if s.done != nil {
		s.done <- struct{}{}
	}
}

type stubUploader struct {
	result *types.PublishResult
	err    error
}

func (s stubUploader) Run(ctx context.Context, videoPath, title, description string, tags []string) (*types.PublishResult, error) {
	return s.result, s.err
}

func testConfig(t *testing.T) (Config, *jobs.Store, *stubRunner) {
	t.Helper()
	store := jobs.NewStore()
	runner := &stubRunner{done: make(chan struct{}, 4)}
	cfg := Config{
		Port:      0,
		OutputDir: t.TempDir(),
		Store:     store,
		Runner:    runner,
		Uploader:  stubUploader{result: &types.PublishResult{ID: "abc", URL: "https://www.youtube.com/watch?v=abc"}},
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		StartTime: time.Now(),
	}
	return cfg, store, runner
}

func postJSON(t *testing.T, router http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	router.ServeHTTP(rr, req)
	return rr
}

func waitFor(t *testing.T, runner *stubRunner) {
	t.Helper()
	select {
	case <-runner.done:
	case <-time.After(2 * time.Second):
		t.Fatal("pipeline runner was not invoked")
	}
}

func TestGenerate(t *testing.T) {
	cfg, store, runner := testConfig(t)
	router := NewRouter(cfg)

	rr := postJSON(t, router, "/api/generate", map[string]string{"topic": "black holes"})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp generateResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.NotEmpty(t, resp.JobID)

	job, ok := store.Get(resp.JobID)
	require.True(t, ok)
	require.Equal(t, "black holes", job.Topic)

	waitFor(t, runner)
}

func TestGenerate_EmptyTopic(t *testing.T) {
	cfg, _, _ := testConfig(t)
	router := NewRouter(cfg)

	rr := postJSON(t, router, "/api/generate", map[string]string{"topic": "   "})
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStatus_UnknownJob(t *testing.T) {
	cfg, _, _ := testConfig(t)
	router := NewRouter(cfg)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/status/nope", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestStatus_ReturnsJob(t *testing.T) {
	cfg, store, _ := testConfig(t)
	router := NewRouter(cfg)

	job := store.Create("volcanoes")
	store.Update(job.ID, func(j *jobs.Job) {
		j.Status = jobs.StatusReady
		j.Progress = 100
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/status/"+job.ID, nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var got jobs.Job
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	require.Equal(t, jobs.StatusReady, got.Status)
	require.Equal(t, "volcanoes", got.Topic)
}

func TestUpload_NoRenderedVideo(t *testing.T) {
	cfg, store, _ := testConfig(t)
	router := NewRouter(cfg)

	job := store.Create("volcanoes")
	rr := postJSON(t, router, "/api/upload", uploadRequest{JobID: job.ID, Title: "t"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpload_Success(t *testing.T) {
	cfg, store, _ := testConfig(t)
	router := NewRouter(cfg)

	job := store.Create("volcanoes")
	jobDir := filepath.Join(cfg.OutputDir, job.ID)
	require.NoError(t, os.MkdirAll(jobDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(jobDir, "final_video.mp4"), []byte("video"), 0644))

	rr := postJSON(t, router, "/api/upload", uploadRequest{JobID: job.ID, Title: "t", Description: "d"})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp uploadResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.True(t, resp.Success)
	require.Equal(t, "https://www.youtube.com/watch?v=abc", resp.YouTubeURL)

	got, _ := store.Get(job.ID)
	require.Equal(t, jobs.StatusUploaded, got.Status)
	require.Equal(t, resp.YouTubeURL, got.YouTubeURL)
}

func TestUpload_Failure(t *testing.T) {
	cfg, store, _ := testConfig(t)
	cfg.Uploader = stubUploader{err: errors.New("quota exceeded")}
	router := NewRouter(cfg)

	job := store.Create("volcanoes")
	jobDir := filepath.Join(cfg.OutputDir, job.ID)
	require.NoError(t, os.MkdirAll(jobDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(jobDir, "final_video.mp4"), []byte("video"), 0644))

	rr := postJSON(t, router, "/api/upload", uploadRequest{JobID: job.ID, Title: "t"})
	require.Equal(t, http.StatusInternalServerError, rr.Code)

	got, _ := store.Get(job.ID)
	require.Equal(t, jobs.StatusUploadFailed, got.Status)
}

func TestRegenerate_AppendsFeedback(t *testing.T) {
	cfg, store, runner := testConfig(t)
	router := NewRouter(cfg)

	job := store.Create("volcanoes")
	store.Update(job.ID, func(j *jobs.Job) {
		j.Status = jobs.StatusReady
		j.VideoURL = "/outputs/x/final_video.mp4"
	})

	rr := postJSON(t, router, "/api/regenerate", regenerateRequest{JobID: job.ID, Feedback: "more lava"})
	require.Equal(t, http.StatusOK, rr.Code)

	waitFor(t, runner)
	runner.mu.Lock()
	defer runner.mu.Unlock()
	require.Equal(t, []string{"volcanoes. Feedback: more lava"}, runner.topics)

	got, _ := store.Get(job.ID)
	require.Equal(t, jobs.StatusStarting, got.Status)
	require.Empty(t, got.VideoURL)
}

func TestRegenerate_UnknownJob(t *testing.T) {
	cfg, _, _ := testConfig(t)
	router := NewRouter(cfg)

	rr := postJSON(t, router, "/api/regenerate", regenerateRequest{JobID: "nope"})
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHealth(t *testing.T) {
	cfg, _, _ := testConfig(t)
	router := NewRouter(cfg)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp healthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Equal(t, "ok", resp.Status)
}
