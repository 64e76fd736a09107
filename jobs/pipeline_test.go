package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"autotube/types"

	"github.com/stretchr/testify/require"
)

type stubResearcher struct{}

func (stubResearcher) Run(ctx context.Context, topic string) *types.ResearchData {
	return &types.ResearchData{Topic: topic, CombinedText: "stub research"}
}

type stubWriter struct {
	script *types.Script
	err    error
}

func (s stubWriter) Run(ctx context.Context, topic string, research *types.ResearchData) (*types.Script, error) {
	return s.script, s.err
}

type stubVoice struct {
	err error
}

func (s stubVoice) Run(ctx context.Context, text, outPath string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if err := os.WriteFile(outPath, []byte("audio"), 0644); err != nil {
		return "", err
	}
	return outPath, nil
}

type stubAssembler struct {
	err error
}

func (s stubAssembler) CreateVideo(ctx context.Context, script *types.Script, audioPath, jobDir string) (string, string, error) {
	if s.err != nil {
		return "", "", s.err
	}
	video := filepath.Join(jobDir, "final_video.mp4")
	thumb := filepath.Join(jobDir, "thumbnail.jpg")
	os.WriteFile(video, []byte("video"), 0644)
	os.WriteFile(thumb, []byte("thumb"), 0644)
	return video, thumb, nil
}

func testScript() *types.Script {
	return &types.Script{
		Title:     "Test Video",
		Narration: "words",
		Scenes:    []types.Scene{{ID: 1, Duration: 5}},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunner_HappyPath(t *testing.T) {
	store := NewStore()
	job := store.Create("tea")

	r := NewRunner(store, t.TempDir(), stubResearcher{}, stubWriter{script: testScript()}, stubVoice{}, stubAssembler{}, testLogger())
	r.Run(context.Background(), job.ID, job.Topic)

	got, _ := store.Get(job.ID)
	require.Equal(t, StatusReady, got.Status)
	require.Equal(t, 100, got.Progress)
	require.Empty(t, got.Error)
	require.NotNil(t, got.Script)
	require.Equal(t, "/outputs/"+job.ID+"/final_video.mp4", got.VideoURL)
	require.Equal(t, "/outputs/"+job.ID+"/thumbnail.jpg", got.ThumbnailURL)
	require.Equal(t, "/outputs/"+job.ID+"/narration.mp3", got.AudioURL)
}

func TestRunner_ScriptFailureReportsStage(t *testing.T) {
	store := NewStore()
	job := store.Create("tea")

	r := NewRunner(store, t.TempDir(), stubResearcher{}, stubWriter{err: errors.New("model said no")}, stubVoice{}, stubAssembler{}, testLogger())
	r.Run(context.Background(), job.ID, job.Topic)

	got, _ := store.Get(job.ID)
	require.Equal(t, StatusError, got.Status)
	require.Contains(t, got.Error, "script generation")
	require.Contains(t, got.Error, "model said no")
	require.Empty(t, got.VideoURL, "no partial video may be exposed")
}

func TestRunner_VoiceFailureHalts(t *testing.T) {
	store := NewStore()
	job := store.Create("tea")

	r := NewRunner(store, t.TempDir(), stubResearcher{}, stubWriter{script: testScript()}, stubVoice{err: errors.New("tts down")}, stubAssembler{}, testLogger())
	r.Run(context.Background(), job.ID, job.Topic)

	got, _ := store.Get(job.ID)
	require.Equal(t, StatusError, got.Status)
	require.Contains(t, got.Error, "voice synthesis")
}

func TestRunner_AssemblyFailureReportsStage(t *testing.T) {
	store := NewStore()
	job := store.Create("tea")

	r := NewRunner(store, t.TempDir(), stubResearcher{}, stubWriter{script: testScript()}, stubVoice{}, stubAssembler{err: errors.New("encoder exploded")}, testLogger())
	r.Run(context.Background(), job.ID, job.Topic)

	got, _ := store.Get(job.ID)
	require.Equal(t, StatusError, got.Status)
	require.Contains(t, got.Error, "video assembly")
	require.Contains(t, got.Error, "encoder exploded")
}

func TestRunner_FailureIsIsolatedPerJob(t *testing.T) {
	store := NewStore()
	bad := store.Create("bad")
	good := store.Create("good")

	dir := t.TempDir()
	failing := NewRunner(store, dir, stubResearcher{}, stubWriter{err: errors.New("boom")}, stubVoice{}, stubAssembler{}, testLogger())
	working := NewRunner(store, dir, stubResearcher{}, stubWriter{script: testScript()}, stubVoice{}, stubAssembler{}, testLogger())

	failing.Run(context.Background(), bad.ID, bad.Topic)
	working.Run(context.Background(), good.ID, good.Topic)

	gotBad, _ := store.Get(bad.ID)
	gotGood, _ := store.Get(good.ID)
	require.Equal(t, StatusError, gotBad.Status)
	require.Equal(t, StatusReady, gotGood.Status)
}
