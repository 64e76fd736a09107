// Package video is the assembly core: it turns a script plus a narration
// track into a single rendered video and a thumbnail. It is a pure transform
// of its inputs; all state lives in the job directory it is given.
package video

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"autotube/config"
	"autotube/types"
)

// ErrEmptyScript rejects scripts with no scenes before any footage call
var ErrEmptyScript = errors.New("script has no scenes")

// FootageFetcher acquires a stock clip for a search query. ok is false when
// no usable footage exists for the query; that is an expected state, not an
// error, and the caller substitutes a placeholder.
type FootageFetcher interface {
	Fetch(ctx context.Context, query string, minDuration float64, destPath string) (path string, ok bool)
}

// Assembler builds the final video from a script and a narration track
type Assembler struct {
	cfg     config.VideoConfig
	fetcher FootageFetcher
}

// NewAssembler creates an Assembler using the given footage source
func NewAssembler(cfg config.VideoConfig, fetcher FootageFetcher) *Assembler {
	return &Assembler{cfg: cfg, fetcher: fetcher}
}

// CreateVideo runs the whole assembly: per-scene durations from the real
// narration length, one normalized clip per scene in script order, then
// concatenation, title overlay, audio bind and thumbnail extraction.
// It returns the rendered video path and the thumbnail path.
func (a *Assembler) CreateVideo(ctx context.Context, script *types.Script, audioPath, jobDir string) (string, string, error) {
	if len(script.Scenes) == 0 {
		return "", "", ErrEmptyScript
	}

	audioDur, err := ProbeDuration(audioPath)
	if err != nil {
		return "", "", fmt.Errorf("measure narration: %w", err)
	}

	scenes := AllocateDurations(script.Scenes, audioDur, a.cfg.DefaultSceneSec, a.cfg.MinSceneSec)

	clipsDir := filepath.Join(jobDir, "clips")
	if err := os.MkdirAll(clipsDir, 0755); err != nil {
		return "", "", err
	}

	clips := make([]NormalizedClip, 0, len(scenes))
	for i, scene := range scenes {
		log.Printf("[video] scene %d/%d: %.2fs %q", i+1, len(scenes), scene.ActualDuration, scene.SearchQuery)

		rawPath := filepath.Join(clipsDir, fmt.Sprintf("scene_%d_raw.mp4", i))
		src, ok := a.fetcher.Fetch(ctx, sceneQuery(scene), scene.ActualDuration, rawPath)
		if !ok {
			src = ""
		}

		clip, err := a.normalizeClip(ctx, src, scene.ActualDuration, scene.Text, filepath.Join(clipsDir, fmt.Sprintf("scene_%d.mp4", i)))
		if err != nil {
			return "", "", fmt.Errorf("scene %d: %w", i, err)
		}
		clips = append(clips, clip)
	}

	videoPath := filepath.Join(jobDir, "final_video.mp4")
	if err := a.compose(ctx, clips, audioPath, script.Title, jobDir, videoPath); err != nil {
		return "", "", err
	}

	thumbPath := filepath.Join(jobDir, "thumbnail.jpg")
	if err := a.thumbnail(ctx, videoPath, thumbPath); err != nil {
		return "", "", fmt.Errorf("thumbnail: %w", err)
	}

	log.Printf("[video] ✅ rendered %s (%.1fs, %d scenes)", videoPath, audioDur, len(clips))
	return videoPath, thumbPath, nil
}

// sceneQuery prefers the model's dedicated search query and falls back to
// the scene description, then a generic query.
func sceneQuery(scene types.Scene) string {
	if scene.SearchQuery != "" {
		return scene.SearchQuery
	}
	if scene.Text != "" {
		return scene.Text
	}
	return "nature landscape"
}
