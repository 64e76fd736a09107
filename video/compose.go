package video

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// compose concatenates the normalized clips in scene order, overlays the
// title card over the opening seconds and binds the narration audio.
// The result is the final MP4 at outPath.
func (a *Assembler) compose(ctx context.Context, clips []NormalizedClip, audioPath, title, jobDir, outPath string) error {
	base := filepath.Join(jobDir, "visuals_raw.mp4")
	if err := a.concatClips(ctx, clips, jobDir, base); err != nil {
		return fmt.Errorf("concatenate clips: %w", err)
	}

	var total float64
	for _, c := range clips {
		total += c.Duration
	}

	titled, err := a.overlayTitle(ctx, base, title, total, jobDir)
	if err != nil {
		// a missing title card is cosmetic, the timeline stays valid
		log.Printf("[video] title overlay failed: %v, continuing without it", err)
		titled = base
	}

	if err := a.bindAudio(ctx, titled, audioPath, jobDir, outPath); err != nil {
		return fmt.Errorf("bind audio: %w", err)
	}
	return nil
}

// concatClips joins clips with the concat demuxer. Every input is already at
// the canonical size and frame rate, so the join is a stream copy with no
// re-encode per cut.
func (a *Assembler) concatClips(ctx context.Context, clips []NormalizedClip, jobDir, outPath string) error {
	if len(clips) == 0 {
		return fmt.Errorf("no clips to concatenate")
	}

	listPath := filepath.Join(jobDir, "visuals_concat.txt")
	if err := os.WriteFile(listPath, []byte(concatList(clips)), 0644); err != nil {
		return err
	}

	return runFFmpeg(ctx, "-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outPath,
	)
}

func concatList(clips []NormalizedClip) string {
	var lines []string
	for _, c := range clips {
		lines = append(lines, fmt.Sprintf("file '%s'", c.Path))
	}
	return strings.Join(lines, "\n") + "\n"
}

// overlayTitle renders the title card and composites it near the top of the
// frame for min(titleSec, totalSec), alpha-fading in and out.
func (a *Assembler) overlayTitle(ctx context.Context, basePath, title string, totalSec float64, jobDir string) (string, error) {
	cardPath := filepath.Join(jobDir, "title_card.png")
	if err := renderTitlePNG(cardPath, title, a.cfg.Width, a.cfg.FontFile); err != nil {
		return "", err
	}

	outPath := filepath.Join(jobDir, "visuals_titled.mp4")
	filter := titleFilter(math.Min(a.cfg.TitleSec, totalSec), a.cfg.TitleFadeSec)

	err := runFFmpeg(ctx, "-y",
		"-i", basePath,
		"-i", cardPath,
		"-filter_complex", filter,
		"-map", "[out]",
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "22",
		"-pix_fmt", "yuv420p",
		"-an",
		outPath,
	)
	if err != nil {
		return "", err
	}
	return outPath, nil
}

// titleFilter builds the filtergraph that fades the title card in and out
// within its visible window and pins it at 15% height.
func titleFilter(visibleSec, fadeSec float64) string {
	if fadeSec*2 > visibleSec {
		fadeSec = visibleSec / 2
	}
	fadeOutStart := visibleSec - fadeSec
	return fmt.Sprintf(
		"[1:v]format=rgba,fade=t=in:st=0:d=%.3f:alpha=1,fade=t=out:st=%.3f:d=%.3f:alpha=1[title];"+
			"[0:v][title]overlay=(W-w)/2:H*0.15:enable='between(t,0,%.3f)'[out]",
		fadeSec, fadeOutStart, fadeSec, visibleSec,
	)
}

// bindAudio attaches the narration as the sole audio track. The narration is
// first transcoded to a temporary AAC side-file which is removed once the
// final mux succeeds. -shortest truncates the video if the audio ends first.
func (a *Assembler) bindAudio(ctx context.Context, videoPath, audioPath, jobDir, outPath string) error {
	tempAudio := filepath.Join(jobDir, "temp_audio.m4a")
	if err := runFFmpeg(ctx, "-y",
		"-i", audioPath,
		"-c:a", "aac",
		"-b:a", "192k",
		tempAudio,
	); err != nil {
		return fmt.Errorf("transcode narration: %w", err)
	}

	if err := runFFmpeg(ctx, "-y",
		"-i", videoPath,
		"-i", tempAudio,
		"-c:v", "copy",
		"-c:a", "copy",
		"-shortest",
		"-movflags", "+faststart",
		outPath,
	); err != nil {
		return err
	}

	if err := os.Remove(tempAudio); err != nil {
		log.Printf("[video] could not remove %s: %v", tempAudio, err)
	}
	return nil
}
