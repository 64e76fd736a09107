package video

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
)

// NormalizedClip is an on-disk video segment at the canonical frame size
// whose duration matches the scene it backs.
type NormalizedClip struct {
	Path        string
	Duration    float64
	Width       int
	Height      int
	Placeholder bool
}

// normalizeClip turns a raw downloaded clip (srcPath, or "" when footage was
// unavailable) into a clip of exactly targetSec at the canonical size.
// Footage problems of any kind fall back to a placeholder clip; an error is
// returned only when even the placeholder cannot be encoded.
func (a *Assembler) normalizeClip(ctx context.Context, srcPath string, targetSec float64, caption, outPath string) (NormalizedClip, error) {
	if srcPath != "" {
		clip, err := a.prepareFootage(ctx, srcPath, targetSec, outPath)
		if err == nil {
			return clip, nil
		}
		log.Printf("[video] footage %s unusable: %v, using placeholder", srcPath, err)
	}
	return a.placeholderClip(ctx, targetSec, caption, outPath)
}

// prepareFootage resizes the source to the canonical frame and trims or loops
// it to the target duration.
func (a *Assembler) prepareFootage(ctx context.Context, srcPath string, targetSec float64, outPath string) (NormalizedClip, error) {
	srcDur, err := ProbeDuration(srcPath)
	if err != nil {
		return NormalizedClip{}, err
	}
	if srcDur <= 0 {
		return NormalizedClip{}, fmt.Errorf("clip %s has no duration", srcPath)
	}

	args := planNormalizeArgs(srcPath, outPath, targetSec, srcDur, a.cfg.Width, a.cfg.Height, a.cfg.FPS)
	if err := runFFmpeg(ctx, args...); err != nil {
		return NormalizedClip{}, err
	}
	return NormalizedClip{
		Path:     outPath,
		Duration: targetSec,
		Width:    a.cfg.Width,
		Height:   a.cfg.Height,
	}, nil
}

// planNormalizeArgs builds the ffmpeg invocation that scales a clip to the
// canonical frame and fits it to targetSec. Shorter clips are looped whole
// end-to-end until they cover the target, then trimmed; the loop boundary is
// a visible jump cut.
func planNormalizeArgs(srcPath, outPath string, targetSec, srcDur float64, width, height, fps int) []string {
	args := []string{"-y"}
	if srcDur < targetSec {
		// -stream_loop N repeats the input N extra times
		repeats := int(targetSec/srcDur) + 1
		args = append(args, "-stream_loop", strconv.Itoa(repeats))
	}
	args = append(args,
		"-i", srcPath,
		"-t", fmt.Sprintf("%.3f", targetSec),
		"-vf", fmt.Sprintf("scale=%d:%d,setsar=1", width, height),
		"-r", strconv.Itoa(fps),
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "23",
		"-pix_fmt", "yuv420p",
		"-an",
		outPath,
	)
	return args
}

// placeholderClip synthesizes a solid dark clip with the scene caption.
// If the caption frame cannot be rendered at all, it falls back to a bare
// color source.
func (a *Assembler) placeholderClip(ctx context.Context, targetSec float64, caption, outPath string) (NormalizedClip, error) {
	framePath := strings.TrimSuffix(outPath, ".mp4") + "_bg.png"

	var args []string
	if err := renderPlaceholderPNG(framePath, caption, a.cfg.Width, a.cfg.Height, a.cfg.FontFile); err == nil {
		args = []string{"-y",
			"-loop", "1",
			"-i", framePath,
			"-t", fmt.Sprintf("%.3f", targetSec),
			"-r", strconv.Itoa(a.cfg.FPS),
			"-c:v", "libx264",
			"-preset", "fast",
			"-crf", "23",
			"-pix_fmt", "yuv420p",
			"-an",
			outPath,
		}
	} else {
		log.Printf("[video] placeholder frame render failed: %v, using bare background", err)
		args = []string{"-y",
			"-f", "lavfi",
			"-i", fmt.Sprintf("color=c=0x141428:s=%dx%d:d=%.3f:r=%d", a.cfg.Width, a.cfg.Height, targetSec, a.cfg.FPS),
			"-c:v", "libx264",
			"-preset", "fast",
			"-crf", "23",
			"-pix_fmt", "yuv420p",
			outPath,
		}
	}

	if err := runFFmpeg(ctx, args...); err != nil {
		return NormalizedClip{}, fmt.Errorf("encode placeholder: %w", err)
	}
	return NormalizedClip{
		Path:        outPath,
		Duration:    targetSec,
		Width:       a.cfg.Width,
		Height:      a.cfg.Height,
		Placeholder: true,
	}, nil
}
