package video

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"math"
	"os"
	"path/filepath"

	_ "image/png"

	"golang.org/x/image/draw"
)

const (
	thumbWidth  = 1280
	thumbHeight = 720
	thumbJPEGQ  = 85
)

// thumbnail extracts one frame from the rendered video and writes it as a
// 1280x720 JPEG cover image. Failure here is fatal to the job.
func (a *Assembler) thumbnail(ctx context.Context, videoPath, outPath string) error {
	dur, err := ProbeDuration(videoPath)
	if err != nil {
		return err
	}
	at := math.Min(1.0, dur)

	framePath := filepath.Join(filepath.Dir(outPath), "thumb_frame.png")
	if err := runFFmpeg(ctx, "-y",
		"-ss", fmt.Sprintf("%.3f", at),
		"-i", videoPath,
		"-frames:v", "1",
		framePath,
	); err != nil {
		return fmt.Errorf("extract frame: %w", err)
	}

	f, err := os.Open(framePath)
	if err != nil {
		return err
	}
	src, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("decode frame: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, thumbWidth, thumbHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := jpeg.Encode(out, dst, &jpeg.Options{Quality: thumbJPEGQ}); err != nil {
		return fmt.Errorf("encode thumbnail: %w", err)
	}
	return nil
}
