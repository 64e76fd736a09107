package video

import (
	"fmt"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

// placeholder background, a dark navy used when no footage is available
var placeholderBG = [3]float64{20.0 / 255, 20.0 / 255, 40.0 / 255}

// wrapText breaks s into lines of at most width characters, on word
// boundaries. Words longer than width get a line of their own.
func wrapText(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) <= width {
			line += " " + w
			continue
		}
		lines = append(lines, line)
		line = w
	}
	return append(lines, line)
}

func loadFontFace(path string, points float64) (font.Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	return truetype.NewFace(f, &truetype.Options{Size: points}), nil
}

// renderPlaceholderPNG draws the placeholder frame: solid dark background
// with the scene caption wrapped and centered. A caption or font problem
// degrades to a bare background, it never fails the frame.
func renderPlaceholderPNG(path, caption string, width, height int, fontFile string) error {
	dc := gg.NewContext(width, height)
	dc.SetRGB(placeholderBG[0], placeholderBG[1], placeholderBG[2])
	dc.Clear()

	if caption != "" {
		if face, err := loadFontFace(fontFile, 48); err == nil {
			dc.SetFontFace(face)
			dc.SetRGB(1, 1, 1)
			lines := wrapText(caption, 40)
			lineH := 48.0 * 1.4
			startY := float64(height)/2 - lineH*float64(len(lines)-1)/2
			for i, line := range lines {
				dc.DrawStringAnchored(line, float64(width)/2, startY+lineH*float64(i), 0.5, 0.5)
			}
		}
	}
	return dc.SavePNG(path)
}

// renderTitlePNG draws the opening title card: bold white text with a black
// stroke, wrapped at 35 columns, on a transparent image sized to the text.
func renderTitlePNG(path, title string, width int, fontFile string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("empty title")
	}
	face, err := loadFontFace(fontFile, 72)
	if err != nil {
		return err
	}

	lines := wrapText(title, 35)
	lineH := 72.0 * 1.3
	height := int(lineH*float64(len(lines))) + 40

	dc := gg.NewContext(width, height)
	dc.SetFontFace(face)

	const stroke = 3.0
	for i, line := range lines {
		cx := float64(width) / 2
		cy := 20 + lineH*float64(i) + lineH/2
		// stroke by stamping the text around the center position
		dc.SetRGB(0, 0, 0)
		for dx := -stroke; dx <= stroke; dx += stroke {
			for dy := -stroke; dy <= stroke; dy += stroke {
				if dx == 0 && dy == 0 {
					continue
				}
				dc.DrawStringAnchored(line, cx+dx, cy+dy, 0.5, 0.5)
			}
		}
		dc.SetRGB(1, 1, 1)
		dc.DrawStringAnchored(line, cx, cy, 0.5, 0.5)
	}
	return dc.SavePNG(path)
}
