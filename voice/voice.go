// Package voice synthesizes the narration track with an external TTS engine.
// Set TTS_COMMAND to a binary/script accepting --text and --output flags;
// without it, edge-tts is used when present on PATH.
package voice

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	"autotube/config"
)

// Synthesizer renders narration text to an audio file
type Synthesizer struct {
	cfg config.VoiceConfig
}

// New creates a new Synthesizer
func New(cfg config.VoiceConfig) *Synthesizer {
	return &Synthesizer{cfg: cfg}
}

// Run writes the spoken narration to outPath and returns that path
func (s *Synthesizer) Run(ctx context.Context, text, outPath string) (string, error) {
	log.Println("[voice] synthesizing narration...")

	engine, err := resolveEngine()
	if err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		cmd := s.buildCommand(ctx, engine, text, outPath)
		cmd.Stderr = os.Stderr
		lastErr = cmd.Run()
		if lastErr == nil {
			log.Printf("[voice] ✅ narration written: %s", outPath)
			return outPath, nil
		}
		log.Printf("[voice] attempt %d failed: %v, retrying...", attempt, lastErr)
		time.Sleep(time.Duration(attempt) * 2 * time.Second)
	}
	return "", fmt.Errorf("tts failed after 3 attempts: %w", lastErr)
}

func resolveEngine() (string, error) {
	if cmd := strings.TrimSpace(os.Getenv("TTS_COMMAND")); cmd != "" {
		return cmd, nil
	}
	if _, err := exec.LookPath("edge-tts"); err == nil {
		return "edge-tts", nil
	}
	return "", fmt.Errorf("no TTS engine found: set TTS_COMMAND or install edge-tts")
}

func (s *Synthesizer) buildCommand(ctx context.Context, engine, text, outPath string) *exec.Cmd {
	switch {
	case engine == "edge-tts":
		return exec.CommandContext(ctx, "edge-tts",
			"--voice", s.cfg.Voice,
			"--rate", s.cfg.Rate,
			"--text", text,
			"--write-media", outPath,
		)
	case strings.HasSuffix(engine, ".py"):
		return exec.CommandContext(ctx, "python3", engine,
			"--text", text,
			"--output", outPath,
		)
	default:
		return exec.CommandContext(ctx, engine,
			"--text", text,
			"--output", outPath,
		)
	}
}
