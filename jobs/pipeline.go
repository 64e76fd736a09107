package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"autotube/types"
)

// Researcher gathers web context for a topic. It never fails; a degraded
// stub is still a valid result.
type Researcher interface {
	Run(ctx context.Context, topic string) *types.ResearchData
}

// ScriptWriter drafts the structured script
type ScriptWriter interface {
	Run(ctx context.Context, topic string, research *types.ResearchData) (*types.Script, error)
}

// VoiceSynthesizer renders narration text to an audio file
type VoiceSynthesizer interface {
	Run(ctx context.Context, text, outPath string) (string, error)
}

// VideoAssembler builds the final video and thumbnail from a script and a
// narration track
type VideoAssembler interface {
	CreateVideo(ctx context.Context, script *types.Script, audioPath, jobDir string) (videoPath, thumbPath string, err error)
}

// Publisher uploads a rendered video
type Publisher interface {
	Run(ctx context.Context, videoPath, title, description string, tags []string) (*types.PublishResult, error)
}

// Runner executes the production pipeline for one job, writing status
// updates to the store at stage boundaries. One call handles one job; jobs
// share nothing but the store.
type Runner struct {
	store     *Store
	outputDir string
	research  Researcher
	script    ScriptWriter
	voice     VoiceSynthesizer
	video     VideoAssembler
	logger    *slog.Logger
}

// NewRunner wires the pipeline stages together
func NewRunner(store *Store, outputDir string, research Researcher, script ScriptWriter, voice VoiceSynthesizer, video VideoAssembler, logger *slog.Logger) *Runner {
	return &Runner{
		store:     store,
		outputDir: outputDir,
		research:  research,
		script:    script,
		voice:     voice,
		video:     video,
		logger:    logger,
	}
}

// Run drives one job to completion. Stage failures mark the job failed and
// stop there; they never affect other jobs.
func (r *Runner) Run(ctx context.Context, jobID, topic string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("pipeline panic", "job_id", jobID, "panic", rec)
			r.fail(jobID, "pipeline", fmt.Errorf("panic: %v", rec))
		}
	}()

	log := r.logger.With("job_id", jobID)
	log.Info("pipeline started", "topic", topic)

	jobDir := filepath.Join(r.outputDir, jobID)
	if err := os.MkdirAll(jobDir, 0755); err != nil {
		r.fail(jobID, "setup", err)
		return
	}

	r.update(jobID, StatusResearching, "🔍 Researching topic on the web...", 10)
	research := r.research.Run(ctx, topic)

	r.update(jobID, StatusScripting, "✍️ Writing video script with AI...", 30)
	script, err := r.script.Run(ctx, topic, research)
	if err != nil {
		r.fail(jobID, "script generation", err)
		return
	}
	r.store.Update(jobID, func(j *Job) { j.Script = script })

	r.update(jobID, StatusVoicing, "🎙️ Generating voiceover...", 50)
	audioPath, err := r.voice.Run(ctx, script.Narration, filepath.Join(jobDir, "narration.mp3"))
	if err != nil {
		r.fail(jobID, "voice synthesis", err)
		return
	}
	r.store.Update(jobID, func(j *Job) {
		j.AudioURL = fmt.Sprintf("/outputs/%s/narration.mp3", jobID)
	})

	r.update(jobID, StatusCreatingVideo, "🎬 Assembling video with stock footage...", 70)
	if _, _, err := r.video.CreateVideo(ctx, script, audioPath, jobDir); err != nil {
		r.fail(jobID, "video assembly", err)
		return
	}
	r.store.Update(jobID, func(j *Job) {
		j.VideoURL = fmt.Sprintf("/outputs/%s/final_video.mp4", jobID)
		j.ThumbnailURL = fmt.Sprintf("/outputs/%s/thumbnail.jpg", jobID)
	})

	r.update(jobID, StatusReady, "✅ Video ready for review!", 100)
	log.Info("pipeline complete")
}

func (r *Runner) update(jobID string, status Status, step string, progress int) {
	r.store.Update(jobID, func(j *Job) {
		j.Status = status
		j.Step = step
		j.Progress = progress
	})
}

func (r *Runner) fail(jobID, stage string, err error) {
	r.logger.Error("pipeline stage failed", "job_id", jobID, "stage", stage, "error", err)
	r.store.Update(jobID, func(j *Job) {
		j.Status = StatusError
		j.Step = fmt.Sprintf("❌ Error in %s", stage)
		j.Error = fmt.Sprintf("%s: %v", stage, err)
	})
}
