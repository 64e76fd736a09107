package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"autotube/jobs"

	"github.com/go-chi/chi/v5"
)

// NewRouter builds the job API
func NewRouter(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))
	r.Post("/api/generate", generateHandler(cfg))
	r.Get("/api/status/{id}", statusHandler(cfg))
	r.Post("/api/upload", uploadHandler(cfg))
	r.Post("/api/regenerate", regenerateHandler(cfg))

	// job artifacts (narration, final video, thumbnail)
	fs := http.StripPrefix("/outputs/", http.FileServer(http.Dir(cfg.OutputDir)))
	r.Get("/outputs/*", fs.ServeHTTP)

	return r
}

func healthHandler(cfg Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, healthResponse{
			Status:  "ok",
			UptimeS: int64(time.Since(cfg.StartTime).Seconds()),
		})
	}
}

func generateHandler(cfg Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if strings.TrimSpace(req.Topic) == "" {
			WriteError(w, http.StatusBadRequest, "topic is required", "BAD_REQUEST")
			return
		}

		job := cfg.Store.Create(req.Topic)
		go cfg.Runner.Run(context.Background(), job.ID, req.Topic)

		WriteJSON(w, http.StatusOK, generateResponse{JobID: job.ID})
	}
}

func statusHandler(cfg Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, ok := cfg.Store.Get(chi.URLParam(r, "id"))
		if !ok {
			WriteError(w, http.StatusNotFound, "job not found", "NOT_FOUND")
			return
		}
		WriteJSON(w, http.StatusOK, job)
	}
}

func uploadHandler(cfg Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req uploadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if _, ok := cfg.Store.Get(req.JobID); !ok {
			WriteError(w, http.StatusNotFound, "job not found", "NOT_FOUND")
			return
		}

		videoPath := filepath.Join(cfg.OutputDir, req.JobID, "final_video.mp4")
		if _, err := os.Stat(videoPath); err != nil {
			WriteError(w, http.StatusBadRequest, "video not found", "NO_VIDEO")
			return
		}

		cfg.Store.Update(req.JobID, func(j *jobs.Job) {
			j.Status = jobs.StatusUploading
			j.Step = "Uploading to YouTube..."
		})

		result, err := cfg.Uploader.Run(r.Context(), videoPath, req.Title, req.Description, req.Tags)
		if err != nil {
			cfg.Store.Update(req.JobID, func(j *jobs.Job) {
				j.Status = jobs.StatusUploadFailed
				j.Error = err.Error()
			})
			WriteError(w, http.StatusInternalServerError, err.Error(), "UPLOAD_FAILED")
			return
		}

		cfg.Store.Update(req.JobID, func(j *jobs.Job) {
			j.Status = jobs.StatusUploaded
			j.YouTubeURL = result.URL
		})
		WriteJSON(w, http.StatusOK, uploadResponse{Success: true, YouTubeURL: result.URL})
	}
}

func regenerateHandler(cfg Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req regenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		job, ok := cfg.Store.Get(req.JobID)
		if !ok {
			WriteError(w, http.StatusNotFound, "job not found", "NOT_FOUND")
			return
		}

		topic := job.Topic
		if req.Feedback != "" {
			topic = fmt.Sprintf("%s. Feedback: %s", topic, req.Feedback)
		}

		cfg.Store.Update(req.JobID, func(j *jobs.Job) {
			j.Status = jobs.StatusStarting
			j.Step = "Regenerating..."
			j.Progress = 0
			j.VideoURL = ""
			j.ThumbnailURL = ""
			j.Error = ""
		})
		go cfg.Runner.Run(context.Background(), req.JobID, topic)

		WriteJSON(w, http.StatusOK, generateResponse{JobID: req.JobID})
	}
}
