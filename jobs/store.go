// Package jobs tracks pipeline runs and drives them through their stages.
package jobs

import (
	"sync"
	"time"

	"autotube/types"

	"github.com/google/uuid"
)

// Status is a job's lifecycle state
type Status string

const (
	StatusStarting      Status = "starting"
	StatusResearching   Status = "researching"
	StatusScripting     Status = "scripting"
	StatusVoicing       Status = "voicing"
	StatusCreatingVideo Status = "creating_video"
	StatusReady         Status = "ready"
	StatusError         Status = "error"
	StatusUploading     Status = "uploading"
	StatusUploaded      Status = "uploaded"
	StatusUploadFailed  Status = "upload_failed"
)

// Job is one video production run
type Job struct {
	ID           string        `json:"id"`
	Topic        string        `json:"topic"`
	Status       Status        `json:"status"`
	Step         string        `json:"step"`
	Progress     int           `json:"progress"`
	Script       *types.Script `json:"script"`
	AudioURL     string        `json:"audio_url,omitempty"`
	VideoURL     string        `json:"video_url,omitempty"`
	ThumbnailURL string        `json:"thumbnail_url,omitempty"`
	YouTubeURL   string        `json:"youtube_url,omitempty"`
	Error        string        `json:"error,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Store is the process-wide job registry. It lives for the whole process and
// never evicts entries; callers needing cleanup must add it themselves. The
// video assembly core does not depend on it.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{jobs: make(map[string]*Job)}
}

// Create registers a new job for a topic and returns a snapshot of it
func (s *Store) Create(topic string) Job {
	job := &Job{
		ID:        uuid.NewString(),
		Topic:     topic,
		Status:    StatusStarting,
		Step:      "Initializing...",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()
	return *job
}

// Get returns a snapshot of the job, if it exists
func (s *Store) Get(id string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Update mutates a job under the store lock
func (s *Store) Update(id string, fn func(*Job)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		fn(job)
		job.UpdatedAt = time.Now().UTC()
	}
}
