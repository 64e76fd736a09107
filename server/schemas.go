package server

import (
	"encoding/json"
	"net/http"
)

type generateRequest struct {
	Topic string `json:"topic"`
}

type generateResponse struct {
	JobID string `json:"job_id"`
}

type uploadRequest struct {
	JobID       string   `json:"job_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

type uploadResponse struct {
	Success    bool   `json:"success"`
	YouTubeURL string `json:"youtube_url"`
}

type regenerateRequest struct {
	JobID    string `json:"job_id"`
	Approved bool   `json:"approved"`
	Feedback string `json:"feedback"`
}

type healthResponse struct {
	Status  string `json:"status"`
	UptimeS int64  `json:"uptime_s"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// WriteJSON writes v as a JSON response with the given status
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a JSON error body with the given status
func WriteError(w http.ResponseWriter, status int, message, code string) {
	WriteJSON(w, status, errorResponse{Error: message, Code: code})
}
