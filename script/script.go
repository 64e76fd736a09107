// Package script generates the structured video script via the Groq
// chat-completions API.
package script

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"autotube/config"
	"autotube/types"
)

const defaultAPIURL = "https://api.groq.com/openai/v1/chat/completions"

// ErrScriptGeneration marks a model response that could not be turned into a
// well-formed script
var ErrScriptGeneration = errors.New("script generation failed")

const promptTemplate = `You are an expert YouTube video scriptwriter. Based on the research data provided, create a compelling video script.

Return ONLY a valid JSON object with this exact structure:
{
  "title": "Catchy YouTube video title",
  "description": "YouTube video description (2-3 sentences)",
  "tags": ["tag1", "tag2", "tag3", "tag4", "tag5"],
  "narration": "Full narration text that will be converted to speech. Should be 200-400 words, engaging, educational, and flow naturally when spoken. No stage directions, just the spoken words.",
  "scenes": [
    {
      "id": 1,
      "text": "Short scene description for stock footage search (3-5 words)",
      "search_query": "stock footage search query for this scene",
      "duration": 5
    }
  ]
}

Create %d-%d scenes. Each scene should have a duration of 4-7 seconds.
The total narration should match the total scene duration (roughly 150 words per minute speaking rate).

Topic: %s

Research Data:
%s

Remember: Return ONLY the JSON object, no other text.`

// Writer generates scripts using the Groq API
type Writer struct {
	cfg        config.ScriptConfig
	httpClient *http.Client
	apiURL     string
}

// New creates a new Writer
func New(cfg config.ScriptConfig) *Writer {
	return &Writer{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		apiURL:     defaultAPIURL,
	}
}

type groqRequest struct {
	Model       string        `json:"model"`
	Messages    []groqMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Run generates a full script for the topic using the research findings
func (w *Writer) Run(ctx context.Context, topic string, research *types.ResearchData) (*types.Script, error) {
	log.Printf("[script] generating script for %q...", topic)

	apiKey := os.Getenv("GROQ_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GROQ_API_KEY not set")
	}

	findings := ""
	if research != nil {
		findings = research.CombinedText
	}
	if len(findings) > 4000 {
		findings = findings[:4000]
	}
	prompt := fmt.Sprintf(promptTemplate, w.cfg.MinScenes, w.cfg.MaxScenes, topic, findings)

	reqBody := groqRequest{
		Model:       w.cfg.GroqModel,
		Messages:    []groqMessage{{Role: "user", Content: prompt}},
		Temperature: w.cfg.Temperature,
		MaxTokens:   w.cfg.MaxTokens,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", w.apiURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("groq request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var groqResp groqResponse
	if err := json.Unmarshal(respBytes, &groqResp); err != nil {
		return nil, fmt.Errorf("parse groq response: %w", err)
	}
	if groqResp.Error != nil {
		return nil, fmt.Errorf("groq error: %s", groqResp.Error.Message)
	}
	if len(groqResp.Choices) == 0 {
		return nil, fmt.Errorf("groq returned no choices")
	}

	script, err := Parse(groqResp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	log.Printf("[script] ✅ script ready: %q, %d scenes", script.Title, len(script.Scenes))
	return script, nil
}

// Parse decodes and validates the model's JSON output
func Parse(content string) (*types.Script, error) {
	content = cleanJSON(content)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("%w: malformed JSON: %v", ErrScriptGeneration, err)
	}
	for _, field := range []string{"title", "description", "narration", "scenes", "tags"} {
		if _, ok := raw[field]; !ok {
			return nil, fmt.Errorf("%w: missing field %q", ErrScriptGeneration, field)
		}
	}

	var script types.Script
	if err := json.Unmarshal([]byte(content), &script); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScriptGeneration, err)
	}
	return &script, nil
}

// cleanJSON strips markdown fences if the model wraps its response in
// ```json ... ```
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
