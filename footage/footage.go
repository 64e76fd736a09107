// Package footage downloads stock video clips from Pexels. Availability is a
// designed state: every failure mode (no credential, network error, no
// matching candidate) surfaces as ok=false, never as an error, so footage
// problems can never abort a job.
package footage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"sort"
	"time"

	"autotube/config"
)

const defaultSearchURL = "https://api.pexels.com/videos/search"

// Adapter queries the Pexels video search API
type Adapter struct {
	apiKey         string
	searchURL      string
	perPage        int
	minFileWidth   int
	searchClient   *http.Client
	downloadClient *http.Client
}

// New creates an Adapter. The credential comes from PEXELS_API_KEY; when it
// is unset every Fetch returns absent without touching the network.
func New(cfg config.FootageConfig) *Adapter {
	return &Adapter{
		apiKey:       os.Getenv("PEXELS_API_KEY"),
		searchURL:    defaultSearchURL,
		perPage:      cfg.PerPage,
		minFileWidth: cfg.MinFileWidth,
		searchClient: &http.Client{
			Timeout: time.Duration(cfg.SearchTimeoutSec) * time.Second,
		},
		downloadClient: &http.Client{
			Timeout: time.Duration(cfg.DownloadTimeoutSec) * time.Second,
		},
	}
}

type searchResponse struct {
	Videos []video `json:"videos"`
}

type video struct {
	ID         int         `json:"id"`
	Duration   float64     `json:"duration"`
	VideoFiles []videoFile `json:"video_files"`
}

type videoFile struct {
	Width int    `json:"width"`
	Link  string `json:"link"`
}

// Fetch downloads one landscape clip matching query whose advertised duration
// covers minDuration, writing it to destPath. Candidates are taken in
// provider order; within the chosen candidate the widest file variant at or
// above the width floor is used.
func (a *Adapter) Fetch(ctx context.Context, query string, minDuration float64, destPath string) (string, bool) {
	if a.apiKey == "" {
		return "", false
	}

	videos, err := a.search(ctx, query)
	if err != nil {
		log.Printf("[footage] search %q failed: %v", query, err)
		return "", false
	}

	for _, v := range videos {
		if v.Duration < minDuration {
			continue
		}
		link := bestVariant(v.VideoFiles, a.minFileWidth)
		if link == "" {
			continue
		}
		if err := a.download(ctx, link, destPath); err != nil {
			log.Printf("[footage] download for %q failed: %v", query, err)
			return "", false
		}
		return destPath, true
	}
	return "", false
}

func (a *Adapter) search(ctx context.Context, query string) ([]video, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", fmt.Sprintf("%d", a.perPage))
	params.Set("orientation", "landscape")
	params.Set("size", "medium")

	req, err := http.NewRequestWithContext(ctx, "GET", a.searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", a.apiKey)

	resp, err := a.searchClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from Pexels", resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return result.Videos, nil
}

// bestVariant returns the link of the widest file variant at or above
// minWidth, or "" when none qualifies
func bestVariant(files []videoFile, minWidth int) string {
	sorted := make([]videoFile, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Width > sorted[j].Width })

	for _, f := range sorted {
		if f.Width >= minWidth && f.Link != "" {
			return f.Link
		}
	}
	return ""
}

func (a *Adapter) download(ctx context.Context, link, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", link, nil)
	if err != nil {
		return err
	}

	resp, err := a.downloadClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d downloading clip", resp.StatusCode)
	}

	f, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(destPath)
		return err
	}
	return nil
}
