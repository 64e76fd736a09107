// Package upload publishes a rendered video to YouTube via the Data API v3
package upload

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"autotube/config"
	"autotube/types"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// ErrAuthentication covers missing or rejected credentials
var ErrAuthentication = errors.New("youtube authentication failed")

// ErrUpload covers a failed video insert
var ErrUpload = errors.New("youtube upload failed")

// Uploader publishes videos with OAuth2 refresh-token credentials from the
// environment
type Uploader struct {
	cfg config.UploadConfig
}

// New creates a new Uploader
func New(cfg config.UploadConfig) *Uploader {
	return &Uploader{cfg: cfg}
}

// Run uploads the video and returns its published identity
func (u *Uploader) Run(ctx context.Context, videoPath, title, description string, tags []string) (*types.PublishResult, error) {
	log.Println("[upload] authenticating with YouTube API...")

	tokenSource, err := u.tokenSource(ctx)
	if err != nil {
		return nil, err
	}

	svc, err := youtube.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, tokenSource)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:                title,
			Description:          description,
			Tags:                 tags,
			CategoryId:           u.cfg.CategoryID,
			DefaultLanguage:      u.cfg.DefaultLanguage,
			DefaultAudioLanguage: u.cfg.DefaultLanguage,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus: u.cfg.Visibility,
		},
	}

	f, err := os.Open(videoPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open video file: %v", ErrUpload, err)
	}
	defer f.Close()

	if fi, err := f.Stat(); err == nil {
		log.Printf("[upload] uploading %q (%.1f MB)", title, float64(fi.Size())/1024/1024)
	}

	call := svc.Videos.Insert([]string{"snippet", "status"}, video)
	call.Media(f)

	uploaded, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpload, err)
	}

	result := &types.PublishResult{
		ID:  uploaded.Id,
		URL: fmt.Sprintf("https://www.youtube.com/watch?v=%s", uploaded.Id),
	}
	log.Printf("[upload] ✅ uploaded: %s", result.URL)
	return result, nil
}

// tokenSource builds an OAuth2 token source from env credentials
func (u *Uploader) tokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	clientID := os.Getenv("YOUTUBE_CLIENT_ID")
	clientSecret := os.Getenv("YOUTUBE_CLIENT_SECRET")
	refreshToken := os.Getenv("YOUTUBE_REFRESH_TOKEN")

	if clientID == "" || clientSecret == "" || refreshToken == "" {
		return nil, fmt.Errorf("%w: YOUTUBE_CLIENT_ID, YOUTUBE_CLIENT_SECRET or YOUTUBE_REFRESH_TOKEN not set", ErrAuthentication)
	}

	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{youtube.YoutubeUploadScope},
	}
	token := &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(-time.Hour), // force refresh
	}
	return conf.TokenSource(ctx, token), nil
}
