package metadata

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/Jhoseto/factcheckerAI-sub002/domain/model"
	"github.com/Jhoseto/factcheckerAI-sub002/domain/repository"
	"github.com/Jhoseto/factcheckerAI-sub002/infrastructure/logger"
)

const cacheTTL = 6 * time.Hour

// Config holds the metadata service credentials. API-key mode is sufficient
// for read-only lookups; OAuth mode is supported for quota pooling.
type Config struct {
	APIKey       string `json:"api_key"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RedirectURL  string `json:"redirect_url"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Client resolves video references against the YouTube Data API.
type Client struct {
	service *youtube.Service
	cache   repository.IMetadataCache
}

// NewClient creates the metadata resolver. cache may be nil.
func NewClient(ctx context.Context, config *Config, cache repository.IMetadataCache) (repository.IVideoMetadata, error) {
	if (config.AccessToken == "" || config.RefreshToken == "") && config.APIKey != "" {
		service, err := youtube.NewService(ctx, option.WithAPIKey(config.APIKey))
		if err != nil {
			return nil, fmt.Errorf("failed to create metadata service with API key: %w", err)
		}
		return &Client{service: service, cache: cache}, nil
	}

	oauth2Config := &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		RedirectURL:  config.RedirectURL,
		Scopes:       []string{youtube.YoutubeReadonlyScope},
		Endpoint:     google.Endpoint,
	}
	token := &oauth2.Token{
		AccessToken:  config.AccessToken,
		RefreshToken: config.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(-1 * time.Minute), // force refresh on first use
	}
	service, err := youtube.NewService(ctx, option.WithHTTPClient(oauth2Config.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata service: %w", err)
	}
	return &Client{service: service, cache: cache}, nil
}

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[?&]v=([A-Za-z0-9_-]{6,})`),
	regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{6,})`),
	regexp.MustCompile(`/embed/([A-Za-z0-9_-]{6,})`),
	regexp.MustCompile(`/shorts/([A-Za-z0-9_-]{6,})`),
}

// ExtractVideoID pulls the video identifier out of any accepted URL shape.
func ExtractVideoID(reference string) string {
	for _, p := range videoIDPatterns {
		if m := p.FindStringSubmatch(reference); m != nil {
			return m[1]
		}
	}
	return ""
}

// Resolve looks up a video reference and returns its metadata. Idempotent:
// the same reference yields the same identifying fields modulo upstream data
// changes. Cached results are served without an API call.
func (c *Client) Resolve(ctx context.Context, reference string) (*model.VideoMetadata, error) {
	videoID := ExtractVideoID(reference)
	if videoID == "" {
		return nil, &model.MetadataError{Reference: reference, Cause: fmt.Errorf("no video id in reference")}
	}

	if c.cache != nil {
		if md, err := c.cache.Get(ctx, videoID); err == nil && md != nil {
			return md, nil
		}
	}

	response, err := c.service.Videos.List([]string{"snippet", "contentDetails"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		return nil, &model.MetadataError{Reference: reference, Cause: err}
	}
	if len(response.Items) == 0 {
		return nil, &model.MetadataError{Reference: reference, Cause: fmt.Errorf("video not found: %s", videoID)}
	}

	md, err := convertToVideoMetadata(response.Items[0])
	if err != nil {
		return nil, &model.MetadataError{Reference: reference, Cause: err}
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, videoID, md, cacheTTL); err != nil {
			logger.GetLogger().WithField("error", err).Warn("failed to cache video metadata")
		}
	}
	return md, nil
}

func convertToVideoMetadata(video *youtube.Video) (*model.VideoMetadata, error) {
	seconds, err := ParseISO8601Duration(video.ContentDetails.Duration)
	if err != nil {
		return nil, err
	}
	md := &model.VideoMetadata{
		VideoID:           video.Id,
		Title:             video.Snippet.Title,
		Author:            video.Snippet.ChannelTitle,
		DurationSeconds:   seconds,
		DurationFormatted: FormatDuration(seconds),
	}
	if t := video.Snippet.Thumbnails; t != nil {
		switch {
		case t.High != nil:
			md.ThumbnailURL = t.High.Url
		case t.Medium != nil:
			md.ThumbnailURL = t.Medium.Url
		case t.Default != nil:
			md.ThumbnailURL = t.Default.Url
		}
	}
	return md, nil
}
