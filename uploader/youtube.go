package uploader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"wisdombot/logx"
	"wisdombot/retry"
)

// Client uploads videos to a YouTube channel using a service account.
type Client struct {
	service *youtube.Service
	privacy string
	policy  retry.Policy
	log     zerolog.Logger
}

// New builds an upload client from a service-account credentials file.
// privacy is the listing status for new uploads ("public", "unlisted" or
// "private"); empty defaults to public.
func New(ctx context.Context, credentialsPath, privacy string) (*Client, error) {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read service account: %w", err)
	}

	cfg, err := google.JWTConfigFromJSON(data, youtube.YoutubeUploadScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account: %w", err)
	}

	service, err := youtube.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	if privacy == "" {
		privacy = "public"
	}

	return &Client{
		service: service,
		privacy: privacy,
		policy: retry.Policy{
			MaxAttempts: 5,
			BaseDelay:   time.Second,
			Retryable:   transientAPIError,
		},
		log: logx.WithComponent("uploader"),
	}, nil
}

// Upload pushes the video at videoPath to YouTube and returns the new video
// ID. Server-side failures are retried; client errors fail immediately.
func (c *Client) Upload(ctx context.Context, videoPath string, meta Metadata) (string, error) {
	return c.upload(ctx, videoPath, meta, c.privacy)
}

// UploadPrivate uploads with a private listing regardless of the configured
// privacy, used for end-to-end test runs.
func (c *Client) UploadPrivate(ctx context.Context, videoPath string, meta Metadata) (string, error) {
	return c.upload(ctx, videoPath, meta, "private")
}

func (c *Client) upload(ctx context.Context, videoPath string, meta Metadata, privacy string) (string, error) {
	info, err := os.Stat(videoPath)
	if err != nil {
		return "", fmt.Errorf("stat video: %w", err)
	}

	c.log.Info().
		Str("video", filepath.Base(videoPath)).
		Float64("size_mb", float64(info.Size())/(1024*1024)).
		Str("title", meta.Title).
		Msg("uploading to youtube")

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:                meta.Title,
			Description:          meta.Description,
			Tags:                 meta.Tags,
			CategoryId:           categoryID,
			DefaultLanguage:      "en",
			DefaultAudioLanguage: "en",
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           privacy,
			SelfDeclaredMadeForKids: false,
			MadeForKids:             false,
		},
	}

	var videoID string
	err = retry.Do(ctx, c.policy, func(ctx context.Context) error {
		// Reopen per attempt so a failed upload never resumes from a
		// half-consumed reader.
		f, err := os.Open(videoPath)
		if err != nil {
			return err
		}
		defer f.Close()

		resp, err := c.service.Videos.Insert([]string{"snippet", "status"}, video).
			Media(f).
			Context(ctx).
			Do()
		if err != nil {
			return err
		}
		videoID = resp.Id
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", filepath.Base(videoPath), err)
	}

	c.log.Info().
		Str("video_id", videoID).
		Str("url", "https://youtube.com/shorts/"+videoID).
		Msg("upload complete")
	return videoID, nil
}

// transientAPIError reports whether err is a server-side YouTube failure
// worth retrying. Quota and validation errors are not.
func transientAPIError(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		// Network-level errors carry no status code; retry those too.
		return true
	}
	switch apiErr.Code {
	case 500, 502, 503, 504:
		return true
	}
	return false
}
