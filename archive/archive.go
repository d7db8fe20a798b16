// Package archive pushes finished videos and their metadata sidecars to S3
// under a date-partitioned key layout.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"

	"wisdombot/logx"
	"wisdombot/types"
)

// Config selects the bucket and the AWS configuration overrides. Region and
// Profile fall back to the standard config/credential chain when empty.
// Prefix, when set, must end in a slash and is prepended to every stored key.
type Config struct {
	Bucket       string
	Region       string
	Profile      string
	Prefix       string
	UsePathStyle bool
}

// s3API is the slice of the SDK client the archive uses, faked in tests.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Client archives render artifacts in one S3 bucket.
type Client struct {
	api    s3API
	bucket string
	prefix string
	now    func() time.Time
	log    zerolog.Logger
}

// New builds the archive client from the AWS default configuration chain.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("archive bucket not configured")
	}

	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})
	return &Client{
		api:    api,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		now:    time.Now,
		log:    logx.WithComponent("archive"),
	}, nil
}

// RenderMetadata is the JSON sidecar stored next to each archived video.
type RenderMetadata struct {
	QuoteID    int             `json:"quote_id"`
	QuoteText  string          `json:"quote_text"`
	AuthorKey  string          `json:"author_key"`
	AuthorName string          `json:"author_name"`
	Category   string          `json:"category"`
	Duration   float64         `json:"duration_seconds"`
	Segments   []types.Segment `json:"segments"`
	ArchivedAt time.Time       `json:"archived_at"`
}

// ArchiveRender uploads the video and its metadata sidecar under
// videos/YYYY/MM/DD/ and returns the video's object key.
func (c *Client) ArchiveRender(ctx context.Context, video *types.VideoArtifact, content *types.QuoteContent, tl *types.NarrationTimeline) (string, error) {
	f, err := os.Open(video.Path)
	if err != nil {
		return "", fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	base := filepath.Base(video.Path)
	datePart := c.now().UTC().Format("2006/01/02")
	videoKey := fmt.Sprintf("%svideos/%s/%s", c.prefix, datePart, base)
	metaKey := fmt.Sprintf("%svideos/%s/%s.json", c.prefix, datePart, strings.TrimSuffix(base, filepath.Ext(base)))

	if err := c.Put(ctx, videoKey, f, "video/mp4"); err != nil {
		return "", fmt.Errorf("upload video: %w", err)
	}

	meta := RenderMetadata{
		QuoteID:    content.QuoteID,
		QuoteText:  content.Text,
		AuthorKey:  content.AuthorKey,
		AuthorName: content.AuthorName,
		Category:   content.Category,
		Duration:   video.Duration,
		Segments:   tl.Segments,
		ArchivedAt: c.now().UTC(),
	}
	raw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	if err := c.Put(ctx, metaKey, bytes.NewReader(raw), "application/json"); err != nil {
		return "", fmt.Errorf("upload metadata: %w", err)
	}

	c.log.Info().Str("key", videoKey).Msg("artifact archived")
	return videoKey, nil
}

// Put uploads one object.
func (c *Client) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	in := &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	_, err := c.api.PutObject(ctx, in)
	return err
}

// Get fetches an object's streaming body. The caller must close it.
func (c *Client) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

// Delete removes one object.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	return err
}

// Exists reports whether the object exists, treating both an HTTP 404 and a
// NotFound API code as a clean "no".
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	_, err := c.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}

	var respErr *http.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == 404 {
		return false, nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
		return false, nil
	}
	return false, err
}

// List returns up to max object keys under the prefix.
func (c *Client) List(ctx context.Context, prefix string, max int32) ([]string, error) {
	out, err := c.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(c.bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(max),
	})
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(out.Contents))
	for _, obj := range out.Contents {
		keys = append(keys, aws.ToString(obj.Key))
	}
	return keys, nil
}
