package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"

	"wisdombot/types"
)

type putCall struct {
	key         string
	contentType string
	body        []byte
}

type fakeS3 struct {
	puts    []putCall
	headErr error
	keys    []string
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.puts = append(f.puts, putCall{
		key:         aws.ToString(in.Key),
		contentType: aws.ToString(in.ContentType),
		body:        body,
	})
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, _ *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(nil))}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, _ *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, _ *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, _ *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	out := &s3.ListObjectsV2Output{}
	for _, k := range f.keys {
		out.Contents = append(out.Contents, s3types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func newTestClient(fake *fakeS3) *Client {
	return &Client{
		api:    fake,
		bucket: "wisdom-archive",
		now:    func() time.Time { return time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC) },
		log:    zerolog.Nop(),
	}
}

func TestArchiveRenderUploadsVideoAndSidecar(t *testing.T) {
	dir := t.TempDir()
	videoPath := filepath.Join(dir, "stoic_1_seneca.mp4")
	if err := os.WriteFile(videoPath, []byte("fake mp4 payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	fake := &fakeS3{}
	c := newTestClient(fake)

	content := &types.QuoteContent{
		QuoteID:    1,
		Text:       "We suffer more often in imagination than in reality.",
		AuthorKey:  "seneca",
		AuthorName: "Seneca",
		Category:   "resilience",
	}
	tl := &types.NarrationTimeline{
		Segments: []types.Segment{{Name: types.SegmentQuote, Start: 1, End: 5}},
	}

	key, err := c.ArchiveRender(context.Background(), &types.VideoArtifact{Path: videoPath, Duration: 34.5}, content, tl)
	if err != nil {
		t.Fatalf("ArchiveRender: %v", err)
	}
	if key != "videos/2026/08/24/stoic_1_seneca.mp4" {
		t.Fatalf("video key = %q", key)
	}
	if len(fake.puts) != 2 {
		t.Fatalf("got %d puts, want 2", len(fake.puts))
	}

	video := fake.puts[0]
	if video.contentType != "video/mp4" || !bytes.Equal(video.body, []byte("fake mp4 payload")) {
		t.Fatalf("video put wrong: %q %d bytes", video.contentType, len(video.body))
	}

	sidecar := fake.puts[1]
	if sidecar.key != "videos/2026/08/24/stoic_1_seneca.json" {
		t.Fatalf("sidecar key = %q", sidecar.key)
	}
	if sidecar.contentType != "application/json" {
		t.Fatalf("sidecar content type = %q", sidecar.contentType)
	}
	var meta RenderMetadata
	if err := json.Unmarshal(sidecar.body, &meta); err != nil {
		t.Fatalf("sidecar not valid JSON: %v", err)
	}
	if meta.QuoteID != 1 || meta.Duration != 34.5 || len(meta.Segments) != 1 {
		t.Fatalf("metadata wrong: %+v", meta)
	}
	if !meta.ArchivedAt.Equal(time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("ArchivedAt = %v", meta.ArchivedAt)
	}
}

func TestArchiveRenderHonorsPrefix(t *testing.T) {
	dir := t.TempDir()
	videoPath := filepath.Join(dir, "stoic_2_epictetus.mp4")
	if err := os.WriteFile(videoPath, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	fake := &fakeS3{}
	c := newTestClient(fake)
	c.prefix = "shorts/"

	content := &types.QuoteContent{QuoteID: 2, AuthorKey: "epictetus"}
	tl := &types.NarrationTimeline{}

	key, err := c.ArchiveRender(context.Background(), &types.VideoArtifact{Path: videoPath}, content, tl)
	if err != nil {
		t.Fatalf("ArchiveRender: %v", err)
	}
	if key != "shorts/videos/2026/08/24/stoic_2_epictetus.mp4" {
		t.Fatalf("video key = %q", key)
	}
	if fake.puts[1].key != "shorts/videos/2026/08/24/stoic_2_epictetus.json" {
		t.Fatalf("sidecar key = %q", fake.puts[1].key)
	}
}

func TestArchiveRenderMissingFile(t *testing.T) {
	c := newTestClient(&fakeS3{})
	_, err := c.ArchiveRender(context.Background(),
		&types.VideoArtifact{Path: filepath.Join(t.TempDir(), "absent.mp4")},
		&types.QuoteContent{}, &types.NarrationTimeline{})
	if err == nil {
		t.Fatal("expected error for missing artifact")
	}
}

func TestExists(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		c := newTestClient(&fakeS3{})
		ok, err := c.Exists(context.Background(), "some/key")
		if err != nil || !ok {
			t.Fatalf("got %v, %v", ok, err)
		}
	})

	t.Run("not found api code", func(t *testing.T) {
		c := newTestClient(&fakeS3{headErr: &smithy.GenericAPIError{Code: "NotFound"}})
		ok, err := c.Exists(context.Background(), "some/key")
		if err != nil || ok {
			t.Fatalf("got %v, %v", ok, err)
		}
	})

	t.Run("other failure surfaces", func(t *testing.T) {
		c := newTestClient(&fakeS3{headErr: errors.New("throttled")})
		if _, err := c.Exists(context.Background(), "some/key"); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestListReturnsKeys(t *testing.T) {
	c := newTestClient(&fakeS3{keys: []string{"videos/2026/08/24/a.mp4", "videos/2026/08/24/b.mp4"}})
	keys, err := c.List(context.Background(), "videos/", 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 2 || keys[0] != "videos/2026/08/24/a.mp4" {
		t.Fatalf("keys = %v", keys)
	}
}
