// Package background produces one usable background clip per run: remote
// stock footage when available, falling back through an on-disk cache to the
// static local pool. Accepted clips are graded and animated for compositing.
package background

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"

	"wisdombot/config"
	"wisdombot/logx"
)

const (
	searchTimeout   = 10 * time.Second
	downloadTimeout = 60 * time.Second
)

// CandidateFile is one downloadable rendition of a stock video.
type CandidateFile struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Link   string `json:"link"`
}

// Candidate is a stock video hit from a provider search.
type Candidate struct {
	ID       int             `json:"id"`
	Duration int             `json:"duration"`
	Files    []CandidateFile `json:"video_files"`
}

// Provider searches and downloads remote stock footage. Search returns
// (nil, nil) when nothing usable matched; both calls failing or returning
// empty is an expected outcome, not a pipeline error.
type Provider interface {
	Search(ctx context.Context, query string) (*Candidate, error)
	Download(ctx context.Context, c *Candidate, destDir string) (string, error)
}

// PexelsClient talks to the Pexels video search API.
type PexelsClient struct {
	apiKey  string
	baseURL string
	search  *http.Client
	fetch   *http.Client
	rand    *rand.Rand
	log     zerolog.Logger
}

// NewPexelsClient builds a client for the given API key. An empty key is
// allowed; Search then always reports no candidates so the acquisition chain
// falls through to local sources.
func NewPexelsClient(apiKey string) *PexelsClient {
	return &PexelsClient{
		apiKey:  apiKey,
		baseURL: "https://api.pexels.com/videos/search",
		search:  &http.Client{Timeout: searchTimeout},
		fetch:   &http.Client{Timeout: downloadTimeout},
		rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
		log:     logx.WithComponent("pexels"),
	}
}

// Search queries portrait stock footage and returns one random candidate
// within the usable duration range, or nil when nothing matched.
func (p *PexelsClient) Search(ctx context.Context, query string) (*Candidate, error) {
	if p.apiKey == "" {
		p.log.Warn().Msg("no API key set, skipping remote search")
		return nil, nil
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", fmt.Sprintf("%d", config.SearchPerPage))
	params.Set("orientation", config.SearchOrientation)
	params.Set("size", "medium")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Authorization", p.apiKey)

	resp, err := p.search.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search %q: status %d", query, resp.StatusCode)
	}

	var payload struct {
		Videos []Candidate `json:"videos"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	valid := make([]Candidate, 0, len(payload.Videos))
	for _, v := range payload.Videos {
		if v.Duration >= config.SearchMinDuration && v.Duration <= config.SearchMaxDuration {
			valid = append(valid, v)
		}
	}
	if len(valid) == 0 {
		return nil, nil
	}

	chosen := valid[p.rand.Intn(len(valid))]
	return &chosen, nil
}

// Download fetches the best rendition of the candidate into destDir and
// returns the local path. The file is written atomically so a concurrent
// reader of the cache directory never observes a partial clip.
func (p *PexelsClient) Download(ctx context.Context, c *Candidate, destDir string) (string, error) {
	file := bestFile(c.Files)
	if file == nil {
		return "", fmt.Errorf("candidate %d has no downloadable files", c.ID)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", err
	}
	dest := filepath.Join(destDir, fmt.Sprintf("pexels_%d_%dp.mp4", c.ID, file.Height))
	if _, err := os.Stat(dest); err == nil {
		return dest, nil
	}

	p.log.Info().Int("id", c.ID).Int("width", file.Width).Int("height", file.Height).Msg("downloading stock clip")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link, nil)
	if err != nil {
		return "", fmt.Errorf("build download request: %w", err)
	}
	resp, err := p.fetch.Do(req)
	if err != nil {
		return "", fmt.Errorf("download candidate %d: %w", c.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download candidate %d: status %d", c.ID, resp.StatusCode)
	}

	pending, err := renameio.NewPendingFile(dest, renameio.WithPermissions(0o644))
	if err != nil {
		return "", fmt.Errorf("stage download: %w", err)
	}
	defer pending.Cleanup()

	if _, err := io.Copy(pending, resp.Body); err != nil {
		return "", fmt.Errorf("write clip: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return "", fmt.Errorf("finalize clip: %w", err)
	}
	return dest, nil
}

// bestFile prefers the highest-resolution rendition that meets the portrait
// floor, falling back to the largest available.
func bestFile(files []CandidateFile) *CandidateFile {
	if len(files) == 0 {
		return nil
	}

	sorted := make([]CandidateFile, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Width*sorted[i].Height > sorted[j].Width*sorted[j].Height
	})

	for i := range sorted {
		if sorted[i].Width >= config.MinClipWidth && sorted[i].Height >= config.MinClipHeight {
			return &sorted[i]
		}
	}
	return &sorted[0]
}
