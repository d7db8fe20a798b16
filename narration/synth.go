// Package narration synthesizes the four-part spoken track and assembles it
// into one audio artifact with exact per-segment timestamps. Overlay timing
// downstream depends on these timestamps being truthful.
package narration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"wisdombot/logx"
	"wisdombot/retry"
)

// ErrSynthesisFailed wraps any terminal speech-backend failure. The run
// aborts on it; there is no usable narration without the backend.
var ErrSynthesisFailed = errors.New("speech synthesis failed")

const synthTimeout = 30 * time.Second

// VoiceParams tunes the narration voice on the speak service.
type VoiceParams struct {
	Voice string
	Rate  string
	Pitch string
}

// Synthesizer converts a text into spoken audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// SpeechClient calls an HTTP speak service. Transient failures are retried
// with quadratic backoff before the error is surfaced as fatal.
type SpeechClient struct {
	baseURL string
	apiKey  string
	voice   VoiceParams
	client  *http.Client
	policy  retry.Policy
	log     zerolog.Logger
}

// NewSpeechClient builds a client against the speak service at baseURL.
func NewSpeechClient(baseURL, apiKey string, voice VoiceParams) *SpeechClient {
	return &SpeechClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		voice:   voice,
		client:  &http.Client{Timeout: synthTimeout},
		policy: retry.Policy{
			MaxAttempts: 3,
			BaseDelay:   500 * time.Millisecond,
		},
		log: logx.WithComponent("tts"),
	}
}

// Synthesize renders text to audio bytes. An empty response body counts as
// a failure; callers never receive a zero-length clip.
func (c *SpeechClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	payload, err := json.Marshal(map[string]string{
		"text":  text,
		"voice": c.voice.Voice,
		"rate":  c.voice.Rate,
		"pitch": c.voice.Pitch,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %w", ErrSynthesisFailed, err)
	}

	var audio []byte
	op := func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Token "+c.apiKey)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("speak service returned status %d", resp.StatusCode)
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if len(data) == 0 {
			return fmt.Errorf("speak service returned empty audio")
		}
		audio = data
		return nil
	}

	if err := retry.Do(ctx, c.policy, op); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSynthesisFailed, err)
	}
	c.log.Debug().Int("bytes", len(audio)).Int("chars", len(text)).Msg("synthesized segment")
	return audio, nil
}
