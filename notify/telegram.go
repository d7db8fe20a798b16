// Package notify pushes run outcomes to a Telegram chat through the Bot API.
// Notifications are best-effort: failures are logged and never fail a run.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"wisdombot/logx"
)

const sendTimeout = 30 * time.Second

// Notifier sends messages to one configured chat. Missing token or chat id
// is valid configuration and turns every send into a no-op, the same way a
// missing cascade file disables the clip filter.
type Notifier struct {
	token  string
	chatID string
	api    string
	client *http.Client
	log    zerolog.Logger
}

// New builds a notifier for the given bot token and chat id. Either may be
// empty, which disables sending.
func New(token, chatID string) *Notifier {
	return &Notifier{
		token:  token,
		chatID: chatID,
		api:    "https://api.telegram.org",
		client: &http.Client{Timeout: sendTimeout},
		log:    logx.WithComponent("notify"),
	}
}

// Configured reports whether sends will actually reach Telegram.
func (n *Notifier) Configured() bool {
	return n != nil && n.token != "" && n.chatID != ""
}

// UploadSucceeded announces a published video with its watch link.
func (n *Notifier) UploadSucceeded(ctx context.Context, videoURL string) {
	n.send(ctx, fmt.Sprintf(
		"🎉 <b>Upload Successful!</b>\n\n🔗 <a href=%q>%s</a>\n\nThe Stoic Wisdom Short is now live on YouTube!",
		videoURL, html.EscapeString(videoURL)))
}

// UploadFailed reports a failed upload. The rendered video is still on disk,
// so the message points the operator at a manual retry.
func (n *Notifier) UploadFailed(ctx context.Context, reason string) {
	n.send(ctx, fmt.Sprintf(
		"⚠️ <b>Upload Failed</b>\n\nError: <code>%s</code>\n\nThe video has been saved locally. You can retry manually.",
		html.EscapeString(reason)))
}

func (n *Notifier) send(ctx context.Context, text string) {
	if !n.Configured() {
		return
	}

	payload, err := json.Marshal(map[string]string{
		"chat_id":    n.chatID,
		"text":       text,
		"parse_mode": "HTML",
	})
	if err != nil {
		n.log.Warn().Err(err).Msg("telegram payload encode failed")
		return
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.api, n.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		n.log.Warn().Err(err).Msg("telegram request build failed")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.log.Warn().Err(err).Msg("telegram send failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		n.log.Warn().Int("status", resp.StatusCode).Str("body", string(body)).Msg("telegram send rejected")
	}
}
