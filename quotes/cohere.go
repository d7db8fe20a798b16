package quotes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	"github.com/rs/zerolog"

	"wisdombot/logx"
	"wisdombot/types"
)

const (
	chatModel       = "command-r"
	chatTemperature = 0.7

	// maxLineWords rejects completions too long to narrate as a single line.
	maxLineWords = 60
)

// LLMNarrator asks a chat model to write the hook and reflection, falling
// back to the template pools whenever the model is unavailable, errors out
// or returns something unusable.
type LLMNarrator struct {
	client   *cohereclient.Client
	fallback Narrator
	log      zerolog.Logger
}

// NewNarrator returns the LLM-backed narrator when an API key is configured
// and the plain template narrator otherwise.
func NewNarrator(apiKey string, fallback Narrator) Narrator {
	if apiKey == "" {
		return fallback
	}
	return &LLMNarrator{
		client:   cohereclient.NewClient(cohereclient.WithToken(apiKey)),
		fallback: fallback,
		log:      logx.WithComponent("narrator"),
	}
}

func (n *LLMNarrator) Hook(ctx context.Context, authorName string, meta *types.Philosopher) string {
	line, err := n.generate(ctx, hookPrompt(authorName, meta))
	if err != nil {
		n.log.Warn().Err(err).Msg("hook generation failed, using template")
		return n.fallback.Hook(ctx, authorName, meta)
	}
	return line
}

func (n *LLMNarrator) Reflection(ctx context.Context, quoteText, category string) string {
	line, err := n.generate(ctx, reflectionPrompt(quoteText, category))
	if err != nil {
		n.log.Warn().Err(err).Msg("reflection generation failed, using template")
		return n.fallback.Reflection(ctx, quoteText, category)
	}
	return line
}

func (n *LLMNarrator) generate(ctx context.Context, prompt string) (string, error) {
	model := chatModel
	temperature := chatTemperature
	resp, err := n.client.Chat(ctx, &cohere.ChatRequest{
		Message:     prompt,
		Model:       &model,
		Temperature: &temperature,
	})
	if err != nil {
		return "", fmt.Errorf("cohere chat: %w", err)
	}

	line := strings.Join(strings.Fields(resp.Text), " ")
	line = strings.Trim(line, `"`)
	if line == "" {
		return "", errors.New("empty completion")
	}
	if words := len(strings.Fields(line)); words > maxLineWords {
		return "", fmt.Errorf("completion too long: %d words", words)
	}
	return line, nil
}

func hookPrompt(authorName string, meta *types.Philosopher) string {
	about := authorName
	if meta != nil {
		var details []string
		if meta.Title != "" {
			details = append(details, meta.Title)
		}
		if meta.Era != "" {
			details = append(details, meta.Era)
		}
		if meta.NotableWork != "" {
			details = append(details, "author of "+meta.NotableWork)
		}
		if len(details) > 0 {
			about = fmt.Sprintf("%s (%s)", authorName, strings.Join(details, ", "))
		}
	}
	return fmt.Sprintf(
		"Write one spoken narrator line that introduces the philosopher %s right before one of their quotes is read aloud. One sentence, plain text, no quotation marks.",
		about)
}

func reflectionPrompt(quoteText, category string) string {
	return fmt.Sprintf(
		"Write a one or two sentence modern reflection on this %s quote, connecting it to everyday life: %q. Speak directly to the listener, under 40 words, plain text, no hashtags.",
		category, quoteText)
}
