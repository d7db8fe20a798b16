package feeds

import (
	"regexp"
	"strings"

	"wisdombot/types"
)

// Word bounds for a quote worth curating. Anything shorter is usually a
// fragment; anything longer will not fit a short-form video.
const (
	minQuoteWords = 5
	maxQuoteWords = 40
)

var (
	// First “...” or "..." span in a line.
	quotedSpan = regexp.MustCompile(`“([^”]+)”|"([^"]+)"`)
	// Trailing attribution like "— Marcus Aurelius" or "- Zeno of Citium".
	attribution = regexp.MustCompile(`[—–-]\s*([A-Z][A-Za-z.]*(?:\s+(?:[A-Z][A-Za-z.]*|of|the|de|von))*)\s*$`)
)

// Candidate is a quote line mined from an article, pending human review
// before it enters the quote database.
type Candidate struct {
	Text        string `json:"text"`
	Author      string `json:"author"`
	SourceTitle string `json:"source_title,omitempty"`
	SourceURL   string `json:"source_url,omitempty"`
}

// Mine scans extracted article text for attributable quote lines. authors
// are display names recognized in prose; a dash attribution wins over a
// prose mention and may credit an author outside the configured set.
func Mine(articles []*types.Article, authors []string) []Candidate {
	var out []Candidate
	seen := make(map[string]bool)

	for _, a := range articles {
		text := a.FullContentText
		if text == "" {
			text = a.Summary
		}

		for _, line := range strings.Split(text, "\n") {
			c, ok := mineLine(strings.TrimSpace(line), authors)
			if !ok {
				continue
			}

			key := normalizeKey(c.Text)
			if seen[key] {
				continue
			}
			seen[key] = true

			c.SourceTitle = a.Title
			c.SourceURL = a.URL
			out = append(out, c)
		}
	}
	return out
}

// mineLine decides whether one line holds a usable quote. Uncredited lines
// are rejected; a curator cannot attribute them.
func mineLine(line string, authors []string) (Candidate, bool) {
	if line == "" {
		return Candidate{}, false
	}

	quoted := quotedText(line)
	author := attributedAuthor(line)

	text := quoted
	if text == "" {
		if author == "" {
			return Candidate{}, false
		}
		// Unquoted "text — Author" form.
		text = strings.Trim(strings.TrimSpace(attribution.ReplaceAllString(line, "")), `"“”`)
	}
	if author == "" {
		author = matchAuthor(line, authors)
	}
	if author == "" {
		return Candidate{}, false
	}

	words := len(strings.Fields(text))
	if words < minQuoteWords || words > maxQuoteWords {
		return Candidate{}, false
	}
	return Candidate{Text: strings.TrimSpace(text), Author: author}, true
}

func quotedText(line string) string {
	m := quotedSpan.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	if m[1] != "" {
		return m[1]
	}
	return m[2]
}

func attributedAuthor(line string) string {
	m := attribution.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// matchAuthor returns the first configured display name mentioned in line.
func matchAuthor(line string, authors []string) string {
	lower := strings.ToLower(line)
	for _, a := range authors {
		if a != "" && strings.Contains(lower, strings.ToLower(a)) {
			return a
		}
	}
	return ""
}

func normalizeKey(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
