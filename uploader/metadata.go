// Package uploader publishes rendered videos to YouTube and builds the
// channel-facing metadata (title, description, tags) for each one.
package uploader

import (
	"math/rand"
	"strings"
	"unicode"

	"wisdombot/types"
)

const (
	maxTitleLen = 100
	maxTags     = 30
	categoryID  = "22" // People & Blogs
)

// titleTemplates are rotated across uploads so consecutive videos from the
// same author do not share a headline.
var titleTemplates = []string{
	"{author} Said THIS About {category}...",
	"This {author} Quote Will Change Your Life",
	"{author}'s Most Powerful Words on {category}",
	"Ancient Wisdom You Need to Hear | {author}",
	"{author} on {category} | Timeless Truth",
	"The {author} Quote Everyone Should Know",
	"Listen to {author}'s Words on {category}",
	"{category}: A Lesson From {author}",
}

const descriptionTemplate = `"{quote_text}"

— {author_name}, {source}

━━━━━━━━━━━━━━━━━━━━
📖 About this quote:
This powerful insight from {author_name} ({era}) teaches us about {category}.
{author_name} was a {title} known for {notable_work}.

━━━━━━━━━━━━━━━━━━━━
🏛️ Follow Stoic Wisdom for daily philosophy quotes that transform the way you think.

#StoicWisdom #{author_tag} #Philosophy #Wisdom #Motivation #Shorts #PhilosophyQuotes #{category_tag} #DailyWisdom #StoicPhilosophy #MindsetShift #PersonalGrowth
`

var defaultTags = []string{
	"stoic wisdom", "philosophy quotes", "stoicism", "motivation",
	"wisdom", "stoic", "life advice", "mindset", "self improvement",
	"philosophy", "shorts", "motivational", "ancient wisdom",
	"daily wisdom", "personal growth", "marcus aurelius", "seneca",
	"epictetus", "stoic quotes",
}

// Metadata is the complete YouTube listing for one rendered video.
type Metadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// BuildMetadata assembles the title, description and tag set for a prepared
// quote. The title template is drawn from rnd so batch runs rotate through
// the pool; tags are order-preserving unique and capped at the API limit.
func BuildMetadata(rnd *rand.Rand, content *types.QuoteContent) Metadata {
	categoryDisplay := titleCase(strings.ReplaceAll(content.Category, "_", " "))

	tpl := titleTemplates[rnd.Intn(len(titleTemplates))]
	title := strings.NewReplacer(
		"{author}", content.AuthorName,
		"{category}", categoryDisplay,
	).Replace(tpl)
	if len(title) > maxTitleLen {
		title = title[:maxTitleLen]
	}

	era, role, notableWork := "Ancient", "Philosopher", content.Source
	if m := content.Meta; m != nil {
		if m.Era != "" {
			era = m.Era
		}
		if m.Title != "" {
			role = m.Title
		}
		if m.NotableWork != "" {
			notableWork = m.NotableWork
		}
	}

	description := strings.NewReplacer(
		"{quote_text}", content.Text,
		"{author_name}", content.AuthorName,
		"{source}", content.Source,
		"{era}", era,
		"{title}", role,
		"{notable_work}", notableWork,
		"{category}", categoryDisplay,
		"{author_tag}", strings.ReplaceAll(content.AuthorName, " ", ""),
		"{category_tag}", strings.ReplaceAll(categoryDisplay, " ", ""),
	).Replace(descriptionTemplate)

	specific := []string{
		strings.ToLower(content.AuthorName),
		strings.ToLower(content.AuthorName) + " quotes",
		strings.ToLower(content.Category),
		strings.ToLower(categoryDisplay) + " quotes",
		strings.ToLower(content.Source),
	}

	tags := make([]string, 0, len(defaultTags)+len(specific))
	seen := make(map[string]struct{}, len(defaultTags)+len(specific))
	add := func(t string) {
		if t == "" || len(tags) >= maxTags {
			return
		}
		if _, dup := seen[t]; dup {
			return
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	for _, t := range defaultTags {
		add(t)
	}
	for _, t := range specific {
		add(t)
	}

	return Metadata{Title: title, Description: description, Tags: tags}
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
