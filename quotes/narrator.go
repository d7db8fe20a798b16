package quotes

import (
	"context"
	"fmt"
	"math/rand"

	"wisdombot/types"
)

// Narrator produces the spoken framing around a quote: the intro hook before
// it and the modern reflection after it.
type Narrator interface {
	Hook(ctx context.Context, authorName string, meta *types.Philosopher) string
	Reflection(ctx context.Context, quoteText, category string) string
}

// TemplateNarrator picks lines from curated pools. Deterministic given its
// random source and needs no network.
type TemplateNarrator struct {
	rnd *rand.Rand
}

func NewTemplateNarrator(rnd *rand.Rand) *TemplateNarrator {
	return &TemplateNarrator{rnd: rnd}
}

// Hook builds the narrator intro from philosopher metadata. Richer metadata
// unlocks more specific templates; with no metadata at all the line is a
// plain attribution.
func (n *TemplateNarrator) Hook(_ context.Context, authorName string, meta *types.Philosopher) string {
	if meta == nil {
		return fmt.Sprintf("%s once said.", authorName)
	}
	name := meta.Name
	if name == "" {
		name = authorName
	}

	var pool []string
	if meta.Era != "" && meta.Title != "" {
		pool = append(pool,
			fmt.Sprintf("In %s, %s, %s, left behind words that still echo today.", meta.Era, name, meta.Title),
			fmt.Sprintf("%s was a %s who lived in %s. This is one of his most powerful teachings.", name, meta.Title, meta.Era),
			fmt.Sprintf("Centuries ago, %s, known as a %s, shared a truth that has only grown more relevant.", name, meta.Title),
		)
	}
	if meta.NotableWork != "" {
		pool = append(pool,
			fmt.Sprintf("In the pages of %s, %s wrote something that would outlast empires.", meta.NotableWork, name),
			fmt.Sprintf("%s wrote these words in %s, and they still hold power today.", name, meta.NotableWork),
		)
	}
	if meta.Title != "" {
		pool = append(pool,
			fmt.Sprintf("%s, %s, once shared a truth the world still needs to hear.", name, meta.Title),
			fmt.Sprintf("Listen carefully to the words of %s, %s.", name, meta.Title),
		)
	}
	if len(pool) == 0 {
		pool = []string{
			fmt.Sprintf("Listen to the timeless words of %s.", name),
			fmt.Sprintf("%s once shared a truth that still resonates today.", name),
		}
	}
	return pool[n.rnd.Intn(len(pool))]
}

// Reflection returns the modern takeaway for the quote's category.
func (n *TemplateNarrator) Reflection(_ context.Context, _ string, category string) string {
	pool := reflectionPools[category]
	if len(pool) == 0 {
		pool = reflectionPools["wisdom"]
	}
	if len(pool) == 0 {
		pool = genericReflections
	}
	return pool[n.rnd.Intn(len(pool))]
}

// reflectionPools holds the canned takeaway lines per quote category.
var reflectionPools = map[string][]string{
	"discipline": {
		"Discipline is not about punishment. It is about choosing who you want to become, every single day.",
		"The hardest battles are fought within. Master yourself, and the world will follow.",
		"Freedom is not the absence of rules. It is the strength to govern yourself.",
	},
	"wisdom": {
		"Wisdom is not knowing everything. It is knowing what truly matters.",
		"In a world full of noise, the wisest voice is often the quietest.",
		"True understanding begins the moment you admit how little you actually know.",
	},
	"resilience": {
		"You were not built to break. You were built to bend, adapt, and rise again.",
		"Suffering is not the enemy. Surrendering to it is.",
		"The obstacle in your path is not blocking the way. It is the way.",
	},
	"virtue": {
		"Character is not built in comfort. It is forged in the moments you choose to do what is right, not what is easy.",
		"The world does not need more talented people. It needs more people with integrity.",
		"Your reputation is what others think of you. Your character is who you truly are.",
	},
	"mindfulness": {
		"Be here. Not in yesterday's regret, not in tomorrow's worry. Right here, right now.",
		"The present moment is the only moment that truly belongs to you. Do not waste it.",
		"Silence your mind, and you will hear the answers you have been searching for.",
	},
	"purpose": {
		"A life without purpose is a ship without a rudder, drifting wherever the current takes it.",
		"You do not find your purpose. You build it, one meaningful choice at a time.",
		"Wake up with intention. The world rewards those who know exactly why they rise.",
	},
	"adversity": {
		"Every setback carries a lesson. The question is whether you are willing to learn it.",
		"Pain is temporary. The strength you gain from enduring it is permanent.",
		"When life knocks you down, remember: you have gotten back up every single time before.",
	},
	"inner_peace": {
		"Peace is not the absence of chaos. It is the ability to remain calm in the middle of it.",
		"You cannot control the world around you. But you can always control the world within you.",
		"Stillness is not weakness. It is the most powerful form of strength.",
	},
}

// genericReflections backs a database whose categories carry no pool at all.
var genericReflections = []string{
	"Let these words sit with you. Sometimes the greatest truths take time to unfold.",
	"Ancient wisdom does not expire. It only becomes more necessary.",
}
