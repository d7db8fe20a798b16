package feeds

import (
	"fmt"
	"sync"
	"time"

	readability "github.com/go-shiori/go-readability"

	"wisdombot/logx"
	"wisdombot/types"
)

const (
	workerCount    = 5
	extractTimeout = 30 * time.Second
)

// ExtractAll fills the full page text for every article through a small
// worker pool. Failures are recorded on the article, not returned, so one
// dead link never aborts an import.
func ExtractAll(articles []*types.Article) {
	log := logx.WithComponent("feeds")
	jobs := make(chan *types.Article)

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for a := range jobs {
				if err := extract(a); err != nil {
					a.ExtractionError = err.Error()
					log.Warn().Err(err).Str("url", a.URL).Msg("content extraction failed")
				}
			}
		}()
	}

	for _, a := range articles {
		jobs <- a
	}
	close(jobs)
	wg.Wait()
}

func extract(a *types.Article) error {
	if a.URL == "" {
		return fmt.Errorf("article %q has no URL", a.Title)
	}

	page, err := readability.FromURL(a.URL, extractTimeout)
	if err != nil {
		return fmt.Errorf("readability: %w", err)
	}

	a.FullContent = page.Content
	a.FullContentText = page.TextContent
	a.Excerpt = page.Excerpt
	if a.ImageURL == "" {
		a.ImageURL = page.Image
	}
	if a.Author == "" {
		a.Author = page.Byline
	}
	return nil
}
