// Command wisdombot renders narrated Stoic quote shorts from the command
// line: single renders, sequential batches, automatic generate+upload runs,
// progress inspection and RSS quote-candidate imports.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"wisdombot/config"
	"wisdombot/feeds"
	"wisdombot/logx"
	"wisdombot/pipeline"
	"wisdombot/progress"
	"wisdombot/quotes"
)

func main() {
	_ = godotenv.Load()
	logx.Configure(logx.Config{Console: true})

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "generate":
		err = cmdGenerate(os.Args[2:])
	case "auto":
		err = cmdAuto(os.Args[2:])
	case "batch":
		err = cmdBatch(os.Args[2:])
	case "status":
		err = cmdStatus(os.Args[2:])
	case "history":
		err = cmdHistory(os.Args[2:])
	case "set-position":
		err = cmdSetPosition(os.Args[2:])
	case "import-feed":
		err = cmdImportFeed(os.Args[2:])
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `wisdombot — Stoic wisdom shorts generator

Usage:
  wisdombot generate [--philosopher KEY] [--category NAME]
  wisdombot auto [--test]
  wisdombot batch [--count N] [--upload] [--test]
  wisdombot status
  wisdombot history [--limit N]
  wisdombot set-position INDEX
  wisdombot import-feed [--feed PRESET|URL] [--count N] [--out PATH]

Examples:
  wisdombot generate --philosopher seneca   One video from Seneca
  wisdombot auto                            Generate and upload the next quote
  wisdombot batch --count 5 --upload        Five videos, uploaded as they finish
  wisdombot set-position 50                 Jump to quote #50
  wisdombot import-feed --feed dailystoic   Mine quote candidates from a feed
`)
}

func cmdGenerate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	philosopher := fs.String("philosopher", "", "filter by philosopher key")
	category := fs.String("category", "", "filter by category")
	fs.Parse(args)

	ctx := context.Background()
	app, err := pipeline.Build(ctx, config.Load(), nil)
	if err != nil {
		return err
	}
	defer app.Close()

	res, err := app.Generator.Run(ctx, pipeline.RunOptions{
		Philosopher: *philosopher,
		Category:    *category,
	})
	if err != nil {
		return err
	}
	printResult(res)
	return nil
}

func cmdAuto(args []string) error {
	fs := flag.NewFlagSet("auto", flag.ExitOnError)
	test := fs.Bool("test", false, "upload as private for verification")
	fs.Parse(args)

	ctx := context.Background()
	app, err := pipeline.Build(ctx, config.Load(), nil)
	if err != nil {
		return err
	}
	defer app.Close()

	res, err := app.Generator.Run(ctx, pipeline.RunOptions{Upload: true, PrivateTest: *test})
	if err != nil {
		// An upload failure after a successful render still leaves a
		// publishable file on disk; say where it is.
		if res != nil && res.VideoPath != "" {
			fmt.Fprintf(os.Stderr, "video rendered at %s; upload failed\n", res.VideoPath)
		}
		return err
	}
	printResult(res)
	return nil
}

func cmdBatch(args []string) error {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	count := fs.Int("count", 3, "number of videos")
	upload := fs.Bool("upload", false, "upload each video after rendering")
	test := fs.Bool("test", false, "upload as private for verification")
	fs.Parse(args)

	ctx := context.Background()
	app, err := pipeline.Build(ctx, config.Load(), nil)
	if err != nil {
		return err
	}
	defer app.Close()

	results := app.Generator.Batch(ctx, *count, pipeline.RunOptions{Upload: *upload, PrivateTest: *test})
	for _, res := range results {
		printResult(res)
	}
	fmt.Printf("\n%d/%d videos completed\n", len(results), *count)
	return nil
}

func cmdStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	fs.Parse(args)

	ctx := context.Background()
	library, store, err := openStores()
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.Stats(ctx)
	if err != nil {
		return err
	}

	fmt.Println("\n🏛  Stoic Wisdom — Status")
	fmt.Println(strings.Repeat("=", 40))
	fmt.Printf("  Current position: %d/%d\n", stats.CurrentIndex, stats.TotalQuotes)
	fmt.Printf("  Progress: %.1f%%\n", stats.PercentComplete)
	fmt.Printf("  Total generated: %d\n", stats.TotalGenerated)
	fmt.Printf("  Total uploaded: %d\n", stats.TotalUploaded)

	if len(stats.ByPhilosopher) > 0 {
		fmt.Println("\n  By philosopher:")
		keys := make([]string, 0, len(stats.ByPhilosopher))
		for k := range stats.ByPhilosopher {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			if stats.ByPhilosopher[keys[i]] != stats.ByPhilosopher[keys[j]] {
				return stats.ByPhilosopher[keys[i]] > stats.ByPhilosopher[keys[j]]
			}
			return keys[i] < keys[j]
		})
		for _, k := range keys {
			fmt.Printf("    %s: %d\n", library.PhilosopherName(k), stats.ByPhilosopher[k])
		}
	}
	return nil
}

func cmdHistory(args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	limit := fs.Int("limit", 10, "number of records")
	fs.Parse(args)

	ctx := context.Background()
	library, store, err := openStores()
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.History(ctx, *limit)
	if err != nil {
		return err
	}

	fmt.Printf("\n🏛  Stoic Wisdom — Last %d Videos\n", len(records))
	fmt.Println(strings.Repeat("=", 60))
	for _, r := range records {
		icon := "🎬"
		if r.Status == progress.StatusUploaded {
			icon = "✅"
		}
		line := fmt.Sprintf("  %s #%d | %s | %s", icon, r.QuoteID, library.PhilosopherName(r.Philosopher), r.Category)
		if r.YouTubeID != "" {
			line += " → " + r.YouTubeID
		}
		fmt.Println(line)
		if r.QuoteText != "" {
			fmt.Printf("     %q\n", truncate(r.QuoteText, 70))
		}
	}
	return nil
}

func cmdSetPosition(args []string) error {
	fs := flag.NewFlagSet("set-position", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: wisdombot set-position INDEX")
	}
	index, err := strconv.Atoi(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("index must be an integer: %q", fs.Arg(0))
	}

	ctx := context.Background()
	_, store, err := openStores()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SetPosition(ctx, index); err != nil {
		return err
	}
	fmt.Printf("✅ Position set to index %d\n", index)
	return nil
}

func cmdImportFeed(args []string) error {
	fs := flag.NewFlagSet("import-feed", flag.ExitOnError)
	feed := fs.String("feed", feeds.DefaultPreset, "feed preset name or URL")
	count := fs.Int("count", 10, "articles to fetch")
	out := fs.String("out", "", "candidate output path (default outputs/quote_candidates.json)")
	fs.Parse(args)

	cfg := config.Load()
	library, err := quotes.Open(cfg.QuotesPath, cfg.PhilosophersPath)
	if err != nil {
		return err
	}

	authors := make([]string, 0)
	for _, key := range library.PhilosopherKeys() {
		authors = append(authors, library.PhilosopherName(key))
	}

	outPath := *out
	if outPath == "" {
		outPath = filepath.Join(cfg.OutputDir, "quote_candidates.json")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	res, err := feeds.Import(context.Background(), feeds.ResolveURL(*feed), *count, authors, outPath)
	if err != nil {
		return err
	}

	fmt.Printf("\n✅ Imported %d candidate quotes from %s\n", len(res.Candidates), res.FeedURL)
	fmt.Printf("   Articles fetched: %d, extracted: %d\n", res.ArticleCount, res.ExtractedCount)
	fmt.Printf("   Candidates written to %s\n", outPath)
	return nil
}

// openStores loads the quote library and connects the progress store, enough
// for the inspection commands that never render.
func openStores() (*quotes.Store, *progress.Store, error) {
	cfg := config.Load()
	library, err := quotes.Open(cfg.QuotesPath, cfg.PhilosophersPath)
	if err != nil {
		return nil, nil, err
	}
	store, err := progress.Open(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, library.Len())
	if err != nil {
		return nil, nil, err
	}
	return library, store, nil
}

func printResult(res *pipeline.Result) {
	if res.Skipped {
		fmt.Printf("\n⏭  Quote #%d skipped as a recent duplicate\n", res.QuoteID)
		return
	}
	fmt.Printf("\n✅ Video generated: %s\n", res.VideoPath)
	fmt.Printf("   Duration: %.1fs\n", res.Duration)
	fmt.Printf("   Quote: %q\n", truncate(res.QuoteText, 80))
	fmt.Printf("   Author: %s\n", res.AuthorName)
	if res.YouTubeID != "" {
		fmt.Printf("   Uploaded: https://youtube.com/shorts/%s\n", res.YouTubeID)
	}
	if res.ArchiveKey != "" {
		fmt.Printf("   Archived: %s\n", res.ArchiveKey)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
