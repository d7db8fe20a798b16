// Command wisdomtui is a terminal dashboard for a running renderd. It polls
// job status and render history and submits new renders on a keypress.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"wisdombot/config"
	"wisdombot/logx"
	"wisdombot/tui"
)

func main() {
	_ = godotenv.Load()

	url := flag.String("url", "", "renderd base URL (overrides RENDERD_URL)")
	flag.Parse()

	// The program owns the terminal; keep library log noise off it.
	logx.Configure(logx.Config{Level: "error"})

	cfg := config.Load()
	if *url != "" {
		cfg.RenderdURL = *url
	}

	program := tea.NewProgram(tui.NewModel(cfg.RenderdURL))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		program.Quit()
	}()

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "wisdomtui: %v\n", err)
		os.Exit(1)
	}
}
