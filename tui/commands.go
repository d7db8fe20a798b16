package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// historyLimit bounds the history panel.
const historyLimit = 8

func pollStatus(client *Client) tea.Cmd {
	return func() tea.Msg {
		status, err := client.Status()
		return StatusMsg{Status: status, Err: err}
	}
}

func pollHistory(client *Client) tea.Cmd {
	return func() tea.Msg {
		records, err := client.History(historyLimit)
		return HistoryMsg{Records: records, Err: err}
	}
}

func submitRender(client *Client, upload bool) tea.Cmd {
	return func() tea.Msg {
		jobID, err := client.SubmitRender(upload)
		return RenderSubmittedMsg{JobID: jobID, Upload: upload, Err: err}
	}
}

// tickCmd schedules the next poll cycle.
func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}
