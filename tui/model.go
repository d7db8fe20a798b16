// Package tui is a terminal dashboard for the render daemon. It is a thin
// client: all state lives in renderd and the model only mirrors what the
// status endpoint reports.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"wisdombot/progress"
	"wisdombot/types"
)

// Model mirrors the daemon state for display.
type Model struct {
	client *Client

	// Synced from /api/status.
	State      types.RenderState
	JobID      string
	Logs       []types.LogEntry
	LastResult *types.RenderResult
	StatusErr  string

	// Synced from /api/history.
	History []progress.Record

	Connected bool
	Notice    string
	Err       error
}

// NewModel builds a dashboard model pointed at the renderd base URL.
func NewModel(baseURL string) Model {
	return Model{
		client: NewClient(baseURL),
		State:  types.StateIdle,
	}
}

// Init starts the poll loop.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		pollStatus(m.client),
		pollHistory(m.client),
		tickCmd(),
	)
}

// busy reports whether the daemon has a render in flight.
func (m Model) busy() bool {
	switch m.State {
	case types.StateIdle, types.StateComplete, types.StateError:
		return false
	}
	return true
}
