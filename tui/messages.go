package tui

import (
	"time"

	"wisdombot/progress"
	"wisdombot/types"
)

// StatusMsg carries one /api/status poll result.
type StatusMsg struct {
	Status *types.StatusResponse
	Err    error
}

// HistoryMsg carries one /api/history poll result.
type HistoryMsg struct {
	Records []progress.Record
	Err     error
}

// RenderSubmittedMsg reports the outcome of a render trigger.
type RenderSubmittedMsg struct {
	JobID  string
	Upload bool
	Err    error
}

// TickMsg drives the poll loop.
type TickMsg struct {
	Time time.Time
}
