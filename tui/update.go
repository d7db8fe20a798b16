package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case StatusMsg:
		return m.handleStatus(msg)
	case HistoryMsg:
		return m.handleHistory(msg)
	case RenderSubmittedMsg:
		return m.handleRenderSubmitted(msg)
	case TickMsg:
		return m, tea.Batch(
			pollStatus(m.client),
			pollHistory(m.client),
			tickCmd(),
		)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "r":
		m.Notice = "submitting render..."
		return m, submitRender(m.client, false)
	case "u":
		m.Notice = "submitting render with upload..."
		return m, submitRender(m.client, true)
	}
	return m, nil
}

func (m Model) handleStatus(msg StatusMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.Connected = false
		m.Err = msg.Err
		return m, nil
	}

	m.Connected = true
	m.Err = nil
	m.State = msg.Status.State
	m.JobID = msg.Status.JobID
	m.Logs = msg.Status.Logs
	m.LastResult = msg.Status.LastResult
	m.StatusErr = msg.Status.Error
	return m, nil
}

func (m Model) handleHistory(msg HistoryMsg) (tea.Model, tea.Cmd) {
	// Connection trouble already surfaces through the status poll.
	if msg.Err == nil {
		m.History = msg.Records
	}
	return m, nil
}

func (m Model) handleRenderSubmitted(msg RenderSubmittedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.Notice = msg.Err.Error()
		return m, nil
	}

	label := "render"
	if msg.Upload {
		label = "render+upload"
	}
	m.Notice = fmt.Sprintf("%s %s accepted", label, shortID(msg.JobID))
	return m, pollStatus(m.client)
}
