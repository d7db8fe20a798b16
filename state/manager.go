// Package state tracks what the render daemon is doing: the active job, the
// last result and a bounded activity log served to the API and the TUI.
package state

import (
	"fmt"
	"sync"
	"time"

	"wisdombot/types"
)

// maxLogs bounds the activity ring; older entries fall off.
const maxLogs = 50

// Manager holds the daemon state with thread-safe access. One render runs at
// a time; Begin refuses a second.
type Manager struct {
	mu         sync.RWMutex
	state      types.RenderState
	jobID      string
	logs       []types.LogEntry
	lastResult *types.RenderResult
	lastErr    error
}

func NewManager() *Manager {
	return &Manager{
		state: types.StateIdle,
		logs:  make([]types.LogEntry, 0),
	}
}

// Begin claims the manager for a new job. It fails when a render is already
// in flight.
func (m *Manager) Begin(jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.busyLocked() {
		return fmt.Errorf("render %s already in progress", m.jobID)
	}

	m.state = types.StateSelecting
	m.jobID = jobID
	m.lastErr = nil
	m.appendLocked(fmt.Sprintf("render %s started", jobID))
	return nil
}

// Busy reports whether a job is currently in flight.
func (m *Manager) Busy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.busyLocked()
}

// SetState moves the lifecycle along without logging.
func (m *Manager) SetState(s types.RenderState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
}

// State returns the current lifecycle state.
func (m *Manager) State() types.RenderState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Logf appends a formatted entry to the activity log.
func (m *Manager) Logf(format string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendLocked(fmt.Sprintf(format, args...))
}

// Fail records a failed run. The failed job id stays visible in the snapshot
// for diagnosis.
func (m *Manager) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = types.StateError
	m.lastErr = err
	m.appendLocked(fmt.Sprintf("error: %v", err))
}

// Finish records a completed run and its result.
func (m *Manager) Finish(res *types.RenderResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r := *res
	if r.FinishedAt.IsZero() {
		r.FinishedAt = time.Now().UTC()
	}
	if r.JobID == "" {
		r.JobID = m.jobID
	}

	m.state = types.StateComplete
	m.lastResult = &r
	m.lastErr = nil
	m.appendLocked(fmt.Sprintf("render %s complete (%.1fs)", r.JobID, r.Duration))
}

// Snapshot returns a copy of the current state safe for serialization.
func (m *Manager) Snapshot() types.StatusResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := types.StatusResponse{
		State: m.state,
		JobID: m.jobID,
		Logs:  append([]types.LogEntry{}, m.logs...),
	}
	if m.lastResult != nil {
		r := *m.lastResult
		s.LastResult = &r
	}
	if m.lastErr != nil {
		s.Error = m.lastErr.Error()
	}
	return s
}

// busyLocked reports in-flight work; the caller must hold mu.
func (m *Manager) busyLocked() bool {
	switch m.state {
	case types.StateIdle, types.StateComplete, types.StateError:
		return false
	}
	return true
}

// appendLocked adds a log entry; the caller must hold mu.
func (m *Manager) appendLocked(message string) {
	m.logs = append(m.logs, types.LogEntry{Timestamp: time.Now().UTC(), Message: message})
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}
