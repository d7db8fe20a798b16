package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"wisdombot/progress"
	"wisdombot/types"
)

func TestHandleStatusSyncsModel(t *testing.T) {
	m := NewModel("http://localhost:8090")

	next, _ := m.Update(StatusMsg{Status: &types.StatusResponse{
		State: types.StateNarrating,
		JobID: "job-1",
		Logs:  []types.LogEntry{{Message: "render job-1 started"}},
	}})

	got := next.(Model)
	if !got.Connected {
		t.Fatal("expected connected after successful poll")
	}
	if got.State != types.StateNarrating || got.JobID != "job-1" {
		t.Fatalf("state not synced: %s/%s", got.State, got.JobID)
	}
	if len(got.Logs) != 1 {
		t.Fatalf("logs = %d, want 1", len(got.Logs))
	}
}

func TestHandleStatusFailureMarksDisconnected(t *testing.T) {
	m := NewModel("http://localhost:8090")
	m.Connected = true
	m.State = types.StateComposing

	next, _ := m.Update(StatusMsg{Err: errors.New("connection refused")})

	got := next.(Model)
	if got.Connected {
		t.Fatal("expected disconnected after failed poll")
	}
	if got.State != types.StateComposing {
		t.Fatalf("stale state should be kept, got %s", got.State)
	}
	if got.Err == nil {
		t.Fatal("poll error not recorded")
	}
}

func TestHandleHistoryKeepsOldRecordsOnError(t *testing.T) {
	m := NewModel("http://localhost:8090")
	m.History = []progress.Record{{QuoteID: 7}}

	next, _ := m.Update(HistoryMsg{Err: errors.New("boom")})

	got := next.(Model)
	if len(got.History) != 1 || got.History[0].QuoteID != 7 {
		t.Fatalf("history lost on poll error: %+v", got.History)
	}
}

func TestHandleRenderSubmitted(t *testing.T) {
	m := NewModel("http://localhost:8090")

	next, cmd := m.Update(RenderSubmittedMsg{JobID: "0123456789ab", Upload: true})
	got := next.(Model)
	if !strings.Contains(got.Notice, "render+upload 01234567") {
		t.Fatalf("notice = %q", got.Notice)
	}
	if cmd == nil {
		t.Fatal("expected immediate status poll after submit")
	}
}

func TestHandleRenderSubmittedRefusal(t *testing.T) {
	m := NewModel("http://localhost:8090")

	next, _ := m.Update(RenderSubmittedMsg{Err: errors.New("render refused: busy")})
	got := next.(Model)
	if !strings.Contains(got.Notice, "refused") {
		t.Fatalf("notice = %q", got.Notice)
	}
}

func TestKeyQuit(t *testing.T) {
	m := NewModel("http://localhost:8090")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("cmd produced %T, want tea.QuitMsg", cmd())
	}
}

func TestKeyRenderSetsNotice(t *testing.T) {
	m := NewModel("http://localhost:8090")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	got := next.(Model)
	if got.Notice == "" {
		t.Fatal("expected submit notice")
	}
	if cmd == nil {
		t.Fatal("expected submit command")
	}
}

func TestTickSchedulesPolls(t *testing.T) {
	m := NewModel("http://localhost:8090")

	if _, cmd := m.Update(TickMsg{}); cmd == nil {
		t.Fatal("tick must schedule the next poll cycle")
	}
}

func TestViewShowsStateAndHistory(t *testing.T) {
	m := NewModel("http://localhost:8090")
	m.Connected = true
	m.State = types.StateComposing
	m.JobID = "job-1"
	m.History = []progress.Record{{QuoteID: 7, Philosopher: "marcus_aurelius", Category: "discipline", Status: "generated"}}

	out := m.View()
	if !strings.Contains(out, "Composing video") {
		t.Fatalf("state missing from view:\n%s", out)
	}
	if !strings.Contains(out, "marcus_aurelius") {
		t.Fatalf("history missing from view:\n%s", out)
	}
}

func TestViewDisconnected(t *testing.T) {
	m := NewModel("http://localhost:8090")
	m.Err = errors.New("connection refused")

	if out := m.View(); !strings.Contains(out, "unreachable") {
		t.Fatalf("view = %s", out)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate(short) = %q", got)
	}
	got := truncate("the quick brown fox jumps over the lazy dog", 10)
	if len([]rune(got)) != 10 || !strings.HasSuffix(got, "…") {
		t.Fatalf("truncate = %q", got)
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("0123456789"); got != "01234567" {
		t.Fatalf("shortID = %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Fatalf("shortID(short) = %q", got)
	}
}

func TestHistoryLineShowsUpload(t *testing.T) {
	line := historyLine(progress.Record{QuoteID: 7, Philosopher: "seneca", Category: "resilience", Status: "generated", YouTubeID: "abc123"})
	if !strings.Contains(line, "uploaded (abc123)") {
		t.Fatalf("line = %q", line)
	}
}
