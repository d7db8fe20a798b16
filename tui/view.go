package tui

import (
	"fmt"
	"strings"

	"wisdombot/progress"
	"wisdombot/types"
)

// logTail bounds the activity panel.
const logTail = 8

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("🏛  Stoic Wisdom render daemon"))
	b.WriteString("\n\n")

	b.WriteString(m.stateText())
	b.WriteString("\n\n")

	if m.State == types.StateComplete && m.LastResult != nil {
		b.WriteString(BoxStyle.Render(m.formatResult()))
		b.WriteString("\n\n")
	}

	if len(m.Logs) > 0 {
		b.WriteString(InfoStyle.Render("📝 Recent activity:"))
		b.WriteString("\n")
		logs := m.Logs
		if len(logs) > logTail {
			logs = logs[len(logs)-logTail:]
		}
		for _, e := range logs {
			line := fmt.Sprintf("   %s %s", e.Timestamp.Local().Format("15:04:05"), e.Message)
			b.WriteString(InfoStyle.Render(line))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(m.History) > 0 {
		b.WriteString(InfoStyle.Render("📼 Recent renders:"))
		b.WriteString("\n")
		for _, r := range m.History {
			b.WriteString(InfoStyle.Render("   " + historyLine(r)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.Notice != "" {
		b.WriteString(StatusStyle.Render(m.Notice))
		b.WriteString("\n\n")
	}

	b.WriteString(InfoStyle.Render("Press 'r' to render | 'u' to render+upload | 'q' to quit"))
	return b.String()
}

func (m Model) stateText() string {
	if !m.Connected {
		msg := "renderd unreachable"
		if m.Err != nil {
			msg = fmt.Sprintf("renderd unreachable: %v", m.Err)
		}
		return ErrorStyle.Render("❌ " + msg)
	}

	job := ""
	if m.JobID != "" {
		job = fmt.Sprintf(" (job %s)", shortID(m.JobID))
	}

	switch m.State {
	case types.StateIdle:
		return HighlightStyle.Render("👋 Ready")
	case types.StateSelecting:
		return StatusStyle.Render("🔍 Selecting quote..." + job)
	case types.StateNarrating:
		return StatusStyle.Render("🎙 Synthesizing narration..." + job)
	case types.StateAcquiring:
		return StatusStyle.Render("🎞 Fetching background footage..." + job)
	case types.StateComposing:
		return StatusStyle.Render("🎬 Composing video..." + job)
	case types.StateUploading:
		return StatusStyle.Render("📤 Uploading to YouTube..." + job)
	case types.StateComplete:
		return HighlightStyle.Render("✅ Complete")
	case types.StateError:
		msg := m.StatusErr
		if msg == "" {
			msg = "unknown error"
		}
		return ErrorStyle.Render("❌ " + msg)
	default:
		return StatusStyle.Render(string(m.State))
	}
}

func (m Model) formatResult() string {
	r := m.LastResult
	var b strings.Builder

	b.WriteString(HighlightStyle.Render("Last render"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Quote #%d — %s\n", r.QuoteID, r.AuthorName))
	b.WriteString(InfoStyle.Render(truncate(r.QuoteText, 80)))
	b.WriteString("\n")

	if r.VideoPath != "" {
		b.WriteString(fmt.Sprintf("\nVideo: %s (%.1fs)\n", r.VideoPath, r.Duration))
	}
	if r.UploadID != "" {
		b.WriteString(fmt.Sprintf("YouTube: https://youtube.com/shorts/%s\n", r.UploadID))
	}
	if r.ArchiveKey != "" {
		b.WriteString(fmt.Sprintf("Archive: %s\n", r.ArchiveKey))
	}
	return strings.TrimRight(b.String(), "\n")
}

func historyLine(r progress.Record) string {
	status := r.Status
	if r.YouTubeID != "" {
		status = fmt.Sprintf("uploaded (%s)", r.YouTubeID)
	}
	return fmt.Sprintf("#%-3d %-18s %-12s %s", r.QuoteID, r.Philosopher, r.Category, status)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
