package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/dsatutor/internal/chatlog"
	"github.com/abhisek/dsatutor/internal/router"
	"github.com/abhisek/dsatutor/internal/screen"
	"github.com/abhisek/dsatutor/internal/ui/layout"
	"github.com/abhisek/dsatutor/internal/ui/theme"
)

type historyLoadedMsg struct {
	Sessions []chatlog.SessionRecord
	Turns    map[string][]chatlog.TurnRecord // keyed by session id
	Err      error
}

// HistoryScreen displays past recorded sessions.
type HistoryScreen struct {
	repo     chatlog.TranscriptRepo
	sessions []chatlog.SessionRecord
	turns    map[string][]chatlog.TurnRecord
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(repo chatlog.TranscriptRepo) *HistoryScreen {
	return &HistoryScreen{
		repo:     repo,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		if s.repo == nil {
			return historyLoadedMsg{}
		}
		ctx := context.Background()

		sessions, err := s.repo.RecentSessions(ctx, 50)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}

		turns := make(map[string][]chatlog.TurnRecord)
		for _, sess := range sessions {
			ts, err := s.repo.SessionTurns(ctx, sess.SessionID)
			if err != nil {
				continue
			}
			turns[sess.SessionID] = ts
		}

		return historyLoadedMsg{Sessions: sessions, Turns: turns}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sessions = msg.Sessions
			s.turns = msg.Turns
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.sessions) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No sessions yet. Start tutoring!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, sess := range s.sessions {
		dateStr := sess.StartedAt.Format("Jan 02, 2006 15:04")

		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		line := fmt.Sprintf("%s%s  %s  %d turns",
			prefix, dateStr, sess.SessionID, sess.TurnCount)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString("  " + style.Render(line))
		b.WriteString("\n")

		if s.expanded[i] {
			b.WriteString(s.renderTurns(sess.SessionID, width))
		}
	}

	return b.String()
}

func (s *HistoryScreen) renderTurns(sessionID string, width int) string {
	turns := s.turns[sessionID]
	if len(turns) == 0 {
		return "      " + theme.Hint.Render("No turns recorded") + "\n"
	}

	var b strings.Builder
	for _, t := range turns {
		label := theme.TutorLabel.Render("Tutor")
		if t.Role == "student" {
			label = theme.StudentLabel.Render("You")
		}
		text := t.Text
		if maxw := width - 20; maxw > 0 && len(text) > maxw {
			text = text[:maxw] + "…"
		}
		b.WriteString(fmt.Sprintf("      %s  %s",
			label, lipgloss.NewStyle().Foreground(theme.TextDim).Render(text)))
		if t.Graded {
			if t.Correct {
				b.WriteString("  " + theme.Correct.Render("✔"))
			} else {
				b.WriteString("  " + theme.Incorrect.Render("✘"))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
