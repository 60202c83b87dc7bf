package home

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/dsatutor/internal/chatlog"
	"github.com/abhisek/dsatutor/internal/conversation"
	"github.com/abhisek/dsatutor/internal/router"
	"github.com/abhisek/dsatutor/internal/screen"
	"github.com/abhisek/dsatutor/internal/screens/chat"
	"github.com/abhisek/dsatutor/internal/screens/history"
	"github.com/abhisek/dsatutor/internal/ui/components"
	"github.com/abhisek/dsatutor/internal/ui/theme"
)

// HomeScreen is the entry screen of the application.
type HomeScreen struct {
	menu components.Menu
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(svc conversation.Service, transcript chatlog.TranscriptRepo) *HomeScreen {
	items := []components.MenuItem{
		{Label: "START TUTORING", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: chat.New(svc, transcript)}
			}
		}},
		{Label: "HISTORY", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: history.New(transcript)}
			}
		}},
		{Label: "QUIT", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}

	return &HomeScreen{menu: components.NewMenu(items)}
}

func (s *HomeScreen) Init() tea.Cmd {
	return nil
}

func (s *HomeScreen) Title() string {
	return "Home"
}

func (s *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *HomeScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(theme.Title.Width(width).Render("DSA Tutor"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(width).Render("Your guided path through data structures & algorithms"))
	b.WriteString("\n\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.menu.View()))
	return b.String()
}
