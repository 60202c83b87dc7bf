package chat

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/dsatutor/internal/chatlog"
	"github.com/abhisek/dsatutor/internal/conversation"
	"github.com/abhisek/dsatutor/internal/router"
	"github.com/abhisek/dsatutor/internal/screen"
	"github.com/abhisek/dsatutor/internal/ui/components"
	"github.com/abhisek/dsatutor/internal/ui/layout"
)

// ChatScreen implements screen.Screen for the tutoring conversation.
type ChatScreen struct {
	ctrl          *conversation.Controller
	input         components.TextInput
	choices       components.ChoiceList
	choiceMode    bool   // arrows operate the choice list
	answerQID     string // non-empty when choices answer a question
	rationaleOpen map[int]bool
}

var _ screen.Screen = (*ChatScreen)(nil)
var _ screen.KeyHintProvider = (*ChatScreen)(nil)
var _ screen.SessionTagProvider = (*ChatScreen)(nil)

// New creates a new ChatScreen with injected dependencies.
func New(svc conversation.Service, transcript chatlog.TranscriptRepo) *ChatScreen {
	return &ChatScreen{
		ctrl:          conversation.NewController(svc, transcript),
		input:         components.NewTextInput("Type a message...", 500),
		rationaleOpen: make(map[int]bool),
	}
}

func (s *ChatScreen) Init() tea.Cmd {
	cmds := []tea.Cmd{s.input.Init()}
	// Guarded in the controller: a duplicate Init is a no-op.
	if ex, ok := s.ctrl.Start(); ok {
		cmds = append(cmds, s.runExchange(ex))
	}
	return tea.Batch(cmds...)
}

func (s *ChatScreen) Title() string {
	return "Tutoring"
}

// SessionTag shows an abbreviated session identifier in the header.
func (s *ChatScreen) SessionTag() string {
	id := s.ctrl.SessionID()
	if len(id) > 11 {
		id = id[:11]
	}
	return id
}

func (s *ChatScreen) KeyHints() []layout.KeyHint {
	if !s.ctrl.Started() && s.ctrl.LastErr() != nil {
		return []layout.KeyHint{
			{Key: "R", Description: "Retry"},
			{Key: "Esc", Description: "Back"},
		}
	}
	hints := []layout.KeyHint{}
	if s.choiceMode {
		hints = append(hints,
			layout.KeyHint{Key: "↑↓", Description: "Choose"},
			layout.KeyHint{Key: "Enter", Description: "Select"},
			layout.KeyHint{Key: "Tab", Description: "Type instead"},
		)
	} else {
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Send"})
		if len(s.choices.Labels) > 0 {
			hints = append(hints, layout.KeyHint{Key: "Tab", Description: "Choices"})
		}
	}
	if t, _ := s.ctrl.LatestTutorTurn(); t != nil && t.Rationale != "" {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+W", Description: "Why?"})
	}
	hints = append(hints,
		layout.KeyHint{Key: "Ctrl+R", Description: "Restart"},
		layout.KeyHint{Key: "Esc", Description: "Back"},
	)
	return hints
}

func (s *ChatScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case exchangeDoneMsg:
		s.ctrl.Commit(msg.Outcome)
		return s, s.syncChoices()

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if !s.choiceMode {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}

	return s, nil
}

func (s *ChatScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return s, func() tea.Msg { return router.PopScreenMsg{} }

	case "ctrl+r":
		if ex, ok := s.ctrl.Reset(); ok {
			return s, s.runExchange(ex)
		}
		return s, nil

	case "ctrl+w":
		s.toggleLatestRationale()
		return s, nil

	case "tab":
		if len(s.choices.Labels) > 0 {
			s.choiceMode = !s.choiceMode
			s.choices.Focused = s.choiceMode
			if s.choiceMode {
				s.input.Blur()
				return s, nil
			}
			return s, s.input.Focus()
		}
		return s, nil
	}

	// Failed start: offer a retry instead of a dead screen.
	if !s.ctrl.Started() {
		if msg.String() == "r" || msg.String() == "R" {
			if ex, ok := s.ctrl.Start(); ok {
				return s, s.runExchange(ex)
			}
		}
		return s, nil
	}

	if s.ctrl.Busy() {
		return s, nil
	}

	if s.choiceMode {
		var label string
		var chosen bool
		s.choices, label, chosen = s.choices.Update(msg)
		if chosen {
			return s.submitChoice(label)
		}
		return s, nil
	}

	if msg.String() == "enter" {
		return s.submitText()
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

// submitChoice routes a confirmed choice: an answer when the latest
// tutor turn carries a pending question, a quick reply otherwise.
func (s *ChatScreen) submitChoice(label string) (screen.Screen, tea.Cmd) {
	var ex conversation.Exchange
	var ok bool
	if s.answerQID != "" {
		ex, ok = s.ctrl.Answer(label, s.answerQID)
	} else {
		ex, ok = s.ctrl.SelectOption(label)
	}
	if !ok {
		return s, nil
	}
	s.choiceMode = false
	s.choices = components.ChoiceList{}
	return s, s.runExchange(ex)
}

func (s *ChatScreen) submitText() (screen.Screen, tea.Cmd) {
	ex, ok := s.ctrl.SendText(s.input.Value())
	if !ok {
		return s, nil
	}
	s.input.Clear()
	return s, s.runExchange(ex)
}

func (s *ChatScreen) toggleLatestRationale() {
	if t, i := s.ctrl.LatestTutorTurn(); t != nil && t.Rationale != "" {
		s.rationaleOpen[i] = !s.rationaleOpen[i]
	}
}

// syncChoices rebuilds the interactive choice list from the latest
// tutor turn and moves keyboard focus accordingly. A pending
// question's choices take precedence over quick-reply options.
func (s *ChatScreen) syncChoices() tea.Cmd {
	s.answerQID = ""
	s.choices = components.ChoiceList{}
	s.choiceMode = false

	if t, _ := s.ctrl.LatestTutorTurn(); t != nil {
		switch {
		case t.Question != nil && len(t.Question.Choices) > 0:
			s.answerQID = t.Question.ID
			s.choices = components.NewChoiceList(t.Question.Choices)
			s.choiceMode = true
		case len(t.Options) > 0:
			s.choices = components.NewChoiceList(t.Options)
			s.choiceMode = true
		}
	}

	if s.choiceMode {
		s.input.Blur()
		return nil
	}
	return s.input.Focus()
}

func (s *ChatScreen) runExchange(ex conversation.Exchange) tea.Cmd {
	ctrl := s.ctrl
	return func() tea.Msg {
		return exchangeDoneMsg{Outcome: ctrl.Run(context.Background(), ex)}
	}
}
