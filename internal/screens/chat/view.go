package chat

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/dsatutor/internal/conversation"
	"github.com/abhisek/dsatutor/internal/ui/theme"
)

func (s *ChatScreen) View(width, height int) string {
	turns := s.ctrl.Turns()

	if len(turns) == 0 {
		return s.renderEmpty(width)
	}

	var b strings.Builder
	_, latestIdx := s.ctrl.LatestTutorTurn()

	for i, turn := range turns {
		switch t := turn.(type) {
		case conversation.StudentTurn:
			b.WriteString(renderStudentTurn(t, width))
		case conversation.TutorTurn:
			b.WriteString(s.renderTutorTurn(t, i, i == latestIdx, width))
		}
		b.WriteString("\n")
	}

	b.WriteString(s.renderStatus(width))

	// Pin the newest turn: keep only the lines that fit above the
	// input row.
	body := tailLines(b.String(), height-2)

	return body + "\n" + s.renderInput(width)
}

func (s *ChatScreen) renderEmpty(width int) string {
	if err := s.ctrl.LastErr(); err != nil {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Render(fmt.Sprintf("\n\n\n  Couldn't reach the tutor: %s\n\n  Press R to retry.", err))
	}
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("\n\n\n  Connecting to your tutor...")
}

func renderStudentTurn(t conversation.StudentTurn, width int) string {
	label := theme.StudentLabel.Render("You")
	text := lipgloss.NewStyle().
		Foreground(theme.Text).
		Width(min(width-6, 70)).
		Align(lipgloss.Right).
		Render(t.Text)

	block := label + "\n" + text
	return lipgloss.PlaceHorizontal(width-2, lipgloss.Right, block) + "\n"
}

func (s *ChatScreen) renderTutorTurn(t conversation.TutorTurn, idx int, latest bool, width int) string {
	var b strings.Builder

	b.WriteString("  ")
	b.WriteString(theme.TutorLabel.Render("Tutor"))
	b.WriteString("\n")

	text := lipgloss.NewStyle().
		Foreground(theme.Text).
		Width(min(width-6, 70)).
		Render(t.Text)
	b.WriteString(indent(text, 2))
	b.WriteString("\n")

	if pill := renderWhyLine(t, s.rationaleOpen[idx], width); pill != "" {
		b.WriteString(pill)
	}

	if t.Graded != nil {
		b.WriteString(indent(renderGradedBadge(t.Graded.Correct, t.Graded.Expected), 2))
		b.WriteString("\n")
	}

	if t.Question != nil {
		prompt := lipgloss.NewStyle().
			Foreground(theme.Text).
			Bold(true).
			Width(min(width-6, 70)).
			Render(t.Question.Prompt)
		b.WriteString(indent(prompt, 2))
		b.WriteString("\n")
	}

	// Only the latest tutor turn is interactively actionable; older
	// turns keep their affordances for display only.
	if latest && len(s.choices.Labels) > 0 {
		b.WriteString(indent(s.choices.View(), 2))
	} else {
		b.WriteString(renderStaticChoices(t))
	}

	return b.String()
}

// renderWhyLine renders the confidence pill and rationale disclosure.
// The disclosure is a pure local toggle with no network effect.
func renderWhyLine(t conversation.TutorTurn, open bool, width int) string {
	if t.Confidence == "" && t.Rationale == "" {
		return ""
	}

	var parts []string
	if t.Confidence != "" {
		parts = append(parts, confidenceStyle(t.Confidence).Render("["+string(t.Confidence)+"]"))
	}
	if t.Rationale != "" && !open {
		parts = append(parts, theme.Hint.Render("Why? (Ctrl+W)"))
	}

	out := indent(strings.Join(parts, " "), 2) + "\n"
	if t.Rationale != "" && open {
		rationale := lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Width(min(width-8, 66)).
			Render(t.Rationale)
		out += indent(rationale, 4) + "\n"
	}
	return out
}

func renderGradedBadge(correct bool, expected string) string {
	if correct {
		return theme.Correct.Render("✔ Correct")
	}
	return theme.Incorrect.Render("✘ Incorrect — expected: " + expected)
}

func renderStaticChoices(t conversation.TutorTurn) string {
	labels := t.Options
	if t.Question != nil && len(t.Question.Choices) > 0 {
		labels = t.Question.Choices
	}
	if len(labels) == 0 {
		return ""
	}

	var b strings.Builder
	for i, label := range labels {
		line := fmt.Sprintf("  %d) %s", i+1, label)
		b.WriteString(indent(lipgloss.NewStyle().Foreground(theme.TextDim).Render(line), 2))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *ChatScreen) renderStatus(width int) string {
	if s.ctrl.Busy() {
		return indent(theme.Hint.Render("Tutor is thinking..."), 2) + "\n"
	}
	if err := s.ctrl.LastErr(); err != nil {
		msg := lipgloss.NewStyle().
			Foreground(theme.Error).
			Width(min(width-6, 70)).
			Render("Something went wrong: " + err.Error())
		return indent(msg, 2) + "\n"
	}
	return ""
}

func (s *ChatScreen) renderInput(width int) string {
	prompt := lipgloss.NewStyle().Foreground(theme.Primary).Render("  > ")
	if s.choiceMode || s.ctrl.Busy() {
		return prompt + theme.Hint.Render(s.input.Value())
	}
	return prompt + s.input.View()
}

func confidenceStyle(c conversation.Confidence) lipgloss.Style {
	switch c {
	case conversation.ConfidenceHigh:
		return theme.PillHigh
	case conversation.ConfidenceMedium:
		return theme.PillMedium
	default:
		return theme.PillLow
	}
}

// tailLines keeps the last n lines of s.
func tailLines(s string, n int) string {
	if n <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return strings.TrimRight(s, "\n")
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}

func indent(s string, n int) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = pad + l
		}
	}
	return strings.Join(lines, "\n")
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
