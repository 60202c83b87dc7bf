package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/dsatutor/internal/ui/layout"
)

// Screen is one routable view. Screens render only their content
// area; the header and footer belong to the app frame.
type Screen interface {
	// Init returns the command to run when the screen is pushed.
	Init() tea.Cmd

	// Update handles a message and returns the updated screen.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the content area at the given size.
	View(width, height int) string

	// Title is the screen name shown in the header.
	Title() string
}

// KeyHintProvider is an optional interface for screens that override
// the default footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// SessionTagProvider is an optional interface for screens that want a
// session tag shown on the right side of the header.
type SessionTagProvider interface {
	SessionTag() string
}
