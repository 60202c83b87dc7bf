package chat

import "github.com/abhisek/dsatutor/internal/conversation"

// exchangeDoneMsg is sent when an in-flight exchange has resolved.
type exchangeDoneMsg struct {
	Outcome conversation.Outcome
}
