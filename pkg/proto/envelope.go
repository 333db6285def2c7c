package proto

import "time"

// Role identifies the author of a transcript message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message is one entry in a session's append-only transcript.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ResponseEnvelope is what the orchestrator returns to the caller for every
// processed input.
type ResponseEnvelope struct {
	// Message is the text to display to the user.
	Message string `json:"message"`
	// Completed is true once the flow reached its terminal step; the caller
	// must discard or archive the session.
	Completed bool `json:"completed"`
	// NeedsInput is true while the bot is waiting for the next user input.
	NeedsInput bool `json:"needs_input"`
}

// Reply builds the common mid-flow envelope: not complete, waiting for input.
func Reply(message string) ResponseEnvelope {
	return ResponseEnvelope{Message: message, Completed: false, NeedsInput: true}
}

// Done builds the terminal envelope.
func Done(message string) ResponseEnvelope {
	return ResponseEnvelope{Message: message, Completed: true, NeedsInput: false}
}
