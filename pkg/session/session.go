// Package session holds per-conversation state for the intake flow.
package session

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ctrlfix/pkg/proto"
)

// Device groups the hardware identity collected during intake.
type Device struct {
	Type           string `json:"type"`
	BrandModel     string `json:"brandmodel"`
	AdditionalInfo string `json:"additional_info"`
}

// Fields is the structured intake record filled in step by step. It mirrors
// the columns written to the ticket sinks on completion.
type Fields struct {
	TicketID          string   `json:"ticket_id"`
	Timestamp         string   `json:"timestamp"`
	PhoneNumber       string   `json:"phone_number"`
	UserName          string   `json:"user_name"`
	Device            Device   `json:"device"`
	IssueType         string   `json:"issue_type"`
	Description       string   `json:"description"`
	Photos            string   `json:"photos"`
	PartsNeeded       []string `json:"parts_needed"`
	ServiceFee        float64  `json:"service_fee"`
	PartsCost         float64  `json:"parts_cost"`
	EstimatedTotal    float64  `json:"estimated_total"`
	DiagnosticOptedIn bool     `json:"diagnostic_opted_in"`
	BookingType       string   `json:"booking_type"`
	AppointmentStatus string   `json:"appointment_status"`
}

// Session is one live conversation. All mutation happens on the flow
// goroutine for that session, so no internal locking.
type Session struct {
	ID         string
	Step       proto.Step
	Fields     Fields
	Transcript []proto.Message
	// DiagStart is the transcript index at the moment of the diagnostic
	// opt-in; the diagnostic dialogue only sees messages from there on.
	DiagStart   int
	Interrupted bool
	CostCached  bool
	Finalized   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// New creates a session at the welcome step with a fresh ticket ID.
func New() *Session {
	now := time.Now()
	return &Session{
		ID:   uuid.NewString(),
		Step: proto.StepWelcome,
		Fields: Fields{
			TicketID:          NewTicketID(),
			Timestamp:         now.Format("2006-01-02 15:04:05"),
			AppointmentStatus: "pending",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTicketID generates a short uppercase ticket reference.
func NewTicketID() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

// Append records a transcript message and bumps the updated timestamp.
func (s *Session) Append(role proto.Role, content string) {
	s.Transcript = append(s.Transcript, proto.Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	s.UpdatedAt = time.Now()
}

// Advance moves the cursor to the next step. Terminal steps stay put.
func (s *Session) Advance() {
	s.Step = s.Step.Next()
	s.UpdatedAt = time.Now()
}

// JumpTo moves the cursor directly to a step. Used only by the opt-out
// shortcut from the diagnostic question to cost estimation.
func (s *Session) JumpTo(step proto.Step) {
	s.Step = step
	s.UpdatedAt = time.Now()
}

// Registry tracks live sessions by ID.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Create starts a new session and registers it.
func (r *Registry) Create() *Session {
	s := New()
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get returns the session for id, or nil when unknown or expired.
func (r *Registry) Get(id string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[id]
}

// Delete removes a session. Safe to call for unknown IDs.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
