package session

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctrlfix/pkg/proto"
)

func TestNewSessionDefaults(t *testing.T) {
	s := New()
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, proto.StepWelcome, s.Step)
	assert.Equal(t, "pending", s.Fields.AppointmentStatus)
	assert.Empty(t, s.Transcript)
	assert.False(t, s.Finalized)
}

func TestTicketIDFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9A-F]{8}$`)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewTicketID()
		assert.Regexp(t, pattern, id)
		assert.False(t, seen[id], "duplicate ticket id %s", id)
		seen[id] = true
	}
}

func TestAdvanceStopsAtGoodbye(t *testing.T) {
	s := New()
	for i := 0; i < 30; i++ {
		s.Advance()
	}
	assert.Equal(t, proto.StepGoodbye, s.Step)
}

func TestAppendRecordsTranscript(t *testing.T) {
	s := New()
	s.Append(proto.RoleUser, "hello")
	s.Append(proto.RoleBot, "hi!")
	require.Len(t, s.Transcript, 2)
	assert.Equal(t, proto.RoleUser, s.Transcript[0].Role)
	assert.Equal(t, "hi!", s.Transcript[1].Content)
	assert.False(t, s.Transcript[0].Timestamp.IsZero())
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	s := r.Create()
	assert.Equal(t, 1, r.Len())
	assert.Same(t, s, r.Get(s.ID))
	assert.Nil(t, r.Get("missing"))

	r.Delete(s.ID)
	assert.Nil(t, r.Get(s.ID))
	assert.Equal(t, 0, r.Len())
	r.Delete("missing")
}
