package responder

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"ctrlfix/pkg/proto"
)

func TestTruncateHistoryKeepsRecentMessages(t *testing.T) {
	long := strings.Repeat("words and more words ", 50)
	history := []proto.Message{
		{Role: proto.RoleUser, Content: long},
		{Role: proto.RoleBot, Content: long},
		{Role: proto.RoleUser, Content: "recent short message"},
	}

	out := truncateHistory(history, 50)
	assert.Len(t, out, 1)
	assert.Equal(t, "recent short message", out[0].Content)
}

func TestTruncateHistoryNoBudgetKeepsAll(t *testing.T) {
	history := []proto.Message{{Content: "a"}, {Content: "b"}}
	assert.Len(t, truncateHistory(history, 0), 2)
	assert.Len(t, truncateHistory(history, 10000), 2)
}

func TestCountTokens(t *testing.T) {
	assert.Greater(t, countTokens("hello world"), 0)
	short := countTokens("hi")
	long := countTokens(strings.Repeat("completely different words ", 20))
	assert.Greater(t, long, short)
}
