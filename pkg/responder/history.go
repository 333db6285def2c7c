package responder

import (
	"sync"

	"github.com/tiktoken-go/tokenizer"

	"ctrlfix/pkg/proto"
)

var (
	codecOnce sync.Once
	codec     tokenizer.Codec
)

// countTokens estimates the token footprint of text. Falls back to the
// len/4 approximation when the tokenizer is unavailable.
func countTokens(text string) int {
	codecOnce.Do(func() {
		c, err := tokenizer.Get(tokenizer.Cl100kBase)
		if err == nil {
			codec = c
		}
	})
	if codec != nil {
		if ids, _, err := codec.Encode(text); err == nil {
			return len(ids)
		}
	}
	return len(text)/4 + 1
}

// truncateHistory drops the oldest transcript messages until the remainder
// fits the token budget. The most recent messages always survive.
func truncateHistory(history []proto.Message, budget int) []proto.Message {
	if budget <= 0 {
		return history
	}
	total := 0
	cut := len(history)
	for i := len(history) - 1; i >= 0; i-- {
		total += countTokens(history[i].Content)
		if total > budget {
			break
		}
		cut = i
	}
	return history[cut:]
}
