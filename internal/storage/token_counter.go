package storage

import (
	"fmt"
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

// perMessageOverhead approximates the tokens spent on role and framing.
const perMessageOverhead = 4

var (
	encOnce sync.Once
	enc     tokenizer.Codec
	encErr  error
)

// ------------------------------------------------------------------------------------------------------
// CountTokens counts tokens in messages using the cl100k_base encoding.
func CountTokens(messages []Message) (int, error) {
	encOnce.Do(func() {
		enc, encErr = tokenizer.Get(tokenizer.Cl100kBase)
	})
	if encErr != nil {
		return 0, fmt.Errorf("failed to get tokenizer: %w", encErr)
	}

	total := 0
	for _, msg := range messages {
		ids, _, err := enc.Encode(msg.Content)
		if err != nil {
			return 0, fmt.Errorf("failed to encode content: %w", err)
		}
		total += len(ids) + perMessageOverhead
	}

	return total, nil
}
