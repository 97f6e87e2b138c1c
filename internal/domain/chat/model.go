package chat

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// ModelClient is the chat-completion capability consumed by streaming
// sessions. Implementations make a single attempt per call; retrying is the
// caller's concern (and deliberately not done here).
type ModelClient interface {
	// Complete sends the ordered history and returns the full response text.
	Complete(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error)

	// Stream sends the ordered history and delivers incremental text chunks
	// on the returned channel, in generation order. The chunk channel is
	// closed when the stream completes. At most one error is delivered on the
	// error channel; after an error no further chunks arrive.
	Stream(ctx context.Context, messages []openai.ChatCompletionMessage) (<-chan string, <-chan error)
}
