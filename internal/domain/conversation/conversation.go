package conversation

import (
	"time"

	"github.com/google/uuid"

	"abby-server/internal/utils/idgen"
)

// Message senders.
const (
	SenderUser = "user"
	SenderAI   = "ai"
)

const idSuffixLength = 16

// Message is one recorded turn of a conversation.
type Message struct {
	ID        string         `json:"id"`
	Sender    string         `json:"sender"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata"`
}

// Conversation is a titled, ordered message record owned by one user. It is
// the durable transcript; the model context window is managed separately.
type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Archived  bool      `json:"archived"`
	Messages  []Message `json:"messages"`
}

func newConversationID() string {
	id, err := idgen.GenerateSecureID("conv", idSuffixLength)
	if err != nil {
		// crypto/rand failing means the process is in a bad state; fall back
		// to a UUID rather than surfacing an error to every caller.
		return "conv_" + uuid.NewString()
	}
	return id
}

func newMessageID() string {
	id, err := idgen.GenerateSecureID("msg", idSuffixLength)
	if err != nil {
		return "msg_" + uuid.NewString()
	}
	return id
}

func (c *Conversation) clone() Conversation {
	out := *c
	out.Messages = make([]Message, len(c.Messages))
	copy(out.Messages, c.Messages)
	return out
}
