package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"abby-server/internal/domain/chat"
	"abby-server/internal/utils/platformerrors"
)

// Export timestamp layouts, local time without zone designator.
const (
	exportDateTimeLayout = "2006-01-02T15:04:05"
	exportTimeLayout     = "15:04:05"
)

// DefaultTitle is used when a conversation is created without one.
const DefaultTitle = "New Conversation"

// Service manages per-user conversation records in memory. Deleting a
// conversation also discards its model context window so a recreated
// conversation starts clean.
type Service struct {
	mu       sync.Mutex
	byUser   map[string][]*Conversation
	memories *chat.MemoryStore
	now      func() time.Time
}

// NewService creates a conversation service bound to the given memory store.
func NewService(memories *chat.MemoryStore) *Service {
	return &Service{
		byUser:   make(map[string][]*Conversation),
		memories: memories,
		now:      time.Now,
	}
}

// List returns all conversations of a user, newest last. Users without
// conversations get an empty list, not an error.
func (s *Service) List(userID string) []Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	conversations := s.byUser[userID]
	out := make([]Conversation, 0, len(conversations))
	for _, conv := range conversations {
		out = append(out, conv.clone())
	}
	return out
}

// Create starts a new empty conversation. An empty title falls back to
// DefaultTitle.
func (s *Service) Create(userID, title string) Conversation {
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	conv := &Conversation{
		ID:        newConversationID(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  []Message{},
	}
	s.byUser[userID] = append(s.byUser[userID], conv)
	return conv.clone()
}

// Get returns one conversation by ID.
func (s *Service) Get(ctx context.Context, userID, conversationID string) (Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.find(userID, conversationID)
	if conv == nil {
		return Conversation{}, s.notFound(ctx, conversationID)
	}
	return conv.clone(), nil
}

// Update applies a partial update. Nil fields are left untouched.
func (s *Service) Update(ctx context.Context, userID, conversationID string, title *string, archived *bool) (Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.find(userID, conversationID)
	if conv == nil {
		return Conversation{}, s.notFound(ctx, conversationID)
	}

	if title != nil {
		conv.Title = *title
	}
	if archived != nil {
		conv.Archived = *archived
	}
	conv.UpdatedAt = s.now()
	return conv.clone(), nil
}

// Delete removes a conversation and invalidates its model context window.
// Deleting an unknown conversation is a no-op.
func (s *Service) Delete(userID, conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conversations := s.byUser[userID]
	for i, conv := range conversations {
		if conv.ID == conversationID {
			s.byUser[userID] = append(conversations[:i], conversations[i+1:]...)
			break
		}
	}
	s.memories.Remove(chat.SessionKey(userID, conversationID))
}

// AppendMessage records one turn on a conversation. Calls without a
// conversation ID, or for an unknown conversation, are silently dropped so
// ad-hoc chat sessions need no transcript.
func (s *Service) AppendMessage(userID, conversationID, sender, content string) {
	if conversationID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.find(userID, conversationID)
	if conv == nil {
		return
	}

	now := s.now()
	conv.Messages = append(conv.Messages, Message{
		ID:        newMessageID(),
		Sender:    sender,
		Content:   content,
		Timestamp: now,
		Metadata:  map[string]any{},
	})
	conv.UpdatedAt = now
}

// ExportJSON renders a conversation as an indented JSON document.
func (s *Service) ExportJSON(ctx context.Context, userID, conversationID string) ([]byte, error) {
	conv, err := s.Get(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal, "failed to encode conversation", err, "")
	}
	return data, nil
}

// ExportText renders a conversation as a plain-text transcript.
func (s *Service) ExportText(ctx context.Context, userID, conversationID string) (string, error) {
	conv, err := s.Get(ctx, userID, conversationID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Conversation: %s\n", conv.Title)
	fmt.Fprintf(&b, "Created: %s\n\n", conv.CreatedAt.Format(exportDateTimeLayout))
	for _, msg := range conv.Messages {
		fmt.Fprintf(&b, "%s (%s): %s\n\n",
			strings.ToUpper(msg.Sender), msg.Timestamp.Format(exportTimeLayout), msg.Content)
	}
	return b.String(), nil
}

// find returns the live record for a conversation, or nil. Callers hold s.mu.
func (s *Service) find(userID, conversationID string) *Conversation {
	for _, conv := range s.byUser[userID] {
		if conv.ID == conversationID {
			return conv
		}
	}
	return nil
}

func (s *Service) notFound(ctx context.Context, conversationID string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
		fmt.Sprintf("conversation %s not found", conversationID), nil, "")
}
