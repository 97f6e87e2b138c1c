package chat

import (
	"sync"

	openai "github.com/sashabaranov/go-openai"
)

// Memory is a bounded ordered window of chat messages driving one
// conversation's model context. The oldest message is evicted first once the
// window is full.
type Memory struct {
	mu       sync.Mutex
	window   int
	messages []openai.ChatCompletionMessage
}

func newMemory(window int) *Memory {
	return &Memory{
		window:   window,
		messages: make([]openai.ChatCompletionMessage, 0, window),
	}
}

// Add appends a message, evicting the oldest entries beyond the window.
func (m *Memory) Add(msg openai.ChatCompletionMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.messages = append(m.messages, msg)
	if len(m.messages) > m.window {
		overflow := len(m.messages) - m.window
		m.messages = append(m.messages[:0], m.messages[overflow:]...)
	}
}

// Messages returns a copy of the current window in insertion order.
func (m *Memory) Messages() []openai.ChatCompletionMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]openai.ChatCompletionMessage, len(m.messages))
	copy(out, m.messages)
	return out
}

// Len returns the number of messages currently held.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

// IsEmpty reports whether the memory holds no messages yet.
func (m *Memory) IsEmpty() bool {
	return m.Len() == 0
}

// MemoryStore maps session keys to their shared Memory instance. Creation is
// lazy and atomic: concurrent callers with the same key observe one instance.
type MemoryStore struct {
	mu       sync.Mutex
	window   int
	memories map[string]*Memory
}

// NewMemoryStore creates a store whose memories hold at most window messages.
func NewMemoryStore(window int) *MemoryStore {
	return &MemoryStore{
		window:   window,
		memories: make(map[string]*Memory),
	}
}

// GetOrCreate returns the memory for key, creating an empty one if absent.
func (s *MemoryStore) GetOrCreate(key string) *Memory {
	s.mu.Lock()
	defer s.mu.Unlock()

	if memory, ok := s.memories[key]; ok {
		return memory
	}
	memory := newMemory(s.window)
	s.memories[key] = memory
	return memory
}

// Remove discards the memory for key, if any.
func (s *MemoryStore) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.memories, key)
}

// SessionKey derives the memory key for a user and optional conversation.
// Requests without a conversation share one per-user memory.
func SessionKey(userID, conversationID string) string {
	if conversationID == "" {
		return userID
	}
	return userID + "_" + conversationID
}
