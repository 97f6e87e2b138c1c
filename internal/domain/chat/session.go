package chat

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"abby-server/internal/infrastructure/logger"
)

// SSE event names emitted during a streaming turn.
const (
	EventToken    = "token"
	EventComplete = "complete"
	EventError    = "error"
)

const eventBufferSize = 100

// Recorded message senders. Mirrors the conversation transcript vocabulary.
const (
	senderUser = "user"
	senderAI   = "ai"
)

// assistantPersona seeds a fresh conversation before the first user turn.
const assistantPersona = "You are Abby, a helpful AI assistant created by Abharan. " +
	"You are knowledgeable, friendly, and provide accurate information. " +
	"Format your responses using markdown when appropriate."

// uploadPersona is added on upload turns when the conversation has no prior
// system context.
const uploadPersona = "You are Abby, an AI assistant. The user has uploaded a file. " +
	"Analyze the file content and respond helpfully to any questions about it."

// Event is one server-sent event of a streaming turn.
type Event struct {
	Type string
	Data string
}

// Recorder receives transcript entries for turns bound to a conversation.
type Recorder interface {
	AppendMessage(userID, conversationID, sender, content string)
}

// Service runs streaming chat turns: it assembles the model context from the
// session memory, streams the response, and records both sides of the turn.
type Service struct {
	memories *MemoryStore
	model    ModelClient
	recorder Recorder
}

// NewService wires a chat service.
func NewService(memories *MemoryStore, model ModelClient, recorder Recorder) *Service {
	return &Service{memories: memories, model: model, recorder: recorder}
}

// turnConfig captures how one turn variant differs from the others.
type turnConfig struct {
	// rewriteNewlines doubles line breaks in token events for markdown-aware
	// clients. The accumulated response keeps the raw text.
	rewriteNewlines bool
	errorPrefix     string
}

// ChatTurn runs a plain chat turn. A fresh session is seeded with the
// assistant persona before the user message.
func (s *Service) ChatTurn(ctx context.Context, userID, conversationID, message string) <-chan Event {
	memory := s.memories.GetOrCreate(SessionKey(userID, conversationID))

	if memory.IsEmpty() {
		memory.Add(openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: assistantPersona})
	}
	memory.Add(openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message})
	s.recorder.AppendMessage(userID, conversationID, senderUser, message)

	return s.run(ctx, memory, userID, conversationID, turnConfig{
		rewriteNewlines: true,
		errorPrefix:     "Error: ",
	})
}

// SearchTurn runs a turn grounded on a search digest. The digest prompt is
// injected as a system message followed by a synthetic user request, and the
// query itself is recorded with a search marker.
func (s *Service) SearchTurn(ctx context.Context, userID, conversationID, query, contextPrompt, summaryRequest string) <-chan Event {
	memory := s.memories.GetOrCreate(SessionKey(userID, conversationID))

	s.recorder.AppendMessage(userID, conversationID, senderUser, "[Search] "+query)

	memory.Add(openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: contextPrompt})
	memory.Add(openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: summaryRequest})

	return s.run(ctx, memory, userID, conversationID, turnConfig{
		errorPrefix: "Search error: ",
	})
}

// UploadTurn runs a turn around an uploaded file. The extracted content rides
// in the user message; the transcript records only a file marker with the
// user's note.
func (s *Service) UploadTurn(ctx context.Context, userID, conversationID, fileName, note, fileContent string) <-chan Event {
	memory := s.memories.GetOrCreate(SessionKey(userID, conversationID))

	userMessage := fmt.Sprintf("File uploaded: %s\n%s\n\nFile content:\n%s", fileName, note, fileContent)
	memory.Add(openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: userMessage})
	s.recorder.AppendMessage(userID, conversationID, senderUser, fmt.Sprintf("[File: %s] %s", fileName, note))

	if memory.Len() <= 1 {
		memory.Add(openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: uploadPersona})
	}

	return s.run(ctx, memory, userID, conversationID, turnConfig{
		errorPrefix: "Error processing file: ",
	})
}

// run streams one model response into an event channel. The channel closes
// when the turn ends. A cancelled context closes the channel silently and the
// partial response is neither remembered nor recorded.
func (s *Service) run(ctx context.Context, memory *Memory, userID, conversationID string, cfg turnConfig) <-chan Event {
	events := make(chan Event, eventBufferSize)

	go func() {
		defer close(events)

		chunks, errs := s.model.Stream(ctx, memory.Messages())

		var accumulator strings.Builder
		for chunk := range chunks {
			accumulator.WriteString(chunk)

			data := chunk
			if cfg.rewriteNewlines {
				data = strings.ReplaceAll(chunk, "\n", "  \n")
			}
			select {
			case events <- Event{Type: EventToken, Data: data}:
			case <-ctx.Done():
				return
			}
		}

		select {
		case err := <-errs:
			if ctx.Err() != nil {
				return
			}
			log := logger.GetLogger()
			log.Error().Err(err).Str("user_id", userID).Msg("streaming turn failed")
			events <- Event{Type: EventError, Data: cfg.errorPrefix + err.Error()}
			return
		default:
		}
		if ctx.Err() != nil {
			return
		}

		response := accumulator.String()
		memory.Add(openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: response})
		s.recorder.AppendMessage(userID, conversationID, senderAI, response)

		select {
		case events <- Event{Type: EventComplete, Data: response}:
		case <-ctx.Done():
		}
	}()

	return events
}
