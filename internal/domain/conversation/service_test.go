package conversation

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"abby-server/internal/domain/chat"
	"abby-server/internal/utils/platformerrors"
)

func chatMessage(text string) openai.ChatCompletionMessage {
	return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: text}
}

func newTestService() (*Service, *chat.MemoryStore) {
	memories := chat.NewMemoryStore(20)
	svc := NewService(memories)
	return svc, memories
}

func TestService_CreateAndList(t *testing.T) {
	svc, _ := newTestService()

	created := svc.Create("alice", "Trip planning")
	if created.ID == "" || !strings.HasPrefix(created.ID, "conv_") {
		t.Errorf("conversation ID = %q, want conv_ prefix", created.ID)
	}
	if created.Title != "Trip planning" {
		t.Errorf("title = %q", created.Title)
	}
	if created.Archived {
		t.Error("new conversation must not be archived")
	}
	if created.Messages == nil || len(created.Messages) != 0 {
		t.Error("new conversation must have an empty message list")
	}

	untitled := svc.Create("alice", "  ")
	if untitled.Title != DefaultTitle {
		t.Errorf("blank title = %q, want %q", untitled.Title, DefaultTitle)
	}

	list := svc.List("alice")
	if len(list) != 2 {
		t.Fatalf("len(list) = %d, want 2", len(list))
	}
	if svc.List("bob") == nil {
		t.Error("unknown user must get an empty list, not nil")
	}
	if len(svc.List("bob")) != 0 {
		t.Error("unknown user must have no conversations")
	}
}

func TestService_Get(t *testing.T) {
	svc, _ := newTestService()
	created := svc.Create("alice", "Notes")

	got, err := svc.Get(context.Background(), "alice", created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("ID = %q, want %q", got.ID, created.ID)
	}

	_, err = svc.Get(context.Background(), "alice", "conv_missing")
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		t.Errorf("missing conversation error = %v, want not found", err)
	}

	_, err = svc.Get(context.Background(), "bob", created.ID)
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		t.Error("conversations must not be visible across users")
	}
}

func TestService_Update(t *testing.T) {
	svc, _ := newTestService()
	created := svc.Create("alice", "Old title")

	title := "New title"
	updated, err := svc.Update(context.Background(), "alice", created.ID, &title, nil)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != "New title" {
		t.Errorf("title = %q", updated.Title)
	}
	if updated.Archived {
		t.Error("archived must be untouched when nil")
	}

	archived := true
	updated, err = svc.Update(context.Background(), "alice", created.ID, nil, &archived)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != "New title" {
		t.Error("title must be untouched when nil")
	}
	if !updated.Archived {
		t.Error("archived flag not applied")
	}

	_, err = svc.Update(context.Background(), "alice", "conv_missing", &title, nil)
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		t.Errorf("missing conversation error = %v, want not found", err)
	}
}

func TestService_Delete_InvalidatesMemory(t *testing.T) {
	svc, memories := newTestService()
	created := svc.Create("alice", "Doomed")

	key := chat.SessionKey("alice", created.ID)
	memory := memories.GetOrCreate(key)
	memory.Add(chatMessage("remember me"))

	svc.Delete("alice", created.ID)

	if len(svc.List("alice")) != 0 {
		t.Error("conversation still listed after delete")
	}
	if recreated := memories.GetOrCreate(key); !recreated.IsEmpty() {
		t.Error("model context window survived conversation delete")
	}

	// Unknown IDs are a no-op.
	svc.Delete("alice", "conv_missing")
}

func TestService_AppendMessage(t *testing.T) {
	svc, _ := newTestService()
	created := svc.Create("alice", "Chat")

	svc.AppendMessage("alice", created.ID, SenderUser, "hello")
	svc.AppendMessage("alice", created.ID, SenderAI, "hi, how can I help?")
	svc.AppendMessage("alice", "", SenderUser, "dropped, no conversation")
	svc.AppendMessage("alice", "conv_missing", SenderUser, "dropped, unknown conversation")

	got, err := svc.Get(context.Background(), "alice", created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("len(messages) = %d, want 2", len(got.Messages))
	}
	first := got.Messages[0]
	if !strings.HasPrefix(first.ID, "msg_") {
		t.Errorf("message ID = %q, want msg_ prefix", first.ID)
	}
	if first.Sender != SenderUser || first.Content != "hello" {
		t.Errorf("first message = %+v", first)
	}
	if got.Messages[1].Sender != SenderAI {
		t.Errorf("second sender = %q, want %q", got.Messages[1].Sender, SenderAI)
	}
	if got.UpdatedAt.Before(got.CreatedAt) {
		t.Error("UpdatedAt must advance when messages are appended")
	}
}

func TestService_ExportJSON(t *testing.T) {
	svc, _ := newTestService()
	created := svc.Create("alice", "Export me")
	svc.AppendMessage("alice", created.ID, SenderUser, "hello")

	data, err := svc.ExportJSON(context.Background(), "alice", created.ID)
	if err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}

	var decoded Conversation
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if decoded.ID != created.ID || len(decoded.Messages) != 1 {
		t.Errorf("decoded export = %+v", decoded)
	}

	_, err = svc.ExportJSON(context.Background(), "alice", "conv_missing")
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		t.Errorf("missing conversation error = %v, want not found", err)
	}
}

func TestService_ExportText(t *testing.T) {
	svc, _ := newTestService()
	fixed := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	created := svc.Create("alice", "Export me")
	svc.AppendMessage("alice", created.ID, SenderUser, "hello")
	svc.AppendMessage("alice", created.ID, SenderAI, "hi there")

	text, err := svc.ExportText(context.Background(), "alice", created.ID)
	if err != nil {
		t.Fatalf("ExportText() error = %v", err)
	}

	want := "Conversation: Export me\n" +
		"Created: 2025-03-14T09:26:53\n\n" +
		"USER (09:26:53): hello\n\n" +
		"AI (09:26:53): hi there\n\n"
	if text != want {
		t.Errorf("export text = %q, want %q", text, want)
	}
}

func TestService_ListReturnsCopies(t *testing.T) {
	svc, _ := newTestService()
	created := svc.Create("alice", "Original")

	list := svc.List("alice")
	list[0].Title = "Mutated"
	list[0].Messages = append(list[0].Messages, Message{Content: "injected"})

	got, err := svc.Get(context.Background(), "alice", created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != "Original" || len(got.Messages) != 0 {
		t.Error("mutating a listed copy must not affect the stored record")
	}
}
