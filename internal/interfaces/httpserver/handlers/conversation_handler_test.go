package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"abby-server/internal/domain/chat"
	"abby-server/internal/domain/conversation"
)

func chatTestMessage(text string) openai.ChatCompletionMessage {
	return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: text}
}

func createConversation(t *testing.T, env *testEnv, userID, title string) conversation.Conversation {
	t.Helper()

	resp, err := http.Post(env.server.URL+"/conversations?userId="+userID+"&title="+url.QueryEscape(title), "", nil)
	if err != nil {
		t.Fatalf("POST /conversations: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create status = %d: %s", resp.StatusCode, body)
	}

	var created conversation.Conversation
	if err := json.Unmarshal([]byte(body), &created); err != nil {
		t.Fatalf("decoding created conversation: %v", err)
	}
	return created
}

func TestConversationLifecycle(t *testing.T) {
	env := newTestEnv(t, &fakeModel{}, &fakeSearcher{})

	created := createConversation(t, env, "alice", "Trip planning")
	if created.Title != "Trip planning" || created.UserID != "alice" {
		t.Fatalf("created = %+v", created)
	}
	if !strings.HasPrefix(created.ID, "conv_") {
		t.Errorf("ID = %q, want conv_ prefix", created.ID)
	}

	// List
	resp, err := http.Get(env.server.URL + "/conversations?userId=alice")
	if err != nil {
		t.Fatalf("GET /conversations: %v", err)
	}
	var list []conversation.Conversation
	if err := json.Unmarshal([]byte(readBody(t, resp)), &list); err != nil {
		t.Fatalf("decoding list: %v", err)
	}
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("list = %+v", list)
	}

	// Update title and archive flag
	req, _ := http.NewRequest(http.MethodPut,
		fmt.Sprintf("%s/conversations/%s?userId=alice&title=Renamed&archived=true", env.server.URL, created.ID), nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT /conversations/:id: %v", err)
	}
	var updated conversation.Conversation
	if err := json.Unmarshal([]byte(readBody(t, resp)), &updated); err != nil {
		t.Fatalf("decoding update: %v", err)
	}
	if updated.Title != "Renamed" || !updated.Archived {
		t.Errorf("updated = %+v", updated)
	}

	// Update of a missing conversation is a 404
	req, _ = http.NewRequest(http.MethodPut,
		env.server.URL+"/conversations/conv_missing?userId=alice&title=x", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT missing: %v", err)
	}
	readBody(t, resp)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing update status = %d, want 404", resp.StatusCode)
	}

	// Delete clears the listing and the session memory
	env.memories.GetOrCreate(chat.SessionKey("alice", created.ID)).Add(chatTestMessage("remember"))
	req, _ = http.NewRequest(http.MethodDelete,
		fmt.Sprintf("%s/conversations/%s?userId=alice", env.server.URL, created.ID), nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE /conversations/:id: %v", err)
	}
	readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("delete status = %d, want 200", resp.StatusCode)
	}

	resp, err = http.Get(env.server.URL + "/conversations?userId=alice")
	if err != nil {
		t.Fatalf("GET /conversations: %v", err)
	}
	if err := json.Unmarshal([]byte(readBody(t, resp)), &list); err != nil {
		t.Fatalf("decoding list: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("list after delete = %+v", list)
	}
	if !env.memories.GetOrCreate(chat.SessionKey("alice", created.ID)).IsEmpty() {
		t.Error("session memory survived conversation delete")
	}
}

func TestConversationExport(t *testing.T) {
	env := newTestEnv(t, &fakeModel{}, &fakeSearcher{})

	created := createConversation(t, env, "alice", "Export me")
	env.conversations.AppendMessage("alice", created.ID, conversation.SenderUser, "hello")
	env.conversations.AppendMessage("alice", created.ID, conversation.SenderAI, "hi there")

	// JSON export
	resp, err := http.Get(fmt.Sprintf("%s/conversations/%s/export?userId=alice", env.server.URL, created.ID))
	if err != nil {
		t.Fatalf("GET export: %v", err)
	}
	body := readBody(t, resp)
	if got := resp.Header.Get("Content-Disposition"); !strings.Contains(got, created.ID+".json") {
		t.Errorf("Content-Disposition = %q", got)
	}
	var exported conversation.Conversation
	if err := json.Unmarshal([]byte(body), &exported); err != nil {
		t.Fatalf("JSON export is not valid: %v", err)
	}
	if len(exported.Messages) != 2 {
		t.Errorf("exported %d messages, want 2", len(exported.Messages))
	}

	// Text export
	resp, err = http.Get(fmt.Sprintf("%s/conversations/%s/export?userId=alice&format=txt", env.server.URL, created.ID))
	if err != nil {
		t.Fatalf("GET export txt: %v", err)
	}
	body = readBody(t, resp)
	if !strings.HasPrefix(body, "Conversation: Export me\n") {
		t.Errorf("text export = %q", body)
	}
	if !strings.Contains(body, "USER (") || !strings.Contains(body, "AI (") {
		t.Errorf("text export missing transcript lines: %q", body)
	}

	// Unknown format
	resp, err = http.Get(fmt.Sprintf("%s/conversations/%s/export?userId=alice&format=xml", env.server.URL, created.ID))
	if err != nil {
		t.Fatalf("GET export xml: %v", err)
	}
	readBody(t, resp)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown format status = %d, want 400", resp.StatusCode)
	}

	// Unknown conversation
	resp, err = http.Get(env.server.URL + "/conversations/conv_missing/export?userId=alice")
	if err != nil {
		t.Fatalf("GET export missing: %v", err)
	}
	readBody(t, resp)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing export status = %d, want 404", resp.StatusCode)
	}
}
