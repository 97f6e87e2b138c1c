package llmclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"abby-server/internal/utils/platformerrors"
)

func streamChunk(content string) string {
	resp := openai.ChatCompletionStreamResponse{
		Choices: []openai.ChatCompletionStreamChoice{
			{Delta: openai.ChatCompletionStreamChoiceDelta{Content: content}},
		},
	}
	payload, _ := json.Marshal(resp)
	return fmt.Sprintf("data: %s\n\n", payload)
}

func collectStream(t *testing.T, chunks <-chan string, errs <-chan error) (string, error) {
	t.Helper()

	var builder strings.Builder
	for chunk := range chunks {
		builder.WriteString(chunk)
	}
	select {
	case err := <-errs:
		return builder.String(), err
	default:
		return builder.String(), nil
	}
}

func TestClient_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}

		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Stream {
			t.Error("Complete must not request streaming")
		}
		if req.Model != "test-model" {
			t.Errorf("model = %q, want %q", req.Model, "test-model")
		}

		resp := openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "hello there"}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := New(server.URL, "test-key", "test-model", 5*time.Second)
	got, err := client.Complete(context.Background(), []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: "hi"},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "hello there" {
		t.Errorf("Complete() = %q, want %q", got, "hello there")
	}
}

func TestClient_Complete_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(server.URL, "", "test-model", 5*time.Second)
	_, err := client.Complete(context.Background(), nil)
	if err == nil {
		t.Fatal("Complete() expected error for 503 response")
	}
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeExternal) {
		t.Errorf("error type = %v, want external", err)
	}
}

func TestClient_Stream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if !req.Stream {
			t.Error("Stream must request streaming")
		}

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, streamChunk("Hello"))
		fmt.Fprint(w, streamChunk(", "))
		fmt.Fprint(w, ": keep-alive comment\n\n")
		fmt.Fprint(w, streamChunk("world"))
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client := New(server.URL, "", "test-model", 5*time.Second)
	chunks, errs := client.Stream(context.Background(), []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: "hi"},
	})

	got, err := collectStream(t, chunks, errs)
	if err != nil {
		t.Fatalf("stream error = %v", err)
	}
	if got != "Hello, world" {
		t.Errorf("streamed text = %q, want %q", got, "Hello, world")
	}
}

func TestClient_Stream_SkipsMalformedChunks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, streamChunk("ok"))
		fmt.Fprint(w, "data: {not json}\n\n")
		fmt.Fprint(w, streamChunk(" fine"))
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client := New(server.URL, "", "test-model", 5*time.Second)
	chunks, errs := client.Stream(context.Background(), nil)

	got, err := collectStream(t, chunks, errs)
	if err != nil {
		t.Fatalf("stream error = %v", err)
	}
	if got != "ok fine" {
		t.Errorf("streamed text = %q, want %q", got, "ok fine")
	}
}

func TestClient_Stream_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	client := New(server.URL, "", "test-model", 5*time.Second)
	chunks, errs := client.Stream(context.Background(), nil)

	_, err := collectStream(t, chunks, errs)
	if err == nil {
		t.Fatal("expected terminal error for 400 response")
	}
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeExternal) {
		t.Errorf("error type = %v, want external", err)
	}
}

func TestClient_Stream_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, streamChunk("partial"))
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	client := New(server.URL, "", "test-model", 5*time.Second)
	chunks, errs := client.Stream(ctx, nil)

	select {
	case <-chunks:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for first chunk")
	}
	cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-chunks:
			if !ok {
				select {
				case <-errs:
				default:
				}
				return
			}
		case <-errs:
			return
		case <-deadline:
			t.Fatal("stream did not terminate after cancellation")
		}
	}
}
