package llmclient

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	openai "github.com/sashabaranov/go-openai"

	"abby-server/internal/domain/chat"
	"abby-server/internal/infrastructure/logger"
	"abby-server/internal/utils/platformerrors"
)

const (
	completionsPath      = "/chat/completions"
	dataPrefix           = "data: "
	doneMarker           = "[DONE]"
	chunkBufferSize      = 100
	scannerInitialBuffer = 12 * 1024        // 12KB
	scannerMaxBuffer     = 10 * 1024 * 1024 // 10MB
)

// Client talks to an OpenAI-compatible chat-completion endpoint. It implements
// chat.ModelClient with a single attempt per call.
type Client struct {
	http    *resty.Client
	baseURL string
	apiKey  string
	model   string
}

var _ chat.ModelClient = (*Client)(nil)

// New creates a completion client for the given endpoint.
func New(baseURL, apiKey, model string, timeout time.Duration) *Client {
	httpClient := resty.New().
		SetHeader("User-Agent", "Abby-AI-Assistant/1.0").
		SetTimeout(timeout)

	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  apiKey,
		model:   model,
	}
}

// Complete sends the history synchronously and returns the response text.
func (c *Client) Complete(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	request := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	}

	var respBody openai.ChatCompletionResponse
	resp, err := c.prepareRequest(ctx).
		SetBody(request).
		SetResult(&respBody).
		Post(c.baseURL + completionsPath)
	if err != nil {
		return "", platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "chat completion request failed", err, "")
	}
	if resp.IsError() {
		return "", c.errorFromResponse(ctx, resp, "chat completion failed")
	}
	if len(respBody.Choices) == 0 {
		return "", platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "chat completion returned no choices", nil, "")
	}

	return respBody.Choices[0].Message.Content, nil
}

// Stream sends the history in streaming mode. Chunks are delivered in
// generation order on the returned channel, which is closed when the upstream
// stream ends. A terminal error, if any, is buffered on the error channel and
// must be checked by the caller once the chunk channel closes.
func (c *Client) Stream(ctx context.Context, messages []openai.ChatCompletionMessage) (<-chan string, <-chan error) {
	chunks := make(chan string, chunkBufferSize)
	errs := make(chan error, 1)

	go func() {
		defer close(chunks)
		if err := c.streamToChannel(ctx, messages, chunks); err != nil {
			errs <- err
		}
	}()

	return chunks, errs
}

func (c *Client) streamToChannel(ctx context.Context, messages []openai.ChatCompletionMessage, chunks chan<- string) error {
	request := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   true,
	}

	resp, err := c.prepareRequest(ctx).
		SetBody(request).
		SetHeader("Accept-Encoding", "identity").
		SetDoNotParseResponse(true).
		Post(c.baseURL + completionsPath)
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "streaming request failed", err, "")
	}
	if resp.IsError() {
		return c.errorFromResponse(ctx, resp, "streaming request failed")
	}

	body := resp.RawBody()
	if body == nil {
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "streaming request failed: empty response body", nil, "")
	}
	defer func() {
		if closeErr := body.Close(); closeErr != nil {
			log := logger.GetLogger()
			log.Error().Err(closeErr).Msg("unable to close streaming response body")
		}
	}()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, scannerInitialBuffer), scannerMaxBuffer)

	for scanner.Scan() {
		data, found := strings.CutPrefix(scanner.Text(), dataPrefix)
		if !found {
			continue
		}
		if data == doneMarker {
			return nil
		}

		token := c.extractToken(data)
		if token == "" {
			continue
		}

		select {
		case chunks <- token:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err := scanner.Err(); err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "reading stream failed", err, "")
	}

	return nil
}

// extractToken parses one SSE data payload and concatenates the delta content
// of all choices. Malformed chunks are logged and skipped rather than aborting
// the stream.
func (c *Client) extractToken(data string) string {
	var streamResp openai.ChatCompletionStreamResponse
	if err := json.Unmarshal([]byte(data), &streamResp); err != nil {
		log := logger.GetLogger()
		log.Error().Err(err).Str("data", data).Msg("failed to parse stream chunk JSON")
		return ""
	}

	var builder strings.Builder
	for _, choice := range streamResp.Choices {
		builder.WriteString(choice.Delta.Content)
	}
	return builder.String()
}

func (c *Client) prepareRequest(ctx context.Context) *resty.Request {
	req := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json")
	if strings.TrimSpace(c.apiKey) != "" {
		req.SetHeader("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}
	return req
}

func (c *Client) errorFromResponse(ctx context.Context, resp *resty.Response, message string) error {
	detail := ""
	if raw := resp.RawBody(); raw != nil {
		defer raw.Close()
		if body, err := io.ReadAll(raw); err == nil {
			detail = strings.TrimSpace(string(body))
		}
	}
	if detail == "" {
		detail = strings.TrimSpace(resp.String())
	}

	msg := fmt.Sprintf("%s (status %d)", message, resp.StatusCode())
	if detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, detail)
	}
	return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, msg, nil, "")
}
