package websearch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"abby-server/internal/infrastructure/logger"
	"abby-server/internal/utils/platformerrors"
)

const defaultEndpoint = "https://www.googleapis.com/customsearch/v1"

// Client queries the Google Custom Search JSON API.
type Client struct {
	http     *resty.Client
	endpoint string
	apiKey   string
	engineID string
	limit    int
}

// Option customizes a Client.
type Option func(*Client)

// WithEndpoint overrides the API endpoint. Used by tests.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.endpoint = strings.TrimRight(endpoint, "/")
	}
}

// NewClient creates a search client with split connect and read timeouts.
// limit caps the number of results requested per query; the API itself allows
// at most ten.
func NewClient(apiKey, engineID string, connectTimeout, readTimeout time.Duration, limit int, opts ...Option) *Client {
	httpClient := resty.New().
		SetHeader("User-Agent", "Abby-AI-Assistant/1.0").
		SetTransport(&http.Transport{
			DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
		}).
		SetTimeout(readTimeout)

	client := &Client{
		http:     httpClient,
		endpoint: defaultEndpoint,
		apiKey:   apiKey,
		engineID: engineID,
		limit:    limit,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Search runs one query and returns the raw JSON response body. Decoding is
// left to the caller so malformed payloads can degrade per its policy. Any
// non-2xx status is an external error.
func (c *Client) Search(ctx context.Context, query string) ([]byte, error) {
	log := logger.GetLogger()
	log.Debug().Str("query", query).Msg("performing web search")

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"key": c.apiKey,
			"cx":  c.engineID,
			"q":   query,
			"num": strconv.Itoa(c.limit),
		}).
		Get(c.endpoint)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "web search request failed", err, "")
	}
	if resp.IsError() {
		msg := fmt.Sprintf("web search failed (status %d)", resp.StatusCode())
		if body := strings.TrimSpace(resp.String()); body != "" {
			msg = fmt.Sprintf("%s: %s", msg, body)
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, msg, nil, "")
	}

	return resp.Body(), nil
}
