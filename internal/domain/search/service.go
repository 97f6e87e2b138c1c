package search

import (
	"context"
	"fmt"

	"abby-server/internal/infrastructure/logger"
	"abby-server/internal/infrastructure/metrics"
)

// SummaryRequest is the synthetic user turn appended after a search digest so
// the model produces an analysis instead of echoing the raw results.
const SummaryRequest = "Please provide a comprehensive summary and analysis of these search results."

const contextPromptFormat = "You are Abby, an AI assistant with access to current web search results. " +
	"Based on the following search results for the query '%s', provide a comprehensive, " +
	"well-formatted response. Use markdown formatting and cite sources when possible.\n\n" +
	"Search Results:\n%s"

// Searcher is the raw search capability the service formats on top of.
type Searcher interface {
	Search(ctx context.Context, query string) ([]byte, error)
}

// Service turns queries into markdown digests ready for model consumption.
// Search failures never propagate as errors; they degrade into an inline
// digest so the streaming turn still runs.
type Service struct {
	client Searcher
	limit  int
}

// NewService creates a search service rendering at most limit entries.
func NewService(client Searcher, limit int) *Service {
	return &Service{client: client, limit: limit}
}

// Digest runs the query and returns its markdown digest.
func (s *Service) Digest(ctx context.Context, query string) string {
	raw, err := s.client.Search(ctx, query)
	if err != nil {
		log := logger.GetLogger()
		log.Error().Err(err).Str("query", query).Msg("web search failed")
		metrics.RecordSearch("error")
		return "Unable to perform web search: " + err.Error()
	}
	metrics.RecordSearch("ok")
	return FormatResults(raw, s.limit)
}

// ContextPrompt builds the system message that injects a search digest into a
// conversation.
func (s *Service) ContextPrompt(query, digest string) string {
	return fmt.Sprintf(contextPromptFormat, query, digest)
}
