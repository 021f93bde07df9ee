package extract

import (
	"context"
	"errors"
)

// ErrNoProvider is returned by the noop extractor. Callers already treat
// extraction failure as the data being unavailable, so runs without an LLM
// configured degrade to quote-and-link-only output.
var ErrNoProvider = errors.New("no extraction provider configured")

// NoopExtractor is the fallback when no LLM provider is configured.
type NoopExtractor struct{}

func NewNoopExtractor() *NoopExtractor {
	return &NoopExtractor{}
}

func (e *NoopExtractor) Extract(ctx context.Context, instruction, content string, out any) error {
	return ErrNoProvider
}
