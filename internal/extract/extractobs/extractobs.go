package extractobs

import (
	"context"

	"morning-snapshot/internal/interfaces"
	"morning-snapshot/internal/logger"
	"morning-snapshot/internal/trace"
)

// observableExtractor wraps an Extractor with logging and tracing.
type observableExtractor struct {
	extractor interfaces.Extractor
}

// Compile-time interface check
var _ interfaces.Extractor = (*observableExtractor)(nil)

// Wrap wraps an extractor with observability middleware
func Wrap(extractor interfaces.Extractor) interfaces.Extractor {
	return &observableExtractor{
		extractor: extractor,
	}
}

func (oe *observableExtractor) Extract(ctx context.Context, instruction, content string, out any) error {
	ctx, span := trace.StartSpan(ctx, "extract.Extract")
	defer span.End()

	// Use DebugSkip(1) to report the actual caller, not this middleware wrapper
	logger.DebugSkip(ctx, 1, "Requesting extraction",
		"instruction_length", len(instruction),
		"content_length", len(content),
	)

	err := oe.extractor.Extract(ctx, instruction, content, out)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Extraction failed", err,
			"content_length", len(content),
		)
		return err
	}

	logger.InfoSkip(ctx, 1, "Extraction completed",
		"content_length", len(content),
	)
	return nil
}
