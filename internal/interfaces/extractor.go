package interfaces

import "context"

// Extractor is the opaque extraction engine: given an instruction and page
// content, it populates out with a structured record. It may fail, time out
// or return a shape that does not match out; callers treat all three the
// same way (logged, payload recorded as absent).
type Extractor interface {
	Extract(ctx context.Context, instruction, content string, out any) error
}
