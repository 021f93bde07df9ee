// Package extract turns raw page text into structured data by asking an LLM
// to emit JSON matching the caller's output type. Extraction is best effort;
// callers treat any error as the data simply not being available.
package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"morning-snapshot/internal/interfaces"
	"morning-snapshot/internal/store"
)

// FromConfig picks the extractor implementation for the configured provider.
func FromConfig(cfg *store.Config) interfaces.Extractor {
	switch strings.ToUpper(cfg.LLM.Provider) {
	case "CLAUDE", "ANTHROPIC":
		return NewClaudeExtractor(cfg)
	case "OPENAI":
		return NewOpenAIExtractor(cfg)
	default:
		return NewNoopExtractor()
	}
}

// decodeJSONBlob finds a JSON object or array inside model output and
// unmarshals it into out. Models wrap JSON in prose and code fences often
// enough that a direct unmarshal alone is not reliable.
func decodeJSONBlob(text string, out any) error {
	t := strings.TrimSpace(text)

	// Strip a markdown code fence if the whole reply is one.
	if strings.HasPrefix(t, "```") {
		t = strings.TrimPrefix(t, "```json")
		t = strings.TrimPrefix(t, "```")
		if i := strings.LastIndex(t, "```"); i >= 0 {
			t = t[:i]
		}
		t = strings.TrimSpace(t)
	}

	if strings.HasPrefix(t, "{") || strings.HasPrefix(t, "[") {
		if err := json.Unmarshal([]byte(t), out); err == nil {
			return nil
		}
	}

	// Fall back to the outermost {...} or [...] substring.
	for _, pair := range [][2]string{{"{", "}"}, {"[", "]"}} {
		start := strings.Index(t, pair[0])
		end := strings.LastIndex(t, pair[1])
		if start >= 0 && end > start {
			if err := json.Unmarshal([]byte(t[start:end+1]), out); err == nil {
				return nil
			}
		}
	}

	return fmt.Errorf("no decodable JSON in model output (%d bytes)", len(text))
}
