package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"morning-snapshot/internal/logger"
	"morning-snapshot/internal/store"
)

// ClaudeExtractor calls the Anthropic Messages API.
type ClaudeExtractor struct {
	cfg      *store.Config
	endpoint string
	client   *http.Client
}

func NewClaudeExtractor(cfg *store.Config) *ClaudeExtractor {
	endpoint := "https://api.anthropic.com/v1/messages"
	// Proxy deployments can point the client elsewhere.
	if ep := os.Getenv("CLAUDE_API_ENDPOINT"); ep != "" {
		endpoint = ep
	}
	return &ClaudeExtractor{
		cfg:      cfg,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

func (e *ClaudeExtractor) Extract(ctx context.Context, instruction, content string, out any) error {
	apiKey := os.Getenv("CLAUDE_API_KEY")
	if apiKey == "" {
		return errors.New("CLAUDE_API_KEY missing")
	}

	user := fmt.Sprintf("%s\n\nContent:\n%s\n\nRespond ONLY with compact JSON.", instruction, content)
	reqBody := map[string]any{
		"model":       e.cfg.LLM.Model,
		"max_tokens":  e.cfg.LLM.MaxTokens,
		"temperature": e.cfg.LLM.Temperature,
		"messages": []map[string]string{
			{"role": "user", "content": user},
		},
	}
	bb, _ := json.Marshal(reqBody)

	logger.Debug(ctx, "Sending extraction request to Claude",
		"model", e.cfg.LLM.Model, "content_length", len(content))
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, "POST", e.endpoint, bytes.NewReader(bb))
	if err != nil {
		return err
	}
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		return fmt.Errorf("claude request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("claude http %d: %s", resp.StatusCode, string(body))
	}

	var r struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return fmt.Errorf("decode claude response: %w", err)
	}

	var text strings.Builder
	for _, block := range r.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return errors.New("claude response had no text content")
	}

	logger.Debug(ctx, "Claude extraction response received",
		"latency_ms", latency.Milliseconds(), "response_length", text.Len())

	return decodeJSONBlob(text.String(), out)
}
