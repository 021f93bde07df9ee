package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"morning-snapshot/internal/store"
)

// OpenAIExtractor calls the OpenAI chat completions API.
type OpenAIExtractor struct {
	cfg    *store.Config
	client *http.Client
}

func NewOpenAIExtractor(cfg *store.Config) *OpenAIExtractor {
	return &OpenAIExtractor{
		cfg:    cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

func (e *OpenAIExtractor) Extract(ctx context.Context, instruction, content string, out any) error {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return errors.New("OPENAI_API_KEY missing")
	}

	prompt := fmt.Sprintf("%s\n\nContent:\n%s\n\nRespond ONLY with compact JSON.", instruction, content)
	body := map[string]any{
		"model":       e.cfg.LLM.Model,
		"max_tokens":  e.cfg.LLM.MaxTokens,
		"temperature": e.cfg.LLM.Temperature,
		"messages": []map[string]string{
			{"role": "system", "content": "You extract structured financial data from web page text. Output strict JSON only."},
			{"role": "user", "content": prompt},
		},
	}
	bb, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, "POST", "https://api.openai.com/v1/chat/completions", bytes.NewReader(bb))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("openai http %d", resp.StatusCode)
	}

	var r struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return fmt.Errorf("decode openai response: %w", err)
	}
	if len(r.Choices) == 0 {
		return errors.New("no choices")
	}

	return decodeJSONBlob(strings.TrimSpace(r.Choices[0].Message.Content), out)
}
