package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fredoxntz/store-automation/config"
)

// Completer is the narrow interface the date normalizer depends on.
// The production implementation is OpenAIService; tests supply stubs.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type OpenAIService struct {
	config     *config.OpenAIConfig
	httpClient *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func NewOpenAIService(cfg *config.OpenAIConfig) *OpenAIService {
	return &OpenAIService{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Complete sends one completion request and returns the raw text of the
// first choice.
func (s *OpenAIService) Complete(ctx context.Context, prompt string) (string, error) {
	return s.chat(ctx, []chatMessage{{Role: "user", Content: prompt}})
}

// Ping sends a lightweight Korean-language test message, used by the
// settings page to verify the stored credential.
func (s *OpenAIService) Ping(ctx context.Context, message string) (string, error) {
	return s.chat(ctx, []chatMessage{
		{Role: "system", Content: "You are a helpful assistant. Please respond in Korean."},
		{Role: "user", Content: message},
	})
}

func (s *OpenAIService) chat(ctx context.Context, messages []chatMessage) (string, error) {
	reqBody := chatRequest{
		Model:     s.config.Model,
		Messages:  messages,
		MaxTokens: s.config.MaxOutputTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.APIURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w, body: %s", err, string(body))
	}

	if result.Error != nil {
		return "", fmt.Errorf("completion API error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("completion API returned no choices")
	}

	return result.Choices[0].Message.Content, nil
}
