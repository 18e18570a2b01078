package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/valpere/codeconv/internal"
	"github.com/valpere/codeconv/internal/postprocess"
)

const (
	DefaultOpenRouterURL   = "https://openrouter.ai/api/v1"
	DefaultOpenRouterModel = "meta-llama/llama-3.1-8b-instruct:free"
	defaultMaxTokens       = 4096
)

type OpenRouterService struct {
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	client      *http.Client
}

// NewOpenRouterService builds a client for the OpenRouter chat-completions
// API. A zero cfg.Timeout leaves requests without a deadline.
func NewOpenRouterService(cfg ServiceConfig) *OpenRouterService {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOpenRouterURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultOpenRouterModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &OpenRouterService{
		apiKey:      cfg.APIKey,
		baseURL:     baseURL,
		model:       model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		client:      &http.Client{Timeout: cfg.Timeout},
	}
}

func (s *OpenRouterService) Name() string {
	return "openrouter"
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func (s *OpenRouterService) Complete(ctx context.Context, req internal.ConversionRequest) (*Result, error) {
	result := &Result{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	if s.apiKey == "" {
		result.Error = "OpenRouter API key required"
		return result, fmt.Errorf("OpenRouter API key required")
	}

	body := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: buildSystemPrompt(req.SourceLanguage, req.TargetLanguage)},
			{Role: "user", Content: req.SourceText},
		},
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		result.Error = fmt.Sprintf("failed to marshal request: %v", err)
		return result, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/chat/completions", s.baseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		result.Error = fmt.Sprintf("failed to create request: %v", err)
		return result, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))
	httpReq.Header.Set("HTTP-Referer", "https://codeconv.local")
	httpReq.Header.Set("X-Title", "codeconv")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		result.Error = fmt.Sprintf("request failed: %v", err)
		return result, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		result.Error = fmt.Sprintf("API returned status %d: %s", resp.StatusCode, bytes.TrimSpace(errBody))
		return result, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		result.Error = fmt.Sprintf("failed to decode response: %v", err)
		return result, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		result.Error = "empty response from API"
		return result, fmt.Errorf("empty response from API")
	}

	result.Text = postprocess.Clean(chatResp.Choices[0].Message.Content)
	result.Metadata = map[string]string{
		"model":             s.model,
		"prompt_tokens":     fmt.Sprintf("%d", chatResp.Usage.PromptTokens),
		"completion_tokens": fmt.Sprintf("%d", chatResp.Usage.CompletionTokens),
	}

	return result, nil
}

func (s *OpenRouterService) IsAvailable(ctx context.Context) error {
	if s.apiKey == "" {
		return fmt.Errorf("OpenRouter API key not configured")
	}
	return nil
}

func (s *OpenRouterService) Model() string {
	return s.model
}
