package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/valpere/codeconv/internal"
	"github.com/valpere/codeconv/internal/postprocess"
)

const (
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultOllamaModel = "qwen2.5-coder:7b"
)

// OllamaService talks to a self-hosted Ollama instance. It needs no
// credential.
type OllamaService struct {
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	client      *http.Client
}

type ollamaRequest struct {
	Model   string         `json:"model"`
	System  string         `json:"system"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

func NewOllamaService(cfg ServiceConfig) *OllamaService {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultOllamaModel
	}
	return &OllamaService{
		baseURL:     baseURL,
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		client:      &http.Client{Timeout: cfg.Timeout},
	}
}

func (s *OllamaService) Name() string {
	return "ollama"
}

func (s *OllamaService) Complete(ctx context.Context, req internal.ConversionRequest) (*Result, error) {
	result := &Result{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	body := ollamaRequest{
		Model:  s.model,
		System: buildSystemPrompt(req.SourceLanguage, req.TargetLanguage),
		Prompt: req.SourceText,
		Stream: false,
	}
	body.Options = map[string]any{}
	if s.temperature > 0 {
		body.Options["temperature"] = s.temperature
	}
	if s.maxTokens > 0 {
		body.Options["num_predict"] = s.maxTokens
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		result.Error = fmt.Sprintf("failed to marshal request: %v", err)
		return result, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/api/generate", s.baseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		result.Error = fmt.Sprintf("failed to create request: %v", err)
		return result, err
	}

	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		result.Error = fmt.Sprintf("request failed: %v", err)
		return result, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		result.Error = fmt.Sprintf("API returned status %d (check if model '%s' is pulled)", resp.StatusCode, s.model)
		return result, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var genResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		result.Error = fmt.Sprintf("failed to decode response: %v", err)
		return result, fmt.Errorf("failed to decode response: %w", err)
	}

	result.Text = postprocess.Clean(genResp.Response)
	result.Metadata = map[string]string{"model": s.model}

	return result, nil
}

func (s *OllamaService) IsAvailable(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api/tags", s.baseURL), nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("Ollama not available: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Ollama returned status %d", resp.StatusCode)
	}
	return nil
}

func (s *OllamaService) Model() string {
	return s.model
}
