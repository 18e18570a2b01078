package completion

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/valpere/codeconv/internal"
	"github.com/valpere/codeconv/internal/postprocess"
)

const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiService calls the Gemini API through the genai SDK. The SDK client
// is created on first use so that a missing key surfaces from Complete.
type GeminiService struct {
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	timeout     time.Duration

	mu     sync.Mutex
	client *genai.Client
}

func NewGeminiService(cfg ServiceConfig) *GeminiService {
	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiService{
		apiKey:      cfg.APIKey,
		baseURL:     cfg.BaseURL,
		model:       model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
	}
}

func (s *GeminiService) Name() string {
	return "gemini"
}

func (s *GeminiService) getClient(ctx context.Context) (*genai.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client, nil
	}

	cc := &genai.ClientConfig{
		APIKey:     s.apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: s.timeout},
	}
	if s.baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: s.baseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	s.client = client
	return client, nil
}

func (s *GeminiService) Complete(ctx context.Context, req internal.ConversionRequest) (*Result, error) {
	result := &Result{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	if s.apiKey == "" {
		result.Error = "Gemini API key required"
		return result, fmt.Errorf("Gemini API key required")
	}

	client, err := s.getClient(ctx)
	if err != nil {
		result.Error = err.Error()
		return result, err
	}

	gc := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(buildSystemPrompt(req.SourceLanguage, req.TargetLanguage), genai.RoleUser),
	}
	if s.maxTokens > 0 {
		gc.MaxOutputTokens = int32(s.maxTokens)
	}
	if s.temperature > 0 {
		gc.Temperature = genai.Ptr(float32(s.temperature))
	}

	resp, err := client.Models.GenerateContent(ctx, s.model, genai.Text(req.SourceText), gc)
	if err != nil {
		result.Error = fmt.Sprintf("request failed: %v", err)
		return result, fmt.Errorf("GenAI generate failed: %w", err)
	}

	if len(resp.Candidates) == 0 {
		result.Error = "empty response from API"
		return result, fmt.Errorf("empty response from API")
	}

	result.Text = postprocess.Clean(resp.Text())
	result.Metadata = map[string]string{"model": s.model}
	if resp.UsageMetadata != nil {
		result.Metadata["prompt_tokens"] = fmt.Sprintf("%d", resp.UsageMetadata.PromptTokenCount)
		result.Metadata["completion_tokens"] = fmt.Sprintf("%d", resp.UsageMetadata.CandidatesTokenCount)
	}

	return result, nil
}

func (s *GeminiService) IsAvailable(ctx context.Context) error {
	if s.apiKey == "" {
		return fmt.Errorf("Gemini API key not configured")
	}
	return nil
}

func (s *GeminiService) Model() string {
	return s.model
}
