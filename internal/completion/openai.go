package completion

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/valpere/codeconv/internal"
	"github.com/valpere/codeconv/internal/postprocess"
)

const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIService uses the official SDK against any OpenAI-compatible
// endpoint. SDK retries are switched off: one Complete, one request.
type OpenAIService struct {
	client      openai.Client
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
}

func NewOpenAIService(cfg ServiceConfig) *OpenAIService {
	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	return &OpenAIService{
		client:      openai.NewClient(opts...),
		apiKey:      cfg.APIKey,
		model:       model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

func (s *OpenAIService) Name() string {
	return "openai"
}

func (s *OpenAIService) Complete(ctx context.Context, req internal.ConversionRequest) (*Result, error) {
	result := &Result{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	if s.apiKey == "" {
		result.Error = "OpenAI API key required"
		return result, fmt.Errorf("OpenAI API key required")
	}

	params := openai.ChatCompletionNewParams{
		Model: s.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(buildSystemPrompt(req.SourceLanguage, req.TargetLanguage)),
			openai.UserMessage(req.SourceText),
		},
	}
	if s.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(s.maxTokens))
	}
	if s.temperature > 0 {
		params.Temperature = openai.Float(s.temperature)
	}

	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		result.Error = fmt.Sprintf("request failed: %v", err)
		return result, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		result.Error = "empty response from API"
		return result, fmt.Errorf("empty response from API")
	}

	result.Text = postprocess.Clean(resp.Choices[0].Message.Content)
	result.Metadata = map[string]string{
		"model":             resp.Model,
		"prompt_tokens":     fmt.Sprintf("%d", resp.Usage.PromptTokens),
		"completion_tokens": fmt.Sprintf("%d", resp.Usage.CompletionTokens),
	}

	return result, nil
}

func (s *OpenAIService) IsAvailable(ctx context.Context) error {
	if s.apiKey == "" {
		return fmt.Errorf("OpenAI API key not configured")
	}
	return nil
}

func (s *OpenAIService) Model() string {
	return s.model
}
