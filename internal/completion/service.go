package completion

import (
	"fmt"
	"strings"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
	ProviderOllama     = "ollama"
	ProviderGemini     = "gemini"

	DefaultProvider = ProviderOpenRouter
)

// Providers lists the accepted values of ServiceConfig.Provider.
func Providers() []string {
	return []string{ProviderOpenRouter, ProviderOpenAI, ProviderOllama, ProviderGemini}
}

// NewService constructs the backend named by cfg.Provider. An empty provider
// selects DefaultProvider.
func NewService(cfg ServiceConfig) (Service, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if name == "" {
		name = DefaultProvider
	}

	switch name {
	case ProviderOpenRouter:
		return NewOpenRouterService(cfg), nil
	case ProviderOpenAI:
		return NewOpenAIService(cfg), nil
	case ProviderOllama:
		return NewOllamaService(cfg), nil
	case ProviderGemini:
		return NewGeminiService(cfg), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}
