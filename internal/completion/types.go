package completion

import (
	"context"
	"time"

	"github.com/valpere/codeconv/internal"
)

type ServiceConfig struct {
	Provider    string        `mapstructure:"provider" json:"provider"`
	APIKey      string        `mapstructure:"api_key" json:"-"`
	Model       string        `mapstructure:"model" json:"model"`
	BaseURL     string        `mapstructure:"base_url" json:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout" json:"timeout"`
	MaxTokens   int           `mapstructure:"max_tokens" json:"max_tokens"`
	Temperature float64       `mapstructure:"temperature" json:"temperature"`
}

// Result is what a single outbound call produced. Error carries a
// human-readable reason when the call failed.
type Result struct {
	ServiceName string            `json:"service_name"`
	Text        string            `json:"text"`
	Metadata    map[string]string `json:"metadata"`
	Latency     time.Duration     `json:"latency"`
	Error       string            `json:"error,omitempty"`
}

// Service performs one chat-completion call per Complete invocation.
// Implementations must not retry.
type Service interface {
	Name() string
	Complete(ctx context.Context, req internal.ConversionRequest) (*Result, error)
	IsAvailable(ctx context.Context) error
}
