package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/valpere/codeconv/internal"
	"github.com/valpere/codeconv/internal/language"
)

var helloRequest = internal.ConversionRequest{
	SourceText:     "print('hi')",
	SourceLanguage: language.Python,
	TargetLanguage: language.JavaScript,
}

func TestOpenRouterService_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected Authorization header %q", got)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if len(req.Messages) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(req.Messages))
		}
		if req.Messages[0].Role != "system" || !strings.Contains(req.Messages[0].Content, "JavaScript") {
			t.Errorf("unexpected system message %+v", req.Messages[0])
		}
		if req.Messages[1].Role != "user" || req.Messages[1].Content != "print('hi')" {
			t.Errorf("unexpected user message %+v", req.Messages[1])
		}
		if req.Model != "test/model" {
			t.Errorf("expected model 'test/model', got %q", req.Model)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "```js\nconsole.log('hi')\n```"}},
			},
			"usage": map[string]int{"prompt_tokens": 12, "completion_tokens": 5, "total_tokens": 17},
		})
	}))
	defer server.Close()

	svc := NewOpenRouterService(ServiceConfig{APIKey: "test-key", BaseURL: server.URL, Model: "test/model"})

	result, err := svc.Complete(context.Background(), helloRequest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Text != "console.log('hi')" {
		t.Errorf("expected cleaned code, got %q", result.Text)
	}
	if result.Metadata["prompt_tokens"] != "12" {
		t.Errorf("expected prompt_tokens in metadata, got %v", result.Metadata)
	}
	if result.Error != "" {
		t.Errorf("unexpected result error %q", result.Error)
	}
}

func TestOpenRouterService_Complete_NoAPIKey(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	svc := NewOpenRouterService(ServiceConfig{BaseURL: server.URL})

	result, err := svc.Complete(context.Background(), helloRequest)
	if err == nil {
		t.Error("expected error when no API key")
	}
	if result == nil || result.Error == "" {
		t.Error("expected error message in result")
	}
	if calls.Load() != 0 {
		t.Errorf("expected no outbound call without a key, got %d", calls.Load())
	}
}

func TestOpenRouterService_Complete_APIError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer server.Close()

	svc := NewOpenRouterService(ServiceConfig{APIKey: "bad", BaseURL: server.URL})

	result, err := svc.Complete(context.Background(), helloRequest)
	if err == nil {
		t.Error("expected error for non-OK status")
	}
	if !strings.Contains(result.Error, "401") || !strings.Contains(result.Error, "bad key") {
		t.Errorf("expected status and body in result error, got %q", result.Error)
	}
	if calls.Load() != 1 {
		t.Errorf("expected exactly one call, got %d", calls.Load())
	}
}

func TestOpenRouterService_Complete_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	svc := NewOpenRouterService(ServiceConfig{APIKey: "k", BaseURL: server.URL})

	_, err := svc.Complete(context.Background(), helloRequest)
	if err == nil {
		t.Error("expected error for empty choices")
	}
}

func TestOpenRouterService_Complete_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": [`))
	}))
	defer server.Close()

	svc := NewOpenRouterService(ServiceConfig{APIKey: "k", BaseURL: server.URL})

	result, err := svc.Complete(context.Background(), helloRequest)
	if err == nil {
		t.Error("expected error for malformed JSON")
	}
	if result.Error == "" {
		t.Error("expected error message in result")
	}
}

func TestOpenRouterService_Defaults(t *testing.T) {
	svc := NewOpenRouterService(ServiceConfig{})

	if svc.Name() != "openrouter" {
		t.Errorf("expected 'openrouter', got %q", svc.Name())
	}
	if svc.baseURL != DefaultOpenRouterURL {
		t.Errorf("expected default base URL, got %q", svc.baseURL)
	}
	if svc.Model() != DefaultOpenRouterModel {
		t.Errorf("expected default model, got %q", svc.Model())
	}
	if svc.client.Timeout != 0 {
		t.Errorf("expected no client timeout by default, got %v", svc.client.Timeout)
	}
	if err := svc.IsAvailable(context.Background()); err == nil {
		t.Error("expected IsAvailable error without key")
	}
}

func TestOllamaService_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req ollamaRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Stream {
			t.Error("expected stream=false")
		}
		if req.Prompt != "print('hi')" {
			t.Errorf("expected source text as prompt, got %q", req.Prompt)
		}
		if !strings.Contains(req.System, "JavaScript") {
			t.Errorf("expected target language in system prompt, got %q", req.System)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"response": "console.log('hi')"})
	}))
	defer server.Close()

	svc := NewOllamaService(ServiceConfig{BaseURL: server.URL, Model: "llama3.2"})

	result, err := svc.Complete(context.Background(), helloRequest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Text != "console.log('hi')" {
		t.Errorf("expected 'console.log('hi')', got %q", result.Text)
	}
	if result.Metadata["model"] != "llama3.2" {
		t.Errorf("expected model in metadata, got %v", result.Metadata)
	}
}

func TestOllamaService_Complete_Temperature(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		json.NewDecoder(r.Body).Decode(&req)
		opts, ok := req["options"].(map[string]interface{})
		if !ok || opts["temperature"] != 0.2 {
			t.Errorf("expected temperature option, got %v", req["options"])
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"response": "x"})
	}))
	defer server.Close()

	svc := NewOllamaService(ServiceConfig{BaseURL: server.URL, Temperature: 0.2})

	if _, err := svc.Complete(context.Background(), helloRequest); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestOllamaService_Complete_Options(t *testing.T) {
	tests := []struct {
		name        string
		cfg         ServiceConfig
		wantOptions map[string]interface{}
	}{
		{name: "none", cfg: ServiceConfig{}, wantOptions: nil},
		{name: "max tokens", cfg: ServiceConfig{MaxTokens: 512}, wantOptions: map[string]interface{}{"num_predict": float64(512)}},
		{
			name:        "both",
			cfg:         ServiceConfig{MaxTokens: 64, Temperature: 0.5},
			wantOptions: map[string]interface{}{"num_predict": float64(64), "temperature": 0.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var req map[string]interface{}
				json.NewDecoder(r.Body).Decode(&req)
				opts, _ := req["options"].(map[string]interface{})
				if !reflect.DeepEqual(opts, tt.wantOptions) {
					t.Errorf("options = %v, want %v", opts, tt.wantOptions)
				}
				json.NewEncoder(w).Encode(map[string]interface{}{"response": "x"})
			}))
			defer server.Close()

			tt.cfg.BaseURL = server.URL
			if _, err := NewOllamaService(tt.cfg).Complete(context.Background(), helloRequest); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestOllamaService_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	svc := NewOllamaService(ServiceConfig{BaseURL: server.URL})

	result, err := svc.Complete(context.Background(), helloRequest)
	if err == nil {
		t.Error("expected error for non-OK status")
	}
	if result == nil {
		t.Fatal("expected non-nil result")
	}
	if !strings.Contains(result.Error, DefaultOllamaModel) {
		t.Errorf("expected model hint in error, got %q", result.Error)
	}
}

func TestOllamaService_IsAvailable_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := NewOllamaService(ServiceConfig{BaseURL: server.URL})

	if err := svc.IsAvailable(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestOllamaService_IsAvailable_NotRunning(t *testing.T) {
	svc := &OllamaService{
		baseURL: "http://localhost:19999",
		client:  &http.Client{Timeout: 100 * time.Millisecond},
	}

	if err := svc.IsAvailable(context.Background()); err == nil {
		t.Error("expected error when Ollama not available")
	}
}

func TestOllamaService_Name(t *testing.T) {
	svc := NewOllamaService(ServiceConfig{})

	if svc.Name() != "ollama" {
		t.Errorf("expected 'ollama', got %q", svc.Name())
	}
	if svc.Model() != DefaultOllamaModel {
		t.Errorf("expected default model, got %q", svc.Model())
	}
}
