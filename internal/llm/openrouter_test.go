package llm

import (
	"strings"
	"testing"
)

func TestNewOpenRouterProvider(t *testing.T) {
	tests := []struct {
		name    string
		cfg     OpenRouterConfig
		wantErr string
		model   string
	}{
		{
			name:  "vendor-prefixed model",
			cfg:   OpenRouterConfig{APIKey: "sk-or-test", Model: "google/gemini-2.0-flash-exp"},
			model: "google/gemini-2.0-flash-exp",
		},
		{
			name:    "missing key",
			cfg:     OpenRouterConfig{Model: "openai/gpt-4o"},
			wantErr: "API key is required",
		},
		{
			name:  "custom base URL",
			cfg:   OpenRouterConfig{APIKey: "sk-or-test", Model: "openai/gpt-4", BaseURL: "https://router.example/v1"},
			model: "openai/gpt-4",
		},
		{
			// OpenAI friendly names are not resolved for OpenRouter.
			name:  "friendly name passed through",
			cfg:   OpenRouterConfig{APIKey: "sk-or-test", Model: "gpt-mini"},
			model: "gpt-mini",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewOpenRouterProvider(tt.cfg)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.ModelID() != tt.model {
				t.Errorf("model = %q, want %q", p.ModelID(), tt.model)
			}
		})
	}
}

func TestNewOpenAIProviderRaw_ModelTable(t *testing.T) {
	cfg := OpenAIConfig{APIKey: "k", Model: "gpt-mini"}

	if got := newOpenAIProviderRaw(cfg, nil).ModelID(); got != "gpt-mini" {
		t.Errorf("nil table: model = %q, want pass-through", got)
	}
	if got := newOpenAIProviderRaw(cfg, openaiModels).ModelID(); got != "gpt-4o-mini" {
		t.Errorf("openai table: model = %q, want gpt-4o-mini", got)
	}

	cfg.Model = "gpt-4o-2024-08-06"
	if got := newOpenAIProviderRaw(cfg, openaiModels).ModelID(); got != cfg.Model {
		t.Errorf("direct id: model = %q, want %q", got, cfg.Model)
	}
}

func TestModelTablesArePriced(t *testing.T) {
	for name, table := range map[string]map[string]string{
		"anthropic": anthropicModels,
		"openai":    openaiModels,
		"gemini":    geminiModels,
	} {
		for friendly, id := range table {
			if LookupCost(id) == nil {
				t.Errorf("%s: %s resolves to %s, which has no pricing", name, friendly, id)
			}
		}
	}
}
