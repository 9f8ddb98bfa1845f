package factory

import (
	"fmt"

	"chatbot-creator-be/internal/config"
	"chatbot-creator-be/pkg/llm"
	"chatbot-creator-be/pkg/llm/ollama"
	"chatbot-creator-be/pkg/llm/openrouter"
)

func NewLLMProvider(cfg config.AIConfig) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "openrouter":
		if cfg.OpenRouterAPIKey == "" {
			return nil, fmt.Errorf("openrouter provider requires OPENROUTER_API_KEY")
		}
		return openrouter.NewOpenRouterProvider(cfg.OpenRouterAPIKey, cfg.OpenRouterURL, cfg.Model), nil
	case "ollama":
		baseURL := cfg.OllamaBaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
