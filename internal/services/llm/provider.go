package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kengetal/internal/common"
	"github.com/ternarybob/kengetal/internal/interfaces"
	"golang.org/x/time/rate"
)

// ProviderType represents the AI provider type
type ProviderType string

const (
	// ProviderGemini uses Google Gemini API
	ProviderGemini ProviderType = "gemini"
	// ProviderClaude uses Anthropic Claude API
	ProviderClaude ProviderType = "claude"
)

var (
	// ErrNoAPIKey is returned when the selected provider has no API key configured
	ErrNoAPIKey = errors.New("no API key configured")
	// ErrEmptyResponse is returned when a provider answers without any text
	ErrEmptyResponse = errors.New("empty response from provider")
)

// ContentRequest represents a provider-agnostic content generation request
type ContentRequest struct {
	Prompt            string
	Model             string
	Temperature       float32
	MaxTokens         int
	SystemInstruction string
}

// ContentResponse represents a provider-agnostic content generation response
type ContentResponse struct {
	Text     string
	Provider ProviderType
	Model    string
}

// Provider defines the interface for a single AI backend
type Provider interface {
	GenerateContent(ctx context.Context, request *ContentRequest) (*ContentResponse, error)
	GetProviderType() ProviderType
}

// ProviderFactory creates providers lazily and routes requests to them.
// It is safe for concurrent use.
type ProviderFactory struct {
	geminiConfig *common.GeminiConfig
	claudeConfig *common.ClaudeConfig
	llmConfig    *common.LLMConfig
	model        string
	logger       arbor.ILogger
	limiter      *rate.Limiter
	retry        *RetryConfig

	mu        sync.Mutex
	providers map[ProviderType]Provider
}

// Compile-time assertion
var _ interfaces.TextGenerator = (*ProviderFactory)(nil)

// NewProviderFactory creates a new provider factory.
// model selects the model (and with it the provider) for Generate; empty uses the default provider's model.
func NewProviderFactory(
	geminiConfig *common.GeminiConfig,
	claudeConfig *common.ClaudeConfig,
	llmConfig *common.LLMConfig,
	model string,
	logger arbor.ILogger,
) *ProviderFactory {
	limit := rate.Inf
	burst := 1
	if llmConfig.RequestsPerMinute > 0 {
		limit = rate.Limit(float64(llmConfig.RequestsPerMinute) / 60.0)
		burst = llmConfig.RequestsPerMinute
	}

	retry := NewDefaultRetryConfig()
	if llmConfig.MaxRetries >= 0 {
		retry.MaxRetries = llmConfig.MaxRetries
	}

	return &ProviderFactory{
		geminiConfig: geminiConfig,
		claudeConfig: claudeConfig,
		llmConfig:    llmConfig,
		model:        model,
		logger:       logger,
		limiter:      rate.NewLimiter(limit, burst),
		retry:        retry,
		providers:    make(map[ProviderType]Provider),
	}
}

// DetectProvider determines the provider type from a model string.
// Model strings can be:
// - "claude-haiku-4-5" -> Claude
// - "claude/claude-haiku-4-5" -> Claude (with prefix)
// - "gemini-2.5-flash" -> Gemini
// - "gemini/gemini-2.5-flash" -> Gemini (with prefix)
// - Empty string -> uses default provider from config
func (f *ProviderFactory) DetectProvider(model string) ProviderType {
	model = strings.ToLower(model)

	switch {
	case strings.HasPrefix(model, "claude/"), strings.HasPrefix(model, "anthropic/"), strings.HasPrefix(model, "claude-"):
		return ProviderClaude
	case strings.HasPrefix(model, "gemini/"), strings.HasPrefix(model, "google/"), strings.HasPrefix(model, "gemini-"):
		return ProviderGemini
	}

	if f.llmConfig.DefaultProvider == common.LLMProviderClaude {
		return ProviderClaude
	}
	return ProviderGemini
}

// NormalizeModel removes provider prefix from model name if present
func (f *ProviderFactory) NormalizeModel(model string) string {
	prefixes := []string{"claude/", "anthropic/", "gemini/", "google/"}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToLower(model), prefix) {
			return model[len(prefix):]
		}
	}
	return model
}

// GetDefaultModel returns the default model for a provider
func (f *ProviderFactory) GetDefaultModel(provider ProviderType) string {
	if provider == ProviderClaude {
		return f.claudeConfig.Model
	}
	return f.geminiConfig.Model
}

// Generate implements interfaces.TextGenerator
func (f *ProviderFactory) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := f.GenerateContent(ctx, &ContentRequest{
		Prompt: prompt,
		Model:  f.model,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// GenerateContent generates content using the provider selected by request.Model.
// Calls wait on the shared rate limiter and are retried with backoff, except
// for authentication errors and empty responses.
func (f *ProviderFactory) GenerateContent(ctx context.Context, request *ContentRequest) (*ContentResponse, error) {
	providerType := f.DetectProvider(request.Model)

	req := *request
	req.Model = f.NormalizeModel(request.Model)
	if req.Model == "" {
		req.Model = f.GetDefaultModel(providerType)
	}

	provider, err := f.getProvider(ctx, providerType)
	if err != nil {
		return nil, err
	}

	f.logger.Debug().
		Str("provider", string(providerType)).
		Str("model", req.Model).
		Int("prompt_len", len(req.Prompt)).
		Msg("Generating content with provider")

	var resp *ContentResponse
	var apiErr error
	attempts := 0

	for attempt := 0; attempt <= f.retry.MaxRetries; attempt++ {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait: %w", err)
		}

		attempts++
		resp, apiErr = provider.GenerateContent(ctx, &req)
		if apiErr == nil {
			break
		}

		if attempt == f.retry.MaxRetries || errors.Is(apiErr, ErrEmptyResponse) || IsAuthError(apiErr) || ctx.Err() != nil {
			break
		}

		backoff := f.retry.Backoff(attempt, apiErr)
		f.logger.Warn().
			Str("provider", string(providerType)).
			Int("attempt", attempt+1).
			Dur("backoff", backoff).
			Err(apiErr).
			Msg("Retrying provider call")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	if apiErr != nil {
		return nil, fmt.Errorf("%s call failed after %d attempt(s): %w", providerType, attempts, apiErr)
	}

	return resp, nil
}

// getProvider returns the provider of the given type, creating it on first use
func (f *ProviderFactory) getProvider(ctx context.Context, providerType ProviderType) (Provider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if p, ok := f.providers[providerType]; ok {
		return p, nil
	}

	var p Provider
	var err error
	switch providerType {
	case ProviderClaude:
		apiKey := common.ResolveAPIKey(common.LLMProviderClaude, f.claudeConfig.APIKey)
		if apiKey == "" {
			return nil, fmt.Errorf("claude: %w", ErrNoAPIKey)
		}
		p = newClaudeProvider(apiKey, f.claudeConfig)
	default:
		apiKey := common.ResolveAPIKey(common.LLMProviderGemini, f.geminiConfig.APIKey)
		if apiKey == "" {
			return nil, fmt.Errorf("gemini: %w", ErrNoAPIKey)
		}
		p, err = newGeminiProvider(ctx, apiKey, f.geminiConfig)
		if err != nil {
			return nil, err
		}
	}

	f.providers[providerType] = p
	f.logger.Info().Str("provider", string(providerType)).Msg("LLM provider initialised")
	return p, nil
}

// Close drops all provider clients; they are recreated on next use
func (f *ProviderFactory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.providers = make(map[ProviderType]Provider)
	return nil
}
