package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kengetal/internal/common"
)

// fakeProvider returns queued results in order and records the requests it saw
type fakeProvider struct {
	mu       sync.Mutex
	results  []error
	text     string
	requests []ContentRequest
}

func (p *fakeProvider) GenerateContent(ctx context.Context, request *ContentRequest) (*ContentResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.requests = append(p.requests, *request)
	if len(p.results) > 0 {
		err := p.results[0]
		p.results = p.results[1:]
		if err != nil {
			return nil, err
		}
	}
	return &ContentResponse{Text: p.text, Provider: ProviderGemini, Model: request.Model}, nil
}

func (p *fakeProvider) GetProviderType() ProviderType { return ProviderGemini }

func (p *fakeProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

func newTestFactory(model string) *ProviderFactory {
	cfg := common.NewDefaultConfig()
	cfg.LLM.RequestsPerMinute = 0
	f := NewProviderFactory(&cfg.Gemini, &cfg.Claude, &cfg.LLM, model, arbor.NewLogger())
	f.retry = &RetryConfig{
		MaxRetries:        2,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2,
		TransientBackoff:  time.Millisecond,
	}
	return f
}

func TestDetectProvider(t *testing.T) {
	f := newTestFactory("")

	assert.Equal(t, ProviderClaude, f.DetectProvider("claude-haiku-4-5"))
	assert.Equal(t, ProviderClaude, f.DetectProvider("anthropic/claude-haiku-4-5"))
	assert.Equal(t, ProviderGemini, f.DetectProvider("gemini-2.5-flash"))
	assert.Equal(t, ProviderGemini, f.DetectProvider("google/gemini-2.5-flash"))
	assert.Equal(t, ProviderGemini, f.DetectProvider(""))

	f.llmConfig.DefaultProvider = common.LLMProviderClaude
	assert.Equal(t, ProviderClaude, f.DetectProvider("some-model"))
}

func TestNormalizeModel(t *testing.T) {
	f := newTestFactory("")

	assert.Equal(t, "claude-haiku-4-5", f.NormalizeModel("claude/claude-haiku-4-5"))
	assert.Equal(t, "gemini-2.5-flash", f.NormalizeModel("Google/gemini-2.5-flash"))
	assert.Equal(t, "gemini-2.5-flash", f.NormalizeModel("gemini-2.5-flash"))
}

func TestGenerate_UsesDefaultModel(t *testing.T) {
	f := newTestFactory("")
	fake := &fakeProvider{text: "uitleg"}
	f.providers[ProviderGemini] = fake

	text, err := f.Generate(context.Background(), "prompt")
	require.NoError(t, err)

	assert.Equal(t, "uitleg", text)
	require.Len(t, fake.requests, 1)
	assert.Equal(t, "gemini-2.5-flash", fake.requests[0].Model)
	assert.Equal(t, "prompt", fake.requests[0].Prompt)
}

func TestGenerateContent_RetriesRateLimit(t *testing.T) {
	f := newTestFactory("gemini/gemini-2.5-pro")
	fake := &fakeProvider{
		text:    "ok",
		results: []error{errors.New("Error 429, Status: RESOURCE_EXHAUSTED"), nil},
	}
	f.providers[ProviderGemini] = fake

	text, err := f.Generate(context.Background(), "prompt")
	require.NoError(t, err)

	assert.Equal(t, "ok", text)
	assert.Equal(t, 2, fake.calls())
	assert.Equal(t, "gemini-2.5-pro", fake.requests[1].Model)
}

func TestGenerateContent_GivesUpAfterMaxRetries(t *testing.T) {
	f := newTestFactory("")
	boom := errors.New("connection reset")
	fake := &fakeProvider{results: []error{boom, boom, boom, boom}}
	f.providers[ProviderGemini] = fake

	_, err := f.Generate(context.Background(), "prompt")

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, fake.calls())
}

func TestGenerateContent_DoesNotRetryPermanentErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"empty response", ErrEmptyResponse},
		{"auth", errors.New("POST /v1/messages: 401 Unauthorized authentication_error")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFactory("")
			fake := &fakeProvider{results: []error{tt.err}}
			f.providers[ProviderGemini] = fake

			_, err := f.Generate(context.Background(), "prompt")

			require.Error(t, err)
			assert.Equal(t, 1, fake.calls())
		})
	}
}

func TestGenerateContent_ContextCancelledDuringBackoff(t *testing.T) {
	f := newTestFactory("")
	f.retry.InitialBackoff = time.Hour
	f.retry.MaxBackoff = time.Hour
	fake := &fakeProvider{results: []error{errors.New("429 too many requests")}}
	f.providers[ProviderGemini] = fake

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := f.Generate(ctx, "prompt")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, fake.calls())
}

func TestGenerate_NoAPIKey(t *testing.T) {
	t.Setenv("KENGETAL_CLAUDE_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("KENGETAL_GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_GEMINI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	for _, model := range []string{"claude-haiku-4-5", "gemini-2.5-flash"} {
		f := newTestFactory(model)
		_, err := f.Generate(context.Background(), "prompt")
		assert.ErrorIs(t, err, ErrNoAPIKey, model)
	}
}

func TestClose_ResetsProviders(t *testing.T) {
	f := newTestFactory("")
	f.providers[ProviderGemini] = &fakeProvider{}

	require.NoError(t, f.Close())
	assert.Empty(t, f.providers)
}
