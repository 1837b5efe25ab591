package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/kengetal/internal/common"
	"google.golang.org/genai"
)

// geminiProvider generates content with the Google Gemini API
type geminiProvider struct {
	client *genai.Client
	config *common.GeminiConfig
}

func newGeminiProvider(ctx context.Context, apiKey string, config *common.GeminiConfig) (*geminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &geminiProvider{client: client, config: config}, nil
}

func (p *geminiProvider) GetProviderType() ProviderType {
	return ProviderGemini
}

func (p *geminiProvider) GenerateContent(ctx context.Context, request *ContentRequest) (*ContentResponse, error) {
	temp := request.Temperature
	if temp <= 0 {
		temp = p.config.Temperature
	}

	maxTokens := request.MaxTokens
	if maxTokens <= 0 {
		maxTokens = p.config.MaxTokens
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(temp),
		MaxOutputTokens: int32(maxTokens),
	}
	if request.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(request.SystemInstruction, genai.RoleUser)
	}

	resp, err := p.client.Models.GenerateContent(ctx, request.Model, genai.Text(request.Prompt), config)
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, ErrEmptyResponse
	}

	out := strings.TrimSpace(resp.Text())
	if out == "" {
		return nil, ErrEmptyResponse
	}

	return &ContentResponse{
		Text:     out,
		Provider: ProviderGemini,
		Model:    request.Model,
	}, nil
}
