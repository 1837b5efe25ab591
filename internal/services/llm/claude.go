package llm

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/kengetal/internal/common"
)

const defaultMaxTokens = 512

// claudeProvider generates content with the Anthropic Messages API
type claudeProvider struct {
	client anthropic.Client
	config *common.ClaudeConfig
}

func newClaudeProvider(apiKey string, config *common.ClaudeConfig) *claudeProvider {
	return &claudeProvider{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		config: config,
	}
}

func (p *claudeProvider) GetProviderType() ProviderType {
	return ProviderClaude
}

func (p *claudeProvider) GenerateContent(ctx context.Context, request *ContentRequest) (*ContentResponse, error) {
	maxTokens := request.MaxTokens
	if maxTokens <= 0 {
		maxTokens = p.config.MaxTokens
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(request.Model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(request.Prompt)),
		},
	}

	temp := request.Temperature
	if temp <= 0 {
		temp = p.config.Temperature
	}
	if temp > 0 {
		params.Temperature = anthropic.Float(float64(temp))
	}

	if request.SystemInstruction != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: request.SystemInstruction},
		}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	out := strings.TrimSpace(text.String())
	if out == "" {
		return nil, ErrEmptyResponse
	}

	return &ContentResponse{
		Text:     out,
		Provider: ProviderClaude,
		Model:    request.Model,
	}, nil
}
