package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"proposalforge/internal/oracle"
)

// Provider implements both oracle interfaces on the Anthropic Messages API.
type Provider struct {
	client *anthropic.Client
	model  string
}

// NewProvider creates a new Anthropic provider with the given API key.
func NewProvider(apiKey, model string) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	return &Provider{
		client: &client,
		model:  model,
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "anthropic"
}

// GenerateText runs one synchronous generation call. Reference files are
// appended to the prompt as consultable URIs; the caller has already capped
// them.
func (p *Provider) GenerateText(ctx context.Context, req *oracle.TextRequest) (*oracle.TextResult, error) {
	prompt := req.Prompt
	if len(req.ReferenceFiles) > 0 {
		prompt += "\n\nReference materials:\n- " + strings.Join(req.ReferenceFiles, "\n- ")
	}

	message, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: 4096,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic generate: %w", err)
	}

	content := collectText(message)
	if content == "" {
		return nil, fmt.Errorf("anthropic returned no text content")
	}

	return &oracle.TextResult{
		Content:          content,
		ReferenceSources: req.ReferenceFiles,
	}, nil
}

// Judge asks for a structured judgment and returns the raw JSON. The model
// is instructed to answer with JSON only; stray markdown fences are trimmed
// but validation belongs to the caller.
func (p *Provider) Judge(ctx context.Context, req *oracle.JudgeRequest) ([]byte, error) {
	prompt := req.Prompt +
		"\n\nRespond with JSON only, no prose, matching this schema:\n" + req.Schema

	message, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: 2048,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic judge: %w", err)
	}

	text := strings.TrimSpace(collectText(message))
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	return []byte(strings.TrimSpace(text)), nil
}

func collectText(message *anthropic.Message) string {
	var b strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}
