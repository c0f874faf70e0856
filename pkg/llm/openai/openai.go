package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/foliokit/sage/pkg/llm"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Provider implements llm.Provider using the OpenAI chat completions API.
type Provider struct {
	client *openai.Client
	model  string
}

// New creates a new OpenAI Provider.
func New(opts ...option.RequestOption) *Provider {
	client := openai.NewClient(opts...)
	return &Provider{
		client: &client,
		model:  openai.ChatModelGPT4TurboPreview,
	}
}

// SetModel sets the default model to use when params carry none.
func (p *Provider) SetModel(model string) {
	p.model = model
}

// Chat sends a list of messages to the LLM and returns the reply text.
func (p *Provider) Chat(ctx context.Context, messages []llm.Message, params llm.GenerationParams) (string, error) {
	completionParams, err := p.buildParams(messages, params)
	if err != nil {
		return "", err
	}

	completion, err := p.client.Chat.Completions.New(ctx, completionParams)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return completion.Choices[0].Message.Content, nil
}

// Stream sends a list of messages to the LLM and returns a channel of reply chunks.
func (p *Provider) Stream(ctx context.Context, messages []llm.Message, params llm.GenerationParams) (<-chan string, error) {
	completionParams, err := p.buildParams(messages, params)
	if err != nil {
		return nil, err
	}

	stream := p.client.Chat.Completions.NewStreaming(ctx, completionParams)

	out := make(chan string)
	go func() {
		defer close(out)
		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) > 0 {
				out <- chunk.Choices[0].Delta.Content
			}
		}
		if err := stream.Err(); err != nil {
			slog.Error("completion stream failed", "error", err)
		}
	}()

	return out, nil
}

func (p *Provider) buildParams(messages []llm.Message, params llm.GenerationParams) (openai.ChatCompletionNewParams, error) {
	openaiMessages := make([]openai.ChatCompletionMessageParamUnion, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case llm.RoleSystem:
			openaiMessages[i] = openai.SystemMessage(msg.Content)
		case llm.RoleUser:
			openaiMessages[i] = openai.UserMessage(msg.Content)
		case llm.RoleAssistant:
			openaiMessages[i] = openai.AssistantMessage(msg.Content)
		default:
			return openai.ChatCompletionNewParams{}, fmt.Errorf("unknown role: %s", msg.Role)
		}
	}

	model := params.Model
	if model == "" {
		model = p.model
	}

	completionParams := openai.ChatCompletionNewParams{
		Messages:         openaiMessages,
		Model:            model,
		Temperature:      openai.Float(params.Temperature),
		PresencePenalty:  openai.Float(params.PresencePenalty),
		FrequencyPenalty: openai.Float(params.FrequencyPenalty),
	}
	if params.MaxTokens > 0 {
		completionParams.MaxTokens = openai.Int(params.MaxTokens)
	}

	return completionParams, nil
}
