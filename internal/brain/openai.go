package brain

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenAIModel = openai.GPT4oMini

const systemPrompt = `You are the assistant on a Nigerian real-estate marketplace.
Answer briefly (at most three sentences) and only about property: buying,
renting, neighbourhoods, viewings, budgets and the buying process. If the
visitor asks about anything else, steer them back to finding a property.
Never invent specific listings, prices or agent names.`

// OpenAIAdapter answers through the OpenAI chat completions API.
type OpenAIAdapter struct {
	client *openai.Client
	model  string
}

func NewOpenAIAdapter(apiKey, model, baseURL string) *OpenAIAdapter {
	cfg := openai.DefaultConfig(strings.TrimSpace(apiKey))
	if strings.TrimSpace(baseURL) != "" {
		cfg.BaseURL = strings.TrimSpace(baseURL)
	}
	if strings.TrimSpace(model) == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIAdapter{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (a *OpenAIAdapter) Reply(ctx context.Context, req Request) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    buildMessages(req),
		MaxTokens:   220,
		Temperature: 0.4,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrUnavailable
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func buildMessages(req Request) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	system := systemPrompt
	if facts := memoryFacts(req); facts != "" {
		system += "\n\nKnown about this visitor: " + facts
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	for _, h := range req.History {
		role := openai.ChatMessageRoleUser
		if h.Speaker == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: h.Text})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Utterance})
	return msgs
}

// memoryFacts lists search preferences only; contact details stay out of
// the prompt.
func memoryFacts(req Request) string {
	m := req.Memory
	var parts []string
	if m.FirstName() != "" {
		parts = append(parts, "first name "+m.FirstName())
	}
	if m.Location != "" {
		parts = append(parts, "prefers "+m.Location)
	}
	if m.PropertyType != "" {
		parts = append(parts, "wants a "+m.PropertyType)
	}
	if m.Bedrooms > 0 {
		parts = append(parts, fmt.Sprintf("%d bedrooms", m.Bedrooms))
	}
	if m.Budget != "" {
		parts = append(parts, "budget "+m.Budget)
	}
	return strings.Join(parts, ", ")
}
