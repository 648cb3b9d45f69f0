package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/m04kA/SMC-AppointmentAgent/internal/integrations/brain"
)

const DefaultModel = "gemini-2.5-flash"

// Client реализует brain.LLMClient поверх Gemini API
type Client struct {
	client  *genai.Client
	modelID string
}

// NewClient создает клиент Gemini
func NewClient(ctx context.Context, apiKey, modelID string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}

	return &Client{client: client, modelID: modelID}, nil
}

// Complete отправляет диалог в Gemini. Последнее сообщение уходит как новая реплика, остальные как история
func (c *Client) Complete(ctx context.Context, req brain.LLMRequest) (brain.LLMResponse, error) {
	if len(req.Messages) == 0 {
		return brain.LLMResponse{}, ErrNoMessages
	}

	modelID := c.modelID
	if req.Model != "" {
		modelID = req.Model
	}
	model := c.client.GenerativeModel(modelID)
	model.ResponseMIMEType = "application/json"
	if req.Temperature > 0 {
		model.SetTemperature(req.Temperature)
	}
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(req.MaxTokens)
	}
	if strings.TrimSpace(req.System) != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(req.System))
	}

	cs := model.StartChat()
	cs.History = toHistory(req.Messages[:len(req.Messages)-1])

	last := req.Messages[len(req.Messages)-1]
	resp, err := cs.SendMessage(ctx, genai.Text(last.Content))
	if err != nil {
		return brain.LLMResponse{}, fmt.Errorf("%w: %w", ErrCompletionFail, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return brain.LLMResponse{}, ErrEmptyResponse
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	if text.Len() == 0 {
		return brain.LLMResponse{}, ErrEmptyResponse
	}

	return brain.LLMResponse{Text: strings.TrimSpace(text.String())}, nil
}

// Close освобождает ресурсы клиента
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func toHistory(messages []brain.ChatMessage) []*genai.Content {
	history := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		content := strings.TrimSpace(msg.Content)
		if content == "" || msg.Role == brain.ChatRoleSystem {
			continue
		}

		role := "user"
		if msg.Role == brain.ChatRoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(content)}})
	}
	return history
}
