package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/m04kA/SMC-AppointmentAgent/internal/integrations/brain"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel   = "google/gemma-2-9b-it:free"
)

// Config настройки клиента OpenRouter
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Referer string
	Title   string
	Timeout time.Duration
}

// Client реализует brain.LLMClient через OpenAI-совместимый API OpenRouter
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента OpenRouter
func NewClient(cfg Config, log Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log,
	}
}

// Complete отправляет диалог в /chat/completions и возвращает текст первого варианта
func (c *Client) Complete(ctx context.Context, in brain.LLMRequest) (brain.LLMResponse, error) {
	model := c.cfg.Model
	if in.Model != "" {
		model = in.Model
	}

	payload := chatRequest{
		Model:          model,
		Messages:       make([]chatMessage, 0, len(in.Messages)+1),
		MaxTokens:      in.MaxTokens,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}
	if in.Temperature > 0 {
		payload.Temperature = &in.Temperature
	}
	if in.System != "" {
		payload.Messages = append(payload.Messages, chatMessage{Role: brain.ChatRoleSystem, Content: in.System})
	}
	for _, m := range in.Messages {
		payload.Messages = append(payload.Messages, chatMessage{Role: m.Role, Content: m.Content})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return brain.LLMResponse{}, fmt.Errorf("%w: failed to encode request: %v", ErrInternal, err)
	}

	url := c.cfg.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return brain.LLMResponse{}, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if c.cfg.Referer != "" {
		req.Header.Set("HTTP-Referer", c.cfg.Referer)
	}
	if c.cfg.Title != "" {
		req.Header.Set("X-Title", c.cfg.Title)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return brain.LLMResponse{}, fmt.Errorf("%w: failed to execute request: %w", ErrInternal, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusUnauthorized, http.StatusForbidden:
		return brain.LLMResponse{}, ErrUnauthorized
	case http.StatusTooManyRequests:
		return brain.LLMResponse{}, ErrRateLimited
	default:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var apiErr ErrorResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			return brain.LLMResponse{}, fmt.Errorf("%w: status %d: %s", ErrInvalidResponse, resp.StatusCode, apiErr.Error.Message)
		}
		return brain.LLMResponse{}, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(raw))
	}

	// Парсим ответ
	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return brain.LLMResponse{}, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return brain.LLMResponse{}, fmt.Errorf("%w: no choices", ErrInvalidResponse)
	}

	c.log.Info("OpenRouter: completion from model=%s finish_reason=%s", out.Model, out.Choices[0].FinishReason)
	return brain.LLMResponse{Text: out.Choices[0].Message.Content}, nil
}
