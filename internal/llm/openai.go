package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/tbourn/go-tutor-backend/internal/config"
	"github.com/tbourn/go-tutor-backend/internal/domain"
)

// OpenAIClient implements Chat against the OpenAI chat completions API.
type OpenAIClient struct {
	api         *openai.Client
	timeout     time.Duration
	maxAttempts int
}

// NewOpenAIClient builds a client from configuration. BaseURL overrides the
// provider endpoint, which is how tests and proxies hook in.
func NewOpenAIClient(cfg config.LLMConfig) *OpenAIClient {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &OpenAIClient{
		api:         openai.NewClientWithConfig(apiCfg),
		timeout:     cfg.Timeout,
		maxAttempts: attempts,
	}
}

// Complete sends the full conversation to the provider and returns the next
// assistant reply. Rate-limit rejections map to ErrRateLimited; transient
// provider failures are retried up to the configured attempt budget.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (Reply, error) {
	msgs, err := toMessages(req)
	if err != nil {
		return Reply{}, err
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		resp, err := c.complete(ctx, req.Model, msgs)
		if err == nil {
			if len(resp.Choices) == 0 {
				return Reply{}, errors.New("llm: provider returned no choices")
			}
			return Reply{
				Content:    resp.Choices[0].Message.Content,
				ResponseID: resp.ID,
			}, nil
		}
		lastErr = classify(err)
		if !retryable(lastErr) || attempt == c.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return Reply{}, ctx.Err()
		case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
		}
	}
	return Reply{}, lastErr
}

func (c *OpenAIClient) complete(ctx context.Context, model string, msgs []openai.ChatCompletionMessage) (openai.ChatCompletionResponse, error) {
	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.api.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: msgs,
	})
}

// toMessages maps the request into provider wire messages. The instructions
// become the leading system message; turns follow in order.
func toMessages(req Request) ([]openai.ChatCompletionMessage, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Turns)+1)
	if req.Instructions != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.Instructions,
		})
	}
	for _, t := range req.Turns {
		role, err := providerRole(t.Role)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    role,
			Content: t.Content,
		})
	}
	return msgs, nil
}

func providerRole(r domain.Role) (string, error) {
	switch r {
	case domain.RoleSystem:
		return openai.ChatMessageRoleSystem, nil
	case domain.RoleUser:
		return openai.ChatMessageRoleUser, nil
	case domain.RoleAssistant:
		return openai.ChatMessageRoleAssistant, nil
	default:
		return "", fmt.Errorf("llm: unknown role %q", r)
	}
}

// classify maps provider errors to sentinel errors where callers care about
// the distinction.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 429 {
		return fmt.Errorf("%w: %s", ErrRateLimited, apiErr.Message)
	}
	return err
}

// retryable reports whether a failed attempt is worth repeating. Rate limits
// and server-side errors are transient; everything else is not.
func retryable(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode >= 500
	}
	return false
}
