package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/openai/openai-go"

	"github.com/joseph-ayodele/docs-extractor/internal/common"
	"github.com/joseph-ayodele/docs-extractor/internal/llm"
)

var _ llm.Gateway = (*Client)(nil)

// Invoke renders the template with the segment text and sends it as a single
// user message. The raw completion text is returned untouched; an empty
// choice list is a *llm.GatewayError.
func (c *Client) Invoke(ctx context.Context, promptTemplate, segment string) (string, error) {
	rid := uuid.New().String()
	start := time.Now()
	prompt := llm.Render(promptTemplate, segment)

	c.logger.Info("llm.invoke.start",
		"req_id", rid,
		"run_id", common.RunIDFromContext(ctx),
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(segment),
	)

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.cfg.Model),
		Temperature: openai.Float(float64(c.cfg.Temperature)),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		attrs := []any{
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		}
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			attrs = append(attrs, "status", apiErr.StatusCode)
		}
		c.logger.Error("llm.invoke.error", attrs...)
		return "", &llm.GatewayError{Model: c.cfg.Model, Err: fmt.Errorf("chat completion: %w", err)}
	}

	if len(resp.Choices) == 0 {
		c.logger.Warn("llm.invoke.no_choices",
			"req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", &llm.GatewayError{Model: c.cfg.Model, Err: errors.New("no choices")}
	}

	content := resp.Choices[0].Message.Content
	c.logger.Info("llm.invoke.ok",
		"req_id", rid,
		"bytes", len(content),
		"finish_reason", resp.Choices[0].FinishReason,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}
