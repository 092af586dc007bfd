package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
)

// answerTemperature keeps generation close to the supplied context without
// being fully deterministic.
const answerTemperature = 0.4

// Generate runs a chat completion with a system instruction and a user
// prompt, returning the model's text.
func (c *Client) Generate(ctx context.Context, system, prompt string) (string, error) {
	if c.chat == "" {
		return "", fmt.Errorf("generate: chat model not configured")
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.Chat.Completions.New(callCtx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
		Model:       openai.ChatModel(c.chat),
		Temperature: openai.Float(answerTemperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
