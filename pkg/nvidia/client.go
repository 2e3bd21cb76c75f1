// Package nvidia is a thin client for the OpenAI-compatible chat endpoint of
// NVIDIA's hosted models (integrate.api.nvidia.com).
package nvidia

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"clipforge/log"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const defaultBaseUrl = "https://integrate.api.nvidia.com/v1"

type Client struct {
	client      *resty.Client
	model       string
	temperature float32
	maxTokens   int
}

func NewClient(baseUrl, apiKey, model string, temperature float32, maxTokens int, timeout time.Duration) *Client {
	if baseUrl == "" {
		baseUrl = defaultBaseUrl
	}
	return &Client{
		client: resty.New().
			SetBaseURL(baseUrl).
			SetTimeout(timeout).
			SetAuthToken(apiKey).
			SetHeader("Content-Type", "application/json"),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageUrl *imageUrl `json:"image_url,omitempty"`
}

type imageUrl struct {
	Url string `json:"url"`
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) ChatCompletion(prompt string) (string, error) {
	return c.complete(context.Background(), []chatMessage{
		{Role: "user", Content: prompt},
	})
}

func (c *Client) VisionCompletion(ctx context.Context, image []byte, prompt string) (string, error) {
	dataUrl := fmt.Sprintf("data:image/jpeg;base64,%s", base64.StdEncoding.EncodeToString(image))
	return c.complete(ctx, []chatMessage{
		{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageUrl: &imageUrl{Url: dataUrl}},
			},
		},
	})
}

func (c *Client) complete(ctx context.Context, messages []chatMessage) (string, error) {
	var result chatResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model:       c.model,
			Messages:    messages,
			Temperature: c.temperature,
			MaxTokens:   c.maxTokens,
		}).
		SetResult(&result).
		Post("/chat/completions")
	if err != nil {
		log.GetLogger().Error("nvidia chat completion failed", zap.Error(err))
		return "", err
	}
	if resp.IsError() {
		log.GetLogger().Error("nvidia chat completion returned error status",
			zap.Int("status", resp.StatusCode()),
			zap.String("body", resp.String()))
		return "", fmt.Errorf("nvidia api status %d: %s", resp.StatusCode(), resp.String())
	}
	if result.Error != nil {
		return "", fmt.Errorf("nvidia api error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("nvidia chat completion returned no choices")
	}
	return result.Choices[0].Message.Content, nil
}
