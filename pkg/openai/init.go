package openai

import (
	"net/http"
	"time"

	"clipforge/config"

	"github.com/sashabaranov/go-openai"
)

type Client struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
}

type Option func(*Client)

func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

func WithTemperature(temperature float32) Option {
	return func(c *Client) { c.temperature = temperature }
}

func WithMaxTokens(maxTokens int) Option {
	return func(c *Client) { c.maxTokens = maxTokens }
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.timeout = timeout }
}

func NewClient(baseUrl, apiKey, proxyAddr string, opts ...Option) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseUrl != "" {
		cfg.BaseURL = baseUrl
	}

	transport := &http.Transport{}
	if proxyAddr != "" {
		transport.Proxy = http.ProxyURL(config.Conf.App.ParsedProxy)
	}
	cfg.HTTPClient = &http.Client{
		Transport: transport,
	}

	c := &Client{
		client:      openai.NewClientWithConfig(cfg),
		model:       openai.GPT4oMini,
		temperature: 0.2,
		maxTokens:   512,
		timeout:     30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
