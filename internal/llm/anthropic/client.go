package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"adscript/internal/llm"
)

const (
	Name         = "anthropic"
	DefaultModel = "claude-3-5-haiku-latest"

	// MaxTemperature is the upper bound the Messages API accepts.
	MaxTemperature = 1.0
)

var _ llm.Backend = (*Client)(nil)

type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// Client has no multi-completion parameter, so Complete issues one Messages
// call per requested completion.
type Client struct {
	client anthropic.Client
	model  string
}

func NewClient(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errors.New("anthropic api key missing")
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}

	return &Client{
		client: anthropic.NewClient(reqOpts...),
		model:  opts.Model,
	}, nil
}

func (c *Client) Name() string {
	return Name
}

func (c *Client) Model() string {
	return c.model
}

func (c *Client) Complete(ctx context.Context, req llm.Request) ([]string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(req.MaxOutputTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
		Temperature: anthropic.Float(ClampTemperature(req.Temperature)),
		TopP:        anthropic.Float(req.TopP),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	return llm.FanOut(ctx, req.Completions, func(ctx context.Context, i int) (string, error) {
		msg, err := c.client.Messages.New(ctx, params)
		if err != nil {
			return "", fmt.Errorf("create message %d: %w", i+1, err)
		}
		if msg.StopReason == anthropic.StopReasonMaxTokens {
			return "", fmt.Errorf("message %d: %w", i+1, llm.ErrTruncated)
		}

		var sb strings.Builder
		for _, block := range msg.Content {
			if block.Type == "text" {
				sb.WriteString(block.Text)
			}
		}

		text := strings.TrimSpace(sb.String())
		if text == "" {
			return "", fmt.Errorf("empty content in message %d", i+1)
		}
		return text, nil
	})
}

// ClampTemperature maps the brief's 0..1.5 range onto the 0..1 the Messages
// API accepts.
func ClampTemperature(t float64) float64 {
	if t > MaxTemperature {
		return MaxTemperature
	}
	if t < 0 {
		return 0
	}
	return t
}
