package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"adscript/internal/llm"
)

const (
	Name         = "openai"
	DefaultModel = "gpt-4o-mini"
)

var _ llm.Backend = (*Client)(nil)

type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// Client asks the Chat Completions API for all completions in a single call
// using the n parameter.
type Client struct {
	client openai.Client
	model  string
}

func NewClient(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errors.New("openai api key missing")
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
		client: openai.NewClient(reqOpts...),
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
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(c.model),
		Messages:            messages,
		Temperature:         openai.Float(req.Temperature),
		TopP:                openai.Float(req.TopP),
		N:                   openai.Int(int64(req.Completions)),
		MaxCompletionTokens: openai.Int(int64(req.MaxOutputTokens)),
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) != req.Completions {
		return nil, fmt.Errorf("expected %d choices, got %d", req.Completions, len(resp.Choices))
	}

	out := make([]string, len(resp.Choices))
	for i, choice := range resp.Choices {
		idx := int(choice.Index)
		if idx < 0 || idx >= len(out) {
			idx = i
		}
		if choice.FinishReason == "length" {
			return nil, fmt.Errorf("choice %d: %w", idx, llm.ErrTruncated)
		}
		out[idx] = strings.TrimSpace(choice.Message.Content)
	}

	for i, text := range out {
		if text == "" {
			return nil, fmt.Errorf("empty content in choice %d", i)
		}
	}

	return out, nil
}
