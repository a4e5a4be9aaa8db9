package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"adscript/internal/llm"
)

const (
	Name         = "gemini"
	DefaultModel = "gemini-2.5-flash"
)

var _ llm.Backend = (*Client)(nil)

type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini api key missing")
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      opts.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  opts.HTTPClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: opts.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Client{
		client: client,
		model:  opts.Model,
	}, nil
}

func (c *Client) Name() string {
	return Name
}

func (c *Client) Model() string {
	return c.model
}

// Complete issues one GenerateContent call per requested completion. Thinking
// is disabled since thought tokens count against MaxOutputTokens.
func (c *Client) Complete(ctx context.Context, req llm.Request) ([]string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Temperature)),
		TopP:            genai.Ptr(float32(req.TopP)),
		MaxOutputTokens: int32(req.MaxOutputTokens),
		ThinkingConfig:  &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](0)},
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}

	return llm.FanOut(ctx, req.Completions, func(ctx context.Context, i int) (string, error) {
		resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), config)
		if err != nil {
			return "", fmt.Errorf("generate %d: %w", i+1, err)
		}

		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return "", fmt.Errorf("no candidates in response %d", i+1)
		}
		if resp.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
			return "", fmt.Errorf("response %d: %w", i+1, llm.ErrTruncated)
		}

		var sb strings.Builder
		for _, part := range resp.Candidates[0].Content.Parts {
			if part != nil && !part.Thought {
				sb.WriteString(part.Text)
			}
		}

		text := strings.TrimSpace(sb.String())
		if text == "" {
			return "", fmt.Errorf("empty response %d", i+1)
		}
		return text, nil
	})
}
