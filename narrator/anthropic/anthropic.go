// Package anthropic generates narratives with the Anthropic Messages API.
package anthropic

import (
	"context"
	"log/slog"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"

	"ecovalley"
)

const (
	defaultModel       = "claude-sonnet-4-5-20250929"
	defaultMaxTokens   = 1000
	defaultTemperature = 0.7
)

type Options struct {
	Model       string
	MaxTokens   int64
	Temperature float64
}

type Narrator struct {
	client sdk.Client
	opts   Options
}

// NewNarrator builds a client for apiKey. Failed calls are never retried.
func NewNarrator(apiKey string, opts Options, extra ...option.RequestOption) *Narrator {
	if opts.Model == "" {
		opts.Model = defaultModel
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.Temperature == 0 {
		opts.Temperature = defaultTemperature
	}

	reqOpts := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, extra...)

	return &Narrator{
		client: sdk.NewClient(reqOpts...),
		opts:   opts,
	}
}

func (n *Narrator) Generate(ctx context.Context, req ecovalley.NarrativeRequest) (string, error) {
	params := sdk.MessageNewParams{
		Model:       sdk.Model(n.opts.Model),
		MaxTokens:   n.opts.MaxTokens,
		Temperature: sdk.Float(n.opts.Temperature),
		Messages:    []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(req.Prompt))},
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = int64(req.MaxTokens)
	}
	if req.Temperature > 0 {
		params.Temperature = sdk.Float(float64(req.Temperature))
	}
	if req.SystemRole != "" {
		params.System = []sdk.TextBlockParam{{Text: req.SystemRole}}
	}

	msg, err := n.client.Messages.New(ctx, params)
	if err != nil {
		return "", eris.Wrap(err, "anthropic: create message")
	}

	slog.Info("NARRATOR: Anthropic message created",
		"model", string(msg.Model),
		"stop_reason", string(msg.StopReason),
		"input_tokens", msg.Usage.InputTokens,
		"output_tokens", msg.Usage.OutputTokens,
	)

	var texts []string
	for _, b := range msg.Content {
		if b.Type == "text" && b.Text != "" {
			texts = append(texts, b.Text)
		}
	}
	if len(texts) == 0 {
		return "", eris.New("anthropic: response has no text content")
	}
	return strings.Join(texts, "\n"), nil
}
