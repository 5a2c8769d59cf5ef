// Package bedrock generates narratives with the Bedrock Converse API.
package bedrock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"ecovalley"
)

const (
	// defaultModelID is an inference profile ID, not the foundation model's ID.
	// See https://docs.aws.amazon.com/bedrock/latest/userguide/inference-profiles.html.
	defaultModelID = "us.anthropic.claude-3-7-sonnet-20250219-v1:0"

	defaultMaxTokens   = 1000
	defaultTemperature = 0.7
	defaultTopP        = 0.9
)

var ErrEmptyResponse = errors.New("model returned no text")

type bedrockRuntimeClient interface {
	Converse(context.Context, *bedrockruntime.ConverseInput, ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

type Options struct {
	ModelID     string
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

type Narrator struct {
	brc  bedrockRuntimeClient
	opts Options
}

func NewNarrator(brc bedrockRuntimeClient, opts Options) *Narrator {
	if opts.ModelID == "" {
		opts.ModelID = defaultModelID
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.Temperature == 0 {
		opts.Temperature = defaultTemperature
	}
	if opts.TopP == 0 {
		opts.TopP = defaultTopP
	}
	return &Narrator{
		brc:  brc,
		opts: opts,
	}
}

// Generate sends the system role and prompt as a single-turn conversation.
// Sampling settings on req take precedence over the narrator's options.
func (n *Narrator) Generate(ctx context.Context, req ecovalley.NarrativeRequest) (string, error) {
	maxTokens, temperature := n.opts.MaxTokens, n.opts.Temperature
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	if req.Temperature > 0 {
		temperature = req.Temperature
	}

	in := &bedrockruntime.ConverseInput{
		ModelId: aws.String(n.opts.ModelID),
		Messages: []types.Message{
			{
				Role:    types.ConversationRoleUser,
				Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: req.Prompt}},
			},
		},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(maxTokens),
			Temperature: aws.Float32(temperature),
			TopP:        aws.Float32(n.opts.TopP),
		},
	}
	if req.SystemRole != "" {
		in.System = []types.SystemContentBlock{&types.SystemContentBlockMemberText{Value: req.SystemRole}}
	}

	out, err := n.brc.Converse(ctx, in)
	if err != nil {
		slog.Error("NARRATOR: Bedrock converse failed", "error", err, "model_id", n.opts.ModelID)
		return "", fmt.Errorf("bedrock converse: %w", err)
	}

	attrs := []any{"stop_reason", out.StopReason}
	if out.Usage != nil {
		attrs = append(attrs, "input_tokens", aws.ToInt32(out.Usage.InputTokens), "output_tokens", aws.ToInt32(out.Usage.OutputTokens))
	}
	if out.Metrics != nil {
		attrs = append(attrs, "latency_ms", aws.ToInt64(out.Metrics.LatencyMs))
	}
	slog.Info("NARRATOR: Bedrock converse succeeded", attrs...)

	switch out.StopReason {
	case types.StopReasonGuardrailIntervened, types.StopReasonContentFiltered:
		slog.Warn("NARRATOR: Response blocked by Bedrock safety filters")
		return "", fmt.Errorf("model response blocked by Bedrock safety filters")
	case types.StopReasonMaxTokens:
		slog.Warn("NARRATOR: Model hit MaxTokens limit; returning truncated text", "max_tokens", maxTokens)
	}

	text := textFromOutput(out)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// textFromOutput joins every non-empty text block with newlines.
func textFromOutput(out *bedrockruntime.ConverseOutput) string {
	if out == nil || out.Output == nil {
		return ""
	}

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok || msg == nil {
		return ""
	}

	texts := make([]string, 0, len(msg.Value.Content))
	for _, cb := range msg.Value.Content {
		if t, ok := cb.(*types.ContentBlockMemberText); ok && t != nil && t.Value != "" {
			texts = append(texts, t.Value)
		}
	}
	return strings.Join(texts, "\n")
}
