// Package ollama generates narratives with a local Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"ecovalley"
)

type options struct {
	Temperature   float64 `json:"temperature,omitempty"`
	TopP          float64 `json:"top_p,omitempty"`
	RepeatPenalty float64 `json:"repeat_penalty,omitempty"`
	NumPredict    int     `json:"num_predict,omitempty"`
	NumCtx        int     `json:"num_ctx,omitempty"`
}

type Narrator struct {
	endpoint   string
	model      string
	httpClient ecovalley.HTTPClient
	options    options
}

type Opts struct {
	BaseEndpoint string
	ModelID      string
	TopP         float32
	HTTPClient   ecovalley.HTTPClient
}

func NewNarrator(opts Opts) (*Narrator, error) {
	if opts.BaseEndpoint == "" {
		return nil, fmt.Errorf("ollama base endpoint is required")
	}
	if opts.ModelID == "" {
		return nil, fmt.Errorf("ollama model id is required")
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	topP := float64(opts.TopP)
	if topP == 0 {
		topP = 0.9
	}

	return &Narrator{
		model:      opts.ModelID,
		httpClient: opts.HTTPClient,
		endpoint:   strings.TrimRight(opts.BaseEndpoint, "/") + "/api/chat",
		options: options{
			Temperature:   0.7,
			TopP:          topP,
			RepeatPenalty: 1.05,
			NumCtx:        8192,
		},
	}, nil
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireRequest struct {
	Model    string        `json:"model"`
	Messages []wireMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  options       `json:"options,omitempty"`
}

type wireResponse struct {
	Message wireMessage `json:"message"`
	Error   string      `json:"error,omitempty"`
}

func (n *Narrator) Generate(ctx context.Context, req ecovalley.NarrativeRequest) (string, error) {
	opts := n.options
	if req.Temperature > 0 {
		opts.Temperature = float64(req.Temperature)
	}
	if req.MaxTokens > 0 {
		opts.NumPredict = int(req.MaxTokens)
	}

	msgs := make([]wireMessage, 0, 2)
	if req.SystemRole != "" {
		msgs = append(msgs, wireMessage{Role: "system", Content: req.SystemRole})
	}
	msgs = append(msgs, wireMessage{Role: "user", Content: req.Prompt})

	reqBytes, err := json.Marshal(wireRequest{
		Model:    n.model,
		Messages: msgs,
		Stream:   false,
		Options:  opts,
	})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(reqBytes))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ollama chat: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama chat: %s: %s", resp.Status, string(body))
	}

	var wr wireResponse
	if err := json.Unmarshal(body, &wr); err != nil {
		return "", fmt.Errorf("ollama chat: decode response: %w", err)
	}
	if wr.Error != "" {
		return "", fmt.Errorf("ollama chat: %s", wr.Error)
	}
	if strings.TrimSpace(wr.Message.Content) == "" {
		return "", fmt.Errorf("ollama chat: empty response")
	}

	slog.Info("NARRATOR: Ollama chat succeeded", "model", n.model, "chars", len(wr.Message.Content))
	return wr.Message.Content, nil
}
