package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/yungbote/neurochat-backend/internal/platform/ctxutil"
	"github.com/yungbote/neurochat-backend/internal/platform/llm"
	"github.com/yungbote/neurochat-backend/internal/platform/logger"
)

const providerName = "openai"

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// HTTPTimeout bounds the whole HTTP exchange. Zero leaves it to the caller's context.
	HTTPTimeout time.Duration
}

// Client talks to any OpenAI-compatible /v1/chat/completions endpoint.
type Client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func New(log *logger.Logger, cfg Config) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Client{
		log:        log.With("service", "OpenAIClient", "model", model),
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
	}, nil
}

func (c *Client) Provider() string { return providerName }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream,omitempty"`
}

func (c *Client) Generate(ctx context.Context, prompt string) (llm.Reply, error) {
	resp, err := c.post(ctx, chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return llm.Reply{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return llm.Reply{}, llm.Classify(providerName, fmt.Errorf("read body: %w", err))
	}
	return parseCompletion(raw)
}

func (c *Client) Stream(ctx context.Context, prompt string, onDelta llm.DeltaFunc) (llm.Reply, error) {
	resp, err := c.post(ctx, chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
		Stream:   true,
	})
	if err != nil {
		return llm.Reply{}, err
	}
	defer resp.Body.Close()

	var full strings.Builder
	err = streamSSE(resp.Body, func(event string, data string) error {
		data = strings.TrimSpace(data)
		if data == "" || data == "[DONE]" {
			return nil
		}
		if !gjson.Valid(data) {
			return llm.Malformed(providerName, "stream chunk is not json")
		}
		if msg := gjson.Get(data, "error.message"); msg.Exists() {
			return llm.Classify(providerName, fmt.Errorf("stream error: %s", msg.String()))
		}
		delta := gjson.Get(data, "choices.0.delta.content").String()
		if delta == "" {
			return nil
		}
		full.WriteString(delta)
		if onDelta != nil {
			return onDelta(delta)
		}
		return nil
	})
	if err != nil {
		return llm.Reply{}, llm.Classify(providerName, err)
	}
	if full.Len() == 0 {
		return llm.Reply{}, nil
	}
	return llm.PlainText(full.String()), nil
}

func (c *Client) post(ctx context.Context, body chatRequest) (*http.Response, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctxutil.Default(ctx), http.MethodPost, c.baseURL+"/v1/chat/completions", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if body.Stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, llm.Classify(providerName, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		msg := gjson.GetBytes(raw, "error.message").String()
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return nil, llm.Classify(providerName, &llm.HTTPStatusError{StatusCode: resp.StatusCode, Body: msg})
	}
	return resp, nil
}

// parseCompletion accepts both string content and the array-of-parts form some
// compatible servers return.
func parseCompletion(raw []byte) (llm.Reply, error) {
	if !gjson.ValidBytes(raw) {
		return llm.Reply{}, llm.Malformed(providerName, "completion body is not json")
	}
	choices := gjson.GetBytes(raw, "choices")
	if !choices.IsArray() {
		return llm.Reply{}, llm.Malformed(providerName, "completion has no choices")
	}
	content := gjson.GetBytes(raw, "choices.0.message.content")
	switch {
	case content.Type == gjson.String:
		return llm.PlainText(content.String()), nil
	case content.IsArray():
		var blocks []llm.Block
		content.ForEach(func(_, part gjson.Result) bool {
			blocks = append(blocks, llm.Block{
				Type:    part.Get("type").String(),
				Content: part.Get("text").String(),
			})
			return true
		})
		if len(blocks) == 0 {
			return llm.Reply{}, nil
		}
		return llm.Structured(blocks...), nil
	default:
		return llm.Reply{}, nil
	}
}
