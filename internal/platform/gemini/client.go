package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/yungbote/neurochat-backend/internal/platform/llm"
	"github.com/yungbote/neurochat-backend/internal/platform/logger"
)

const (
	providerName = "gemini"
	DefaultModel = "gemini-1.5-flash"
)

type Config struct {
	APIKey string
	Model  string
}

type Client struct {
	log   *logger.Logger
	gc    *genai.Client
	model string
}

func New(ctx context.Context, log *logger.Logger, cfg Config) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, fmt.Errorf("missing GOOGLE_API_KEY")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	gc, err := genai.NewClient(ctx, option.WithAPIKey(key))
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	return &Client{
		log:   log.With("service", "GeminiClient", "model", model),
		gc:    gc,
		model: model,
	}, nil
}

func (c *Client) Provider() string { return providerName }

func (c *Client) Close() error {
	if c == nil || c.gc == nil {
		return nil
	}
	return c.gc.Close()
}

func (c *Client) Generate(ctx context.Context, prompt string) (llm.Reply, error) {
	resp, err := c.gc.GenerativeModel(c.model).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return llm.Reply{}, llm.Classify(providerName, fmt.Errorf("gemini GenerateContent: %w", err))
	}
	return replyFromResponse(resp)
}

func (c *Client) Stream(ctx context.Context, prompt string, onDelta llm.DeltaFunc) (llm.Reply, error) {
	iter := c.gc.GenerativeModel(c.model).GenerateContentStream(ctx, genai.Text(prompt))
	var (
		full   strings.Builder
		blocks []llm.Block
	)
	for {
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return llm.Reply{}, llm.Classify(providerName, fmt.Errorf("gemini stream: %w", err))
		}
		part, err := replyFromResponse(resp)
		if err != nil {
			return llm.Reply{}, err
		}
		switch part.Kind {
		case llm.KindPlainText:
			full.WriteString(part.Plain)
			if onDelta != nil {
				if err := onDelta(part.Plain); err != nil {
					return llm.Reply{}, err
				}
			}
		case llm.KindStructured:
			blocks = append(blocks, part.Blocks...)
		case llm.KindEmpty:
		}
	}
	if full.Len() > 0 {
		return llm.PlainText(full.String()), nil
	}
	if len(blocks) > 0 {
		return llm.Structured(blocks...), nil
	}
	return llm.Reply{}, nil
}

// replyFromResponse reads the first candidate. Text parts become a plain-text reply;
// anything else is carried as structured blocks.
func replyFromResponse(resp *genai.GenerateContentResponse) (llm.Reply, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return llm.Reply{}, nil
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return llm.Reply{}, nil
	}
	var (
		text   strings.Builder
		blocks []llm.Block
	)
	for _, p := range cand.Content.Parts {
		switch v := p.(type) {
		case genai.Text:
			text.WriteString(string(v))
		case *genai.ExecutableCode:
			blocks = append(blocks, llm.Block{Type: "executable_code", Content: v.Code})
		case *genai.CodeExecutionResult:
			blocks = append(blocks, llm.Block{Type: "code_execution_result", Content: v.Output})
		case genai.FunctionCall:
			args, err := json.Marshal(v.Args)
			if err != nil {
				return llm.Reply{}, llm.Malformed(providerName, "function call args: %v", err)
			}
			blocks = append(blocks, llm.Block{Type: "function_call", Content: v.Name + string(args)})
		case genai.Blob:
			blocks = append(blocks, llm.Block{Type: "blob", Content: v.MIMEType})
		default:
			blocks = append(blocks, llm.Block{Type: fmt.Sprintf("%T", p)})
		}
	}
	if text.Len() > 0 {
		return llm.PlainText(text.String()), nil
	}
	if len(blocks) > 0 {
		return llm.Structured(blocks...), nil
	}
	return llm.Reply{}, nil
}
