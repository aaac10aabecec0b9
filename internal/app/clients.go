package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/neurochat-backend/internal/observability"
	"github.com/yungbote/neurochat-backend/internal/platform/gcp"
	"github.com/yungbote/neurochat-backend/internal/platform/gemini"
	"github.com/yungbote/neurochat-backend/internal/platform/llm"
	"github.com/yungbote/neurochat-backend/internal/platform/logger"
	"github.com/yungbote/neurochat-backend/internal/platform/openai"
	"github.com/yungbote/neurochat-backend/internal/realtime/bus"
)

type Clients struct {
	Model       llm.Client
	GcpVision   gcp.Vision
	GcpDocument gcp.Document
	SSEBus      bus.Bus

	closers []func() error
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	// Model
	base, closeModel, err := newModelClient(ctx, log, cfg.Model)
	if err != nil {
		return Clients{}, err
	}
	if closeModel != nil {
		out.closers = append(out.closers, closeModel)
	}
	out.Model = llm.Instrument(base, log, cfg.ModelTimeout(), metrics)

	// Gcp (optional: extraction degrades to local pdf parsing and no OCR)
	if cfg.Extract.VisionEnabled {
		vision, err := gcp.NewVision(ctx, log, gcp.ClientOptions(cfg.Extract.Credentials)...)
		if err != nil {
			log.Warn("Vision OCR disabled", "error", err)
		} else {
			out.GcpVision = vision
			out.closers = append(out.closers, vision.Close)
		}
	}
	if strings.TrimSpace(cfg.Extract.DocumentAIProcessorID) != "" {
		document, err := gcp.NewDocument(ctx, log, gcp.DocAIConfig{
			ProjectID:   cfg.Extract.GCPProjectID,
			Location:    cfg.Extract.DocumentAILocation,
			ProcessorID: cfg.Extract.DocumentAIProcessorID,
		}, gcp.ClientOptions(cfg.Extract.Credentials)...)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init document client: %w", err)
		}
		out.GcpDocument = document
		out.closers = append(out.closers, document.Close)
	}

	// Redis
	if strings.TrimSpace(cfg.Redis.Addr) != "" {
		b, err := bus.NewRedisBus(ctx, log, bus.Config{Addr: cfg.Redis.Addr, Channel: cfg.Redis.Channel})
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init redis SSE bus: %w", err)
		}
		out.SSEBus = b
		out.closers = append(out.closers, b.Close)
	}

	return out, nil
}

func newModelClient(ctx context.Context, log *logger.Logger, cfg ModelConfig) (llm.Client, func() error, error) {
	switch cfg.Provider {
	case "openai":
		c, err := openai.New(log, openai.Config{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("init openai client: %w", err)
		}
		return c, nil, nil
	default:
		c, err := gemini.New(ctx, log, gemini.Config{
			APIKey: cfg.GoogleAPIKey,
			Model:  cfg.GeminiModel,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("init gemini client: %w", err)
		}
		return c, c.Close, nil
	}
}

// Close releases clients in reverse order of construction.
func (c *Clients) Close() {
	if c == nil {
		return
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		_ = c.closers[i]()
	}
	c.closers = nil
}
