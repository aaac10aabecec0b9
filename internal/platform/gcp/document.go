package gcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"

	"github.com/yungbote/neurochat-backend/internal/platform/ctxutil"
	"github.com/yungbote/neurochat-backend/internal/platform/logger"
)

type Document interface {
	ProcessBytes(ctx context.Context, req DocAIProcessBytesRequest) (*DocAIResult, error)
	Close() error
}

type DocAIConfig struct {
	ProjectID   string
	Location    string
	ProcessorID string
}

type DocAIProcessBytesRequest struct {
	MimeType string
	Data     []byte
}

type DocAIResult struct {
	Provider    string `json:"provider"`
	Processor   string `json:"processor"`
	MimeType    string `json:"mime_type"`
	PrimaryText string `json:"primary_text"`
	Pages       int    `json:"pages"`
}

type documentService struct {
	log       *logger.Logger
	docClient *documentai.DocumentProcessorClient
	processor string
	timeout   time.Duration
}

func NewDocument(ctx context.Context, log *logger.Logger, cfg DocAIConfig, creds ...option.ClientOption) (Document, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	location := strings.TrimSpace(cfg.Location)
	if location == "" {
		location = "us"
	}
	name := processorName(cfg.ProjectID, location, cfg.ProcessorID)
	if name == "" {
		return nil, fmt.Errorf("documentai: project and processor id required")
	}
	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", location)

	// DocumentAI needs a regional endpoint.
	opts := append([]option.ClientOption{option.WithEndpoint(endpoint)}, creds...)
	c, err := documentai.NewDocumentProcessorClient(ctxutil.Default(ctx), opts...)
	if err != nil {
		return nil, fmt.Errorf("documentai client: %w", err)
	}

	slog := log.With("service", "gcp.Document")
	slog.Info("Document AI initialized", "endpoint", endpoint)
	return &documentService{
		log:       slog,
		docClient: c,
		processor: name,
		timeout:   3 * time.Minute,
	}, nil
}

func (s *documentService) Close() error {
	if s == nil || s.docClient == nil {
		return nil
	}
	return s.docClient.Close()
}

func (s *documentService) ProcessBytes(ctx context.Context, req DocAIProcessBytesRequest) (*DocAIResult, error) {
	if req.MimeType == "" {
		req.MimeType = "application/pdf"
	}
	out := &DocAIResult{Provider: "gcp_documentai", Processor: s.processor, MimeType: req.MimeType}
	if len(req.Data) == 0 {
		return out, nil
	}

	ctx, cancel := context.WithTimeout(ctxutil.Default(ctx), s.timeout)
	defer cancel()

	resp, err := s.docClient.ProcessDocument(ctx, &documentaipb.ProcessRequest{
		Name: s.processor,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  req.Data,
				MimeType: req.MimeType,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("documentai ProcessDocument: %w", err)
	}
	if resp == nil || resp.Document == nil {
		return out, nil
	}
	out.PrimaryText = strings.TrimSpace(resp.Document.Text)
	out.Pages = len(resp.Document.Pages)
	return out, nil
}

func processorName(project, location, processorID string) string {
	project = strings.TrimSpace(project)
	location = strings.TrimSpace(location)
	processorID = strings.TrimSpace(processorID)
	if project == "" || location == "" || processorID == "" {
		return ""
	}
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s", project, location, processorID)
}
