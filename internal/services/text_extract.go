package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/yungbote/neurochat-backend/internal/platform/gcp"
	"github.com/yungbote/neurochat-backend/internal/platform/logger"
)

var errOCRUnavailable = errors.New("image OCR is not configured")

// TextExtractor turns an uploaded file into plain text. ext is lower-case without the dot.
type TextExtractor interface {
	Extract(ctx context.Context, ext string, data []byte) (string, error)
}

type textExtractor struct {
	log    *logger.Logger
	vision gcp.Vision
	docai  gcp.Document
}

// NewTextExtractor builds an extractor. vision and docai are optional: without docai
// PDFs are parsed locally, without vision images fail to extract.
func NewTextExtractor(log *logger.Logger, vision gcp.Vision, docai gcp.Document) TextExtractor {
	return &textExtractor{
		log:    log.With("service", "TextExtractor"),
		vision: vision,
		docai:  docai,
	}
}

func (e *textExtractor) Extract(ctx context.Context, ext string, data []byte) (string, error) {
	switch ext {
	case "txt":
		return strings.ToValidUTF8(string(data), ""), nil
	case "pdf":
		if e.docai != nil {
			res, err := e.docai.ProcessBytes(ctx, gcp.DocAIProcessBytesRequest{MimeType: "application/pdf", Data: data})
			if err != nil {
				return "", fmt.Errorf("document ai: %w", err)
			}
			e.log.Debug("pdf extracted", "provider", res.Provider, "pages", res.Pages)
			return res.PrimaryText, nil
		}
		return extractPDF(data)
	case "png", "jpg", "jpeg":
		if e.vision == nil {
			return "", errOCRUnavailable
		}
		res, err := e.vision.OCRImageBytes(ctx, data, imageMimeType(ext))
		if err != nil {
			return "", fmt.Errorf("vision ocr: %w", err)
		}
		e.log.Debug("image extracted", "pages", res.Pages, "confidence", res.Confidence)
		return res.PrimaryText, nil
	default:
		return "", ErrUnsupportedFile
	}
}

func extractPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf reader: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf plaintext: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("pdf read: %w", err)
	}
	return string(b), nil
}

func imageMimeType(ext string) string {
	if ext == "png" {
		return "image/png"
	}
	return "image/jpeg"
}
