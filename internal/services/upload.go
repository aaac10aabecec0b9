package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/neurochat-backend/internal/data/repos"
	types "github.com/yungbote/neurochat-backend/internal/domain"
	"github.com/yungbote/neurochat-backend/internal/platform/dbctx"
	"github.com/yungbote/neurochat-backend/internal/platform/logger"
)

const (
	ExtractedPrefix = "📄 **Extracted File Content:**\n\n"
	NoReadableText  = "[No readable text]"
)

var allowedUploadExts = map[string]struct{}{
	"pdf":  {},
	"txt":  {},
	"png":  {},
	"jpg":  {},
	"jpeg": {},
}

type UploadResult struct {
	Extracted string
	Message   *types.Message
}

type UploadService interface {
	// Extract pulls text out of fh and stores it as an assistant message. fh may be nil
	// when the request carried no file part.
	Extract(dbc dbctx.Context, chatID uuid.UUID, fh *multipart.FileHeader) (*UploadResult, error)
}

type uploadService struct {
	db        *gorm.DB
	log       *logger.Logger
	chats     repos.ChatRepo
	messages  repos.MessageRepo
	extractor TextExtractor
	notify    ChatNotifier
}

func NewUploadService(db *gorm.DB, log *logger.Logger, chats repos.ChatRepo, messages repos.MessageRepo, extractor TextExtractor, notify ChatNotifier) UploadService {
	return &uploadService{
		db:        db,
		log:       log.With("service", "UploadService"),
		chats:     chats,
		messages:  messages,
		extractor: extractor,
		notify:    notify,
	}
}

// UploadExt returns the lower-cased extension of name and whether uploads accept it.
func UploadExt(name string) (string, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	_, ok := allowedUploadExts[ext]
	return ext, ok
}

func (s *uploadService) Extract(dbc dbctx.Context, chatID uuid.UUID, fh *multipart.FileHeader) (*UploadResult, error) {
	userID, err := requestUserID(dbc)
	if err != nil {
		return nil, err
	}
	c, err := s.chats.GetOwned(dbc, userID, chatID)
	if err != nil {
		return nil, fmt.Errorf("load chat: %w", err)
	}
	if c == nil {
		return nil, ErrChatNotFound
	}
	if fh == nil {
		return nil, ErrMissingFile
	}
	if strings.TrimSpace(fh.Filename) == "" {
		return nil, ErrNoSelectedFile
	}
	ext, ok := UploadExt(fh.Filename)
	if !ok {
		return nil, ErrUnsupportedFile
	}

	f, err := fh.Open()
	if err != nil {
		return nil, extractFailed(fmt.Errorf("open upload: %w", err))
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, extractFailed(fmt.Errorf("read upload: %w", err))
	}

	text, err := s.extractor.Extract(dbc.Ctx, ext, data)
	if err != nil {
		s.log.Warn("extraction failed", "chat_id", chatID, "ext", ext, "error", err)
		return nil, extractFailed(err)
	}
	if strings.TrimSpace(text) == "" {
		text = NoReadableText
	}

	m := &types.Message{ChatID: chatID, Role: types.RoleAssistant, Content: ExtractedPrefix + text}
	if raw, err := jsonMeta(map[string]any{"source": "upload", "filename": fh.Filename, "ext": ext}); err == nil {
		m.Metadata = raw
	}
	err = inTx(s.db, dbc, func(dbc dbctx.Context) error {
		_, err := s.messages.Append(dbc, m)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("append upload message: %w", err)
	}
	if s.notify != nil {
		s.notify.MessageCreated(userID, chatID, m)
	}
	return &UploadResult{Extracted: text, Message: m}, nil
}
