package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/neurochat-backend/internal/data/repos"
	types "github.com/yungbote/neurochat-backend/internal/domain"
	"github.com/yungbote/neurochat-backend/internal/platform/ctxutil"
	"github.com/yungbote/neurochat-backend/internal/platform/dbctx"
	"github.com/yungbote/neurochat-backend/internal/platform/llm"
	"github.com/yungbote/neurochat-backend/internal/platform/logger"
)

const (
	StreamModeSynthetic = "synthetic"
	StreamModeNative    = "native"

	DefaultChunkSize  = 80
	DefaultChunkDelay = 30 * time.Millisecond

	modelErrorPrefix = "Error from model: "
)

type MessageConfig struct {
	SystemInstruction string
	// StreamMode "synthetic" slices a finished reply into paced chunks; "native"
	// forwards provider increments as they arrive.
	StreamMode string
	ChunkSize  int
	ChunkDelay time.Duration
}

// StreamWriter receives the events of one streamed reply.
type StreamWriter interface {
	Chunk(text string) error
	Done(full string) error
	Fail(kind llm.ErrorKind) error
}

type SendResult struct {
	Reply     string
	Message   *types.Message
	ErrorKind llm.ErrorKind
}

type MessageService interface {
	Send(dbc dbctx.Context, chatID uuid.UUID, text string) (*SendResult, error)
	// Stream returns an error only when nothing useful reached w or persistence failed.
	// Model failures are reported through w.Fail and yield a nil error.
	Stream(dbc dbctx.Context, chatID uuid.UUID, text string, w StreamWriter) error
}

type messageService struct {
	db       *gorm.DB
	log      *logger.Logger
	chats    repos.ChatRepo
	messages repos.MessageRepo
	model    llm.Client
	notify   ChatNotifier
	cfg      MessageConfig
}

func NewMessageService(
	db *gorm.DB,
	log *logger.Logger,
	chats repos.ChatRepo,
	messages repos.MessageRepo,
	model llm.Client,
	notify ChatNotifier,
	cfg MessageConfig,
) MessageService {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.ChunkDelay < 0 {
		cfg.ChunkDelay = 0
	}
	if cfg.StreamMode != StreamModeNative {
		cfg.StreamMode = StreamModeSynthetic
	}
	if strings.TrimSpace(cfg.SystemInstruction) == "" {
		cfg.SystemInstruction = DefaultSystemInstruction
	}
	return &messageService{
		db:       db,
		log:      log.With("service", "MessageService"),
		chats:    chats,
		messages: messages,
		model:    model,
		notify:   notify,
		cfg:      cfg,
	}
}

func (s *messageService) Send(dbc dbctx.Context, chatID uuid.UUID, text string) (*SendResult, error) {
	userID, prompt, err := s.prepare(dbc, chatID, text)
	if err != nil {
		return nil, err
	}

	out := &SendResult{}
	meta := map[string]any{"provider": s.model.Provider()}
	reply, genErr := s.model.Generate(dbc.Ctx, prompt)
	if genErr != nil {
		out.ErrorKind = llm.Classify(s.model.Provider(), genErr).Kind
		out.Reply = modelErrorPrefix + genErr.Error()
		meta["model_error"] = string(out.ErrorKind)
		s.log.Warn("model reply replaced with error text",
			append([]any{"chat_id", chatID, "kind", out.ErrorKind, "error", genErr}, ctxutil.LogFields(dbc.Ctx)...)...)
	} else {
		out.Reply = reply.Content()
		meta["reply_kind"] = reply.Kind.String()
	}

	msg, err := s.appendMessage(dbc, chatID, types.RoleAssistant, out.Reply, meta)
	if err != nil {
		return nil, err
	}
	out.Message = msg
	s.created(userID, chatID, msg)
	return out, nil
}

func (s *messageService) Stream(dbc dbctx.Context, chatID uuid.UUID, text string, w StreamWriter) error {
	userID, prompt, err := s.prepare(dbc, chatID, text)
	if err != nil {
		return err
	}

	var (
		reply    llm.Reply
		writeErr error
	)
	if s.cfg.StreamMode == StreamModeNative {
		reply, err = s.model.Stream(dbc.Ctx, prompt, func(delta string) error {
			if werr := w.Chunk(delta); werr != nil {
				writeErr = fmt.Errorf("write chunk: %w", werr)
				return writeErr
			}
			return nil
		})
	} else {
		reply, err = s.model.Generate(dbc.Ctx, prompt)
	}
	if writeErr != nil {
		return writeErr
	}
	if err != nil {
		if ctxErr := dbc.Ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		kind := llm.Classify(s.model.Provider(), err).Kind
		s.log.Warn("stream generation failed",
			append([]any{"chat_id", chatID, "kind", kind, "error", err}, ctxutil.LogFields(dbc.Ctx)...)...)
		return w.Fail(kind)
	}

	full := reply.Content()
	if s.cfg.StreamMode != StreamModeNative {
		if err := s.emitChunks(dbc.Ctx, full, w); err != nil {
			return err
		}
	}

	msg, err := s.appendMessage(dbc, chatID, types.RoleAssistant, full, map[string]any{
		"provider":    s.model.Provider(),
		"reply_kind":  reply.Kind.String(),
		"stream_mode": s.cfg.StreamMode,
	})
	if err != nil {
		return err
	}
	s.created(userID, chatID, msg)
	return w.Done(full)
}

// emitChunks paces a finished reply. The pacing is synthetic.
func (s *messageService) emitChunks(ctx context.Context, full string, w StreamWriter) error {
	chunks := ChunkRunes(full, s.cfg.ChunkSize)
	for i, chunk := range chunks {
		if err := w.Chunk(chunk); err != nil {
			return fmt.Errorf("write chunk: %w", err)
		}
		if i == len(chunks)-1 || s.cfg.ChunkDelay <= 0 {
			continue
		}
		t := time.NewTimer(s.cfg.ChunkDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return nil
}

// prepare validates the input, checks ownership, stores the user message and returns
// the prompt built from the full history.
func (s *messageService) prepare(dbc dbctx.Context, chatID uuid.UUID, text string) (uuid.UUID, string, error) {
	userID, err := requestUserID(dbc)
	if err != nil {
		return uuid.Nil, "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return uuid.Nil, "", ErrEmptyMessage
	}
	c, err := s.chats.GetOwned(dbc, userID, chatID)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("load chat: %w", err)
	}
	if c == nil {
		return uuid.Nil, "", ErrChatNotFound
	}

	userMsg, err := s.appendMessage(dbc, chatID, types.RoleUser, text, nil)
	if err != nil {
		return uuid.Nil, "", err
	}
	s.created(userID, chatID, userMsg)

	history, err := s.messages.ListByChat(dbc, chatID)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("load history: %w", err)
	}
	return userID, BuildPrompt(s.cfg.SystemInstruction, history), nil
}

func (s *messageService) appendMessage(dbc dbctx.Context, chatID uuid.UUID, role, content string, meta map[string]any) (*types.Message, error) {
	m := &types.Message{ChatID: chatID, Role: role, Content: content}
	if len(meta) > 0 {
		raw, err := jsonMeta(meta)
		if err != nil {
			return nil, err
		}
		m.Metadata = raw
	}
	err := inTx(s.db, dbc, func(dbc dbctx.Context) error {
		_, err := s.messages.Append(dbc, m)
		return err
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		s.log.Error("append message failed", "chat_id", chatID, "role", role, "error", err)
		return nil, fmt.Errorf("append %s message: %w", role, err)
	}
	return m, nil
}

func jsonMeta(meta map[string]any) (datatypes.JSON, error) {
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	return datatypes.JSON(raw), nil
}

func (s *messageService) created(userID, chatID uuid.UUID, m *types.Message) {
	if s.notify != nil {
		s.notify.MessageCreated(userID, chatID, m)
	}
}
