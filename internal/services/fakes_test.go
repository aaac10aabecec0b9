package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/neurochat-backend/internal/data/repos"
	"github.com/yungbote/neurochat-backend/internal/data/repos/testutil"
	types "github.com/yungbote/neurochat-backend/internal/domain"
	"github.com/yungbote/neurochat-backend/internal/platform/ctxutil"
	"github.com/yungbote/neurochat-backend/internal/platform/dbctx"
	"github.com/yungbote/neurochat-backend/internal/platform/llm"
)

type fakeModel struct {
	mu      sync.Mutex
	reply   llm.Reply
	err     error
	deltas  []string
	prompts []string
}

func (f *fakeModel) Provider() string { return "fake" }

func (f *fakeModel) Generate(ctx context.Context, prompt string) (llm.Reply, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.err != nil {
		return llm.Reply{}, f.err
	}
	return f.reply, nil
}

func (f *fakeModel) Stream(ctx context.Context, prompt string, onDelta llm.DeltaFunc) (llm.Reply, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	for _, d := range f.deltas {
		if err := onDelta(d); err != nil {
			return llm.Reply{}, err
		}
	}
	if f.err != nil {
		return llm.Reply{}, f.err
	}
	return f.reply, nil
}

func (f *fakeModel) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

type recordingStream struct {
	chunks []string
	full   string
	done   int
	failed []llm.ErrorKind
	err    error
}

func (r *recordingStream) Chunk(text string) error {
	if r.err != nil {
		return r.err
	}
	r.chunks = append(r.chunks, text)
	return nil
}

func (r *recordingStream) Done(full string) error {
	r.done++
	r.full = full
	return nil
}

func (r *recordingStream) Fail(kind llm.ErrorKind) error {
	r.failed = append(r.failed, kind)
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) add(e string) {
	n.mu.Lock()
	n.events = append(n.events, e)
	n.mu.Unlock()
}

func (n *recordingNotifier) ChatCreated(uuid.UUID, *types.Chat)                 { n.add("ChatCreated") }
func (n *recordingNotifier) ChatRenamed(uuid.UUID, *types.Chat)                 { n.add("ChatRenamed") }
func (n *recordingNotifier) ChatDeleted(uuid.UUID, uuid.UUID)                   { n.add("ChatDeleted") }
func (n *recordingNotifier) MessageCreated(uuid.UUID, uuid.UUID, *types.Message) { n.add("MessageCreated") }

var errModelDown = errors.New("upstream unavailable")

type fixture struct {
	db       *gorm.DB
	chats    repos.ChatRepo
	messages repos.MessageRepo
	users    repos.UserRepo
	notify   *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	return &fixture{
		db:       db,
		chats:    repos.NewChatRepo(db, log),
		messages: repos.NewMessageRepo(db, log),
		users:    repos.NewUserRepo(db, log),
		notify:   &recordingNotifier{},
	}
}

// as returns a request scope authenticated as userID.
func as(userID uuid.UUID) dbctx.Context {
	return dbctx.Context{Ctx: ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: userID})}
}

func (f *fixture) countMessages(t *testing.T, chatID uuid.UUID) int64 {
	t.Helper()
	n, err := f.messages.CountByChat(dbctx.Context{Ctx: context.Background()}, chatID)
	if err != nil {
		t.Fatalf("CountByChat: %v", err)
	}
	return n
}
