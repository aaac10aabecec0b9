package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/neurochat-backend/internal/data/repos/testutil"
	types "github.com/yungbote/neurochat-backend/internal/domain"
	"github.com/yungbote/neurochat-backend/internal/platform/dbctx"
	"github.com/yungbote/neurochat-backend/internal/platform/llm"
)

func llmText(s string) llm.Reply { return llm.PlainText(s) }

func TestSendRejectsWhitespace(t *testing.T) {
	f := newFixture(t)
	model := &fakeModel{reply: llmText("unused")}
	svc := NewMessageService(f.db, testutil.Logger(t), f.chats, f.messages, model, f.notify, MessageConfig{})
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, f.db, "blank@example.com")
	c := testutil.SeedChat(t, ctx, f.db, u.ID, "c")

	if _, err := svc.Send(as(u.ID), c.ID, "  "); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("Send: want ErrEmptyMessage got %v", err)
	}
	w := &recordingStream{}
	if err := svc.Stream(as(u.ID), c.ID, "\n\t ", w); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("Stream: want ErrEmptyMessage got %v", err)
	}
	if n := f.countMessages(t, c.ID); n != 0 {
		t.Fatalf("rows: want=0 got=%d", n)
	}
	if len(model.prompts) != 0 {
		t.Fatalf("model should not be called")
	}
}

func TestSendBuildsTranscriptInOrder(t *testing.T) {
	f := newFixture(t)
	model := &fakeModel{reply: llmText("I'm well")}
	svc := NewMessageService(f.db, testutil.Logger(t), f.chats, f.messages, model, f.notify, MessageConfig{})
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, f.db, "transcript@example.com")
	c := testutil.SeedChat(t, ctx, f.db, u.ID, "c")
	testutil.SeedMessage(t, ctx, f.db, c.ID, 1, types.RoleUser, "hi")
	time.Sleep(5 * time.Millisecond)
	testutil.SeedMessage(t, ctx, f.db, c.ID, 2, types.RoleAssistant, "hello")

	res, err := svc.Send(as(u.ID), c.ID, "how are you")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if res.Reply != "I'm well" {
		t.Fatalf("reply: want=%q got=%q", "I'm well", res.Reply)
	}

	want := strings.Join([]string{
		"System: " + DefaultSystemInstruction,
		"",
		"User: hi",
		"Assistant: hello",
		"User: how are you",
	}, "\n")
	if got := model.lastPrompt(); got != want {
		t.Fatalf("prompt:\nwant=%q\n got=%q", want, got)
	}

	_, msgs, err := NewChatService(f.db, testutil.Logger(t), f.chats, f.messages, nil).GetMessages(as(u.ID), c.ID)
	if err != nil {
		t.Fatalf("GetMessages: %v", err)
	}
	if len(msgs) != 4 || msgs[3].Role != types.RoleAssistant || msgs[3].Content != "I'm well" {
		t.Fatalf("history: unexpected tail %+v", msgs[len(msgs)-1])
	}
}

func TestSendModelFailurePersistsErrorText(t *testing.T) {
	f := newFixture(t)
	model := &fakeModel{err: llm.Classify("fake", errModelDown)}
	svc := NewMessageService(f.db, testutil.Logger(t), f.chats, f.messages, model, f.notify, MessageConfig{})
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, f.db, "failsync@example.com")
	c := testutil.SeedChat(t, ctx, f.db, u.ID, "c")

	res, err := svc.Send(as(u.ID), c.ID, "hello")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if res.Reply != "Error from model: upstream unavailable" {
		t.Fatalf("reply: got=%q", res.Reply)
	}
	if res.ErrorKind != llm.ModelUnavailable {
		t.Fatalf("kind: want=%s got=%s", llm.ModelUnavailable, res.ErrorKind)
	}
	if n := f.countMessages(t, c.ID); n != 2 {
		t.Fatalf("rows: want=2 got=%d", n)
	}
	if !strings.Contains(string(res.Message.Metadata), `"model_error":"model_unavailable"`) {
		t.Fatalf("metadata: got=%s", res.Message.Metadata)
	}
}

func TestStreamChunksThenPersistsFullReply(t *testing.T) {
	f := newFixture(t)
	full := strings.Repeat("abcdefghij", 20)
	model := &fakeModel{reply: llmText(full)}
	svc := NewMessageService(f.db, testutil.Logger(t), f.chats, f.messages, model, f.notify, MessageConfig{
		ChunkSize:  80,
		ChunkDelay: time.Millisecond,
	})
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, f.db, "stream@example.com")
	c := testutil.SeedChat(t, ctx, f.db, u.ID, "c")

	w := &recordingStream{}
	if err := svc.Stream(as(u.ID), c.ID, "tell me", w); err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if len(w.chunks) != 3 {
		t.Fatalf("chunks: want=3 got=%d", len(w.chunks))
	}
	for i, want := range []int{80, 80, 40} {
		if len(w.chunks[i]) != want {
			t.Fatalf("chunk %d: want len=%d got=%d", i, want, len(w.chunks[i]))
		}
	}
	if w.done != 1 || w.full != full {
		t.Fatalf("done: want one event with full text, got done=%d len=%d", w.done, len(w.full))
	}

	msgs, err := f.messages.ListByChat(dbctx.Context{Ctx: ctx}, c.ID)
	if err != nil {
		t.Fatalf("ListByChat: %v", err)
	}
	if len(msgs) != 2 || msgs[1].Content != full {
		t.Fatalf("persisted reply differs from streamed text")
	}
}

func TestStreamModelFailureSkipsPersistence(t *testing.T) {
	f := newFixture(t)
	model := &fakeModel{err: llm.Classify("fake", context.DeadlineExceeded)}
	svc := NewMessageService(f.db, testutil.Logger(t), f.chats, f.messages, model, f.notify, MessageConfig{})
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, f.db, "streamfail@example.com")
	c := testutil.SeedChat(t, ctx, f.db, u.ID, "c")

	w := &recordingStream{}
	if err := svc.Stream(as(u.ID), c.ID, "hello", w); err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if len(w.failed) != 1 || w.failed[0] != llm.ModelTimeout {
		t.Fatalf("fail events: got=%v", w.failed)
	}
	if w.done != 0 || len(w.chunks) != 0 {
		t.Fatalf("no chunks or done expected, got chunks=%d done=%d", len(w.chunks), w.done)
	}
	if n := f.countMessages(t, c.ID); n != 1 {
		t.Fatalf("rows: want=1 (user message only) got=%d", n)
	}
}

func TestStreamNativeForwardsDeltas(t *testing.T) {
	f := newFixture(t)
	model := &fakeModel{deltas: []string{"Hel", "lo"}, reply: llmText("Hello")}
	svc := NewMessageService(f.db, testutil.Logger(t), f.chats, f.messages, model, f.notify, MessageConfig{StreamMode: StreamModeNative})
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, f.db, "native@example.com")
	c := testutil.SeedChat(t, ctx, f.db, u.ID, "c")

	w := &recordingStream{}
	if err := svc.Stream(as(u.ID), c.ID, "hi", w); err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if strings.Join(w.chunks, "|") != "Hel|lo" {
		t.Fatalf("chunks: got=%v", w.chunks)
	}
	if w.full != "Hello" {
		t.Fatalf("full: want=%q got=%q", "Hello", w.full)
	}
}

func TestStreamWriteFailureSkipsPersistence(t *testing.T) {
	f := newFixture(t)
	model := &fakeModel{reply: llmText(strings.Repeat("x", 200))}
	svc := NewMessageService(f.db, testutil.Logger(t), f.chats, f.messages, model, f.notify, MessageConfig{})
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, f.db, "gone@example.com")
	c := testutil.SeedChat(t, ctx, f.db, u.ID, "c")

	w := &recordingStream{err: errors.New("client gone")}
	if err := svc.Stream(as(u.ID), c.ID, "hi", w); err == nil {
		t.Fatalf("expected write error")
	}
	if n := f.countMessages(t, c.ID); n != 1 {
		t.Fatalf("rows: want=1 got=%d", n)
	}
}

func TestUnclassifiedModelErrorsStillCarryKind(t *testing.T) {
	f := newFixture(t)
	model := &fakeModel{err: errModelDown}
	svc := NewMessageService(f.db, testutil.Logger(t), f.chats, f.messages, model, f.notify, MessageConfig{})
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, f.db, "plainerr@example.com")
	c := testutil.SeedChat(t, ctx, f.db, u.ID, "c")

	w := &recordingStream{}
	if err := svc.Stream(as(u.ID), c.ID, "hello", w); err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if len(w.failed) != 1 || w.failed[0] != llm.ModelUnavailable {
		t.Fatalf("stream fail kinds: want=[%s] got=%v", llm.ModelUnavailable, w.failed)
	}

	res, err := svc.Send(as(u.ID), c.ID, "hello again")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if res.ErrorKind != llm.ModelUnavailable {
		t.Fatalf("sync kind: want=%s got=%q", llm.ModelUnavailable, res.ErrorKind)
	}
	if !strings.Contains(string(res.Message.Metadata), `"model_error":"model_unavailable"`) {
		t.Fatalf("metadata: got=%s", res.Message.Metadata)
	}
}

func TestStreamNativeWriteFailureIsNotReportedAsModelError(t *testing.T) {
	f := newFixture(t)
	model := &fakeModel{deltas: []string{"Hel", "lo"}, reply: llmText("Hello")}
	svc := NewMessageService(f.db, testutil.Logger(t), f.chats, f.messages, model, f.notify, MessageConfig{StreamMode: StreamModeNative})
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, f.db, "nativegone@example.com")
	c := testutil.SeedChat(t, ctx, f.db, u.ID, "c")

	clientGone := errors.New("client gone")
	w := &recordingStream{err: clientGone}
	if err := svc.Stream(as(u.ID), c.ID, "hi", w); !errors.Is(err, clientGone) {
		t.Fatalf("want=client gone got=%v", err)
	}
	if len(w.failed) != 0 {
		t.Fatalf("no stream_error expected after a write failure, got=%v", w.failed)
	}
	if n := f.countMessages(t, c.ID); n != 1 {
		t.Fatalf("rows: want=1 got=%d", n)
	}
}
