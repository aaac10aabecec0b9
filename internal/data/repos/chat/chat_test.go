package chat

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/neurochat-backend/internal/data/repos/testutil"
	types "github.com/yungbote/neurochat-backend/internal/domain"
	"github.com/yungbote/neurochat-backend/internal/platform/dbctx"
)

func TestChatRepoOwnershipScoping(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	owner := testutil.SeedUser(t, ctx, tx, "owner@example.com")
	other := testutil.SeedUser(t, ctx, tx, "other@example.com")

	repo := NewChatRepo(db, testutil.Logger(t))
	c, err := repo.Create(dbc, &types.Chat{UserID: owner.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.Title != types.DefaultChatTitle {
		t.Fatalf("default title: want=%q got=%q", types.DefaultChatTitle, c.Title)
	}

	got, err := repo.GetOwned(dbc, other.ID, c.ID)
	if err != nil {
		t.Fatalf("GetOwned other: %v", err)
	}
	if got != nil {
		t.Fatalf("foreign user must not see chat")
	}

	n, err := repo.UpdateTitle(dbc, other.ID, c.ID, "hijack")
	if err != nil {
		t.Fatalf("UpdateTitle other: %v", err)
	}
	if n != 0 {
		t.Fatalf("foreign rename affected %d rows", n)
	}

	n, err = repo.DeleteOwned(dbc, other.ID, c.ID)
	if err != nil {
		t.Fatalf("DeleteOwned other: %v", err)
	}
	if n != 0 {
		t.Fatalf("foreign delete affected %d rows", n)
	}

	got, err = repo.GetOwned(dbc, owner.ID, c.ID)
	if err != nil {
		t.Fatalf("GetOwned owner: %v", err)
	}
	if got == nil || got.Title != types.DefaultChatTitle {
		t.Fatalf("owner chat changed: %+v", got)
	}
}

func TestChatRepoListNewestFirst(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	u := testutil.SeedUser(t, ctx, tx, "list@example.com")
	first := testutil.SeedChat(t, ctx, tx, u.ID, "first")
	second := testutil.SeedChat(t, ctx, tx, u.ID, "second")
	if err := tx.Model(&types.Chat{}).Where("id = ?", second.ID).
		Update("created_at", first.CreatedAt.Add(time.Second)).Error; err != nil {
		t.Fatalf("bump created_at: %v", err)
	}

	repo := NewChatRepo(db, testutil.Logger(t))
	chats, err := repo.ListByUser(dbc, u.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(chats) != 2 {
		t.Fatalf("want 2 chats, got %d", len(chats))
	}
	if chats[0].ID != second.ID || chats[1].ID != first.ID {
		t.Fatalf("order: want=[%s %s] got=[%s %s]", second.ID, first.ID, chats[0].ID, chats[1].ID)
	}
}

func TestChatRepoDeleteRemovesMessages(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	u := testutil.SeedUser(t, ctx, tx, "del@example.com")
	c := testutil.SeedChat(t, ctx, tx, u.ID, "doomed")
	for i := int64(1); i <= 3; i++ {
		testutil.SeedMessage(t, ctx, tx, c.ID, i, types.RoleUser, "m")
	}

	chats := NewChatRepo(db, testutil.Logger(t))
	msgs := NewMessageRepo(db, testutil.Logger(t))

	n, err := chats.DeleteOwned(dbc, u.ID, c.ID)
	if err != nil {
		t.Fatalf("DeleteOwned: %v", err)
	}
	if n != 1 {
		t.Fatalf("DeleteOwned: want=1 got=%d", n)
	}
	left, err := msgs.CountByChat(dbc, c.ID)
	if err != nil {
		t.Fatalf("CountByChat: %v", err)
	}
	if left != 0 {
		t.Fatalf("messages left after delete: %d", left)
	}
}

func TestMessageRepoAppendAssignsSeqAndOrders(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	u := testutil.SeedUser(t, ctx, tx, "seq@example.com")
	c := testutil.SeedChat(t, ctx, tx, u.ID, "seq")

	repo := NewMessageRepo(db, testutil.Logger(t))
	for _, m := range []struct{ role, content string }{
		{types.RoleUser, "hi"},
		{types.RoleAssistant, "hello"},
		{types.RoleUser, "how are you"},
	} {
		if _, err := repo.Append(dbc, &types.Message{ChatID: c.ID, Role: m.role, Content: m.content}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	maxSeq, err := repo.GetMaxSeq(dbc, c.ID)
	if err != nil {
		t.Fatalf("GetMaxSeq: %v", err)
	}
	if maxSeq != 3 {
		t.Fatalf("GetMaxSeq: want=3 got=%d", maxSeq)
	}

	got, err := repo.ListByChat(dbc, c.ID)
	if err != nil {
		t.Fatalf("ListByChat: %v", err)
	}
	want := []string{"hi", "hello", "how are you"}
	if len(got) != len(want) {
		t.Fatalf("ListByChat: want %d rows got %d", len(want), len(got))
	}
	for i, m := range got {
		if m.Content != want[i] || m.Seq != int64(i+1) {
			t.Fatalf("row %d: want=%q/%d got=%q/%d", i, want[i], i+1, m.Content, m.Seq)
		}
	}
}
