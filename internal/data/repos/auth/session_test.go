package auth

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/neurochat-backend/internal/data/repos/testutil"
	types "github.com/yungbote/neurochat-backend/internal/domain"
	"github.com/yungbote/neurochat-backend/internal/platform/dbctx"
)

func TestUserSessionRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	u := testutil.SeedUser(t, ctx, tx, "session@example.com")
	repo := NewUserSessionRepo(db, testutil.Logger(t))

	now := time.Now().UTC()
	s, err := repo.Create(dbc, &types.UserSession{UserID: u.ID, ExpiresAt: now.Add(time.Hour)})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := repo.GetByID(dbc, s.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.Active(now) {
		t.Fatalf("fresh session should be active")
	}

	if err := repo.Revoke(dbc, s.ID, now); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	got, err = repo.GetByID(dbc, s.ID)
	if err != nil {
		t.Fatalf("GetByID after revoke: %v", err)
	}
	if got.Active(now) {
		t.Fatalf("revoked session should not be active")
	}

	if _, err := repo.Create(dbc, &types.UserSession{UserID: u.ID, ExpiresAt: now.Add(-time.Minute)}); err != nil {
		t.Fatalf("Create expired: %v", err)
	}
	n, err := repo.DeleteExpired(dbc, now)
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if n != 1 {
		t.Fatalf("DeleteExpired: want=1 got=%d", n)
	}
}
