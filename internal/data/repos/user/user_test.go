package user

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/neurochat-backend/internal/data/repos/testutil"
	types "github.com/yungbote/neurochat-backend/internal/domain"
	"github.com/yungbote/neurochat-backend/internal/platform/dbctx"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	created, err := repo.Create(dbc, &types.User{Email: "userrepo@example.com", PasswordHash: "pw"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.DisplayName != types.DefaultDisplayName || created.Theme != types.ThemeDark {
		t.Fatalf("defaults: got display_name=%q theme=%q", created.DisplayName, created.Theme)
	}

	got, err := repo.GetByID(dbc, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || got.Email != created.Email {
		t.Fatalf("GetByID: unexpected result: %+v", got)
	}

	byEmail, err := repo.GetByEmail(dbc, "userrepo@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if byEmail == nil || byEmail.ID != created.ID {
		t.Fatalf("GetByEmail: unexpected result: %+v", byEmail)
	}

	missing, err := repo.GetByEmail(dbc, "nobody@example.com")
	if err != nil {
		t.Fatalf("GetByEmail missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("GetByEmail missing: expected nil, got %+v", missing)
	}

	exists, err := repo.EmailExists(dbc, created.Email)
	if err != nil {
		t.Fatalf("EmailExists: %v", err)
	}
	if !exists {
		t.Fatalf("EmailExists: expected true")
	}

	if err := repo.UpdateProfile(dbc, created.ID, "Ada", types.ThemeLight); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	got, err = repo.GetByID(dbc, created.ID)
	if err != nil {
		t.Fatalf("GetByID after update: %v", err)
	}
	if got.DisplayName != "Ada" || got.Theme != types.ThemeLight {
		t.Fatalf("UpdateProfile: got display_name=%q theme=%q", got.DisplayName, got.Theme)
	}
}

func TestUserRepoDuplicateEmail(t *testing.T) {
	db := testutil.DB(t)
	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	if _, err := repo.Create(dbc, &types.User{Email: "dup@example.com", PasswordHash: "pw"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := repo.Create(dbc, &types.User{Email: "dup@example.com", PasswordHash: "pw"})
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("want gorm.ErrDuplicatedKey, got %v", err)
	}
}
