package db

import (
	"path/filepath"
	"testing"

	"github.com/yungbote/neurochat-backend/internal/platform/logger"
)

func TestParseURL(t *testing.T) {
	cases := []struct {
		raw     string
		dialect string
		dsn     string
		wantErr bool
	}{
		{raw: "sqlite:///chatbot.db", dialect: DialectSQLite, dsn: "chatbot.db?_foreign_keys=on&_busy_timeout=5000"},
		{raw: "sqlite:////var/data/chat.db", dialect: DialectSQLite, dsn: "/var/data/chat.db?_foreign_keys=on&_busy_timeout=5000"},
		{raw: "postgres://u:p@localhost:5432/chat?sslmode=disable", dialect: DialectPostgres, dsn: "postgres://u:p@localhost:5432/chat?sslmode=disable"},
		{raw: "postgresql://localhost/chat", dialect: DialectPostgres, dsn: "postgresql://localhost/chat"},
		{raw: "mysql://x", wantErr: true},
		{raw: "", wantErr: true},
		{raw: "sqlite://", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			dialect, dsn, err := ParseURL(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseURL: %v", err)
			}
			if dialect != tc.dialect || dsn != tc.dsn {
				t.Fatalf("want=%s %s got=%s %s", tc.dialect, tc.dsn, dialect, dsn)
			}
		})
	}
}

func TestOpenSQLiteAndMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.db")
	svc, err := Open(logger.Nop(), "sqlite:///"+path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })

	if err := svc.AutoMigrateAll(); err != nil {
		t.Fatalf("AutoMigrateAll: %v", err)
	}
	for _, table := range []string{"user", "user_session", "chat", "message"} {
		if !svc.DB().Migrator().HasTable(table) {
			t.Fatalf("missing table %s", table)
		}
	}
}
