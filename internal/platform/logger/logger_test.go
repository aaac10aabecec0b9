package logger

import "testing"

func TestSanitizeKVsRedactsSecretsAndHashesIDs(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"password", "hunter2",
		"user_id", "0b0c1d2e-0000-0000-0000-000000000000",
		"chat_id", "c1",
		"dangling",
	})
	if len(out) != 7 {
		t.Fatalf("len: want=7 got=%d", len(out))
	}
	if out[1] != "[REDACTED]" {
		t.Fatalf("password: want=[REDACTED] got=%v", out[1])
	}
	if s, _ := out[3].(string); len(s) != len("hash:")+12 {
		t.Fatalf("user_id should be hashed, got=%v", out[3])
	}
	if out[5] != "c1" {
		t.Fatalf("chat_id: want=c1 got=%v", out[5])
	}
	if out[6] != "dangling" {
		t.Fatalf("dangling key: want=dangling got=%v", out[6])
	}
}

func TestSanitizeValueRedactsJWTLookingStrings(t *testing.T) {
	jwtish := "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NTY3ODkwIn0.sig"
	if got := sanitizeValue("detail", jwtish); got != "[REDACTED]" {
		t.Fatalf("want=[REDACTED] got=%v", got)
	}
}

func TestSanitizeValueSummarizesChatText(t *testing.T) {
	if got := sanitizeValue("content", "héllo"); got != "[5 chars]" {
		t.Fatalf("content: want=[5 chars] got=%v", got)
	}
	if got := sanitizeValue("prompt_chars", 12); got != 12 {
		t.Fatalf("non-string text key: want=12 got=%v", got)
	}
	nested, _ := sanitizeValue("meta", map[string]interface{}{"api_key": "k", "ext": "pdf"}).(map[string]interface{})
	if nested["api_key"] != "[REDACTED]" || nested["ext"] != "pdf" {
		t.Fatalf("nested map: got=%v", nested)
	}
}

func TestHashIDIsStable(t *testing.T) {
	a, b := hashID("abc"), hashID("abc")
	if a != b || a == "" {
		t.Fatalf("want stable non-empty hash, got %q and %q", a, b)
	}
	if hashID(nil) != "" {
		t.Fatalf("nil: want empty")
	}
}
