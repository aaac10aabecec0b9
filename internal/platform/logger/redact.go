package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"
)

type fieldAction int

const (
	keepField fieldAction = iota
	redactField
	hashField
	summarizeField
)

// fieldRules maps key fragments to what happens to the value. The first matching
// fragment wins, so credentials are listed ahead of the broader text keys.
var fieldRules = []struct {
	frag   string
	action fieldAction
}{
	{"password", redactField},
	{"secret", redactField},
	{"token", redactField},
	{"cookie", redactField},
	{"authorization", redactField},
	{"api_key", redactField},
	{"apikey", redactField},
	{"email", redactField},
	{"user_id", hashField},
	{"session_id", hashField},
	{"content", summarizeField},
	{"prompt", summarizeField},
	{"reply", summarizeField},
	{"extracted", summarizeField},
	{"message", summarizeField},
}

var (
	redactOnce sync.Once
	redactOn   bool
	salt       string
)

func loadRedaction() {
	redactOnce.Do(func() {
		v := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_REDACTION_ENABLED")))
		redactOn = v != "0" && v != "false" && v != "no" && v != "off"
		salt = strings.TrimSpace(os.Getenv("LOG_HASH_SALT"))
	})
}

func sanitizeKVs(kv []interface{}) []interface{} {
	loadRedaction()
	if len(kv) == 0 || !redactOn {
		return kv
	}
	out := make([]interface{}, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		key := stringify(kv[i])
		out = append(out, key, sanitizeValue(normalizeKey(key), kv[i+1]))
	}
	if len(kv)%2 == 1 {
		out = append(out, kv[len(kv)-1])
	}
	return out
}

func normalizeKey(k string) string { return strings.ToLower(strings.TrimSpace(k)) }

func actionFor(key string) fieldAction {
	if key == "" {
		return keepField
	}
	for _, r := range fieldRules {
		if strings.Contains(key, r.frag) {
			return r.action
		}
	}
	return keepField
}

func sanitizeValue(key string, val interface{}) interface{} {
	switch actionFor(key) {
	case redactField:
		return "[REDACTED]"
	case hashField:
		return hashID(val)
	case summarizeField:
		if s, ok := val.(string); ok {
			return fmt.Sprintf("[%d chars]", len([]rune(s)))
		}
	}
	switch v := val.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, inner := range v {
			out[k] = sanitizeValue(normalizeKey(k), inner)
		}
		return out
	case string:
		if bearerLike(v) {
			return "[REDACTED]"
		}
	}
	return val
}

func hashID(val interface{}) string {
	raw := stringify(val)
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(salt + raw))
	return "hash:" + hex.EncodeToString(sum[:])[:12]
}

// bearerLike reports whether s has the three dot-separated segments of a signed session token.
func bearerLike(s string) bool {
	parts := strings.Split(strings.TrimPrefix(s, "Bearer "), ".")
	return len(parts) == 3 && len(parts[0]) > 10 && len(parts[1]) > 10
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
