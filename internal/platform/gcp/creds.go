package gcp

import (
	"strings"

	"google.golang.org/api/option"
)

// ClientOptions turns the configured credentials into client options shared by the
// Vision and Document AI clients. Inline service-account JSON starts with "{"; anything
// else is a file path. Empty means application default credentials.
func ClientOptions(creds string) []option.ClientOption {
	creds = strings.TrimSpace(creds)
	switch {
	case creds == "":
		return nil
	case strings.HasPrefix(creds, "{"):
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	default:
		return []option.ClientOption{option.WithCredentialsFile(creds)}
	}
}
