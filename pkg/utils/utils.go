package utils

import (
	"strings"

	"github.com/google/uuid"
)

// ShortIDLength is how many characters of an id are shown in listings
const ShortIDLength = 8

// NewID generates a fresh random record id
func NewID() string {
	return uuid.NewString()
}

// ShortID returns the leading characters of id for display
func ShortID(id string) string {
	if len(id) <= ShortIDLength {
		return id
	}
	return id[:ShortIDLength]
}

// ResolveIDPrefix finds the single id starting with prefix.
// It reports false when nothing or more than one id matches.
func ResolveIDPrefix(ids []string, prefix string) (string, bool) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", false
	}

	match := ""
	for _, id := range ids {
		if id == prefix {
			return id, true
		}
		if strings.HasPrefix(id, prefix) {
			if match != "" {
				return "", false
			}
			match = id
		}
	}
	return match, match != ""
}
