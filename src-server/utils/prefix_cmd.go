package utils

import (
	"strings"
	"unicode"
)

// ParsePrefixCmd splits "<prefix>name rest..." into its lower-cased name and
// the untouched text after it. ok is false when content doesn't start with
// prefix or has no command name.
func ParsePrefixCmd(content, prefix string) (name, rest string, ok bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", "", false
	}
	body := strings.TrimSpace(content[len(prefix):])
	if body == "" {
		return "", "", false
	}
	end := strings.IndexFunc(body, unicode.IsSpace)
	if end < 0 {
		return strings.ToLower(body), "", true
	}
	return strings.ToLower(body[:end]), strings.TrimSpace(body[end:]), true
}
