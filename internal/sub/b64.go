package sub

import (
	"encoding/base64"
	"strings"
)

// DecodeForgiving decodes Base64 the way subscription providers actually
// emit it: interior whitespace/newlines are stripped, missing padding is
// repaired, and both the URL-safe and the standard alphabet are accepted
// (URL-safe tried first). Invalid UTF-8 byte sequences in the decoded text
// are dropped rather than treated as an error.
func DecodeForgiving(s string) (string, error) {
	s = removeSpaceTabCRLF(s)
	if rem := len(s) % 4; rem != 0 {
		s += strings.Repeat("=", 4-rem)
	}
	if b, err := base64.URLEncoding.DecodeString(s); err == nil {
		return strings.ToValidUTF8(string(b), ""), nil
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(b), ""), nil
}

func removeSpaceTabCRLF(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\r', '\n':
			continue
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func stripUTF8BOM(s string) string {
	return strings.TrimPrefix(s, "\uFEFF")
}

func truncateSnippet(s string, max int) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	return s[:max]
}
