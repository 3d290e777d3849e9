package sub

import "strings"

// MaybeDecodeSubscription turns raw subscription text into a plain URI list.
// Text that already contains a scheme marker is assumed plain; otherwise a
// forgiving Base64 decode is attempted, and the decoded form wins only when
// it itself contains a scheme marker.
func MaybeDecodeSubscription(text string) string {
	if strings.Contains(text, "://") {
		return text
	}
	decoded, err := DecodeForgiving(text)
	if err != nil {
		return text
	}
	if strings.Contains(decoded, "://") {
		return decoded
	}
	return text
}

// SplitEntries splits subscription text into candidate URIs. Lines (LF or
// CRLF) are trimmed; blank lines and "#"/"//" comment lines are dropped. A
// line carrying several scheme markers is additionally split on whitespace
// runs — some providers join links with spaces on one physical line — except
// for ssr:// and vmess:// lines, whose Base64 payload can contain "://"-like
// substrings of its own.
func SplitEntries(text string) []string {
	text = stripUTF8BOM(text)
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		if strings.Count(line, "://") > 1 &&
			!strings.HasPrefix(line, "ssr://") &&
			!strings.HasPrefix(line, "vmess://") {
			out = append(out, strings.Fields(line)...)
			continue
		}
		out = append(out, line)
	}
	return out
}
