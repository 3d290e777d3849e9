package sub

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

// nameFromFragment extracts the percent-decoded display name from the URI
// fragment, or "" when the URI has no usable fragment.
func nameFromFragment(uri string) string {
	_, frag, ok := strings.Cut(uri, "#")
	if !ok {
		return ""
	}
	decoded, err := url.PathUnescape(frag)
	if err != nil {
		decoded = frag
	}
	return strings.TrimSpace(decoded)
}

// parseQuery extracts the query parameters of one link permissively: pairs
// are split on '&', keys and values percent-decoded, malformed pairs
// skipped. First value wins for a repeated key. net/url.ParseQuery is not
// used because it rejects the bare semicolons some providers put inside
// plugin values.
func parseQuery(uri string) map[string]string {
	rest := uri
	if i := strings.IndexByte(rest, '#'); i >= 0 {
		rest = rest[:i]
	}
	_, query, ok := strings.Cut(rest, "?")
	out := map[string]string{}
	if !ok || query == "" {
		return out
	}
	for _, part := range strings.Split(query, "&") {
		if part == "" {
			continue
		}
		kRaw, vRaw, hasEq := strings.Cut(part, "=")
		if !hasEq {
			continue
		}
		k, err := url.PathUnescape(kRaw)
		if err != nil {
			k = kRaw
		}
		v, err := url.PathUnescape(vRaw)
		if err != nil {
			v = vRaw
		}
		if k == "" {
			continue
		}
		if _, dup := out[k]; dup {
			continue
		}
		out[k] = v
	}
	return out
}

// parseIntLoose converts a numeric field permissively: non-digit characters
// are stripped first (providers append stray junk), then the rest must be an
// integer.
func parseIntLoose(s string) (int, error) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	digits := b.String()
	if digits == "" {
		return 0, errors.New("缺少数字")
	}
	return strconv.Atoi(digits)
}

// parsePortLoose is parseIntLoose with the zero/missing-port rule: a port
// that ends up 0 invalidates the entry.
func parsePortLoose(s string) (int, error) {
	port, err := parseIntLoose(s)
	if err != nil {
		return 0, errors.New("端口缺少数字")
	}
	if port == 0 {
		return 0, errors.New("端口不能为 0")
	}
	return port, nil
}

func percentDecode(s string) string {
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}
