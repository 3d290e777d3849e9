package sub

import (
	"fmt"
	"strings"

	"github.com/John-Robertt/sub2clash-go/internal/model"
)

type Options struct {
	// NativeSSR emits ssr:// entries as native "ssr" nodes (Clash Meta).
	// When false only protocol=origin/obfs=plain entries survive, as "ss".
	NativeSSR bool
}

type ParseError struct {
	AppError model.AppError
	Cause    error
}

func (e *ParseError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.AppError.Code, e.AppError.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.AppError.Code, e.AppError.Message, e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// ParseSubscriptionText drives the whole decode pipeline: opportunistic
// Base64 unwrapping, entry splitting, then per-scheme parsing. Every entry
// that fails or carries an unknown scheme becomes one warning; the batch
// never aborts. Proxy order mirrors the order of the surviving entries; no
// dedup is performed.
//
// The only error is empty/blank subscription content. An all-warnings batch
// returns an empty proxy slice and a nil error — refusing to write a config
// with zero nodes is the caller's decision.
func ParseSubscriptionText(sourceURL, content string, opt Options) ([]model.Proxy, []model.Warning, error) {
	s := strings.TrimSpace(stripUTF8BOM(content))
	if s == "" {
		return nil, nil, &ParseError{
			AppError: model.AppError{
				Code:    "SUB_PARSE_ERROR",
				Message: "订阅内容为空",
				Stage:   "parse_sub",
				URL:     sourceURL,
			},
		}
	}

	entries := SplitEntries(MaybeDecodeSubscription(s))

	proxies := make([]model.Proxy, 0, len(entries))
	warnings := make([]model.Warning, 0)
	for _, entry := range entries {
		scheme := schemeOf(entry)
		if scheme == "" {
			warnings = append(warnings, model.Warning{
				Snippet: truncateSnippet(entry, 80),
			})
			continue
		}

		var (
			p   model.Proxy
			err error
		)
		switch scheme {
		case "ss":
			p, err = parseSS(entry)
		case "vmess":
			p, err = parseVmess(entry)
		case "trojan":
			p, err = parseTrojan(entry)
		case "ssr":
			p, err = parseSSR(entry, opt.NativeSSR)
		}
		if err != nil {
			warnings = append(warnings, model.Warning{
				Scheme:  scheme,
				Reason:  err.Error(),
				Snippet: truncateSnippet(entry, 80),
			})
			continue
		}
		proxies = append(proxies, p)
	}

	return proxies, warnings, nil
}

func schemeOf(entry string) string {
	switch {
	case strings.HasPrefix(entry, "ss://"):
		return "ss"
	case strings.HasPrefix(entry, "vmess://"):
		return "vmess"
	case strings.HasPrefix(entry, "trojan://"):
		return "trojan"
	case strings.HasPrefix(entry, "ssr://"):
		return "ssr"
	default:
		return ""
	}
}
