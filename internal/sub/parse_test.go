package sub

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func TestParseSubscriptionText_MixedBatch(t *testing.T) {
	userinfo := base64.StdEncoding.EncodeToString([]byte("aes-256-gcm:pass"))
	raw := strings.Join([]string{
		"# provider banner",
		"ss://" + userinfo + "@example.com:443#MyNode",
		"http://not-a-proxy.example.com/page",
		"trojan://secret@host2:443?sni=host2#T1",
		"vmess://totally-broken",
	}, "\n")

	proxies, warnings, err := ParseSubscriptionText("https://example.com/sub.txt", raw, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(proxies) != 2 {
		t.Fatalf("len(proxies)=%d, want=2", len(proxies))
	}
	if len(warnings) != 2 {
		t.Fatalf("len(warnings)=%d, want=2", len(warnings))
	}

	// Descriptor order mirrors input order of the surviving entries.
	if proxies[0].Name != "MyNode" || proxies[1].Name != "T1" {
		t.Fatalf("order=%q,%q, want MyNode,T1", proxies[0].Name, proxies[1].Name)
	}

	// Unknown scheme first, then the vmess failure, in input order.
	if warnings[0].Scheme != "" {
		t.Fatalf("warnings[0].Scheme=%q, want unknown", warnings[0].Scheme)
	}
	if warnings[1].Scheme != "vmess" || warnings[1].Reason == "" {
		t.Fatalf("warnings[1]=%+v", warnings[1])
	}
}

func TestParseSubscriptionText_Base64WrappedSubscription(t *testing.T) {
	userinfo := base64.StdEncoding.EncodeToString([]byte("aes-128-gcm:p"))
	plain := "ss://" + userinfo + "@h:8388#a\n"
	wrapped := base64.RawStdEncoding.EncodeToString([]byte(plain)) // padding stripped

	proxies, warnings, err := ParseSubscriptionText("https://example.com/sub.b64", wrapped, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(proxies) != 1 || len(warnings) != 0 {
		t.Fatalf("proxies/warnings=%d/%d, want 1/0", len(proxies), len(warnings))
	}
}

func TestParseSubscriptionText_Empty(t *testing.T) {
	for _, content := range []string{"", "   \r\n \n"} {
		_, _, err := ParseSubscriptionText("https://example.com/sub.txt", content, Options{})
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("expected *ParseError, got %T: %v", err, err)
		}
		if pe.AppError.Code != "SUB_PARSE_ERROR" || pe.AppError.Stage != "parse_sub" {
			t.Fatalf("code/stage=%q/%q", pe.AppError.Code, pe.AppError.Stage)
		}
	}
}

func TestParseSubscriptionText_AllUnrecognized(t *testing.T) {
	proxies, warnings, err := ParseSubscriptionText("u", "wireguard://x\nhttp://y\n", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(proxies) != 0 {
		t.Fatalf("len(proxies)=%d, want=0", len(proxies))
	}
	if len(warnings) != 2 {
		t.Fatalf("len(warnings)=%d, want=2", len(warnings))
	}
}

func TestParseSubscriptionText_SSRCompatWarningIsDistinct(t *testing.T) {
	link := "ssr://" + base64.URLEncoding.EncodeToString(
		[]byte("srv:8388:auth_sha1_v4:aes-256-cfb:tls1.2_ticket_auth:cHdk"))

	_, warnings, err := ParseSubscriptionText("u", link, Options{NativeSSR: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("len(warnings)=%d, want=1", len(warnings))
	}
	if warnings[0].Scheme != "ssr" {
		t.Fatalf("scheme=%q, want ssr", warnings[0].Scheme)
	}
	if warnings[0].Reason != errSSRIncompatible.Error() {
		t.Fatalf("reason=%q, want distinct incompatibility reason", warnings[0].Reason)
	}

	// Same entry survives in native mode.
	proxies, _, err := ParseSubscriptionText("u", link, Options{NativeSSR: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(proxies) != 1 || proxies[0].Type != "ssr" {
		t.Fatalf("native mode proxies=%+v", proxies)
	}
}

func TestParseSubscriptionText_WarningSnippetTruncated(t *testing.T) {
	long := "trojan://" + strings.Repeat("x", 300)
	_, warnings, err := ParseSubscriptionText("u", long, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("len(warnings)=%d, want=1", len(warnings))
	}
	if len(warnings[0].Snippet) > 80 {
		t.Fatalf("snippet len=%d, want <= 80", len(warnings[0].Snippet))
	}
}
