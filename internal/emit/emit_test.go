package emit

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/John-Robertt/sub2clash-go/internal/assemble"
	"github.com/John-Robertt/sub2clash-go/internal/model"
)

func testDocument(t *testing.T) *assemble.Document {
	t.Helper()
	doc, err := assemble.Assemble([]model.Proxy{
		{
			Type: "ss", Name: "MyNode", Server: "example.com", Port: 443,
			Cipher: "aes-256-gcm", Password: "pass",
		},
		{
			Type: "vmess", Name: "V1", Server: "vm.example.com", Port: 443,
			UUID: "11111111-1111-1111-1111-111111111111", Cipher: "auto",
			TLS: true, ServerName: "sni.example.com", Network: "ws",
			WSOpts: &model.WSOptions{Path: "/ray", Headers: map[string]string{"Host": "cdn.example.com"}},
		},
		{
			Type: "trojan", Name: "T1", Server: "host2", Port: 443,
			Password: "secret", ServerName: "host2", UDP: true,
		},
		{
			Type: "ssr", Name: "R1", Server: "srv", Port: 8388,
			Cipher: "aes-256-cfb", Password: "pwd", Protocol: "auth_sha1_v4",
			Obfs: "tls1.2_ticket_auth", ObfsParam: "cloud.example.com", UDP: true,
		},
	}, "x")
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	return doc
}

func TestMarshal_DocumentShape(t *testing.T) {
	out, err := Marshal(testDocument(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got map[string]any
	if err := yaml.Unmarshal(out, &got); err != nil {
		t.Fatalf("output is not valid yaml: %v", err)
	}

	for key, want := range map[string]any{
		"port":                7890,
		"socks-port":          7891,
		"allow-lan":           true,
		"mode":                "Rule",
		"log-level":           "info",
		"external-controller": "127.0.0.1:9090",
	} {
		if got[key] != want {
			t.Fatalf("%s=%v, want=%v", key, got[key], want)
		}
	}

	proxies, ok := got["proxies"].([]any)
	if !ok || len(proxies) != 4 {
		t.Fatalf("proxies=%v", got["proxies"])
	}
	groups, ok := got["proxy-groups"].([]any)
	if !ok || len(groups) != 1 {
		t.Fatalf("proxy-groups=%v", got["proxy-groups"])
	}
	rules, ok := got["rules"].([]any)
	if !ok || len(rules) != 1 || rules[0] != "MATCH,Proxy" {
		t.Fatalf("rules=%v", got["rules"])
	}
}

func TestMarshal_VariantFields(t *testing.T) {
	out, err := Marshal(testDocument(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got struct {
		Proxies []map[string]any `yaml:"proxies"`
	}
	if err := yaml.Unmarshal(out, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	ss, vmess, trojan, ssr := got.Proxies[0], got.Proxies[1], got.Proxies[2], got.Proxies[3]

	if ss["cipher"] != "aes-256-gcm" {
		t.Fatalf("ss cipher=%v", ss["cipher"])
	}
	if _, leaked := ss["uuid"]; leaked {
		t.Fatalf("ss node must not carry uuid")
	}
	if _, leaked := ss["alterId"]; leaked {
		t.Fatalf("ss node must not carry alterId")
	}

	if vmess["alterId"] != 0 {
		t.Fatalf("vmess alterId=%v, want 0 emitted explicitly", vmess["alterId"])
	}
	if vmess["servername"] != "sni.example.com" || vmess["tls"] != true {
		t.Fatalf("vmess servername/tls=%v/%v", vmess["servername"], vmess["tls"])
	}
	wsOpts, ok := vmess["ws-opts"].(map[string]any)
	if !ok || wsOpts["path"] != "/ray" {
		t.Fatalf("vmess ws-opts=%v", vmess["ws-opts"])
	}

	if trojan["sni"] != "host2" {
		t.Fatalf("trojan sni=%v", trojan["sni"])
	}
	if trojan["skip-cert-verify"] != false {
		t.Fatalf("trojan skip-cert-verify=%v, want false emitted explicitly", trojan["skip-cert-verify"])
	}
	if _, leaked := trojan["servername"]; leaked {
		t.Fatalf("trojan node must use sni, not servername")
	}

	if ssr["protocol"] != "auth_sha1_v4" || ssr["obfs-param"] != "cloud.example.com" {
		t.Fatalf("ssr protocol/obfs-param=%v/%v", ssr["protocol"], ssr["obfs-param"])
	}
}

func TestWriteFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clash.yaml")
	if err := WriteFile(testDocument(t), path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(data), "MyNode") {
		t.Fatalf("output does not mention proxies:\n%s", data)
	}
}

func TestWriteFile_BadDestination(t *testing.T) {
	err := WriteFile(testDocument(t), filepath.Join(t.TempDir(), "missing", "clash.yaml"))
	var ee *EmitError
	if !errors.As(err, &ee) {
		t.Fatalf("expected *EmitError, got %T: %v", err, err)
	}
	if ee.AppError.Code != "WRITE_FAILED" || ee.AppError.Stage != "emit" {
		t.Fatalf("code/stage=%q/%q", ee.AppError.Code, ee.AppError.Stage)
	}
}
