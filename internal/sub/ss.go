package sub

import (
	"errors"
	"strings"

	"github.com/John-Robertt/sub2clash-go/internal/model"
)

// parseSS handles both SIP002-style links (ss://b64(method:password)@host:port
// or literal userinfo) and the old whole-body form ss://b64(method:password@host:port).
func parseSS(line string) (model.Proxy, error) {
	name := nameFromFragment(line)
	if name == "" {
		name = "SS"
	}
	query := parseQuery(line)

	body := strings.TrimPrefix(line, "ss://")
	if i := strings.IndexByte(body, '#'); i >= 0 {
		body = body[:i]
	}
	if strings.HasPrefix(body, "-") {
		// Clash-format list lines occasionally leak into subscriptions.
		return model.Proxy{}, errors.New("不是 ss 链接")
	}

	candidate := body
	if !strings.Contains(candidate, "@") {
		// Old form: the whole method:password@host:port blob is Base64.
		raw := candidate
		if i := strings.IndexByte(raw, '?'); i >= 0 {
			raw = raw[:i]
		}
		decoded, err := DecodeForgiving(raw)
		if err != nil {
			return model.Proxy{}, errors.New("base64 解码失败")
		}
		candidate = decoded
	} else if i := strings.IndexByte(candidate, '?'); i >= 0 {
		candidate = candidate[:i]
	}

	userinfo, server, ok := strings.Cut(candidate, "@")
	if !ok {
		return model.Proxy{}, errors.New("缺少 @ 分隔符")
	}
	if !strings.Contains(userinfo, ":") {
		// SIP002 userinfo before '@' is itself Base64(method:password).
		decoded, err := DecodeForgiving(userinfo)
		if err != nil || !strings.Contains(decoded, ":") {
			return model.Proxy{}, errors.New("userinfo 缺少 method:password")
		}
		userinfo = decoded
	}
	method, password, _ := strings.Cut(userinfo, ":")
	if method == "" || password == "" {
		return model.Proxy{}, errors.New("method 或 password 为空")
	}

	server = strings.TrimSuffix(server, "/")
	hostIdx := strings.LastIndexByte(server, ':')
	if hostIdx <= 0 {
		return model.Proxy{}, errors.New("缺少端口")
	}
	host := server[:hostIdx]
	port, err := parsePortLoose(server[hostIdx+1:])
	if err != nil {
		return model.Proxy{}, err
	}

	p := model.Proxy{
		Type:     "ss",
		Name:     name,
		Server:   host,
		Port:     port,
		Cipher:   method,
		Password: password,
	}
	// Plugin value is copied through verbatim; many clients accept it as-is.
	if plugin := query["plugin"]; plugin != "" {
		p.Plugin = plugin
	}
	return p, nil
}
