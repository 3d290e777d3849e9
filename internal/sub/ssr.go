package sub

import (
	"errors"
	"strconv"
	"strings"

	"github.com/John-Robertt/sub2clash-go/internal/model"
)

// errSSRIncompatible marks an SSR entry whose protocol/obfs combination
// cannot be represented as a plain shadowsocks node. In compatibility mode
// the aggregator reports it with a distinct reason instead of the generic
// parse failure.
var errSSRIncompatible = errors.New("protocol/obfs 组合无法转换为 Clash SS（需要 --clash-meta 原生输出）")

// parseSSR decodes ssr://b64(server:port:protocol:method:obfs:b64(password)/?params).
// With nativeSSR the node is emitted as type "ssr" with protocol/obfs kept;
// otherwise only protocol=origin + obfs=plain survive, downgraded to a plain
// "ss" node.
func parseSSR(line string, nativeSSR bool) (model.Proxy, error) {
	body := strings.TrimPrefix(line, "ssr://")
	decoded, err := DecodeForgiving(body)
	if err != nil {
		return model.Proxy{}, errors.New("base64 解码失败")
	}

	main, params, _ := strings.Cut(decoded, "/")
	parts := strings.SplitN(main, ":", 6)
	if len(parts) != 6 {
		return model.Proxy{}, errors.New("主体字段不足 6 段")
	}
	server, portStr, protocol, method, obfs, pwdB64 := parts[0], parts[1], parts[2], parts[3], parts[4], parts[5]
	if server == "" || protocol == "" || method == "" || obfs == "" {
		return model.Proxy{}, errors.New("缺少必填字段")
	}
	password, err := DecodeForgiving(pwdB64)
	if err != nil {
		return model.Proxy{}, errors.New("密码 base64 解码失败")
	}

	name := "SSR"
	var obfsParam, protoParam string
	if strings.HasPrefix(params, "?") {
		pairs := map[string]string{}
		for _, part := range strings.Split(params[1:], "&") {
			if part == "" {
				continue
			}
			k, v, _ := strings.Cut(part, "=")
			pairs[k] = v
		}
		if remarks, ok := pairs["remarks"]; ok {
			if s, err := DecodeForgiving(remarks); err == nil && s != "" {
				name = s
			}
		}
		if v, ok := pairs["obfsparam"]; ok {
			obfsParam, _ = DecodeForgiving(v)
		}
		if v, ok := pairs["protoparam"]; ok {
			protoParam, _ = DecodeForgiving(v)
		}
	}

	// SSR links carry the port literally; no loose digit stripping here.
	port, err := strconv.Atoi(portStr)
	if err != nil || port == 0 {
		return model.Proxy{}, errors.New("端口不合法")
	}

	if nativeSSR {
		return model.Proxy{
			Type:          "ssr",
			Name:          name,
			Server:        server,
			Port:          port,
			Cipher:        method,
			Password:      password,
			Protocol:      protocol,
			ProtocolParam: protoParam,
			Obfs:          obfs,
			ObfsParam:     obfsParam,
			UDP:           true,
		}, nil
	}

	if protocol != "origin" || obfs != "plain" {
		return model.Proxy{}, errSSRIncompatible
	}

	return model.Proxy{
		Type:     "ss",
		Name:     name,
		Server:   server,
		Port:     port,
		Cipher:   method,
		Password: password,
	}, nil
}
