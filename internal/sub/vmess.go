package sub

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/John-Robertt/sub2clash-go/internal/model"
)

// parseVmess decodes the Base64 JSON body of a vmess:// link. The fields
// arrive in the wild as strings or numbers interchangeably, so everything is
// read through a loose map and stringified before conversion.
func parseVmess(line string) (model.Proxy, error) {
	body := strings.TrimPrefix(line, "vmess://")
	decoded, err := DecodeForgiving(body)
	if err != nil {
		return model.Proxy{}, errors.New("base64 解码失败")
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(decoded), &fields); err != nil {
		return model.Proxy{}, errors.New("JSON 解析失败")
	}

	name := vmessString(fields, "ps")
	if name == "" {
		name = "VMess"
	}
	server := vmessString(fields, "add")
	id := vmessString(fields, "id")
	port, portErr := parsePortLoose(vmessString(fields, "port"))
	if server == "" || id == "" || portErr != nil {
		return model.Proxy{}, errors.New("缺少 add/port/id 必填字段")
	}
	if _, err := uuid.Parse(id); err != nil {
		return model.Proxy{}, errors.New("id 不是合法 UUID")
	}

	aid := 0
	if s := vmessString(fields, "aid"); s != "" {
		n, err := parseIntLoose(s)
		if err != nil {
			return model.Proxy{}, errors.New("aid 不是数字")
		}
		aid = n
	}

	p := model.Proxy{
		Type:    "vmess",
		Name:    name,
		Server:  server,
		Port:    port,
		UUID:    id,
		AlterID: aid,
		Cipher:  "auto",
	}

	tls := strings.ToLower(vmessString(fields, "tls"))
	if tls == "tls" || tls == "reality" {
		p.TLS = true
	}
	if sni := firstVmessString(fields, "sni", "peer"); sni != "" {
		p.ServerName = sni
	}
	switch alpn := fields["alpn"].(type) {
	case string:
		if alpn != "" {
			p.ALPN = []string{alpn}
		}
	case []any:
		for _, v := range alpn {
			if s, ok := v.(string); ok && s != "" {
				p.ALPN = append(p.ALPN, s)
			}
		}
	}

	host := firstVmessString(fields, "host", "sni")
	path := vmessString(fields, "path")
	if path == "" {
		path = "/"
	}

	switch strings.ToLower(vmessString(fields, "net")) {
	case "ws":
		p.Network = "ws"
		p.WSOpts = &model.WSOptions{Path: path}
		if host != "" {
			p.WSOpts.Headers = map[string]string{"Host": host}
		}
	case "grpc":
		p.Network = "grpc"
		if svc := strings.Trim(path, "/"); svc != "" {
			p.GRPCOpts = &model.GRPCOptions{ServiceName: svc}
		}
	}

	return p, nil
}

func vmessString(fields map[string]any, key string) string {
	v, ok := fields[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		// JSON numbers; ports and alter-ids are always integral.
		return fmt.Sprintf("%.0f", s)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

func firstVmessString(fields map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := vmessString(fields, k); s != "" {
			return s
		}
	}
	return ""
}
