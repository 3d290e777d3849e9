package sub

import (
	"errors"
	"strings"

	"github.com/John-Robertt/sub2clash-go/internal/model"
)

// parseTrojan handles trojan://password@host:port?query#name links. The
// payload is literal (no Base64 layer); password and query values are
// percent-decoded.
func parseTrojan(line string) (model.Proxy, error) {
	name := nameFromFragment(line)
	if name == "" {
		name = "Trojan"
	}
	query := parseQuery(line)

	body := strings.TrimPrefix(line, "trojan://")
	if i := strings.IndexByte(body, '#'); i >= 0 {
		body = body[:i]
	}
	if i := strings.IndexByte(body, '?'); i >= 0 {
		body = body[:i]
	}

	password, server, ok := strings.Cut(body, "@")
	if !ok {
		return model.Proxy{}, errors.New("缺少 @ 分隔符")
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

	sni := query["sni"]
	if sni == "" {
		sni = query["peer"]
	}
	if sni == "" {
		sni = host
	}

	p := model.Proxy{
		Type:           "trojan",
		Name:           name,
		Server:         host,
		Port:           port,
		Password:       percentDecode(password),
		UDP:            true,
		ServerName:     sni,
		SkipCertVerify: false,
	}
	if alpn := query["alpn"]; alpn != "" {
		p.ALPN = strings.Split(alpn, ",")
	}

	transport := strings.ToLower(query["type"])
	if transport == "" {
		transport = strings.ToLower(query["transport"])
	}
	switch transport {
	case "ws":
		p.Network = "ws"
		opts := &model.WSOptions{}
		if path := query["path"]; path != "" {
			opts.Path = path
		}
		hostHdr := query["host"]
		if hostHdr == "" {
			hostHdr = query["sni"]
		}
		if hostHdr != "" {
			opts.Headers = map[string]string{"Host": hostHdr}
		}
		if opts.Path != "" || opts.Headers != nil {
			p.WSOpts = opts
		}
	case "grpc":
		p.Network = "grpc"
		svc := query["serviceName"]
		if svc == "" {
			svc = query["service"]
		}
		if svc != "" {
			p.GRPCOpts = &model.GRPCOptions{ServiceName: svc}
		}
	}

	return p, nil
}
