package emit

import (
	"github.com/John-Robertt/sub2clash-go/internal/assemble"
	"github.com/John-Robertt/sub2clash-go/internal/model"
)

// clashDocument is the YAML shape of the generated configuration. Field
// order here is emission order.
type clashDocument struct {
	Port               int          `yaml:"port"`
	SocksPort          int          `yaml:"socks-port"`
	AllowLAN           bool         `yaml:"allow-lan"`
	Mode               string       `yaml:"mode"`
	LogLevel           string       `yaml:"log-level"`
	ExternalController string       `yaml:"external-controller"`
	Proxies            []clashProxy `yaml:"proxies"`
	ProxyGroups        []clashGroup `yaml:"proxy-groups"`
	Rules              []string     `yaml:"rules"`
}

// clashProxy covers all four node types in one record; fields that do not
// apply to a node's type stay zero and are omitted.
type clashProxy struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Server   string `yaml:"server"`
	Port     int    `yaml:"port"`
	Cipher   string `yaml:"cipher,omitempty"`
	Password string `yaml:"password,omitempty"`

	UUID    string `yaml:"uuid,omitempty"`
	AlterID *int   `yaml:"alterId,omitempty"`

	TLS            bool     `yaml:"tls,omitempty"`
	ALPN           []string `yaml:"alpn,omitempty"`
	UDP            bool     `yaml:"udp,omitempty"`
	SkipCertVerify *bool    `yaml:"skip-cert-verify,omitempty"`

	// vmess uses "servername", trojan uses "sni".
	VmessServerName string `yaml:"servername,omitempty"`
	SNI             string `yaml:"sni,omitempty"`

	Network  string        `yaml:"network,omitempty"`
	WSOpts   *clashWSOpts  `yaml:"ws-opts,omitempty"`
	GRPCOpts *clashGRPCOpt `yaml:"grpc-opts,omitempty"`

	Plugin string `yaml:"plugin,omitempty"`

	Protocol      string `yaml:"protocol,omitempty"`
	ProtocolParam string `yaml:"protocol-param,omitempty"`
	Obfs          string `yaml:"obfs,omitempty"`
	ObfsParam     string `yaml:"obfs-param,omitempty"`
}

type clashWSOpts struct {
	Path    string            `yaml:"path,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

type clashGRPCOpt struct {
	ServiceName string `yaml:"grpc-service-name"`
}

type clashGroup struct {
	Name    string   `yaml:"name"`
	Type    string   `yaml:"type"`
	Proxies []string `yaml:"proxies"`
}

func toClashDocument(doc *assemble.Document) clashDocument {
	proxies := make([]clashProxy, 0, len(doc.Proxies))
	for _, p := range doc.Proxies {
		proxies = append(proxies, toClashProxy(p))
	}
	groups := make([]clashGroup, 0, len(doc.Groups))
	for _, g := range doc.Groups {
		groups = append(groups, clashGroup{
			Name:    g.Name,
			Type:    g.Type,
			Proxies: g.Members,
		})
	}
	return clashDocument{
		Port:               doc.Port,
		SocksPort:          doc.SocksPort,
		AllowLAN:           doc.AllowLAN,
		Mode:               doc.Mode,
		LogLevel:           doc.LogLevel,
		ExternalController: doc.ExternalController,
		Proxies:            proxies,
		ProxyGroups:        groups,
		Rules:              doc.Rules,
	}
}

func toClashProxy(p model.Proxy) clashProxy {
	out := clashProxy{
		Name:     p.Name,
		Type:     p.Type,
		Server:   p.Server,
		Port:     p.Port,
		Cipher:   p.Cipher,
		Password: p.Password,
		UUID:     p.UUID,
		TLS:      p.TLS,
		ALPN:     p.ALPN,
		UDP:      p.UDP,
		Network:  p.Network,
		Plugin:   p.Plugin,
	}

	switch p.Type {
	case "vmess":
		// alterId is emitted even when 0; clients expect the key.
		aid := p.AlterID
		out.AlterID = &aid
		out.VmessServerName = p.ServerName
	case "trojan":
		out.SNI = p.ServerName
		verify := p.SkipCertVerify
		out.SkipCertVerify = &verify
	case "ssr":
		out.Protocol = p.Protocol
		out.ProtocolParam = p.ProtocolParam
		out.Obfs = p.Obfs
		out.ObfsParam = p.ObfsParam
	}

	if p.WSOpts != nil {
		out.WSOpts = &clashWSOpts{
			Path:    p.WSOpts.Path,
			Headers: p.WSOpts.Headers,
		}
	}
	if p.GRPCOpts != nil {
		out.GRPCOpts = &clashGRPCOpt{ServiceName: p.GRPCOpts.ServiceName}
	}

	return out
}
