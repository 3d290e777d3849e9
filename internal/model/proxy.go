package model

// Proxy is the normalized node representation produced by the subscription
// parsers. Type selects which of the scheme-specific fields are meaningful;
// Name/Server/Port are always set.
type Proxy struct {
	Type string // "ss" | "vmess" | "trojan" | "ssr"

	// Name comes from the URI fragment (or the vmess "ps" field). Parsers
	// fill a scheme default when the source has none; it is never empty.
	// Names are not deduplicated — output order and collisions follow the
	// subscription order.
	Name string

	Server string
	Port   int

	// ss / ssr / vmess
	Cipher string

	// ss / trojan / ssr
	Password string

	// vmess
	UUID    string
	AlterID int

	// vmess / trojan
	TLS        bool
	ServerName string
	ALPN       []string

	// trojan / ssr
	UDP bool

	// trojan
	SkipCertVerify bool

	// Transport selection: "" (tcp), "ws" or "grpc".
	Network  string
	WSOpts   *WSOptions
	GRPCOpts *GRPCOptions

	// ss: the raw "plugin" query value, copied through verbatim.
	Plugin string

	// ssr (native mode only)
	Protocol      string
	ProtocolParam string
	Obfs          string
	ObfsParam     string
}

type WSOptions struct {
	Path string
	// HTTP headers for the websocket handshake; only "Host" is ever set.
	Headers map[string]string
}

type GRPCOptions struct {
	ServiceName string
}
