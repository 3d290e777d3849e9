package assemble

import (
	"fmt"

	"github.com/John-Robertt/sub2clash-go/internal/model"
)

// Fixed routing defaults of the generated configuration.
const (
	LocalPort    = 7890
	SocksPort    = 7891
	AllowLAN     = true
	Mode         = "Rule"
	LogLevel     = "info"
	Controller   = "127.0.0.1:9090"
	GroupName    = "Proxy"
	CatchAllRule = "MATCH," + GroupName
)

// Document is the assembled output configuration. It is constructed once
// per run and never mutated; the emitter owns the serialized shape.
type Document struct {
	Port               int
	SocksPort          int
	AllowLAN           bool
	Mode               string
	LogLevel           string
	ExternalController string
	Proxies            []model.Proxy
	Groups             []model.Group
	Rules              []string
}

type AssembleError struct {
	AppError model.AppError
	Cause    error
}

func (e *AssembleError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.AppError.Code, e.AppError.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.AppError.Code, e.AppError.Message, e.Cause)
}

func (e *AssembleError) Unwrap() error { return e.Cause }

// Assemble builds the output document from the final proxy list. One select
// group named "Proxy" lists every node name in order plus the DIRECT/REJECT
// sentinels, and a single catch-all rule routes everything through it.
//
// profileName is a logical identifier used by the caller for reporting; it
// is never embedded in the document.
//
// Zero proxies is the total-failure condition: no document is produced, so
// a previously valid configuration is never overwritten with an empty one.
func Assemble(proxies []model.Proxy, profileName string) (*Document, error) {
	_ = profileName

	if len(proxies) == 0 {
		return nil, &AssembleError{
			AppError: model.AppError{
				Code:    "NO_USABLE_PROXY",
				Message: "未能解析到任何有效节点",
				Stage:   "assemble",
			},
		}
	}

	members := make([]string, 0, len(proxies)+2)
	for _, p := range proxies {
		members = append(members, p.Name)
	}
	members = append(members, "DIRECT", "REJECT")

	return &Document{
		Port:               LocalPort,
		SocksPort:          SocksPort,
		AllowLAN:           AllowLAN,
		Mode:               Mode,
		LogLevel:           LogLevel,
		ExternalController: Controller,
		Proxies:            proxies,
		Groups: []model.Group{{
			Name:    GroupName,
			Type:    "select",
			Members: members,
		}},
		Rules: []string{CatchAllRule},
	}, nil
}
