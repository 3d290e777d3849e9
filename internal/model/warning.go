package model

import "fmt"

// Warning describes one subscription entry that was dropped. Warnings are
// advisory text for the operator; they are collected in input order and
// never abort the batch.
type Warning struct {
	Scheme  string // "ss"/"vmess"/"trojan"/"ssr", or "" for an unknown prefix
	Reason  string
	Snippet string // truncated source line
}

func (w Warning) String() string {
	if w.Scheme == "" {
		return fmt.Sprintf("未识别或未支持的节点：%s", w.Snippet)
	}
	return fmt.Sprintf("解析失败（%s）：%s：%s", w.Scheme, w.Snippet, w.Reason)
}
