package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/John-Robertt/sub2clash-go/internal/assemble"
	"github.com/John-Robertt/sub2clash-go/internal/emit"
	"github.com/John-Robertt/sub2clash-go/internal/fetch"
	"github.com/John-Robertt/sub2clash-go/internal/model"
	"github.com/John-Robertt/sub2clash-go/internal/sub"
)

// Exit codes of a single run, distinct so wrappers can tell the failure
// phases apart.
const (
	exitOK         = 0
	exitFetchFail  = 2
	exitNoProxies  = 3
	exitWriteFail  = 4
	exitUsageError = 5
)

const warningPreviewLimit = 10

func main() {
	srcURL := flag.String("url", "", "订阅链接，或本地文件路径（也可用 file:// 形式）")
	output := flag.String("output", "clash.yaml", "输出的 Clash 配置文件路径")
	name := flag.String("name", "MySubscription", "配置名，仅用于内部标识")
	interval := flag.Duration("interval", 0, "设置 >0 则开启定时自动更新（如 10m）。默认 0 表示只执行一次")
	clashMeta := flag.Bool("clash-meta", false, "开启后原生输出 SSR 节点（type: ssr，需 Clash Meta 客户端）")
	fetchTimeout := flag.Duration("fetch-timeout", 15*time.Second, "单次拉取订阅的超时")
	flag.Parse()

	if *srcURL == "" {
		flag.Usage()
		os.Exit(exitUsageError)
	}

	opts := runOptions{
		URL:          *srcURL,
		Output:       *output,
		ProfileName:  *name,
		NativeSSR:    *clashMeta,
		FetchTimeout: *fetchTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *interval <= 0 {
		os.Exit(runOnce(ctx, opts))
	}

	logrus.Infof("已开启自动更新：每 %s 拉取并覆盖 %s。按 Ctrl+C 停止。", *interval, *output)
	runPeriodically(ctx, opts, *interval)
	logrus.Info("收到中断指令，已停止自动更新。")
}

type runOptions struct {
	URL          string
	Output       string
	ProfileName  string
	NativeSSR    bool
	FetchTimeout time.Duration
}

// runOnce drives one fetch → parse → assemble → emit pass and returns the
// run's exit code.
func runOnce(ctx context.Context, opts runOptions) int {
	text, err := fetch.FetchTextWithOptions(ctx, opts.URL, fetch.Options{
		Timeout: opts.FetchTimeout,
	})
	if err != nil {
		logrus.Errorf("拉取订阅失败: %v", err)
		return exitFetchFail
	}

	proxies, warnings, err := sub.ParseSubscriptionText(opts.URL, text, sub.Options{
		NativeSSR: opts.NativeSSR,
	})
	if err != nil {
		logrus.Errorf("解析订阅失败: %v", err)
		return exitNoProxies
	}

	doc, err := assemble.Assemble(proxies, opts.ProfileName)
	if err != nil {
		var ae *assemble.AssembleError
		if errors.As(err, &ae) && ae.AppError.Code == "NO_USABLE_PROXY" {
			logrus.Error("未能解析到任何有效节点。")
		} else {
			logrus.Errorf("组装配置失败: %v", err)
		}
		reportWarnings(warnings)
		return exitNoProxies
	}

	if err := emit.WriteFile(doc, opts.Output); err != nil {
		logrus.Errorf("写入 YAML 失败: %v", err)
		return exitWriteFail
	}

	logrus.Infof("已生成 Clash 配置: %s，共 %d 个节点。", opts.Output, len(proxies))
	if len(warnings) > 0 {
		logrus.Warnf("注意：有 %d 条警告/未支持节点，前几条：", len(warnings))
		reportWarnings(warnings)
	}
	return exitOK
}

func reportWarnings(warnings []model.Warning) {
	for i, w := range warnings {
		if i >= warningPreviewLimit {
			break
		}
		logrus.Warnf("- %s", w)
	}
}

// runPeriodically re-runs the pipeline every interval until the context is
// cancelled. A failed run logs and waits for the next tick; it never
// terminates the loop. Cancellation is only checked between iterations.
func runPeriodically(ctx context.Context, opts runOptions, interval time.Duration) {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if code := runOnce(ctx, opts); code != exitOK {
			logrus.Warnf("本次更新失败（exit code %d），等待下一次重试。", code)
		}
		timer.Reset(interval)
	}
}
