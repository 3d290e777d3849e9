package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/John-Robertt/sub2clash-go/internal/model"
)

const stage = "fetch_sub"

type Options struct {
	Timeout      time.Duration // default 15s
	MaxBytes     int64         // default 5 MiB
	MaxRedirects int           // default 5
}

type FetchError struct {
	AppError model.AppError
	Cause    error
}

func (e *FetchError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.AppError.Code, e.AppError.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.AppError.Code, e.AppError.Message, e.Cause)
}

func (e *FetchError) Unwrap() error { return e.Cause }

var (
	errTooManyRedirects   = errors.New("too many redirects")
	errRedirectBadScheme  = errors.New("redirect target scheme is not http/https")
	errInvalidURLOrScheme = errors.New("invalid url or scheme")
)

// IsLocalSource reports whether the subscription source is a filesystem
// path rather than a remote address: leading path-separator patterns, a
// Windows drive prefix, or file://.
func IsLocalSource(s string) bool {
	if strings.HasPrefix(s, "file://") {
		return true
	}
	if strings.HasPrefix(s, "/") || strings.HasPrefix(s, "./") || strings.HasPrefix(s, "../") {
		return true
	}
	// Windows drive, e.g. C:\sub.txt
	if len(s) >= 3 && s[1] == ':' && s[2] == '\\' {
		c := s[0]
		return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
	}
	return false
}

// FetchText retrieves the raw subscription text from a URL or a local file.
func FetchText(ctx context.Context, urlOrPath string) (string, error) {
	return FetchTextWithOptions(ctx, urlOrPath, Options{})
}

func FetchTextWithOptions(ctx context.Context, urlOrPath string, opt Options) (string, error) {
	timeout := opt.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	maxRedirects := opt.MaxRedirects
	if maxRedirects == 0 {
		maxRedirects = 5
	}
	maxBytes := opt.MaxBytes
	if maxBytes == 0 {
		maxBytes = 5 * 1024 * 1024
	}

	if IsLocalSource(urlOrPath) {
		return readLocal(strings.TrimPrefix(urlOrPath, "file://"), maxBytes)
	}

	u, err := url.Parse(urlOrPath)
	if err != nil || u == nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", &FetchError{
			AppError: model.AppError{
				Code:    "INVALID_ARGUMENT",
				Message: "订阅来源必须是 http/https URL 或本地路径",
				Stage:   stage,
				URL:     urlOrPath,
			},
			Cause: errors.Join(errInvalidURLOrScheme, err),
		}
	}

	client := &http.Client{
		Timeout:   timeout,
		Transport: http.DefaultTransport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > maxRedirects {
				return errTooManyRedirects
			}
			if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
				return errRedirectBadScheme
			}
			return nil
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlOrPath, nil)
	if err != nil {
		return "", &FetchError{
			AppError: model.AppError{
				Code:    "INVALID_ARGUMENT",
				Message: "请求 URL 不合法",
				Stage:   stage,
				URL:     urlOrPath,
			},
			Cause: err,
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}

		if errors.Is(err, errTooManyRedirects) {
			return "", &FetchError{
				AppError: model.AppError{
					Code:    "FETCH_FAILED",
					Message: fmt.Sprintf("重定向次数超过上限（>%d）", maxRedirects),
					Stage:   stage,
					URL:     urlOrPath,
				},
				Cause: err,
			}
		}
		if errors.Is(err, errRedirectBadScheme) {
			return "", &FetchError{
				AppError: model.AppError{
					Code:    "INVALID_ARGUMENT",
					Message: "重定向目标仅允许 http/https",
					Stage:   stage,
					URL:     urlOrPath,
				},
				Cause: err,
			}
		}

		var ne net.Error
		if (errors.As(err, &ne) && ne.Timeout()) || errors.Is(err, context.DeadlineExceeded) {
			return "", &FetchError{
				AppError: model.AppError{
					Code:    "FETCH_TIMEOUT",
					Message: "拉取订阅超时",
					Stage:   stage,
					URL:     urlOrPath,
				},
				Cause: err,
			}
		}

		return "", &FetchError{
			AppError: model.AppError{
				Code:    "FETCH_FAILED",
				Message: "拉取订阅失败",
				Stage:   stage,
				URL:     urlOrPath,
			},
			Cause: err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &FetchError{
			AppError: model.AppError{
				Code:    "FETCH_FAILED",
				Message: fmt.Sprintf("上游返回非 2xx 状态码：%d", resp.StatusCode),
				Stage:   stage,
				URL:     urlOrPath,
			},
		}
	}

	// Read at most maxBytes+1 to detect overflow deterministically.
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return "", &FetchError{
				AppError: model.AppError{
					Code:    "FETCH_TIMEOUT",
					Message: "拉取订阅超时",
					Stage:   stage,
					URL:     urlOrPath,
				},
				Cause: err,
			}
		}
		return "", &FetchError{
			AppError: model.AppError{
				Code:    "FETCH_FAILED",
				Message: "读取上游响应失败",
				Stage:   stage,
				URL:     urlOrPath,
			},
			Cause: err,
		}
	}
	if int64(len(body)) > maxBytes {
		return "", &FetchError{
			AppError: model.AppError{
				Code:    "TOO_LARGE",
				Message: fmt.Sprintf("订阅内容过大（>%d bytes）", maxBytes),
				Stage:   stage,
				URL:     urlOrPath,
			},
		}
	}

	return decodeLossyUTF8(body), nil
}

func readLocal(path string, maxBytes int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &FetchError{
			AppError: model.AppError{
				Code:    "READ_FILE_FAILED",
				Message: "读取本地订阅文件失败",
				Stage:   stage,
				URL:     path,
			},
			Cause: err,
		}
	}
	defer f.Close()

	body, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return "", &FetchError{
			AppError: model.AppError{
				Code:    "READ_FILE_FAILED",
				Message: "读取本地订阅文件失败",
				Stage:   stage,
				URL:     path,
			},
			Cause: err,
		}
	}
	if int64(len(body)) > maxBytes {
		return "", &FetchError{
			AppError: model.AppError{
				Code:    "TOO_LARGE",
				Message: fmt.Sprintf("订阅内容过大（>%d bytes）", maxBytes),
				Stage:   stage,
				URL:     path,
			},
		}
	}

	return decodeLossyUTF8(body), nil
}

// decodeLossyUTF8 mirrors the provider reality: bodies arrive with unknown
// encodings, so invalid byte sequences are dropped instead of failing the
// whole run.
func decodeLossyUTF8(body []byte) string {
	if utf8.Valid(body) {
		return string(body)
	}
	return strings.ToValidUTF8(string(body), "")
}
