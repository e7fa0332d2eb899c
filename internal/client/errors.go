package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

var (
	// ErrRateLimited 上游限流（HTTP 429）
	ErrRateLimited = errors.New("provider rate limited")

	// ErrTimeout 首字节或整体调用超时
	ErrTimeout = errors.New("provider timeout")

	// ErrUnauthorized 上游拒绝凭证（HTTP 401/403）
	ErrUnauthorized = errors.New("provider rejected credential")

	// ErrMalformedResponse 上游响应无法解析
	ErrMalformedResponse = errors.New("malformed provider response")

	// ErrStreamAborted 上游在流中返回了错误事件
	ErrStreamAborted = errors.New("provider aborted stream")
)

// ProviderError 上游调用失败
// Status 为 0 表示请求未得到 HTTP 响应（网络错误、超时等）
type ProviderError struct {
	Status  int
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("provider error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("provider error %d: %s", e.Status, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsRateLimited 是否为上游限流
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// statusError 根据 HTTP 状态码构造错误
func statusError(status int, message string) *ProviderError {
	if message == "" {
		message = http.StatusText(status)
	}
	var cause error
	switch status {
	case http.StatusTooManyRequests:
		cause = ErrRateLimited
	case http.StatusUnauthorized, http.StatusForbidden:
		cause = ErrUnauthorized
		message = http.StatusText(status)
	case http.StatusGatewayTimeout, http.StatusRequestTimeout:
		cause = ErrTimeout
	default:
		cause = fmt.Errorf("unexpected status %d", status)
	}
	return &ProviderError{Status: status, Message: message, Err: cause}
}

// transportError 包装请求阶段的错误，保留 context 取消语义
func transportError(op string, err error) *ProviderError {
	if errors.Is(err, context.Canceled) {
		return &ProviderError{Message: op, Err: err}
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &ProviderError{Message: op, Err: fmt.Errorf("%w: %v", ErrTimeout, err)}
	}
	return &ProviderError{Message: op, Err: err}
}
