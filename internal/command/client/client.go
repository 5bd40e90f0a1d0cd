package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lwmacct/251019-go-pkg-tokparse/internal/config"
)

// StatusError 表示服务器返回非 2xx 状态码。
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
}

// APIClient 调用 tokparse HTTP API，5xx 与网络错误会按配置重试。
type APIClient struct {
	baseURL string
	http    *http.Client
	retries int
	backoff time.Duration // 首次重试前的等待时间
	maxWait time.Duration
}

// NewAPIClient 创建客户端。
func NewAPIClient(cfg config.ClientConfig) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		retries: max(cfg.Retries, 0),
		backoff: 200 * time.Millisecond,
		maxWait: 5 * time.Second,
	}
}

// Do 发送请求；body 非 nil 时以 JSON 编码，out 非 nil 时解码响应。
func (c *APIClient) Do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			slog.DebugContext(ctx, "Retrying request", "path", path, "attempt", attempt, "error", lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.delay(attempt)):
			}
		}

		lastErr = c.once(ctx, method, path, payload, out)
		if lastErr == nil {
			return nil
		}

		var statusErr *StatusError
		if errors.As(lastErr, &statusErr) && statusErr.Code < http.StatusInternalServerError {
			return lastErr
		}
	}

	return lastErr
}

// delay 返回第 attempt 次重试前的等待时间，从 backoff 起按 2 倍增长，不超过 maxWait。
func (c *APIClient) delay(attempt int) time.Duration {
	d := c.backoff
	for i := 1; i < attempt && d < c.maxWait; i++ {
		d *= 2
	}

	return min(d, c.maxWait)
}

func (c *APIClient) once(ctx context.Context, method, path string, payload []byte, out any) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}

		return &StatusError{Code: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}

	return json.Unmarshal(data, out)
}
