// Package zendesk 封装工单系统的附件上传与工单创建接口
package zendesk

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	uploadsPath  = "/api/v2/uploads.json"
	requestsPath = "/api/v2/requests.json"

	// 错误信息中保留的响应体长度
	maxErrorBody = 512
	// 成功响应读取上限
	maxResponseBytes = 1 << 20
)

// APIError 工单系统返回的非 2xx 响应
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("zendesk returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("zendesk returned status %d: %s", e.StatusCode, e.Body)
}

// Credentials 工单系统的 basic auth 凭证
type Credentials struct {
	Email       string
	Secret      string
	UseAPIToken bool
}

// username 使用 API Token 时用户名为 "email/token"
func (c Credentials) username() string {
	if c.UseAPIToken {
		return c.Email + "/token"
	}
	return c.Email
}

// header 返回 Authorization 头的值
func (c Credentials) header() string {
	raw := c.username() + ":" + c.Secret
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(raw))
}

// Client 工单系统 API 客户端，并发安全
type Client struct {
	baseURL    string
	creds      Credentials
	timeout    time.Duration
	httpClient *http.Client
}

// Option 客户端可选项
type Option func(*Client)

// WithHTTPClient 替换底层 HTTP 客户端
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient 创建工单系统客户端
//
// 参数:
//   - baseURL: 如 https://acme.zendesk.com
//   - creds: basic auth 凭证
//   - timeout: 单次调用超时，超时视为该调用失败
func NewClient(baseURL string, creds Credentials, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		timeout: timeout,
		// 上传大文件时由 context 控制超时，不设置整体 Timeout
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do 发送请求并把成功响应解码到 out
func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", c.creds.header())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var uerr *url.Error
		if errors.As(err, &uerr) {
			return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, uerr.Err)
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return &DecodeError{Path: req.URL.Path, Err: err}
	}
	return nil
}

// DecodeError 2xx 响应的响应体无法解析
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s response: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// withTimeout 为单次调用派生带超时的 context
func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// Host 返回 API 主机名，用于就绪检查
func (c *Client) Host() string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
