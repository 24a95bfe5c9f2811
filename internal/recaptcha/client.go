// Package recaptcha 实现服务端人机验证校验
package recaptcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"supportdesk/backend/internal/domain"
)

// FormField 表单中携带验证令牌的字段名
const FormField = "g-recaptcha-response"

// maxResponseBytes 限制读取的验证响应大小
const maxResponseBytes = 64 * 1024

var (
	ErrEmptyToken        = errors.New("empty challenge token")
	ErrMalformedResponse = errors.New("malformed verification response")
)

// Client 调用 siteverify 接口的验证客户端
//
// 任何传输错误、响应格式错误或 success=false 都视为验证失败。
type Client struct {
	verifyURL  string
	secret     string
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

// NewClient 创建验证客户端
//
// 参数:
//   - verifyURL: 校验接口地址
//   - secret: 服务端私钥
//   - timeout: 单次调用超时
func NewClient(verifyURL, secret string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		verifyURL:  verifyURL,
		secret:     secret,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type siteverifyResponse struct {
	Success     bool     `json:"success"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes"`
}

// Verify 校验挑战令牌，通过时返回结果，否则返回 *domain.VerificationError
func (c *Client) Verify(ctx context.Context, token, remoteIP string) (*domain.VerificationResult, error) {
	if strings.TrimSpace(token) == "" {
		return nil, &domain.VerificationError{Err: ErrEmptyToken}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint, err := url.Parse(c.verifyURL)
	if err != nil {
		return nil, &domain.VerificationError{Err: fmt.Errorf("invalid verify url: %w", err)}
	}
	query := endpoint.Query()
	query.Set("secret", c.secret)
	query.Set("response", token)
	if remoteIP != "" {
		query.Set("remoteip", remoteIP)
	}
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), nil)
	if err != nil {
		return nil, &domain.VerificationError{Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// 不把带私钥的 URL 带进错误信息
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, &domain.VerificationError{Err: fmt.Errorf("verification provider unreachable: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &domain.VerificationError{Err: fmt.Errorf("read verification response: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.VerificationError{Err: fmt.Errorf("verification provider returned status %d", resp.StatusCode)}
	}

	var parsed siteverifyResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &domain.VerificationError{Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}

	result := &domain.VerificationResult{
		Success:    parsed.Success,
		Hostname:   parsed.Hostname,
		ErrorCodes: parsed.ErrorCodes,
		Raw:        json.RawMessage(body),
	}
	if ts, err := time.Parse(time.RFC3339, parsed.ChallengeTS); err == nil {
		result.ChallengeTS = ts
	}

	if !result.Success {
		return result, &domain.VerificationError{Codes: parsed.ErrorCodes, Err: domain.ErrVerificationFail}
	}
	return result, nil
}
