package zendesk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"supportdesk/backend/internal/domain"
)

// ErrMissingToken 上传成功但响应中没有令牌
var ErrMissingToken = errors.New("upload response has no token")

type uploadResponse struct {
	Upload struct {
		Token string `json:"token"`
	} `json:"upload"`
}

// Upload 上传单个附件并返回上传令牌
//
// 调用方负责过滤零字节附件。失败时返回 *domain.UploadError。
func (c *Client) Upload(ctx context.Context, file domain.FileRef) (domain.UploadToken, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	body, err := file.Open()
	if err != nil {
		return "", &domain.UploadError{Filename: file.Filename, Err: fmt.Errorf("open attachment: %w", err)}
	}
	defer body.Close()

	endpoint := c.baseURL + uploadsPath + "?" + url.Values{"filename": {file.Filename}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", &domain.UploadError{Filename: file.Filename, Err: err}
	}
	req.ContentLength = file.Size

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)

	var out uploadResponse
	if err := c.do(req, &out); err != nil {
		return "", &domain.UploadError{Filename: file.Filename, Err: err}
	}
	if out.Upload.Token == "" {
		return "", &domain.UploadError{Filename: file.Filename, Err: ErrMissingToken}
	}
	return domain.UploadToken(out.Upload.Token), nil
}
