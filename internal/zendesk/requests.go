package zendesk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"supportdesk/backend/internal/domain"
)

type requestResponse struct {
	Request struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	} `json:"request"`
}

// Submit 创建工单，每个支持请求只调用一次，不重试
//
// 失败时返回 *domain.SubmitError。
func (c *Client) Submit(ctx context.Context, payload domain.TicketPayload) (*domain.SubmissionResult, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if payload.Request.Comment.Uploads == nil {
		payload.Request.Comment.Uploads = []domain.UploadToken{}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, &domain.SubmitError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+requestsPath, bytes.NewReader(data))
	if err != nil {
		return nil, &domain.SubmitError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	var out requestResponse
	if err := c.do(req, &out); err != nil {
		// 工单已创建，只是响应体无法识别
		var derr *DecodeError
		if errors.As(err, &derr) {
			return &domain.SubmissionResult{}, nil
		}
		return nil, &domain.SubmitError{Err: err}
	}

	return &domain.SubmissionResult{
		TicketID: out.Request.ID,
		Status:   out.Request.Status,
	}, nil
}
