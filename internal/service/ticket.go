package service

import (
	"fmt"
	"strings"

	"supportdesk/backend/internal/domain"
)

// BuildCommentBody 生成工单首条评论的正文
func BuildCommentBody(req domain.SupportRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New support ticket from %s\n", req.RequesterName)
	fmt.Fprintf(&b, "Contact phone number: %s\n", req.Phone)
	fmt.Fprintf(&b, "Order number: %s\n", req.OrderNumber)
	fmt.Fprintf(&b, "Product SKU: %s\n", req.SKU)
	fmt.Fprintf(&b, "Description: %s", req.Description)
	return b.String()
}

// BuildTicketPayload 由支持请求和上传令牌组装工单数据
func BuildTicketPayload(req domain.SupportRequest, uploads []domain.UploadToken) domain.TicketPayload {
	tokens := make([]domain.UploadToken, 0, len(uploads))
	tokens = append(tokens, uploads...)

	return domain.TicketPayload{
		Request: domain.TicketRequest{
			Subject: req.Subject,
			Comment: domain.TicketComment{
				Body:    BuildCommentBody(req),
				Uploads: tokens,
			},
			Requester: domain.Requester{
				Name:  req.RequesterName,
				Email: req.RequesterEmail,
			},
		},
	}
}
