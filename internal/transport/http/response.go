package httptransport

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 响应文本，浏览器直接展示，保持简短
const (
	MsgSubmitted          = "Form submitted successfully"
	MsgVerificationFailed = "reCAPTCHA verification failed"
	MsgInvalidFields      = "Missing or invalid fields"
	MsgAttachmentBlocked  = "Attachment type not allowed"
	MsgBodyTooLarge       = "Request body too large"
	MsgInternalError      = "Error"
)

// Text 纯文本响应
func Text(c *gin.Context, status int, msg string) {
	c.String(status, msg)
}

// Success 成功响应（200）
func Success(c *gin.Context, msg string) {
	Text(c, http.StatusOK, msg)
}
