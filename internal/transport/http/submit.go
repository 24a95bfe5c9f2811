package httptransport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"supportdesk/backend/internal/domain"
	"supportdesk/backend/internal/middleware"
	"supportdesk/backend/internal/security"
	"supportdesk/backend/internal/service"
)

// TicketIDHeader 成功时返回的工单 ID 响应头
const TicketIDHeader = "X-Ticket-ID"

// submitForm 提交表单的字段
type submitForm struct {
	Subject     string                  `form:"subject" binding:"required"`
	Name        string                  `form:"name" binding:"required"`
	Email       string                  `form:"email" binding:"required,email"`
	Phone       string                  `form:"phone" binding:"required"`
	Order       string                  `form:"order" binding:"required"`
	SKU         string                  `form:"sku" binding:"required"`
	Description string                  `form:"description" binding:"required"`
	Challenge   string                  `form:"g-recaptcha-response"`
	Attachments []*multipart.FileHeader `form:"attachment"`
}

// Submitter 处理已解析的支持请求
type Submitter interface {
	Submit(ctx context.Context, in service.SubmitInput) (*domain.SubmissionResult, error)
}

// AttachmentChecker 附件安全检查
type AttachmentChecker interface {
	CheckAttachment(file domain.FileRef) error
}

// SubmitHandler 处理 POST /submit
type SubmitHandler struct {
	submissions Submitter
	checker     AttachmentChecker
	maxMemory   int64
	logger      *zap.Logger
}

// NewSubmitHandler 创建提交处理器
//
// 参数:
//   - maxMemory: 解析 multipart 时驻留内存的上限，超出部分写入临时文件
func NewSubmitHandler(submissions Submitter, checker AttachmentChecker, maxMemory int64, logger *zap.Logger) *SubmitHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmitHandler{
		submissions: submissions,
		checker:     checker,
		maxMemory:   maxMemory,
		logger:      logger,
	}
}

// Submit 解析表单 -> 人机验证 -> 上传附件 -> 创建工单，每个请求只响应一次
func (h *SubmitHandler) Submit(c *gin.Context) {
	defer func() {
		if c.Request.MultipartForm != nil {
			_ = c.Request.MultipartForm.RemoveAll()
		}
	}()

	requestID := middleware.GetRequestID(c)

	req, challenge, err := h.parse(c)
	if err != nil {
		h.fail(c, requestID, err)
		return
	}

	result, err := h.submissions.Submit(c.Request.Context(), service.SubmitInput{
		Request:        req,
		ChallengeToken: challenge,
		RemoteIP:       c.ClientIP(),
		RequestID:      requestID,
	})
	if err != nil {
		h.fail(c, requestID, err)
		return
	}

	if result != nil && result.TicketID > 0 {
		c.Header(TicketIDHeader, strconv.FormatInt(result.TicketID, 10))
	}
	Success(c, MsgSubmitted)
}

// parse 把 multipart 表单转换为 SupportRequest
func (h *SubmitHandler) parse(c *gin.Context) (domain.SupportRequest, string, error) {
	if h.maxMemory > 0 && c.ContentType() == binding.MIMEMultipartPOSTForm {
		if err := c.Request.ParseMultipartForm(h.maxMemory); err != nil {
			return domain.SupportRequest{}, "", classifyBindError(err)
		}
	}

	var form submitForm
	if err := c.ShouldBind(&form); err != nil {
		return domain.SupportRequest{}, "", classifyBindError(err)
	}

	req := domain.SupportRequest{
		Subject:        form.Subject,
		RequesterName:  form.Name,
		RequesterEmail: form.Email,
		Phone:          form.Phone,
		OrderNumber:    form.Order,
		SKU:            form.SKU,
		Description:    form.Description,
		Attachments:    make([]domain.FileRef, 0, len(form.Attachments)),
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return domain.SupportRequest{}, "", err
	}

	for _, fh := range form.Attachments {
		file := fileRefFromHeader(fh)
		if h.checker != nil {
			if err := h.checker.CheckAttachment(file); err != nil {
				if errors.Is(err, domain.ErrAttachmentBlocked) {
					return domain.SupportRequest{}, "", &domain.ParseError{Fields: []string{"attachment"}, Invalid: true, Err: err}
				}
				return domain.SupportRequest{}, "", &domain.ParseError{Err: err}
			}
		}
		req.Attachments = append(req.Attachments, file)
	}

	return req, form.Challenge, nil
}

// fail 记录错误并写出对应状态码
func (h *SubmitHandler) fail(c *gin.Context, requestID string, err error) {
	status, msg := statusFor(err)
	_ = c.Error(err)

	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("support request failed", fields...)
	} else {
		h.logger.Warn("support request rejected", fields...)
	}

	Text(c, status, msg)
}

// fileRefFromHeader 将上传的文件头转换为附件引用
func fileRefFromHeader(fh *multipart.FileHeader) domain.FileRef {
	return domain.NewFileRef(
		security.SanitizeFilename(fh.Filename),
		fh.Header.Get("Content-Type"),
		fh.Size,
		func() (io.ReadCloser, error) { return fh.Open() },
	)
}

// classifyBindError 区分字段校验失败和请求体损坏
func classifyBindError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return err
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, formFieldName(fe.StructField()))
		}
		return &domain.ParseError{Fields: fields, Invalid: true, Err: domain.ErrMissingField}
	}

	return &domain.ParseError{Err: fmt.Errorf("%w: %v", domain.ErrMalformedBody, err)}
}

// formFieldName 返回结构体字段对应的表单字段名
func formFieldName(structField string) string {
	if f, ok := reflect.TypeOf(submitForm{}).FieldByName(structField); ok {
		if tag := f.Tag.Get("form"); tag != "" {
			return tag
		}
	}
	return strings.ToLower(structField)
}
