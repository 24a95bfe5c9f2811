package domain

import (
	"bytes"
	"io"
	"net/mail"
	"strings"
)

// FileRef 表示一次请求中用户上传的单个附件
//
// 内容通过 Open 按需读取，请求结束后由处理器丢弃。
type FileRef struct {
	Filename    string
	ContentType string
	Size        int64
	open        func() (io.ReadCloser, error)
}

// NewFileRef 创建附件引用，open 每次调用都应返回从头开始的读取器
func NewFileRef(filename, contentType string, size int64, open func() (io.ReadCloser, error)) FileRef {
	return FileRef{
		Filename:    filename,
		ContentType: contentType,
		Size:        size,
		open:        open,
	}
}

// NewFileRefFromBytes 基于内存数据创建附件引用
func NewFileRefFromBytes(filename, contentType string, data []byte) FileRef {
	return NewFileRef(filename, contentType, int64(len(data)), func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	})
}

// Open 打开附件内容
func (f FileRef) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	return f.open()
}

// Empty 报告附件是否为零字节
func (f FileRef) Empty() bool {
	return f.Size <= 0
}

// SupportRequest 由表单字段构建的支持请求，构建后不再修改
type SupportRequest struct {
	Subject        string
	RequesterName  string
	RequesterEmail string
	Phone          string
	OrderNumber    string
	SKU            string
	Description    string
	Attachments    []FileRef
}

// Normalize 去除文本字段首尾空白，并保证附件列表非 nil
func (r *SupportRequest) Normalize() {
	r.Subject = strings.TrimSpace(r.Subject)
	r.RequesterName = strings.TrimSpace(r.RequesterName)
	r.RequesterEmail = strings.TrimSpace(r.RequesterEmail)
	r.Phone = strings.TrimSpace(r.Phone)
	r.OrderNumber = strings.TrimSpace(r.OrderNumber)
	r.SKU = strings.TrimSpace(r.SKU)
	r.Description = strings.TrimSpace(r.Description)
	if r.Attachments == nil {
		r.Attachments = []FileRef{}
	}
}

// Validate 校验所有必填字段，返回的 *ParseError 列出全部缺失的表单字段名
func (r *SupportRequest) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"subject", r.Subject},
		{"name", r.RequesterName},
		{"email", r.RequesterEmail},
		{"phone", r.Phone},
		{"order", r.OrderNumber},
		{"sku", r.SKU},
		{"description", r.Description},
	}

	var missing []string
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.field)
		}
	}
	if len(missing) > 0 {
		return &ParseError{Fields: missing, Invalid: true, Err: ErrMissingField}
	}

	if _, err := mail.ParseAddress(r.RequesterEmail); err != nil {
		return &ParseError{Fields: []string{"email"}, Invalid: true, Err: ErrInvalidEmail}
	}
	return nil
}

// NonEmptyAttachments 返回需要上传的附件，零字节附件被跳过
func (r *SupportRequest) NonEmptyAttachments() []FileRef {
	out := make([]FileRef, 0, len(r.Attachments))
	for _, f := range r.Attachments {
		if !f.Empty() {
			out = append(out, f)
		}
	}
	return out
}
