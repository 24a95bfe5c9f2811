package domain

import (
	"errors"
	"fmt"
	"strings"
)

// 表单相关的错误定义
var (
	ErrMissingField      = errors.New("required field missing")
	ErrInvalidEmail      = errors.New("invalid email format")
	ErrMalformedBody     = errors.New("malformed multipart body")
	ErrAttachmentBlocked = errors.New("attachment type not allowed")
	ErrVerificationFail  = errors.New("verification rejected")
)

// ParseError 表单解析或字段校验失败
//
// Invalid 为 true 表示调用方输入有误（缺失或非法字段），否则为请求体本身损坏。
type ParseError struct {
	Fields  []string
	Invalid bool
	Err     error
}

func (e *ParseError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("parse form: %v: %s", e.Err, strings.Join(e.Fields, ", "))
	}
	return fmt.Sprintf("parse form: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// VerificationError 人机验证未通过或验证服务不可用
type VerificationError struct {
	Codes []string
	Err   error
}

func (e *VerificationError) Error() string {
	if len(e.Codes) > 0 {
		return fmt.Sprintf("verification failed: %v (%s)", e.Err, strings.Join(e.Codes, ", "))
	}
	return fmt.Sprintf("verification failed: %v", e.Err)
}

func (e *VerificationError) Unwrap() error { return e.Err }

// UploadError 附件上传失败
type UploadError struct {
	Filename string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %q: %v", e.Filename, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// SubmitError 工单创建失败
type SubmitError struct {
	Err error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("submit ticket: %v", e.Err)
}

func (e *SubmitError) Unwrap() error { return e.Err }
