package httptransport

import (
	"errors"
	"net/http"
	"strings"

	"supportdesk/backend/internal/domain"
)

// statusFor 将提交流程中的错误映射为 HTTP 状态码和响应文本
//
//   - VerificationError -> 400
//   - ParseError（缺失/非法字段、被拦截的附件）-> 400
//   - ParseError（请求体损坏）-> 500
//   - UploadError / SubmitError / 其他 -> 500
func statusFor(err error) (int, string) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge, MsgBodyTooLarge
	}

	var verr *domain.VerificationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, MsgVerificationFailed
	}

	var perr *domain.ParseError
	if errors.As(err, &perr) {
		if !perr.Invalid {
			return http.StatusInternalServerError, MsgInternalError
		}
		if errors.Is(err, domain.ErrAttachmentBlocked) {
			return http.StatusBadRequest, MsgAttachmentBlocked
		}
		if len(perr.Fields) > 0 {
			return http.StatusBadRequest, MsgInvalidFields + ": " + strings.Join(perr.Fields, ", ")
		}
		return http.StatusBadRequest, MsgInvalidFields
	}

	return http.StatusInternalServerError, MsgInternalError
}
