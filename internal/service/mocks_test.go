package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"supportdesk/backend/internal/domain"
)

// MockVerifier 模拟人机验证
type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, token, remoteIP string) (*domain.VerificationResult, error) {
	args := m.Called(ctx, token, remoteIP)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VerificationResult), args.Error(1)
}

// MockUploader 模拟附件上传
type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, file domain.FileRef) (domain.UploadToken, error) {
	args := m.Called(ctx, file.Filename)
	return args.Get(0).(domain.UploadToken), args.Error(1)
}

// MockSubmitter 模拟工单创建
type MockSubmitter struct {
	mock.Mock
}

func (m *MockSubmitter) Submit(ctx context.Context, payload domain.TicketPayload) (*domain.SubmissionResult, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SubmissionResult), args.Error(1)
}
