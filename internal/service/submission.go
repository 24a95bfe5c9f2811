package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"supportdesk/backend/internal/domain"
	"supportdesk/backend/internal/monitoring"
)

// Verifier 人机验证
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) (*domain.VerificationResult, error)
}

// Uploader 附件上传
type Uploader interface {
	Upload(ctx context.Context, file domain.FileRef) (domain.UploadToken, error)
}

// Submitter 工单创建
type Submitter interface {
	Submit(ctx context.Context, payload domain.TicketPayload) (*domain.SubmissionResult, error)
}

// SubmitInput 一次表单提交的输入
type SubmitInput struct {
	Request        domain.SupportRequest
	ChallengeToken string
	RemoteIP       string
	RequestID      string
}

// SubmissionService 处理支持请求：验证 -> 上传附件 -> 创建工单
type SubmissionService struct {
	verifier      Verifier
	uploader      Uploader
	submitter     Submitter
	metrics       *monitoring.Metrics
	logger        *zap.Logger
	maxConcurrent int
}

// NewSubmissionService 创建提交服务
//
// 参数:
//   - maxConcurrent: 单个请求内并发上传附件的上限，<=0 表示不限制
func NewSubmissionService(verifier Verifier, uploader Uploader, submitter Submitter, metrics *monitoring.Metrics, logger *zap.Logger, maxConcurrent int) *SubmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionService{
		verifier:      verifier,
		uploader:      uploader,
		submitter:     submitter,
		metrics:       metrics,
		logger:        logger,
		maxConcurrent: maxConcurrent,
	}
}

// Submit 执行完整的提交流程
//
// 人机验证未通过时不会上传附件或创建工单。任一附件上传失败则不创建工单，
// 已上传的附件不会回滚。返回的错误为 domain 包中的四类错误之一。
func (s *SubmissionService) Submit(ctx context.Context, in SubmitInput) (*domain.SubmissionResult, error) {
	log := s.logger.With(zap.String("request_id", in.RequestID))

	if err := s.verify(ctx, log, in); err != nil {
		s.recordOutcome(monitoring.OutcomeRejected)
		return nil, err
	}

	tokens, err := s.uploadAll(ctx, log, &in.Request)
	if err != nil {
		s.recordOutcome(monitoring.OutcomeFailed)
		return nil, err
	}

	payload := BuildTicketPayload(in.Request, tokens)

	start := time.Now()
	result, err := s.submitter.Submit(ctx, payload)
	s.observe("zendesk", "create_request", err, start)
	if err != nil {
		s.recordOutcome(monitoring.OutcomeFailed)
		log.Error("failed to create ticket", zap.Error(err))
		var serr *domain.SubmitError
		if !errors.As(err, &serr) {
			err = &domain.SubmitError{Err: err}
		}
		return nil, err
	}

	s.recordOutcome(monitoring.OutcomeCompleted)
	log.Info("support ticket created",
		zap.Int64("ticket_id", result.TicketID),
		zap.String("status", result.Status),
		zap.Int("attachments", len(tokens)),
	)
	return result, nil
}

// verify 调用人机验证，失败即拒绝
func (s *SubmissionService) verify(ctx context.Context, log *zap.Logger, in SubmitInput) error {
	start := time.Now()
	result, err := s.verifier.Verify(ctx, in.ChallengeToken, in.RemoteIP)
	s.observe("recaptcha", "verify", err, start)

	if err == nil && (result == nil || !result.Success) {
		err = &domain.VerificationError{Err: domain.ErrVerificationFail}
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordVerification(false)
		}
		log.Warn("human verification failed", zap.Error(err))
		var verr *domain.VerificationError
		if !errors.As(err, &verr) {
			err = &domain.VerificationError{Err: err}
		}
		return err
	}

	if s.metrics != nil {
		s.metrics.RecordVerification(true)
	}
	return nil
}

// uploadAll 并发上传所有非空附件，令牌顺序与附件顺序一致
//
// 任一上传失败会取消其余上传并返回第一个错误。
func (s *SubmissionService) uploadAll(ctx context.Context, log *zap.Logger, req *domain.SupportRequest) ([]domain.UploadToken, error) {
	pending := req.NonEmptyAttachments()
	if skipped := len(req.Attachments) - len(pending); skipped > 0 {
		if s.metrics != nil {
			for i := 0; i < skipped; i++ {
				s.metrics.RecordAttachmentSkipped()
			}
		}
		log.Debug("skipping empty attachments", zap.Int("count", skipped))
	}

	tokens := make([]domain.UploadToken, len(pending))
	if len(pending) == 0 {
		return tokens, nil
	}

	group, groupCtx := errgroup.WithContext(ctx)
	if s.maxConcurrent > 0 {
		group.SetLimit(s.maxConcurrent)
	}

	for i, f := range pending {
		group.Go(func() error {
			start := time.Now()
			token, err := s.uploader.Upload(groupCtx, f)
			s.observe("zendesk", "upload", err, start)
			if err != nil {
				if s.metrics != nil {
					s.metrics.RecordAttachmentFailed()
				}
				log.Error("failed to upload attachment",
					zap.String("filename", f.Filename),
					zap.Int64("size", f.Size),
					zap.Error(err),
				)
				var uerr *domain.UploadError
				if !errors.As(err, &uerr) {
					err = &domain.UploadError{Filename: f.Filename, Err: err}
				}
				return err
			}

			if s.metrics != nil {
				s.metrics.RecordAttachmentUploaded(f.Size)
			}
			tokens[i] = token
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return tokens, nil
}

func (s *SubmissionService) observe(provider, operation string, err error, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveUpstream(provider, operation, err, time.Since(start))
	}
}

func (s *SubmissionService) recordOutcome(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordSubmission(outcome)
	}
}
