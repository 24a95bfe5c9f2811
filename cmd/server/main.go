package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"supportdesk/backend/internal/config"
	"supportdesk/backend/internal/health"
	"supportdesk/backend/internal/logger"
	"supportdesk/backend/internal/monitoring"
	"supportdesk/backend/internal/recaptcha"
	"supportdesk/backend/internal/security"
	"supportdesk/backend/internal/service"
	httptransport "supportdesk/backend/internal/transport/http"
	"supportdesk/backend/internal/zendesk"
)

// main 启动支持请求表单服务。
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	log, err := logger.NewLogger(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		LogFile:     cfg.Log.File,
		MaxSize:     100,
		MaxBackups:  3,
		MaxAge:      28,
		Compress:    true,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting support desk server",
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("development", cfg.Log.Development),
		zap.String("zendesk_base_url", cfg.ZendeskBaseURL()),
		zap.Bool("zendesk_api_token", cfg.Zendesk.UseAPIToken),
		zap.Duration("upstream_timeout", cfg.Upstream.Timeout),
	)

	metrics := monitoring.NewMetrics()

	// 外部服务客户端
	verifier := recaptcha.NewClient(cfg.Recaptcha.VerifyURL, cfg.Recaptcha.SecretKey, cfg.Upstream.Timeout)
	zd := zendesk.NewClient(cfg.ZendeskBaseURL(), zendesk.Credentials{
		Email:       cfg.Zendesk.Email,
		Secret:      cfg.Zendesk.Secret,
		UseAPIToken: cfg.Zendesk.UseAPIToken,
	}, cfg.Upstream.Timeout)

	submissions := service.NewSubmissionService(verifier, zd, zd, metrics, log, cfg.Upload.MaxConcurrent)
	upstreamHosts := []string{zd.Host()}
	if u, err := url.Parse(cfg.Recaptcha.VerifyURL); err == nil && u.Hostname() != "" {
		upstreamHosts = append(upstreamHosts, u.Hostname())
	}
	healthChecker := health.NewHealthChecker(upstreamHosts, log)

	router := httptransport.NewRouter(httptransport.RouterDependencies{
		Config:      cfg,
		Submissions: submissions,
		Attachments: security.NewAttachmentSecurity(),
		Metrics:     metrics,
		Health:      healthChecker,
		Logger:      log,
	})

	// 上传附件可能较慢，写超时需覆盖所有外部调用
	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      3*cfg.Upstream.Timeout + time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("starting HTTP server",
			zap.String("address", cfg.Addr()),
			zap.String("url", fmt.Sprintf("http://localhost:%d", cfg.Server.Port)),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", zap.Error(err))
			return err
		}
		return nil
	})

	// 优雅关闭
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutdown signal received, gracefully shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error", zap.Error(err))
		}
		return nil
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("server error", zap.Error(err))
	}

	log.Info("server exited cleanly")
}
