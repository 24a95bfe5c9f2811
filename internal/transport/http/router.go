package httptransport

import (
	"net/http"
	"time"

	gincors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"supportdesk/backend/internal/config"
	"supportdesk/backend/internal/health"
	"supportdesk/backend/internal/middleware"
	"supportdesk/backend/internal/monitoring"
)

// RouterDependencies 路由器依赖项
type RouterDependencies struct {
	Config      *config.Config
	Submissions Submitter
	Attachments AttachmentChecker
	Metrics     *monitoring.Metrics
	Health      *health.HealthChecker // 可选
	Logger      *zap.Logger
}

// NewRouter 创建并返回 Gin 路由实例。
func NewRouter(deps RouterDependencies) *gin.Engine {
	cfg := deps.Config
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.MaxMultipartMemory = cfg.Upload.MaxMultipartMemory
	router.SetHTMLTemplate(formTemplates())

	var onPanic func()
	if deps.Metrics != nil {
		onPanic = deps.Metrics.RecordPanic
	}
	router.Use(middleware.RecoveryHandler(log, onPanic))
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.SecurityHeaders())
	if deps.Metrics != nil {
		router.Use(middleware.HTTPMetrics(deps.Metrics))
	}

	// CORS 配置：表单可能嵌入到商城域名下提交
	corsConfig := gincors.Config{
		AllowOrigins:  cfg.CORS.AllowedOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader, TicketIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, origin := range corsConfig.AllowOrigins {
		if origin == "*" {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowAllOrigins = true
			break
		}
	}
	router.Use(gincors.New(corsConfig))

	stylesheet := ""
	if cfg.Server.StaticDir != "" {
		router.Static("/assets", cfg.Server.StaticDir)
		stylesheet = "/assets/style.css"
	}

	formHandler := NewFormHandler(cfg.Recaptcha.SiteKey, stylesheet)
	submitHandler := NewSubmitHandler(deps.Submissions, deps.Attachments, cfg.Upload.MaxMultipartMemory, log)

	router.GET("/", formHandler.Render)
	router.POST("/submit", middleware.BodySizeLimit(cfg.Upload.MaxBodyBytes), submitHandler.Submit)

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if deps.Health != nil {
		router.GET("/health/live", gin.WrapH(deps.Health.LiveHandler()))
		router.GET("/health/ready", gin.WrapH(deps.Health.ReadyHandler()))
	}

	// Prometheus 指标端点
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.HTTPHandler()))
	}

	return router
}
