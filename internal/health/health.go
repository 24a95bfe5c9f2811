package health

import (
	"net/http"
	"time"

	"github.com/heptiolabs/healthcheck"
	"go.uber.org/zap"
)

// 默认检查参数
const (
	maxGoroutines = 10000
	dnsTimeout    = 2 * time.Second
)

// HealthChecker 健康检查器
//
// 服务本身无状态，存活检查只看协程数量；就绪检查确认外部服务域名可解析。
type HealthChecker struct {
	health healthcheck.Handler
	logger *zap.Logger
}

// NewHealthChecker 创建健康检查器
//
// 参数:
//   - upstreamHosts: 需要在就绪检查中解析的外部服务主机名
func NewHealthChecker(upstreamHosts []string, logger *zap.Logger) *HealthChecker {
	if logger == nil {
		logger = zap.NewNop()
	}
	hc := &HealthChecker{
		health: healthcheck.NewHandler(),
		logger: logger,
	}

	hc.health.AddLivenessCheck("goroutine-threshold", healthcheck.GoroutineCountCheck(maxGoroutines))

	for _, host := range upstreamHosts {
		if host == "" {
			continue
		}
		hc.health.AddReadinessCheck("upstream-dns-"+host, hc.logged(host, healthcheck.DNSResolveCheck(host, dnsTimeout)))
	}

	return hc
}

// logged 检查失败时记录日志
func (hc *HealthChecker) logged(name string, check healthcheck.Check) healthcheck.Check {
	return func() error {
		if err := check(); err != nil {
			hc.logger.Warn("readiness check failed", zap.String("check", name), zap.Error(err))
			return err
		}
		return nil
	}
}

// LiveHandler 存活检查处理器
func (hc *HealthChecker) LiveHandler() http.Handler {
	return http.HandlerFunc(hc.health.LiveEndpoint)
}

// ReadyHandler 就绪检查处理器
func (hc *HealthChecker) ReadyHandler() http.Handler {
	return http.HandlerFunc(hc.health.ReadyEndpoint)
}
