package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT",
	"ZENDESK_SUBDOMAIN",
	"ZENDESK_EMAIL",
	"ZENDESK_PASSWORD",
	"RECAPTCHA_SITE_KEY",
	"RECAPTCHA_SECRET_KEY",
	"SUPPORTDESK_SERVER_HOST",
	"SUPPORTDESK_SERVER_PORT",
	"SUPPORTDESK_ZENDESK_SUBDOMAIN",
	"SUPPORTDESK_ZENDESK_BASE_URL",
	"SUPPORTDESK_ZENDESK_EMAIL",
	"SUPPORTDESK_ZENDESK_SECRET",
	"SUPPORTDESK_ZENDESK_USE_API_TOKEN",
	"SUPPORTDESK_RECAPTCHA_SITE_KEY",
	"SUPPORTDESK_RECAPTCHA_SECRET_KEY",
	"SUPPORTDESK_RECAPTCHA_VERIFY_URL",
	"SUPPORTDESK_UPSTREAM_TIMEOUT",
	"SUPPORTDESK_UPLOAD_MAX_CONCURRENT",
	"SUPPORTDESK_CORS_ALLOWED_ORIGINS",
	"SUPPORTDESK_LOG_LEVEL",
	"SUPPORTDESK_LOG_DEVELOPMENT",
}

// clearEnv 清空所有相关环境变量，测试结束后自动恢复
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func setLegacyEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PORT", "3000")
	t.Setenv("ZENDESK_SUBDOMAIN", "acme")
	t.Setenv("ZENDESK_EMAIL", "agent@acme.test")
	t.Setenv("ZENDESK_PASSWORD", "zd-secret")
	t.Setenv("RECAPTCHA_SITE_KEY", "site-key")
	t.Setenv("RECAPTCHA_SECRET_KEY", "secret-key")
}

func TestLoad(t *testing.T) {
	t.Run("兼容旧环境变量并使用默认值", func(t *testing.T) {
		clearEnv(t)
		setLegacyEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "0.0.0.0", cfg.Server.Host)
		assert.Equal(t, 3000, cfg.Server.Port)
		assert.Equal(t, "acme", cfg.Zendesk.Subdomain)
		assert.Equal(t, "agent@acme.test", cfg.Zendesk.Email)
		assert.Equal(t, "zd-secret", cfg.Zendesk.Secret)
		assert.True(t, cfg.Zendesk.UseAPIToken)
		assert.Equal(t, "site-key", cfg.Recaptcha.SiteKey)
		assert.Equal(t, "secret-key", cfg.Recaptcha.SecretKey)
		assert.Equal(t, DefaultRecaptchaVerifyURL, cfg.Recaptcha.VerifyURL)
		assert.Equal(t, 15*time.Second, cfg.Upstream.Timeout)
		assert.Equal(t, 4, cfg.Upload.MaxConcurrent)
		assert.Equal(t, int64(50*1024*1024), cfg.Upload.MaxBodyBytes)
		assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.False(t, cfg.Log.Development)
		assert.Equal(t, "https://acme.zendesk.com", cfg.ZendeskBaseURL())
		assert.Equal(t, "0.0.0.0:3000", cfg.Addr())
	})

	t.Run("带前缀的环境变量优先", func(t *testing.T) {
		clearEnv(t)
		setLegacyEnv(t)
		t.Setenv("SUPPORTDESK_SERVER_PORT", "9090")
		t.Setenv("SUPPORTDESK_ZENDESK_BASE_URL", "http://127.0.0.1:8081/")
		t.Setenv("SUPPORTDESK_ZENDESK_USE_API_TOKEN", "false")
		t.Setenv("SUPPORTDESK_UPSTREAM_TIMEOUT", "3s")
		t.Setenv("SUPPORTDESK_UPLOAD_MAX_CONCURRENT", "2")
		t.Setenv("SUPPORTDESK_CORS_ALLOWED_ORIGINS", "https://shop.test, https://www.shop.test")
		t.Setenv("SUPPORTDESK_LOG_LEVEL", "debug")
		t.Setenv("SUPPORTDESK_LOG_DEVELOPMENT", "true")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, "http://127.0.0.1:8081", cfg.ZendeskBaseURL())
		assert.False(t, cfg.Zendesk.UseAPIToken)
		assert.Equal(t, 3*time.Second, cfg.Upstream.Timeout)
		assert.Equal(t, 2, cfg.Upload.MaxConcurrent)
		assert.Equal(t, []string{"https://shop.test", "https://www.shop.test"}, cfg.CORS.AllowedOrigins)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.True(t, cfg.Log.Development)
	})

	t.Run("缺少必填项启动失败", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "server.port")
		assert.Contains(t, err.Error(), "zendesk.subdomain")
		assert.Contains(t, err.Error(), "zendesk.email")
		assert.Contains(t, err.Error(), "zendesk.secret")
		assert.Contains(t, err.Error(), "recaptcha.site_key")
		assert.Contains(t, err.Error(), "recaptcha.secret_key")
	})

	t.Run("超时格式无效", func(t *testing.T) {
		clearEnv(t)
		setLegacyEnv(t)
		t.Setenv("SUPPORTDESK_UPSTREAM_TIMEOUT", "soon")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "upstream.timeout")
	})
}

func TestParseList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, parseList(" a, ,b "))
	assert.Empty(t, parseList(""))
}
