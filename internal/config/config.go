package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ServerConfig 定义 HTTP 服务器的监听配置参数
type ServerConfig struct {
	Host      string // 监听地址，默认 "0.0.0.0"
	Port      int    // 监听端口，必填
	StaticDir string // 静态资源目录（CSS/图片），留空表示不提供
}

// ZendeskConfig 定义工单系统 (Zendesk) 的访问配置
type ZendeskConfig struct {
	Subdomain   string // 账户子域名，如 "acme" -> https://acme.zendesk.com
	BaseURL     string // 完整基础地址，设置后优先于 Subdomain（用于测试或代理）
	Email       string // 认证邮箱
	Secret      string // API Token 或密码
	UseAPIToken bool   // 为 true 时用户名使用 "email/token" 形式，默认 true
}

// RecaptchaConfig 定义人机验证 (reCAPTCHA) 配置
type RecaptchaConfig struct {
	SiteKey   string // 前端组件使用的站点密钥
	SecretKey string // 服务端校验使用的私钥
	VerifyURL string // 校验接口地址
}

// UpstreamConfig 定义对外部服务调用的通用参数
type UpstreamConfig struct {
	Timeout time.Duration // 单次外部调用超时，默认 15 秒
}

// UploadConfig 定义表单与附件上传限制
type UploadConfig struct {
	MaxBodyBytes       int64 // 请求体最大字节数，默认 50MB
	MaxMultipartMemory int64 // 解析 multipart 时驻留内存的上限，默认 32MB
	MaxConcurrent      int   // 单个请求内并发上传附件数，默认 4
}

// CORSConfig 定义跨域资源共享 (CORS) 配置
type CORSConfig struct {
	AllowedOrigins []string // 允许的来源列表，"*" 表示允许所有来源
}

// LogConfig 定义日志系统配置
type LogConfig struct {
	Level       string // 日志级别: debug, info, warn, error
	Development bool   // 开发模式: 启用彩色输出和详细堆栈信息
	File        string // 日志文件路径，留空只输出到控制台
}

// Config 是系统核心配置的根结构体，启动后只读
type Config struct {
	Server    ServerConfig
	Zendesk   ZendeskConfig
	Recaptcha RecaptchaConfig
	Upstream  UpstreamConfig
	Upload    UploadConfig
	CORS      CORSConfig
	Log       LogConfig
}

// DefaultRecaptchaVerifyURL 是 Google reCAPTCHA 的服务端校验接口
const DefaultRecaptchaVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// legacyEnv 兼容旧部署使用的无前缀环境变量
var legacyEnv = map[string]string{
	"server.port":          "PORT",
	"zendesk.subdomain":    "ZENDESK_SUBDOMAIN",
	"zendesk.email":        "ZENDESK_EMAIL",
	"zendesk.secret":       "ZENDESK_PASSWORD",
	"recaptcha.site_key":   "RECAPTCHA_SITE_KEY",
	"recaptcha.secret_key": "RECAPTCHA_SECRET_KEY",
}

// Load 从环境变量和 .env 文件加载系统配置
//
// 配置加载优先级（从高到低）：
//  1. 带前缀的环境变量，如 SUPPORTDESK_ZENDESK_SUBDOMAIN
//  2. 兼容的无前缀环境变量，如 ZENDESK_SUBDOMAIN
//  3. .env 文件（如果存在，不覆盖已有环境变量）
//  4. 默认值
//
// 必填项缺失时直接返回错误，服务不会启动。
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetEnvPrefix("supportdesk")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		prefixed := "SUPPORTDESK_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, prefixed, legacy)
	}

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.static_dir", "")
	v.SetDefault("zendesk.base_url", "")
	v.SetDefault("zendesk.use_api_token", true)
	v.SetDefault("recaptcha.verify_url", DefaultRecaptchaVerifyURL)
	v.SetDefault("upstream.timeout", "15s")
	v.SetDefault("upload.max_body_bytes", 50*1024*1024)
	v.SetDefault("upload.max_multipart_memory", 32*1024*1024)
	v.SetDefault("upload.max_concurrent", 4)
	v.SetDefault("cors.allowed_origins", "*")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("log.file", "")

	timeout, err := time.ParseDuration(v.GetString("upstream.timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid upstream.timeout: %w", err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("upstream.timeout must be positive")
	}

	maxConcurrent := v.GetInt("upload.max_concurrent")
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}

	corsOrigins := parseList(v.GetString("cors.allowed_origins"))
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:      v.GetString("server.host"),
			Port:      v.GetInt("server.port"),
			StaticDir: v.GetString("server.static_dir"),
		},
		Zendesk: ZendeskConfig{
			Subdomain:   strings.TrimSpace(v.GetString("zendesk.subdomain")),
			BaseURL:     strings.TrimRight(strings.TrimSpace(v.GetString("zendesk.base_url")), "/"),
			Email:       strings.TrimSpace(v.GetString("zendesk.email")),
			Secret:      v.GetString("zendesk.secret"),
			UseAPIToken: v.GetBool("zendesk.use_api_token"),
		},
		Recaptcha: RecaptchaConfig{
			SiteKey:   strings.TrimSpace(v.GetString("recaptcha.site_key")),
			SecretKey: v.GetString("recaptcha.secret_key"),
			VerifyURL: v.GetString("recaptcha.verify_url"),
		},
		Upstream: UpstreamConfig{
			Timeout: timeout,
		},
		Upload: UploadConfig{
			MaxBodyBytes:       v.GetInt64("upload.max_body_bytes"),
			MaxMultipartMemory: v.GetInt64("upload.max_multipart_memory"),
			MaxConcurrent:      maxConcurrent,
		},
		CORS: CORSConfig{
			AllowedOrigins: corsOrigins,
		},
		Log: LogConfig{
			Level:       v.GetString("log.level"),
			Development: v.GetBool("log.development"),
			File:        v.GetString("log.file"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 检查必填配置，汇总所有缺失项一起返回
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, errors.New("server.port must be set to a valid port (SUPPORTDESK_SERVER_PORT or PORT)"))
	}
	if c.Zendesk.Subdomain == "" && c.Zendesk.BaseURL == "" {
		errs = append(errs, errors.New("zendesk.subdomain or zendesk.base_url is required (ZENDESK_SUBDOMAIN)"))
	}
	if c.Zendesk.Email == "" {
		errs = append(errs, errors.New("zendesk.email is required (ZENDESK_EMAIL)"))
	}
	if c.Zendesk.Secret == "" {
		errs = append(errs, errors.New("zendesk.secret is required (ZENDESK_PASSWORD)"))
	}
	if c.Recaptcha.SiteKey == "" {
		errs = append(errs, errors.New("recaptcha.site_key is required (RECAPTCHA_SITE_KEY)"))
	}
	if c.Recaptcha.SecretKey == "" {
		errs = append(errs, errors.New("recaptcha.secret_key is required (RECAPTCHA_SECRET_KEY)"))
	}
	if c.Recaptcha.VerifyURL == "" {
		errs = append(errs, errors.New("recaptcha.verify_url must not be empty"))
	}
	if c.Upload.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("upload.max_body_bytes must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// ZendeskBaseURL 返回工单系统 API 的基础地址
func (c *Config) ZendeskBaseURL() string {
	if c.Zendesk.BaseURL != "" {
		return c.Zendesk.BaseURL
	}
	return fmt.Sprintf("https://%s.zendesk.com", c.Zendesk.Subdomain)
}

// Addr 返回 HTTP 服务监听地址
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// parseList 将逗号分隔的字符串解析为字符串切片
func parseList(value string) []string {
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// loadEnvFile 尝试加载 .env 文件
//
// 注意：
//   - 如果文件不存在，静默失败（.env 是可选的）
//   - 已存在的环境变量优先级更高
func loadEnvFile() {
	if err := godotenv.Load(".env"); err == nil {
		return
	}

	parentEnv := filepath.Join("..", ".env")
	if _, err := os.Stat(parentEnv); err == nil {
		_ = godotenv.Load(parentEnv)
	}
}
