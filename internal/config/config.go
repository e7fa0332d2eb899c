package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 应用配置
type Config struct {
	Server ServerConfig `yaml:"server"`
	OpenAI OpenAIConfig `yaml:"openai"`
	Redis  RedisConfig  `yaml:"redis"`
	Usage  UsageConfig  `yaml:"usage"`
	CORS   CORSConfig   `yaml:"cors"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `yaml:"port"`
	Name string `yaml:"name"`
	Mode string `yaml:"mode"` // debug, release, test
}

// OpenAIConfig 模型服务配置
type OpenAIConfig struct {
	// APIKey 仅缓冲模式使用；流式模式由请求头携带
	APIKey           string  `yaml:"apiKey"`
	BaseURL          string  `yaml:"baseUrl"`
	Model            string  `yaml:"model"`
	Temperature      float64 `yaml:"temperature"`
	MaxTokens        int     `yaml:"maxTokens"`
	FirstByteTimeout string  `yaml:"firstByteTimeout"`
	RequestTimeout   string  `yaml:"requestTimeout"`
}

// RedisConfig Redis 配置（用量记录，可选）
type RedisConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Password    string `yaml:"password"`
	DB          int    `yaml:"db"`
	UsageKey    string `yaml:"usageKey"`
	UsageMaxLen int64  `yaml:"usageMaxLen"`
}

// UsageConfig 用量记录队列配置
type UsageConfig struct {
	QueueSize int `yaml:"queueSize"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `yaml:"allowOrigins"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string `yaml:"level"`    // debug, info, warn, error
	Encoding string `yaml:"encoding"` // json, console
}

const (
	DefaultBaseURL          = "https://api.openai.com/v1"
	DefaultModel            = "gpt-4o-mini"
	DefaultTemperature      = 0.7
	DefaultMaxTokens        = 1500
	DefaultFirstByteTimeout = 30 * time.Second
	DefaultRequestTimeout   = 120 * time.Second
)

// LoadConfig 加载配置文件
// 先加载 .env（可选），再读取 YAML，最后用环境变量覆盖
func LoadConfig(path string) (*Config, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	return Parse(data)
}

// Parse 解析 YAML 配置内容并应用环境变量与默认值
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置校验失败: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v, ok := lookupEnv("OPENAI_API_KEY"); ok {
		c.OpenAI.APIKey = v
	}
	if v, ok := lookupEnv("OPENAI_BASE_URL"); ok {
		c.OpenAI.BaseURL = v
	}
	if v, ok := lookupEnv("OPENAI_MODEL"); ok {
		c.OpenAI.Model = v
	}
	if v, ok := lookupEnv("PORT"); ok {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v, ok := lookupEnv("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	// REDIS_ADDR 形如 host:port，设置后自动启用 Redis 使用记录
	if v, ok := lookupEnv("REDIS_ADDR"); ok {
		if host, port, err := net.SplitHostPort(v); err == nil {
			if p, err := strconv.Atoi(port); err == nil {
				c.Redis.Host = host
				c.Redis.Port = p
				c.Redis.Enabled = true
			}
		}
	}
	if v, ok := lookupEnv("REDIS_PASSWORD"); ok {
		c.Redis.Password = v
	}
}

// lookupEnv 空值视为未设置
func lookupEnv(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = DefaultBaseURL
	}
	c.OpenAI.BaseURL = strings.TrimRight(c.OpenAI.BaseURL, "/")
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = DefaultModel
	}
	if c.OpenAI.Temperature == 0 {
		c.OpenAI.Temperature = DefaultTemperature
	}
	if c.OpenAI.MaxTokens == 0 {
		c.OpenAI.MaxTokens = DefaultMaxTokens
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
	if c.Redis.UsageKey == "" {
		c.Redis.UsageKey = "adminguide:usage"
	}
	if c.Redis.UsageMaxLen == 0 {
		c.Redis.UsageMaxLen = 10000
	}
	if c.Usage.QueueSize <= 0 {
		c.Usage.QueueSize = 1000
	}
	if len(c.CORS.AllowOrigins) == 0 {
		c.CORS.AllowOrigins = []string{"*"}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Encoding == "" {
		c.Log.Encoding = "json"
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port 无效: %d", c.Server.Port)
	}
	if c.OpenAI.MaxTokens < 0 {
		return errors.New("openai.maxTokens 不能为负数")
	}
	if c.OpenAI.Temperature < 0 || c.OpenAI.Temperature > 2 {
		return fmt.Errorf("openai.temperature 超出范围: %v", c.OpenAI.Temperature)
	}
	if _, err := c.OpenAI.FirstByte(); err != nil {
		return err
	}
	if _, err := c.OpenAI.Total(); err != nil {
		return err
	}
	if c.Redis.Enabled && c.Redis.Host == "" {
		return errors.New("redis.enabled 为 true 时必须设置 redis.host")
	}
	return nil
}

// RequireAPIKey 缓冲模式启动时校验进程级 API Key
func (c *Config) RequireAPIKey() error {
	if c.OpenAI.APIKey == "" {
		return errors.New("缺少 openai.apiKey（或环境变量 OPENAI_API_KEY）")
	}
	return nil
}

// FirstByte 首字节超时
func (o OpenAIConfig) FirstByte() (time.Duration, error) {
	return parseDuration("openai.firstByteTimeout", o.FirstByteTimeout, DefaultFirstByteTimeout)
}

// Total 整体调用超时
func (o OpenAIConfig) Total() (time.Duration, error) {
	return parseDuration("openai.requestTimeout", o.RequestTimeout, DefaultRequestTimeout)
}

func parseDuration(field, raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s 格式错误: %w", field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s 必须大于 0", field)
	}
	return d, nil
}
