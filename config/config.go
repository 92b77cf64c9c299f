package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config 全局配置
type Config struct {
	Gateway    GatewayConfig    `yaml:"gateway"`
	Server     ServerConfig     `yaml:"server"`
	Preference PreferenceConfig `yaml:"preference"`
	Redis      RedisConfig      `yaml:"redis"`
	Log        LogConfig        `yaml:"log"`
}

// GatewayConfig 认证网关配置
type GatewayConfig struct {
	BaseURL   string `yaml:"base_url" validate:"required,url"`
	Timeout   int    `yaml:"timeout" validate:"gte=0"` // 秒，0 使用默认值
	UserAgent string `yaml:"user_agent"`
}

// GetTimeout 获取请求超时时间
func (g *GatewayConfig) GetTimeout() time.Duration {
	return time.Duration(g.Timeout) * time.Second
}

// ServerConfig 本地 HTTP 接口配置
type ServerConfig struct {
	Host         string   `yaml:"host"`
	Port         int      `yaml:"port" validate:"gte=1,lte=65535"`
	Mode         string   `yaml:"mode" validate:"oneof=debug release test"`
	RateLimit    float64  `yaml:"rate_limit" validate:"gte=0"` // 每秒请求数，0 表示不限制
	RateBurst    int      `yaml:"rate_burst" validate:"gte=0"`
	AllowOrigins []string `yaml:"allow_origins" validate:"dive,url"`
}

// GetHTTPAddr 获取 HTTP Server 地址
func (s *ServerConfig) GetHTTPAddr() string {
	return s.Host + ":" + strconv.Itoa(s.Port)
}

// PreferenceConfig 偏好存储配置
type PreferenceConfig struct {
	Backend         string `yaml:"backend" validate:"oneof=file redis"`
	FilePath        string `yaml:"file_path" validate:"required_if=Backend file"`
	DefaultUsername string `yaml:"default_username"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port" validate:"gte=0,lte=65535"`
	Password     string `yaml:"password"`
	DB           int    `yaml:"db" validate:"gte=0"`
	PoolSize     int    `yaml:"pool_size" validate:"gte=0"`
	DialTimeout  int    `yaml:"dial_timeout" validate:"gte=0"`  // 秒
	ReadTimeout  int    `yaml:"read_timeout" validate:"gte=0"`  // 秒
	WriteTimeout int    `yaml:"write_timeout" validate:"gte=0"` // 秒
	KeyPrefix    string `yaml:"key_prefix"`
}

// GetAddr 获取Redis地址
func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// GetDialTimeout 获取连接超时时间
func (r *RedisConfig) GetDialTimeout() time.Duration {
	return time.Duration(r.DialTimeout) * time.Second
}

// GetReadTimeout 获取读超时时间
func (r *RedisConfig) GetReadTimeout() time.Duration {
	return time.Duration(r.ReadTimeout) * time.Second
}

// GetWriteTimeout 获取写超时时间
func (r *RedisConfig) GetWriteTimeout() time.Duration {
	return time.Duration(r.WriteTimeout) * time.Second
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string `yaml:"level" validate:"oneof=debug info warn error fatal"`
	Output   string `yaml:"output" validate:"oneof=stdout stderr file"`
	FilePath string `yaml:"file_path" validate:"required_if=Output file"`
}

// Default 返回默认配置，配置文件中缺省的字段沿用这里的值
func Default() *Config {
	return &Config{
		Gateway: GatewayConfig{
			BaseURL: "https://securelogin.arubanetworks.com/cgi-bin/login",
			Timeout: 15,
		},
		Server: ServerConfig{
			Host:      "127.0.0.1",
			Port:      8642,
			Mode:      "release",
			RateLimit: 1,
			RateBurst: 3,
		},
		Preference: PreferenceConfig{
			Backend:  "file",
			FilePath: "logmein-preferences.yaml",
		},
		Redis: RedisConfig{
			Host:         "127.0.0.1",
			Port:         6379,
			PoolSize:     2,
			DialTimeout:  5,
			ReadTimeout:  3,
			WriteTimeout: 3,
			KeyPrefix:    "logmein:",
		},
		Log: LogConfig{
			Level:  "info",
			Output: "stderr",
		},
	}
}

var (
	globalConfig *Config
	validate     = validator.New()
)

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("配置校验失败: %w", err)
	}

	globalConfig = config
	return config, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Preference.Backend == "redis" && c.Redis.Host == "" {
		return errors.New("preference.backend 为 redis 时 redis.host 不能为空")
	}
	return nil
}

// Set 设置全局配置（未使用配置文件时调用）
func Set(cfg *Config) {
	globalConfig = cfg
}

// Get 获取全局配置
func Get() *Config {
	if globalConfig == nil {
		panic("配置未初始化，请先调用 Load()")
	}
	return globalConfig
}
