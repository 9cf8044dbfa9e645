// Package config 负责加载和管理应用程序的配置
// 使用 viper 库支持 YAML 配置文件和环境变量覆盖，
// 启动时先通过 godotenv 加载 .env 文件中的环境变量
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 运行模式
const (
	ModeDebug   = "debug"   // 开发模式：未命中的路径转发到前端开发服务器
	ModeRelease = "release" // 生产模式：直接提供构建后的静态文件
)

// Config 是应用程序的根配置结构
// 启动时构建一次，之后只读，按值传入各个组件
type Config struct {
	Server ServerConfig `mapstructure:"server"` // 服务器配置
	Log    LogConfig    `mapstructure:"log"`    // 日志配置
	AI     AIConfig     `mapstructure:"ai"`     // AI 服务配置
}

// ServerConfig 服务器相关配置
type ServerConfig struct {
	Host            string        `mapstructure:"host"`             // 监听地址，默认 0.0.0.0
	Port            int           `mapstructure:"port"`             // 监听端口，默认 3000
	Mode            string        `mapstructure:"mode"`             // 运行模式: debug / release
	StaticDir       string        `mapstructure:"static_dir"`       // 生产模式下的静态文件目录
	DevProxy        string        `mapstructure:"dev_proxy"`        // 开发模式下的前端开发服务器地址
	CORS            []string      `mapstructure:"cors"`             // CORS 允许的域名
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`     // 读取请求超时
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`    // 写响应超时，0 表示不限制
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"` // 优雅关闭的等待时间
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug/info/warn/error
	Format string `mapstructure:"format"` // 日志格式: json/console
}

// AIConfig AI 服务配置
type AIConfig struct {
	APIKey      string `mapstructure:"api_key"`       // DeepSeek API Key
	APIKeyParam string `mapstructure:"api_key_param"` // 可选：保存 API Key 的 SSM 参数名
}

// Addr 返回监听地址
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsRelease 是否为生产模式
func (s ServerConfig) IsRelease() bool {
	return s.Mode == ModeRelease
}

// Load 从指定路径加载配置文件
// 支持 .env 文件和环境变量覆盖配置项
// API Key 缺失不会导致加载失败，由转发接口在每次请求时检查
// 参数:
//   - configPath: 配置文件目录路径 (如 "./configs")
//
// 返回:
//   - *Config: 配置对象
//   - error: 如果加载失败则返回错误
func Load(configPath string) (*Config, error) {
	// 加载 .env，已存在的环境变量不会被覆盖
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)

	v.AutomaticEnv()
	// 例如: SERVER_PORT -> server.port
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	bindEnvVariables(v)
	setDefaults(v)

	// 读取配置文件（如果不存在则使用默认值和环境变量）
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.AI.APIKey = strings.TrimSpace(c.AI.APIKey)
	c.AI.APIKeyParam = strings.TrimSpace(c.AI.APIKeyParam)
	c.Server.Mode = strings.ToLower(strings.TrimSpace(c.Server.Mode))

	switch c.Server.Mode {
	case ModeDebug, ModeRelease:
	default:
		return fmt.Errorf("config: invalid server mode %q", c.Server.Mode)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid server port %d", c.Server.Port)
	}
	return nil
}

// bindEnvVariables 绑定环境变量到配置项
func bindEnvVariables(v *viper.Viper) {
	// 服务器配置
	v.BindEnv("server.host", "SERVER_HOST")
	v.BindEnv("server.port", "SERVER_PORT", "PORT")
	v.BindEnv("server.mode", "SERVER_MODE")
	v.BindEnv("server.static_dir", "STATIC_DIR")
	v.BindEnv("server.dev_proxy", "DEV_PROXY")

	// 日志配置
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.format", "LOG_FORMAT")

	// AI 配置
	v.BindEnv("ai.api_key", "DEEPSEEK_API_KEY")
	v.BindEnv("ai.api_key_param", "DEEPSEEK_API_KEY_PARAM")
}

// setDefaults 设置配置项的默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.mode", ModeDebug)
	v.SetDefault("server.static_dir", "dist")
	v.SetDefault("server.dev_proxy", "http://localhost:5173")
	v.SetDefault("server.cors", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "0s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
