package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const defaultServerURL = "http://localhost:3000"

// Settings CLI 配置
// 保存在 ~/.datadashboard/config.yaml，可以被环境变量 DASHBOARD_SERVER_URL 和 --server 覆盖
type Settings struct {
	Server ServerSettings `mapstructure:"server"`
	Log    LogSettings    `mapstructure:"log"`
}

// ServerSettings 服务器配置
type ServerSettings struct {
	URL string `mapstructure:"url"` // HTTP API 地址
}

// LogSettings 日志配置
type LogSettings struct {
	Level string `mapstructure:"level"`
}

// loadSettings 读取配置文件
// 配置目录不存在时自动创建，并写入默认配置
func loadSettings(v *viper.Viper) (*Settings, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("获取用户目录失败: %w", err)
	}

	configDir := filepath.Join(home, ".datadashboard")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("创建配置目录失败: %w", err)
	}

	v.SetConfigFile(filepath.Join(configDir, "config.yaml"))
	v.SetConfigType("yaml")
	v.SetEnvPrefix("DASHBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.url", defaultServerURL)
	v.SetDefault("log.level", "warn")

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("读取配置失败: %w", err)
			}
		}
		// 首次运行，写入默认配置，失败不影响使用
		_ = v.SafeWriteConfig()
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	s.Server.URL = strings.TrimRight(strings.TrimSpace(s.Server.URL), "/")
	if s.Server.URL == "" {
		s.Server.URL = defaultServerURL
	}
	return &s, nil
}
