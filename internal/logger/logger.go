// Package logger 初始化全局 zerolog 日志
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yuimhosin/datadashboard/internal/config"
)

// Setup 根据配置初始化全局日志
// format 为 console 时输出便于阅读的彩色日志，否则输出 JSON
// 返回配置好的 Logger，同时替换 log.Logger，使 log.Info() 等可以在任何地方使用
func Setup(cfg config.LogConfig) zerolog.Logger {
	return setup(cfg, os.Stdout)
}

func setup(cfg config.LogConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	w := out
	if strings.EqualFold(cfg.Format, "console") {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	l := zerolog.New(w).Level(level).With().Timestamp().Logger()
	log.Logger = l
	return l
}
