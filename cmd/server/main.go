// Package main 是服务端的入口点
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/yuimhosin/datadashboard/internal/catalog"
	"github.com/yuimhosin/datadashboard/internal/config"
	"github.com/yuimhosin/datadashboard/internal/logger"
	"github.com/yuimhosin/datadashboard/internal/router"
	"github.com/yuimhosin/datadashboard/internal/secrets"
	"github.com/yuimhosin/datadashboard/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Setup(cfg.Log)

	// 解析上游凭证（只在启动时读取一次）
	cfg.AI.APIKey = resolveAPIKey(cfg.AI)
	if cfg.AI.APIKey == "" {
		log.Warn().Msg("DEEPSEEK_API_KEY is not set, /api/chat will report a configuration error")
	}

	cat, err := catalog.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load catalog")
	}

	relayService := service.NewRelayService(cfg.AI)

	// 设置 Gin 模式
	if cfg.Server.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine, err := router.New(cfg, router.Deps{
		Relay:   relayService,
		Catalog: cat,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build router")
	}

	server := &http.Server{
		Addr:        cfg.Server.Addr(),
		Handler:     engine,
		ReadTimeout: cfg.Server.ReadTimeout,
		// 上游调用不设超时，写超时默认关闭
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Str("mode", cfg.Server.Mode).
			Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}

// resolveAPIKey 环境变量优先，其次读取 SSM 参数
// 读取失败只记录日志，不影响进程启动
func resolveAPIKey(cfg config.AIConfig) string {
	if cfg.APIKey != "" || cfg.APIKeyParam == "" {
		return cfg.APIKey
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := secrets.NewDefaultParamStore(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to create parameter store client")
		return ""
	}
	key, err := secrets.ResolveAPIKey(ctx, store, cfg.APIKey, cfg.APIKeyParam)
	if err != nil {
		log.Error().Err(err).Str("param", cfg.APIKeyParam).Msg("failed to load api key from parameter store")
		return ""
	}
	return key
}
