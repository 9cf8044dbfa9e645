// Package router 创建 Gin 引擎并注册所有路由
package router

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/yuimhosin/datadashboard/internal/catalog"
	"github.com/yuimhosin/datadashboard/internal/config"
	"github.com/yuimhosin/datadashboard/internal/handler"
	"github.com/yuimhosin/datadashboard/internal/middleware"
	"github.com/yuimhosin/datadashboard/pkg/response"
)

// Deps 路由依赖的服务
type Deps struct {
	Relay   handler.Relayer
	Catalog *catalog.Catalog
}

// New 创建 Gin 引擎
// 生产模式下未命中的路径由静态文件目录提供（单页应用回退到 index.html），
// 开发模式下转发给前端开发服务器
func New(cfg *config.Config, deps Deps) (*gin.Engine, error) {
	if deps.Relay == nil {
		return nil, fmt.Errorf("router: relay must not be nil")
	}
	if deps.Catalog == nil {
		return nil, fmt.Errorf("router: catalog must not be nil")
	}

	router := gin.New()

	// 全局中间件
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.Server.CORS...)))

	registerRoutes(router, handler.NewChatHandler(deps.Relay), handler.NewCatalogHandler(deps.Catalog))

	fallback, err := frontendHandler(cfg.Server)
	if err != nil {
		return nil, err
	}
	router.NoRoute(func(c *gin.Context) {
		if isAPIPath(c.Request.URL.Path) {
			response.Fail(c, http.StatusNotFound, "not found")
			return
		}
		fallback(c)
	})

	return router, nil
}

// registerRoutes 注册所有路由
func registerRoutes(router *gin.Engine, chatHandler *handler.ChatHandler, catalogHandler *handler.CatalogHandler) {
	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.POST("/chat", chatHandler.Chat)
		api.GET("/sources", catalogHandler.ListSources)
		api.GET("/categories", catalogHandler.ListCategories)
		api.GET("/compliance", catalogHandler.ListCompliance)
	}
}

func isAPIPath(p string) bool {
	return p == "/api" || strings.HasPrefix(p, "/api/")
}

func frontendHandler(cfg config.ServerConfig) (gin.HandlerFunc, error) {
	if cfg.IsRelease() {
		return staticHandler(cfg.StaticDir), nil
	}
	return devProxyHandler(cfg.DevProxy)
}

// staticHandler 提供构建后的前端文件
// 文件不存在或请求的是目录时返回 index.html
func staticHandler(dir string) gin.HandlerFunc {
	root := http.Dir(dir)
	fileServer := http.FileServer(root)
	index := filepath.Join(dir, "index.html")

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			response.Fail(c, http.StatusNotFound, "not found")
			return
		}

		if f, err := root.Open(path.Clean("/" + c.Request.URL.Path)); err == nil {
			info, statErr := f.Stat()
			f.Close()
			if statErr == nil && !info.IsDir() {
				fileServer.ServeHTTP(c.Writer, c.Request)
				return
			}
		}
		c.File(index)
	}
}

// devProxyHandler 将请求转发到前端开发服务器
func devProxyHandler(target string) (gin.HandlerFunc, error) {
	u, err := url.Parse(target)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("router: invalid dev proxy target %q", target)
	}

	proxy := httputil.NewSingleHostReverseProxy(u)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("dev server unreachable")
		w.WriteHeader(http.StatusBadGateway)
	}

	return func(c *gin.Context) {
		proxy.ServeHTTP(c.Writer, c.Request)
	}, nil
}
