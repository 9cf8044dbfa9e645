package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/yuimhosin/datadashboard/internal/catalog"
	"github.com/yuimhosin/datadashboard/internal/config"
	"github.com/yuimhosin/datadashboard/internal/model"
)

type stubRelayer struct{}

func (stubRelayer) Relay(_ context.Context, _ []model.Message) (json.RawMessage, error) {
	return json.RawMessage(`{"choices":[]}`), nil
}

func newConfig(mode string) *config.Config {
	return &config.Config{Server: config.ServerConfig{
		Mode:     mode,
		DevProxy: "http://localhost:5173",
		CORS:     []string{"http://localhost:5173"},
	}}
}

func serve(t *testing.T, r http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	var body *strings.Reader
	if method == http.MethodPost {
		body = strings.NewReader(`{"messages":[{"role":"user","content":"hi"}]}`)
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestNew_ValidatesDeps(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_, err := New(newConfig(config.ModeDebug), Deps{Catalog: catalog.MustLoad()})
	require.Error(t, err)
	_, err = New(newConfig(config.ModeDebug), Deps{Relay: stubRelayer{}})
	require.Error(t, err)
}

func TestNew_InvalidDevProxy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := newConfig(config.ModeDebug)
	cfg.Server.DevProxy = "not a url"
	_, err := New(cfg, Deps{Relay: stubRelayer{}, Catalog: catalog.MustLoad()})
	require.Error(t, err)
}

func TestAPIRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r, err := New(newConfig(config.ModeDebug), Deps{Relay: stubRelayer{}, Catalog: catalog.MustLoad()})
	require.NoError(t, err)

	w := serve(t, r, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = serve(t, r, http.MethodPost, "/api/chat")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, `{"choices":[]}`, w.Body.String())
	require.NotEmpty(t, w.Header().Get("X-Request-Id"))

	w = serve(t, r, http.MethodGet, "/api/compliance")
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(t, r, http.MethodGet, "/api/unknown")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.JSONEq(t, `{"error":"not found"}`, w.Body.String())
}

func TestReleaseMode_ServesStaticWithSPAFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "app.js"), []byte("console.log(1)"), 0o600))

	cfg := newConfig(config.ModeRelease)
	cfg.Server.StaticDir = dir
	r, err := New(cfg, Deps{Relay: stubRelayer{}, Catalog: catalog.MustLoad()})
	require.NoError(t, err)

	w := serve(t, r, http.MethodGet, "/assets/app.js")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "console.log(1)", w.Body.String())

	for _, p := range []string{"/", "/compliance", "/assets"} {
		w = serve(t, r, http.MethodGet, p)
		require.Equal(t, http.StatusOK, w.Code, p)
		require.Equal(t, "<html>app</html>", w.Body.String(), p)
	}

	w = serve(t, r, http.MethodPost, "/compliance")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDebugMode_ProxiesToDevServer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var gotPath string
	dev := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("vite"))
	}))
	defer dev.Close()

	cfg := newConfig(config.ModeDebug)
	cfg.Server.DevProxy = dev.URL
	r, err := New(cfg, Deps{Relay: stubRelayer{}, Catalog: catalog.MustLoad()})
	require.NoError(t, err)

	w := serve(t, r, http.MethodGet, "/src/main.tsx")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "vite", w.Body.String())
	require.Equal(t, "/src/main.tsx", gotPath)
}

func TestDebugMode_DevServerDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dev := httptest.NewServer(http.NotFoundHandler())
	url := dev.URL
	dev.Close()

	cfg := newConfig(config.ModeDebug)
	cfg.Server.DevProxy = url
	r, err := New(cfg, Deps{Relay: stubRelayer{}, Catalog: catalog.MustLoad()})
	require.NoError(t, err)

	w := serve(t, r, http.MethodGet, "/")
	require.Equal(t, http.StatusBadGateway, w.Code)
}
