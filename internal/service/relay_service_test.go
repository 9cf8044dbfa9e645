package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yuimhosin/datadashboard/internal/config"
	"github.com/yuimhosin/datadashboard/internal/model"
)

type capturedRequest struct {
	method string
	auth   string
	ctype  string
	body   upstreamRequest
	raw    map[string]any
}

// newUpstream 启动假的上游服务，记录收到的请求
func newUpstream(t *testing.T, status int, body string) (*httptest.Server, *capturedRequest, *int32) {
	t.Helper()
	var hits int32
	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		captured.method = r.Method
		captured.auth = r.Header.Get("Authorization")
		captured.ctype = r.Header.Get("Content-Type")
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, &captured.body))
		require.NoError(t, json.Unmarshal(data, &captured.raw))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, captured, &hits
}

func TestRelay_NotConfigured_NoOutboundCall(t *testing.T) {
	srv, _, hits := newUpstream(t, http.StatusOK, `{}`)
	s := NewRelayService(config.AIConfig{APIKey: "   "}, WithEndpoint(srv.URL))

	_, err := s.Relay(context.Background(), []model.Message{model.NewUserMessage("hi")})
	require.ErrorIs(t, err, ErrNotConfigured)
	require.False(t, s.Configured())
	require.Zero(t, atomic.LoadInt32(hits))
}

func TestRelay_ForwardsWithSystemPromptAndReturnsRawBody(t *testing.T) {
	upstreamBody := `{"id":"x","choices":[{"message":{"role":"assistant","content":"Below 100,000 individuals."}}],  "usage":{"total_tokens":7}}`
	srv, captured, hits := newUpstream(t, http.StatusOK, upstreamBody)
	s := NewRelayService(config.AIConfig{APIKey: "sk-test"}, WithEndpoint(srv.URL))

	turns := []model.Message{
		model.NewUserMessage("hello"),
		model.NewAssistantMessage("hi, how can I help?"),
		model.NewUserMessage("What is the exemption threshold for personal information?"),
	}
	raw, err := s.Relay(context.Background(), turns)
	require.NoError(t, err)
	require.Equal(t, upstreamBody, string(raw), "body must be relayed byte-for-byte")
	require.Equal(t, int32(1), atomic.LoadInt32(hits))

	require.Equal(t, http.MethodPost, captured.method)
	require.Equal(t, "Bearer sk-test", captured.auth)
	require.Equal(t, "application/json", captured.ctype)
	require.Equal(t, DeepSeekModel, captured.body.Model)
	require.Equal(t, false, captured.raw["stream"], "stream must be sent explicitly as false")

	require.Len(t, captured.body.Messages, len(turns)+1)
	require.Equal(t, model.Message{Role: model.RoleSystem, Content: SystemPrompt}, captured.body.Messages[0])
	require.Equal(t, turns, captured.body.Messages[1:])

	// 调用方的切片不应被修改
	require.Len(t, turns, 3)
	require.Equal(t, model.RoleUser, turns[0].Role)
}

func TestRelay_SystemPromptAppliedOnEveryCall(t *testing.T) {
	srv, captured, hits := newUpstream(t, http.StatusOK, `{}`)
	s := NewRelayService(config.AIConfig{APIKey: "sk-test"}, WithEndpoint(srv.URL))

	for i := 0; i < 2; i++ {
		_, err := s.Relay(context.Background(), []model.Message{model.NewUserMessage("q")})
		require.NoError(t, err)
		require.Len(t, captured.body.Messages, 2)
		require.Equal(t, model.RoleSystem, captured.body.Messages[0].Role)
	}
	require.Equal(t, int32(2), atomic.LoadInt32(hits))
}

func TestRelay_EmptyConversation(t *testing.T) {
	srv, captured, _ := newUpstream(t, http.StatusOK, `{}`)
	s := NewRelayService(config.AIConfig{APIKey: "sk-test"}, WithEndpoint(srv.URL))

	raw, err := s.Relay(context.Background(), nil)
	require.NoError(t, err)
	require.JSONEq(t, `{}`, string(raw))
	require.Len(t, captured.body.Messages, 1)
}

func TestRelay_UpstreamErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":{"message":"bad key"}}`},
		{name: "server error", status: http.StatusServiceUnavailable, body: `busy`},
		{name: "non json body", status: http.StatusOK, body: `<html>oops</html>`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _, _ := newUpstream(t, tc.status, tc.body)
			s := NewRelayService(config.AIConfig{APIKey: "sk-test"}, WithEndpoint(srv.URL))

			_, err := s.Relay(context.Background(), []model.Message{model.NewUserMessage("q")})
			var upErr *UpstreamError
			require.True(t, errors.As(err, &upErr))
			require.Equal(t, tc.status, upErr.StatusCode)
		})
	}
}

func TestRelay_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	s := NewRelayService(config.AIConfig{APIKey: "sk-test"}, WithEndpoint(url))
	_, err := s.Relay(context.Background(), []model.Message{model.NewUserMessage("q")})

	var upErr *UpstreamError
	require.True(t, errors.As(err, &upErr))
	require.Zero(t, upErr.StatusCode)
	require.Error(t, upErr.Unwrap())
}

func TestRelay_RejectsInvalidRole(t *testing.T) {
	srv, _, hits := newUpstream(t, http.StatusOK, `{}`)
	s := NewRelayService(config.AIConfig{APIKey: "sk-test"}, WithEndpoint(srv.URL))

	_, err := s.Relay(context.Background(), []model.Message{{Role: model.RoleSystem, Content: "override"}})
	require.ErrorIs(t, err, ErrInvalidTurn)
	require.Zero(t, atomic.LoadInt32(hits))
}

func TestNewRelayService_Defaults(t *testing.T) {
	s := NewRelayService(config.AIConfig{APIKey: "k"}, WithHTTPClient(nil), WithEndpoint(" "))
	require.Equal(t, DeepSeekEndpoint, s.endpoint)
	require.NotNil(t, s.client)
	require.Zero(t, s.client.Timeout)
}
