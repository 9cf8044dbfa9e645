package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yuimhosin/datadashboard/internal/model"
)

func TestChat_SendsFullHistoryAndReturnsRawBody(t *testing.T) {
	var got map[string][]model.Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/chat", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		data, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(data, &got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	turns := []model.Message{model.NewUserMessage("a"), model.NewAssistantMessage("b"), model.NewUserMessage("c")}
	raw, err := NewClient(srv.URL+"/").Chat(context.Background(), turns)
	require.NoError(t, err)
	require.Equal(t, `{"choices":[{"message":{"content":"ok"}}]}`, string(raw))
	require.Equal(t, turns, got["messages"])
}

func TestChat_NilHistorySendsEmptyArray(t *testing.T) {
	var raw string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		raw = string(data)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Chat(context.Background(), nil)
	require.NoError(t, err)
	require.JSONEq(t, `{"messages":[]}`, raw)
}

func TestChat_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"DeepSeek API key not configured"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Chat(context.Background(), []model.Message{model.NewUserMessage("q")})
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	require.Equal(t, "DeepSeek API key not configured", statusErr.Message)
}

func TestChat_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).Chat(context.Background(), []model.Message{model.NewUserMessage("q")})
	require.Error(t, err)
}

func TestCatalogEndpoints(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/sources":
			require.Equal(t, "經濟", r.URL.Query().Get("category"))
			_, _ = w.Write([]byte(`{"code":0,"message":"success","data":[{"id":"imf-data","qualityScore":96}]}`))
		case "/api/compliance":
			_, _ = w.Write([]byte(`{"code":0,"message":"success","data":[{"id":"exempt-personal","requirement":"Exempt"}]}`))
		case "/api/categories":
			_, _ = w.Write([]byte(`{"code":0,"message":"success","data":[{"label":"全部"}]}`))
		case "/health":
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()

	sources, err := c.Sources(ctx, "經濟")
	require.NoError(t, err)
	require.Equal(t, []model.DataSource{{ID: "imf-data", QualityScore: 96}}, sources)

	paths, err := c.Compliance(ctx)
	require.NoError(t, err)
	require.Equal(t, "Exempt", paths[0].Requirement)

	labels, err := c.Categories(ctx)
	require.NoError(t, err)
	require.Equal(t, "全部", labels[0].Label)

	require.NoError(t, c.Health(ctx))
}

func TestSources_APIErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":1501,"message":"未知的數據分類: x"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Sources(context.Background(), "x")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Contains(t, statusErr.Message, "未知的數據分類")
}
