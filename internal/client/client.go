// Package client 封装与仪表盘服务端的 HTTP API 交互
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/yuimhosin/datadashboard/internal/catalog"
	"github.com/yuimhosin/datadashboard/internal/model"
)

// Client API 客户端
// baseURL: 例如 http://localhost:3000
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient 创建 API 客户端
// 对话请求只发送一次，不设置额外的超时
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// StatusError 服务端返回了非 2xx 状态码
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Message)
}

// --- 通用响应 ---
type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type errorBody struct {
	Error string `json:"error"`
}

type chatRequest struct {
	Messages []model.Message `json:"messages"`
}

// Chat 将完整对话发送给 /api/chat，返回服务端原样转发的上游响应
func (c *Client) Chat(ctx context.Context, turns []model.Message) (json.RawMessage, error) {
	if turns == nil {
		turns = []model.Message{}
	}
	body, err := c.post(ctx, "/api/chat", chatRequest{Messages: turns})
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// Sources 获取数据源列表
func (c *Client) Sources(ctx context.Context, category string) ([]model.DataSource, error) {
	path := "/api/sources"
	if category != "" {
		path += "?category=" + url.QueryEscape(category)
	}
	var out []model.DataSource
	if err := c.getData(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Categories 获取分类筛选标签
func (c *Client) Categories(ctx context.Context) ([]catalog.CategoryLabel, error) {
	var out []catalog.CategoryLabel
	if err := c.getData(ctx, "/api/categories", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Compliance 获取合规路径表
func (c *Client) Compliance(ctx context.Context) ([]model.CompliancePath, error) {
	var out []model.CompliancePath
	if err := c.getData(ctx, "/api/compliance", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Health 检查服务端是否可用
func (c *Client) Health(ctx context.Context) error {
	_, err := c.get(ctx, "/health")
	return err
}

// --- 通用请求封装 ---
func (c *Client) getData(ctx context.Context, path string, out interface{}) error {
	body, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("解析响应失败: %w", err)
	}
	if resp.Code != 0 {
		return fmt.Errorf("API 错误: %s", resp.Message)
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("解析响应数据失败: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) post(ctx context.Context, path string, body interface{}) ([]byte, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
	}
	return respBody, nil
}

// errorMessage 从错误响应中提取描述，兼容 {error} 和 {code, message} 两种格式
func errorMessage(body []byte) string {
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil && eb.Error != "" {
		return eb.Error
	}
	var ar apiResponse
	if json.Unmarshal(body, &ar) == nil && ar.Message != "" {
		return ar.Message
	}
	return ""
}
