package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/yuimhosin/datadashboard/internal/config"
	"github.com/yuimhosin/datadashboard/internal/model"
)

const (
	// DeepSeek API Endpoint
	DeepSeekEndpoint = "https://api.deepseek.com/chat/completions"
	// Model Name
	DeepSeekModel = "deepseek-chat"

	// SystemPrompt 每次调用上游时附加在对话最前面的系统指令
	// 不属于对话记录，也不会返回给调用方
	SystemPrompt = "你是一個戰略數據治理和行業研究助手。你對全球公共數據、CAC數據出境法規以及AI在貿易和養老產業中的應用有深入的了解。請根據用戶的查詢提供專業、數據驅動的見解。"

	// 错误详情中保留的上游响应体长度
	maxErrorBody = 512
)

// ErrNotConfigured 未配置上游凭证，调用前即失败，不会发起网络请求
var ErrNotConfigured = errors.New("relay: api key not configured")

// ErrInvalidTurn 对话中出现了 user/assistant 之外的角色
var ErrInvalidTurn = errors.New("relay: invalid turn role")

// UpstreamError 调用上游失败
// 包括网络错误、非 2xx 状态码、非 JSON 响应体
// StatusCode 为 0 表示请求没有得到响应
type UpstreamError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("relay: upstream request failed: %v", e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("relay: upstream returned status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("relay: upstream returned status %d: %s", e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// upstreamRequest 上游请求体
// stream 必须显式序列化为 false
type upstreamRequest struct {
	Model    string          `json:"model"`
	Messages []model.Message `json:"messages"`
	Stream   bool            `json:"stream"`
}

// RelayOption 配置 RelayService
type RelayOption func(*RelayService)

// WithHTTPClient 替换发送请求使用的 HTTP 客户端
func WithHTTPClient(client *http.Client) RelayOption {
	return func(s *RelayService) {
		if client != nil {
			s.client = client
		}
	}
}

// WithEndpoint 替换上游地址
func WithEndpoint(endpoint string) RelayOption {
	return func(s *RelayService) {
		if endpoint = strings.TrimSpace(endpoint); endpoint != "" {
			s.endpoint = endpoint
		}
	}
}

// RelayService 无状态的对话转发服务
// 持有上游凭证，在每次调用时附加系统指令，原样返回上游响应
// 并发请求之间不共享可变状态
type RelayService struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewRelayService 创建 RelayService 实例
// 凭证为空时仍然可以创建，调用 Relay 时返回 ErrNotConfigured
func NewRelayService(cfg config.AIConfig, opts ...RelayOption) *RelayService {
	s := &RelayService{
		apiKey:   strings.TrimSpace(cfg.APIKey),
		endpoint: DeepSeekEndpoint,
		// 不设置超时，单次尽力调用，只受传输层默认行为限制
		client: &http.Client{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Configured 是否已配置上游凭证
func (s *RelayService) Configured() bool {
	return s.apiKey != ""
}

// Relay 将对话转发给上游模型
// 参数:
//   - ctx: 上下文，取消时中止上游请求
//   - turns: 按顺序排列的对话，只允许 user/assistant 角色
//
// 返回:
//   - json.RawMessage: 上游的原始 JSON 响应，不做任何字段提取或校验
//   - error: ErrNotConfigured、ErrInvalidTurn 或 *UpstreamError
func (s *RelayService) Relay(ctx context.Context, turns []model.Message) (json.RawMessage, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}

	body, err := s.buildRequest(turns)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: truncate(respBody)}
	}
	if !json.Valid(respBody) {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Err: errors.New("response is not valid JSON")}
	}

	return json.RawMessage(respBody), nil
}

// buildRequest 构造上游请求体：系统指令 + 对话
// 系统指令只存在于本次请求中，不会写回 turns
func (s *RelayService) buildRequest(turns []model.Message) ([]byte, error) {
	messages := make([]model.Message, 0, len(turns)+1)
	messages = append(messages, model.Message{Role: model.RoleSystem, Content: SystemPrompt})
	for i, t := range turns {
		if !t.Role.Valid() {
			return nil, fmt.Errorf("%w: turn %d has role %q", ErrInvalidTurn, i, t.Role)
		}
		messages = append(messages, t)
	}

	return json.Marshal(upstreamRequest{
		Model:    DeepSeekModel,
		Messages: messages,
		Stream:   false,
	})
}

func truncate(b []byte) string {
	if len(b) <= maxErrorBody {
		return string(b)
	}
	return string(b[:maxErrorBody]) + "..."
}
