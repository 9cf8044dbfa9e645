// Package conversation 保存一次会话中的对话记录
// 记录只存在于内存中，生命周期与会话相同，不做任何持久化
package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/yuimhosin/datadashboard/internal/model"
)

// 固定的兜底回复
const (
	// FallbackNoResponse 上游返回成功但没有可用的回复内容
	FallbackNoResponse = "無法生成響應。"
	// FallbackConnectionError 转发失败（网络错误、非 2xx 状态码、响应不是 JSON）
	FallbackConnectionError = "連接 AI 服務出錯。"
)

var (
	// ErrEmptyInput 输入为空或只包含空白字符，不做任何处理
	ErrEmptyInput = errors.New("conversation: empty input")
	// ErrPending 上一次提交尚未完成，本次提交被拒绝（不排队）
	ErrPending = errors.New("conversation: a reply is still pending")
)

// Relayer 将完整对话发送给转发服务，返回上游的原始响应
type Relayer interface {
	Chat(ctx context.Context, turns []model.Message) (json.RawMessage, error)
}

// Option 配置 Store
type Option func(*Store)

// WithOnChange 注册对话记录或等待状态变化时的回调
// 回调在锁外调用，可以安全地读取 Store
func WithOnChange(fn func()) Option {
	return func(s *Store) {
		if fn != nil {
			s.onChange = append(s.onChange, fn)
		}
	}
}

// Store 对话记录
// 同一时间最多只有一个转发请求在进行，pending 是唯一的并发控制
type Store struct {
	relay    Relayer
	onChange []func()

	mu       sync.Mutex
	messages []model.Message
	pending  bool
}

// NewStore 创建空的对话记录
func NewStore(relay Relayer, opts ...Option) *Store {
	s := &Store{relay: relay}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit 提交一条用户消息并等待回复
//
// 空白输入返回 ErrEmptyInput，等待中返回 ErrPending，两种情况都不会修改记录。
// 否则立即追加用户消息并进入等待状态，随后把完整对话发给转发服务，
// 无论结果如何都会追加且只追加一条助手消息，并解除等待状态。
func (s *Store) Submit(ctx context.Context, text string) (reply model.Message, err error) {
	if strings.TrimSpace(text) == "" {
		return model.Message{}, ErrEmptyInput
	}

	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return model.Message{}, ErrPending
	}
	s.messages = append(s.messages, model.NewUserMessage(text))
	s.pending = true
	history := s.snapshot()
	s.mu.Unlock()
	s.notify()

	// relay 发生 panic 时也会以连接错误结束本轮
	reply = model.NewAssistantMessage(FallbackConnectionError)
	defer func() { s.finish(reply) }()

	reply = s.requestReply(ctx, history)
	return reply, nil
}

// Messages 返回对话记录的副本
func (s *Store) Messages() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Len 对话记录条数
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// Pending 是否正在等待回复
func (s *Store) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

func (s *Store) requestReply(ctx context.Context, history []model.Message) model.Message {
	raw, err := s.relay.Chat(ctx, history)
	if err != nil {
		log.Debug().Err(err).Msg("relay request failed")
		return model.NewAssistantMessage(FallbackConnectionError)
	}
	return replyFrom(raw)
}

// replyFrom 从上游响应中取出 choices[0].message.content
func replyFrom(raw json.RawMessage) model.Message {
	if !json.Valid(raw) {
		return model.NewAssistantMessage(FallbackConnectionError)
	}

	var resp openai.ChatCompletionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return model.NewAssistantMessage(FallbackNoResponse)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return model.NewAssistantMessage(FallbackNoResponse)
	}
	return model.NewAssistantMessage(resp.Choices[0].Message.Content)
}

func (s *Store) finish(reply model.Message) {
	s.mu.Lock()
	s.messages = append(s.messages, reply)
	s.pending = false
	s.mu.Unlock()
	s.notify()
}

// snapshot 调用方必须持有锁
func (s *Store) snapshot() []model.Message {
	out := make([]model.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Store) notify() {
	for _, fn := range s.onChange {
		fn()
	}
}
