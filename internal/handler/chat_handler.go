package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/yuimhosin/datadashboard/internal/middleware"
	"github.com/yuimhosin/datadashboard/internal/model"
	"github.com/yuimhosin/datadashboard/internal/service"
	"github.com/yuimhosin/datadashboard/pkg/response"
)

// 返回给前端的固定错误描述
const (
	ErrMsgInvalidBody    = "invalid request body"
	ErrMsgNotConfigured  = "DeepSeek API key not configured"
	ErrMsgUpstreamFailed = "Failed to fetch from DeepSeek"
)

// Relayer 转发对话到上游模型
type Relayer interface {
	Relay(ctx context.Context, turns []model.Message) (json.RawMessage, error)
}

// ChatRequest 对话转发请求
type ChatRequest struct {
	Messages []model.Message `json:"messages" binding:"required,dive"`
}

type ChatHandler struct {
	relay Relayer
}

func NewChatHandler(relay Relayer) *ChatHandler {
	return &ChatHandler{relay: relay}
}

// Chat 处理 POST /api/chat
// 成功时原样返回上游 JSON；失败时返回 {error}，上游错误细节只写日志
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, ErrMsgInvalidBody)
		return
	}

	raw, err := h.relay.Relay(c.Request.Context(), req.Messages)
	switch {
	case err == nil:
		response.Raw(c, http.StatusOK, raw)
	case errors.Is(err, service.ErrNotConfigured):
		log.Error().Str("request_id", middleware.GetRequestID(c)).Msg("DeepSeek API key not configured")
		response.Fail(c, http.StatusInternalServerError, ErrMsgNotConfigured)
	case errors.Is(err, service.ErrInvalidTurn):
		response.Fail(c, http.StatusBadRequest, ErrMsgInvalidBody)
	default:
		log.Error().Err(err).
			Str("request_id", middleware.GetRequestID(c)).
			Int("turns", len(req.Messages)).
			Msg("DeepSeek API error")
		response.Fail(c, http.StatusInternalServerError, ErrMsgUpstreamFailed)
	}
}
