package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/kannada-chat/backend/internal/logger"
	"github.com/zhouzirui/kannada-chat/backend/internal/metrics"
	"github.com/zhouzirui/kannada-chat/backend/internal/model/chat"
	"github.com/zhouzirui/kannada-chat/backend/internal/service/ai"
	chatService "github.com/zhouzirui/kannada-chat/backend/internal/service/chat"
	"github.com/zhouzirui/kannada-chat/backend/internal/session"
	"github.com/zhouzirui/kannada-chat/backend/pkg/utils"
)

// Client-facing messages. Internal error details only go to the log.
const (
	msgInvalidJSON      = "Invalid JSON payload"
	msgNoMessage        = "No message provided"
	msgNotConfigured    = "AI provider not configured. Please contact the administrator."
	msgChatFailed       = "An error occurred while processing your message. Please try again."
	msgClearFailed      = "Failed to clear the conversation. Please try again."
	msgConversationGone = "Conversation cleared"
)

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc   *chatService.Service
	completer chatService.Completer
	metrics   *metrics.Metrics
}

// New 创建聊天处理器。completer 为 nil 表示模型未配置，/chat 将返回 503。
func New(chatSvc *chatService.Service, completer chatService.Completer, m *metrics.Metrics) *Handler {
	return &Handler{
		chatSvc:   chatSvc,
		completer: completer,
		metrics:   m,
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Post("/clear", h.handleClear)
	r.Get("/ws", h.handleWebSocket)
}

type chatRequest struct {
	Message  string          `json:"message"`
	Language json.RawMessage `json:"language"`
}

// language returns the requested tag. Only an absent key gets the default; null or a
// non-string value yields "" and therefore the English prompt.
func (p chatRequest) language() string {
	if p.Language == nil {
		return ai.DefaultRequestLanguage
	}
	var tag string
	_ = json.Unmarshal(p.Language, &tag)
	return tag
}

type chatResponse struct {
	Response string `json:"response"`
	Success  bool   `json:"success"`
}

// turnError carries the HTTP status and client message for a failed chat turn.
type turnError struct {
	status  int
	message string
	outcome string
}

// handleChat 处理一轮对话
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chatRequest
	raw, err := io.ReadAll(r.Body)
	if err == nil {
		// Unmarshal rejects trailing data after the JSON object.
		err = json.Unmarshal(raw, &payload)
	}
	if err != nil {
		h.metrics.ObserveChat("http", metrics.OutcomeBadRequest)
		utils.RespondError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	reply, terr := h.runTurn(r.Context(), payload)
	h.metrics.ObserveChat("http", terr.outcomeOrOK())
	if terr != nil {
		utils.RespondError(w, terr.status, terr.message)
		return
	}

	utils.RespondJSON(w, http.StatusOK, chatResponse{Response: reply, Success: true})
}

// runTurn validates the request and runs it through the conversation manager. It is shared
// by the HTTP and WebSocket transports so both apply the same error policy.
func (h *Handler) runTurn(ctx context.Context, payload chatRequest) (string, *turnError) {
	if strings.TrimSpace(payload.Message) == "" {
		return "", &turnError{status: http.StatusBadRequest, message: msgNoMessage, outcome: metrics.OutcomeBadRequest}
	}

	if h.completer == nil {
		return "", &turnError{status: http.StatusServiceUnavailable, message: msgNotConfigured, outcome: metrics.OutcomeUnavailable}
	}

	sessionID, ok := session.IDFromContext(ctx)
	if !ok {
		logger.Log.Error("[chat] request reached handler without a session id")
		return "", &turnError{status: http.StatusInternalServerError, message: msgChatFailed, outcome: metrics.OutcomeStoreError}
	}

	observed := &observedCompleter{next: h.completer, metrics: h.metrics}
	reply, err := h.chatSvc.Exchange(ctx, observed, sessionID, payload.language(), payload.Message)
	if err != nil {
		if errors.Is(err, chatService.ErrEmptyMessage) {
			return "", &turnError{status: http.StatusBadRequest, message: msgNoMessage, outcome: metrics.OutcomeBadRequest}
		}

		outcome := metrics.OutcomeStoreError
		if observed.failed {
			outcome = metrics.OutcomeProviderError
		}
		logger.ErrorWithFields("error in chat endpoint", logger.Fields{
			"session_id": sessionID,
			"outcome":    outcome,
			"error":      err.Error(),
		})
		return "", &turnError{status: http.StatusInternalServerError, message: msgChatFailed, outcome: outcome}
	}

	return reply, nil
}

func (e *turnError) outcomeOrOK() string {
	if e == nil {
		return metrics.OutcomeOK
	}
	return e.outcome
}

// handleClear 清空当前会话的历史
func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := session.IDFromContext(r.Context())
	if !ok {
		logger.Log.Error("[clear] request reached handler without a session id")
		h.metrics.ObserveReset(metrics.OutcomeStoreError)
		utils.RespondError(w, http.StatusInternalServerError, msgClearFailed)
		return
	}

	if err := h.chatSvc.Reset(r.Context(), sessionID); err != nil {
		logger.ErrorWithFields("error clearing conversation", logger.Fields{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		h.metrics.ObserveReset(metrics.OutcomeStoreError)
		utils.RespondError(w, http.StatusInternalServerError, msgClearFailed)
		return
	}

	h.metrics.ObserveReset(metrics.OutcomeOK)
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": msgConversationGone,
	})
}

// observedCompleter times provider calls and remembers whether the provider failed.
type observedCompleter struct {
	next    chatService.Completer
	metrics *metrics.Metrics
	failed  bool
}

func (c *observedCompleter) Complete(ctx context.Context, payload []chat.Message) (string, error) {
	start := time.Now()
	reply, err := c.next.Complete(ctx, payload)
	c.metrics.ObserveProvider(start)
	if err != nil {
		c.failed = true
	}
	return reply, err
}
