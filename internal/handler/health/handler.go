package health

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/kannada-chat/backend/pkg/utils"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "Kannada Multilingual Chatbot"

// Handler health检查处理器
type Handler struct{}

// New 创建health处理器
func New() *Handler {
	return &Handler{}
}

// RegisterRoutes 注册health相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.handleHealth)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": ServiceName,
	})
}
