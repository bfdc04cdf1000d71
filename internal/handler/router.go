package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/kannada-chat/backend/internal/handler/chat"
	"github.com/zhouzirui/kannada-chat/backend/internal/handler/health"
	"github.com/zhouzirui/kannada-chat/backend/internal/handler/page"
	"github.com/zhouzirui/kannada-chat/backend/internal/metrics"
	middlewarePkg "github.com/zhouzirui/kannada-chat/backend/internal/middleware"
	aiService "github.com/zhouzirui/kannada-chat/backend/internal/service/ai"
	chatService "github.com/zhouzirui/kannada-chat/backend/internal/service/chat"
	"github.com/zhouzirui/kannada-chat/backend/internal/session"
)

// NewRouter wires HTTP routes to core services. aiSvc may be nil when no provider is configured.
func NewRouter(chatSvc *chatService.Service, aiSvc *aiService.Service, cookies *session.Cookies, m *metrics.Metrics) (http.Handler, error) {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	pageHandler, err := page.New()
	if err != nil {
		return nil, err
	}

	// A nil *ai.Service must not become a non-nil interface.
	var completer chatService.Completer
	if aiSvc != nil {
		completer = aiSvc
	}
	chatHandler := chat.New(chatSvc, completer, m)

	pageHandler.RegisterRoutes(r)
	health.New().RegisterRoutes(r)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Group(func(sessioned chi.Router) {
		sessioned.Use(cookies.Middleware)
		chatHandler.RegisterRoutes(sessioned)
	})

	return r, nil
}
