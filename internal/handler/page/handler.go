package page

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/kannada-chat/backend/internal/logger"
	"github.com/zhouzirui/kannada-chat/backend/internal/service/ai"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Handler serves the chat page and its static assets.
type Handler struct {
	index  *template.Template
	static http.Handler
}

type indexData struct {
	Languages       []string
	DefaultLanguage string
}

// New parses the embedded templates.
func New() (*Handler, error) {
	index, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, err
	}

	assets, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}

	return &Handler{
		index:  index,
		static: http.StripPrefix("/static/", http.FileServer(http.FS(assets))),
	}, nil
}

// RegisterRoutes 注册页面相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Get("/static/*", h.static.ServeHTTP)
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := h.index.Execute(&buf, indexData{
		Languages:       ai.Languages(),
		DefaultLanguage: ai.DefaultRequestLanguage,
	})
	if err != nil {
		logger.Log.Errorf("[page] render index: %v", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
