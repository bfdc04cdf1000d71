package utils

import (
	"encoding/json"
	"net/http"

	"github.com/zhouzirui/kannada-chat/backend/internal/logger"
)

// RespondJSON 发送JSON响应
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.Errorf("failed to encode response: %v", err)
	}
}

// RespondError 发送错误响应，统一携带 success=false。
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorBody(message))
}

// ErrorBody 构造错误响应体，HTTP 与 WebSocket 共用。
func ErrorBody(message string) map[string]any {
	return map[string]any{"error": message, "success": false}
}
