package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zhouzirui/kannada-chat/backend/internal/logger"
	"github.com/zhouzirui/kannada-chat/backend/internal/metrics"
	"github.com/zhouzirui/kannada-chat/backend/internal/session"
	"github.com/zhouzirui/kannada-chat/backend/pkg/utils"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsPingInterval = 54 * time.Second
	wsWriteTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// handleWebSocket 在一条连接上处理多轮对话。每个入站帧等价于一次 /chat 请求。
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := session.IDFromContext(r.Context())
	if !ok {
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}

	// The session middleware may have just minted the cookie; carry it on the 101 response.
	var responseHeader http.Header
	if cookies := w.Header().Values("Set-Cookie"); len(cookies) > 0 {
		responseHeader = http.Header{"Set-Cookie": cookies}
	}

	conn, err := upgrader.Upgrade(w, r, responseHeader)
	if err != nil {
		logger.Log.Warnf("[websocket] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	logger.Log.Debugf("[websocket] new connection for session: %s", sessionID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	go pingLoop(ctx, conn)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Log.Warnf("[websocket] read error: %v", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		var payload chatRequest
		if err := json.Unmarshal(raw, &payload); err != nil {
			h.metrics.ObserveChat("ws", metrics.OutcomeBadRequest)
			writeFrame(conn, utils.ErrorBody(msgInvalidJSON))
			continue
		}

		reply, terr := h.runTurn(ctx, payload)
		h.metrics.ObserveChat("ws", terr.outcomeOrOK())
		if terr != nil {
			writeFrame(conn, utils.ErrorBody(terr.message))
			continue
		}
		writeFrame(conn, chatResponse{Response: reply, Success: true})
	}
}

func writeFrame(conn *websocket.Conn, payload any) {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteJSON(payload); err != nil {
		logger.Log.Warnf("[websocket] write failed: %v", err)
	}
}

// pingLoop 定期发送ping消息。WriteControl 可与 WriteJSON 并发调用。
func pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}
		}
	}
}
