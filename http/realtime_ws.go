package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 30 * time.Second
)

// handleLivePredict 实时预测通道：每条文本消息是一次RawInput，逐条应答
func (h *Handler) handleLivePredict(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	requestID := GetRequestID(r.Context())
	h.logger.Debug("live prediction client connected", zap.String("request_id", requestID))

	conn.SetReadLimit(h.maxMessageBytes)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	replies := make(chan interface{}, 1)
	done := make(chan struct{})
	go h.writePump(conn, replies, done)

	// send gives up once the writer has stopped.
	send := func(v interface{}) bool {
		select {
		case replies <- v:
			return true
		case <-done:
			return false
		}
	}

	defer func() {
		close(replies)
		<-done
		h.logger.Debug("live prediction client disconnected", zap.String("request_id", requestID))
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}

		var reply interface{}
		var body map[string]interface{}
		if err := json.Unmarshal(data, &body); err != nil {
			reply = errorResponse{Error: "invalid json: " + err.Error()}
		} else if resp, err := h.predictJSON(r, channelLive, body); err != nil {
			_, reply = classify(err)
		} else {
			reply = resp
		}
		if !send(reply) {
			return
		}
	}
}

// writePump 写入泵：串行发送应答并定时ping
func (h *Handler) writePump(conn *websocket.Conn, replies <-chan interface{}, done chan<- struct{}) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
		close(done)
	}()

	for {
		select {
		case reply, ok := <-replies:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(reply); err != nil {
				h.logger.Warn("websocket write error", zap.Error(err))
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
