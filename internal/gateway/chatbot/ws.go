package chatbot

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"bookstore-gateway/internal/upstream"
)

// upgrader WebSocket 升级器配置
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 网关和前端同源部署，握手请求不带跨域 Origin
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	wsReadLimit     = 4096
	wsReadDeadline  = 60 * time.Second
	wsWriteDeadline = 10 * time.Second
	wsPingInterval  = 30 * time.Second
)

// wsMessage 双向消息格式
//
// 客户端 -> 网关：{"type": "question", "question": "..."}、{"type": "ping"}
// 网关 -> 客户端：{"type": "answer", "answer": "..."}、
// {"type": "error", "error": "..."}、{"type": "pong"}
type wsMessage struct {
	Type     string `json:"type"`
	Question string `json:"question,omitempty"`
	Answer   string `json:"answer,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ServeWS 咨询长连接
//
// 路由: GET /ws/chat
//
// 一条连接内的问题逐条串行处理，回答按提问顺序返回。
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[chatbot] websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(wsReadLimit)
	conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
		return nil
	})

	// gorilla 的连接同一时刻只允许一个写入方，
	// ping 协程和应答共用一把写锁
	mu := &sync.Mutex{}
	done := make(chan struct{})
	defer close(done)
	go h.pingLoop(conn, mu, done)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[chatbot] websocket read: %v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsReadDeadline))

		var msg wsMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.writeWS(conn, mu, wsMessage{Type: "error", Error: "invalid message"})
			continue
		}

		switch msg.Type {
		case "ping":
			h.writeWS(conn, mu, wsMessage{Type: "pong"})
		case "question":
			h.answer(r, conn, mu, msg.Question)
		default:
			h.writeWS(conn, mu, wsMessage{Type: "error", Error: "unknown message type"})
		}
	}
}

// answer 转发问题并回推答案
func (h *Handler) answer(r *http.Request, conn *websocket.Conn, mu *sync.Mutex, question string) {
	if question == "" {
		h.writeWS(conn, mu, wsMessage{Type: "error", Error: "question is required"})
		return
	}
	if len(question) > maxQuestionLen {
		h.writeWS(conn, mu, wsMessage{Type: "error", Error: "question is too long"})
		return
	}

	answer, err := h.client.Ask(r.Context(), question)
	if err != nil {
		h.writeWS(conn, mu, wsMessage{Type: "error", Error: err.Error()})
		// 后端不可达时断开，让客户端走重连逻辑
		if upstream.StatusOf(err) == http.StatusBadGateway {
			conn.Close()
		}
		return
	}

	h.record(r, question, answer, "ws")
	h.writeWS(conn, mu, wsMessage{Type: "answer", Answer: answer})
}

// pingLoop 周期性发送协议层 ping 保活
func (h *Handler) pingLoop(conn *websocket.Conn, mu *sync.Mutex, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			mu.Lock()
			conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (h *Handler) writeWS(conn *websocket.Conn, mu *sync.Mutex, msg wsMessage) {
	mu.Lock()
	defer mu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[chatbot] websocket write: %v", err)
	}
}
