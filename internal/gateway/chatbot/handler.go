// Package chatbot 购书咨询助手的网关接口
//
// 问答本身由后端的咨询服务完成，网关负责三件事：
// 转发问题、把问答对旁路写入转录存储、提供 WebSocket 长连接形式。
package chatbot

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"bookstore-gateway/internal/gateway/auth"
	"bookstore-gateway/internal/shared/chatlog"
	"bookstore-gateway/internal/upstream"
)

// maxQuestionLen 单个问题的长度上限（按字节）
const maxQuestionLen = 2000

// Handler 咨询助手处理器
type Handler struct {
	client   *upstream.Client
	recorder chatlog.Recorder

	// OnQuestion 按转发渠道（http/ws）计数，可为 nil
	OnQuestion func(transport string)
}

// NewHandler 创建咨询助手处理器
//
// recorder 为 nil 时不记录转录。
func NewHandler(client *upstream.Client, recorder chatlog.Recorder) *Handler {
	if recorder == nil {
		recorder = chatlog.NopRecorder{}
	}
	return &Handler{client: client, recorder: recorder}
}

// RegisterRoutes 注册 REST 路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/chatbot", h.Ask)
	mux.HandleFunc("GET /api/chatbot/history", auth.RequireUser(h.History))
}

// RegisterWSRoutes 注册 WebSocket 路由
//
// 单独注册：长连接要挂在指标中间件外面，
// 包装过的 ResponseWriter 不支持 http.Hijacker。
func (h *Handler) RegisterWSRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws/chat", h.ServeWS)
}

// Ask 单次问答
//
// 咨询对匿名访客开放，登录用户的问答会带上后端凭证，
// 咨询服务可以据此给出个性化推荐。
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}
	if len(question) > maxQuestionLen {
		writeError(w, http.StatusBadRequest, "question is too long")
		return
	}

	answer, err := h.client.Ask(r.Context(), question)
	if err != nil {
		writeError(w, upstream.StatusOf(err), err.Error())
		return
	}

	h.record(r, question, answer, "http")
	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

// History 当前会话最近的问答记录
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	s := auth.SessionFrom(r.Context())
	entries, err := h.recorder.Recent(r.Context(), s.ID, 20)
	if err != nil {
		log.Printf("[chatbot] load transcript: %v", err)
		entries = []chatlog.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

// record 旁路写入转录，失败只记日志
func (h *Handler) record(r *http.Request, question, answer, source string) {
	if h.OnQuestion != nil {
		h.OnQuestion(source)
	}
	s := auth.SessionFrom(r.Context())
	if s == nil {
		return
	}
	entry := chatlog.Entry{
		SessionID: s.ID,
		Question:  question,
		Answer:    answer,
		Source:    source,
	}
	if s.User != nil {
		entry.UserID = s.User.ID
	}
	if err := h.recorder.Record(r.Context(), entry); err != nil {
		log.Printf("[chatbot] record transcript: %v", err)
	}
}

// writeJSON 写入 JSON 响应
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError 写入错误响应
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
