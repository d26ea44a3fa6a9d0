package toast

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"bookstore-gateway/internal/gateway/auth"
)

// Handler 通知队列接口
type Handler struct {
	store Store
}

// NewHandler 创建通知处理器
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册通知相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/toasts", h.Drain)
	mux.HandleFunc("DELETE /api/toasts/{id}", h.Dismiss)
}

// Push 给当前会话入队一条通知（匿名请求静默丢弃）
func (h *Handler) Push(ctx context.Context, severity Severity, message string) {
	s := auth.SessionFrom(ctx)
	if s == nil {
		return
	}
	if err := h.store.Push(ctx, s.ID, New(severity, message)); err != nil {
		log.Printf("[toast] push: %v", err)
	}
}

// Drain 取走当前会话的全部通知
// GET /api/toasts
func (h *Handler) Drain(w http.ResponseWriter, r *http.Request) {
	toasts := []Toast{}
	if s := auth.SessionFrom(r.Context()); s != nil {
		var err error
		toasts, err = h.store.Drain(r.Context(), s.ID)
		if err != nil {
			log.Printf("[toast] drain: %v", err)
			toasts = []Toast{}
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{"toasts": toasts})
}

// Dismiss 手动关闭一条通知（幂等，不存在的 ID 也返回成功）
// DELETE /api/toasts/{id}
func (h *Handler) Dismiss(w http.ResponseWriter, r *http.Request) {
	if s := auth.SessionFrom(r.Context()); s != nil {
		if err := h.store.Dismiss(r.Context(), s.ID, r.PathValue("id")); err != nil {
			log.Printf("[toast] dismiss: %v", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
