// Package prefs 界面偏好接口
//
// 浏览器本地存储迁到服务端：偏好跟着账号走，换设备不丢。
// 值按 JSON 字面量原样存取（布尔、字符串、对象都行），
// 网关只校验它是合法 JSON，不理解语义。
package prefs

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"bookstore-gateway/internal/gateway/auth"
	"bookstore-gateway/internal/shared/storage/repository"
)

// 已知偏好键的默认值（没存过也能拿到一个确定的初始值）
var defaults = map[string]string{
	"sidebarCollapsed": "false",
}

// maxValueLen 单个偏好值上限
const maxValueLen = 4 << 10

// Handler 偏好 HTTP 处理器
type Handler struct {
	store *repository.Store
}

// NewHandler 创建偏好处理器
func NewHandler(store *repository.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册偏好相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/preferences", auth.RequireUser(h.List))
	mux.HandleFunc("GET /api/preferences/{key}", auth.RequireUser(h.Get))
	mux.HandleFunc("PUT /api/preferences/{key}", auth.RequireUser(h.Set))
	mux.HandleFunc("DELETE /api/preferences/{key}", auth.RequireUser(h.Delete))
}

// List 全部偏好
// GET /api/preferences
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())
	stored, err := h.store.ListPreferences(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load preferences")
		return
	}

	// 默认值打底，存过的覆盖
	merged := make(map[string]json.RawMessage, len(stored)+len(defaults))
	for k, v := range defaults {
		merged[k] = json.RawMessage(v)
	}
	for k, v := range stored {
		merged[k] = json.RawMessage(v)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"preferences": merged})
}

// Get 单个偏好
// GET /api/preferences/{key}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())
	key := r.PathValue("key")

	value, err := h.store.GetPreference(r.Context(), user.ID, key)
	if err == repository.ErrPreferenceNotFound {
		if def, ok := defaults[key]; ok {
			value = def
		} else {
			writeError(w, http.StatusNotFound, "preference not found")
			return
		}
	} else if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load preference")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"key":   key,
		"value": json.RawMessage(value),
	})
}

// Set 写入偏好，请求体就是 JSON 字面量值
// PUT /api/preferences/{key}
func (h *Handler) Set(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())
	key := r.PathValue("key")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxValueLen+1))
	if err != nil || len(body) == 0 {
		writeError(w, http.StatusBadRequest, "request body is required")
		return
	}
	if len(body) > maxValueLen {
		writeError(w, http.StatusBadRequest, "preference value too large")
		return
	}
	if !json.Valid(body) {
		writeError(w, http.StatusBadRequest, "value must be valid JSON")
		return
	}

	if err := h.store.SetPreference(r.Context(), user.ID, key, string(body)); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save preference")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"key":   key,
		"value": json.RawMessage(body),
	})
}

// Delete 删除偏好（之后读取回到默认值）
// DELETE /api/preferences/{key}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())
	if err := h.store.DeletePreference(r.Context(), user.ID, r.PathValue("key")); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete preference")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "preference deleted"})
}

// SidebarCollapsed 服务端渲染外壳时查询侧栏状态
func (h *Handler) SidebarCollapsed(ctx context.Context, userID int) bool {
	value, err := h.store.GetPreference(ctx, userID, "sidebarCollapsed")
	if err != nil {
		return false
	}
	return value == "true"
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
