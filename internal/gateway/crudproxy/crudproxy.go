// Package crudproxy 后台实体管理的通用控制器
//
// 图书、分类、横幅、员工账号的后台维护都是同一套动作
// （列表 / 创建 / 更新 / 删除 / 启停），由一个控制器按实体描述符驱动，
// 不再每个实体复制一份处理器。
//
// 删除是破坏性动作：请求必须带 X-Confirm 头，值为实体名
// （如 X-Confirm: book），防止前端误触发。
package crudproxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"bookstore-gateway/internal/gateway/auth"
	"bookstore-gateway/internal/upstream"
)

// ErrInvalidBody 请求体解析失败（区别于后端错误，映射 400）
var ErrInvalidBody = errors.New("invalid request body")

// Resource 实体描述符
//
// 动作为 nil 表示该实体不支持此动作，路由不会注册。
type Resource struct {
	Name       string          // 实体名，X-Confirm 头的值
	Plural     string          // 路由段，如 "books"
	Capability auth.Capability // 操作该实体所需能力

	List   func(ctx context.Context, query url.Values) (interface{}, error)
	Get    func(ctx context.Context, id int) (interface{}, error)
	Create func(ctx context.Context, r *http.Request, body []byte) (interface{}, error)
	Update func(ctx context.Context, r *http.Request, id int, body []byte) (interface{}, error)
	Delete func(ctx context.Context, id int) error
	Toggle func(ctx context.Context, id int) (interface{}, error)
}

// Handler 通用后台控制器
type Handler struct {
	resources []Resource
}

// NewHandler 创建后台控制器
func NewHandler(resources []Resource) *Handler {
	return &Handler{resources: resources}
}

// RegisterRoutes 按描述符注册路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	for _, res := range h.resources {
		res := res
		base := "/api/admin/" + res.Plural
		if res.List != nil {
			mux.HandleFunc("GET "+base, h.guard(res, h.list(res)))
		}
		if res.Get != nil {
			mux.HandleFunc("GET "+base+"/{id}", h.guard(res, h.get(res)))
		}
		if res.Create != nil {
			mux.HandleFunc("POST "+base, h.guard(res, h.create(res)))
		}
		if res.Update != nil {
			mux.HandleFunc("PUT "+base+"/{id}", h.guard(res, h.update(res)))
		}
		if res.Delete != nil {
			mux.HandleFunc("DELETE "+base+"/{id}", h.guard(res, h.delete(res)))
		}
		if res.Toggle != nil {
			mux.HandleFunc("PUT "+base+"/{id}/toggle", h.guard(res, h.toggle(res)))
		}
	}
}

// guard 能力守卫
func (h *Handler) guard(res Resource, next http.HandlerFunc) http.HandlerFunc {
	return auth.RequireCapability(res.Capability, next)
}

func (h *Handler) list(res Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := res.List(r.Context(), r.URL.Query())
		if err != nil {
			writeActionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (h *Handler) get(res Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		result, err := res.Get(r.Context(), id)
		if err != nil {
			writeActionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (h *Handler) create(res Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := readBody(w, r)
		if !ok {
			return
		}
		result, err := res.Create(r.Context(), r, body)
		if err != nil {
			writeActionError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, result)
	}
}

func (h *Handler) update(res Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		body, ok := readBody(w, r)
		if !ok {
			return
		}
		result, err := res.Update(r.Context(), r, id, body)
		if err != nil {
			writeActionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (h *Handler) delete(res Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Confirm") != res.Name {
			writeError(w, http.StatusPreconditionRequired,
				fmt.Sprintf("deletion requires header X-Confirm: %s", res.Name))
			return
		}
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		if err := res.Delete(r.Context(), id); err != nil {
			writeActionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": res.Name + " deleted"})
	}
}

func (h *Handler) toggle(res Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		result, err := res.Toggle(r.Context(), id)
		if err != nil {
			writeActionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// ============================================================================
// 辅助函数
// ============================================================================

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	return raw, true
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

// writeActionError 区分本地校验错误和后端错误
func writeActionError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrInvalidBody) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var forbidden *ForbiddenError
	if errors.As(err, &forbidden) {
		writeError(w, http.StatusForbidden, forbidden.Message)
		return
	}
	writeError(w, upstream.StatusOf(err), err.Error())
}

// ForbiddenError 网关侧的权限拒绝（如员工试图管理 admin 账号）
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}
