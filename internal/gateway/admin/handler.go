// Package admin 后台的非 CRUD 接口：订单处理、客户管理、仪表盘统计
//
// 图书/分类/横幅/员工的标准增删改查由 crudproxy 承接，
// 这里只保留各自有独立语义的动作。
package admin

import (
	"encoding/json"
	"net/http"
	"strconv"

	"bookstore-gateway/internal/gateway/auth"
	"bookstore-gateway/internal/shared/model"
	"bookstore-gateway/internal/upstream"
)

// Handler 后台接口处理器
type Handler struct {
	client *upstream.Client
}

// NewHandler 创建后台接口处理器
func NewHandler(client *upstream.Client) *Handler {
	return &Handler{client: client}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/admin/orders",
		auth.RequireCapability(auth.CapManageOrders, h.ListOrders))
	mux.HandleFunc("PUT /api/admin/orders/{id}/status",
		auth.RequireCapability(auth.CapManageOrders, h.UpdateOrderStatus))
	mux.HandleFunc("GET /api/admin/customers",
		auth.RequireCapability(auth.CapManageCustomers, h.ListCustomers))
	mux.HandleFunc("PUT /api/admin/customers/{id}/status",
		auth.RequireCapability(auth.CapManageCustomers, h.UpdateCustomerStatus))
	mux.HandleFunc("GET /api/admin/statistics",
		auth.RequireCapability(auth.CapViewStatistics, h.Statistics))
}

// ListOrders 全部订单
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.client.AllOrders(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

// UpdateOrderStatus 更新订单状态和支付状态
//
// 两个字段都可选，但至少要出现一个；取值在转发前校验，
// 避免把拼错的状态写进后端。
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var upd upstream.OrderStatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if upd.Status == "" && upd.PaymentStatus == "" {
		writeError(w, http.StatusBadRequest, "status or payment_status is required")
		return
	}
	switch upd.Status {
	case "", model.OrderPending, model.OrderConfirmed, model.OrderCompleted, model.OrderCancelled:
	default:
		writeError(w, http.StatusBadRequest, "unknown order status")
		return
	}
	switch upd.PaymentStatus {
	case "", model.PaymentPending, model.PaymentPaid:
	default:
		writeError(w, http.StatusBadRequest, "unknown payment status")
		return
	}

	order, err := h.client.UpdateOrderStatus(r.Context(), id, upd)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"order": order})
}

// ListCustomers 客户列表
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	users, err := h.client.Users(r.Context(), model.RoleCustomer)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

// UpdateCustomerStatus 启用/停用客户账号
func (h *Handler) UpdateCustomerStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var body struct {
		IsActive *bool `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.IsActive == nil {
		writeError(w, http.StatusBadRequest, "is_active is required")
		return
	}

	user, err := h.client.UpdateUserStatus(r.Context(), id, *body.IsActive)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// Statistics 仪表盘统计
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.client.Statistics(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
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

// writeUpstreamError 把后端错误映射为网关响应
func writeUpstreamError(w http.ResponseWriter, err error) {
	writeError(w, upstream.StatusOf(err), err.Error())
}
