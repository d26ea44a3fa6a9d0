// Package order 顾客订单接口
//
// 下单即结算整个购物车：后端从购物车生成订单、扣库存、清空购物车。
// 网关补一条下单成功的通知。
package order

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"bookstore-gateway/internal/gateway/auth"
	"bookstore-gateway/internal/gateway/toast"
	"bookstore-gateway/internal/upstream"
)

// Handler 订单 HTTP 处理器
type Handler struct {
	client *upstream.Client
	toasts *toast.Handler
}

// NewHandler 创建订单处理器
func NewHandler(client *upstream.Client, toasts *toast.Handler) *Handler {
	return &Handler{client: client, toasts: toasts}
}

// RegisterRoutes 注册订单相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/orders", auth.RequireUser(h.List))
	mux.HandleFunc("POST /api/orders", auth.RequireUser(h.Create))
	mux.HandleFunc("GET /api/orders/{id}", auth.RequireUser(h.Get))
}

// createRequest 下单请求体
type createRequest struct {
	ShippingAddress string `json:"shipping_address"`
}

// List 我的订单
// GET /api/orders
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.client.Orders(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

// Create 从购物车下单
// POST /api/orders
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.ShippingAddress = strings.TrimSpace(req.ShippingAddress)
	if req.ShippingAddress == "" {
		writeError(w, http.StatusBadRequest, "shipping_address is required")
		return
	}

	order, err := h.client.CreateOrder(r.Context(), req.ShippingAddress)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	h.toasts.Push(r.Context(), toast.SeveritySuccess, "đặt hàng thành công")
	writeJSON(w, http.StatusCreated, map[string]interface{}{"order": order})
}

// Get 订单详情
// GET /api/orders/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}
	order, err := h.client.Order(r.Context(), id)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"order": order})
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

// writeUpstreamError 透传后端错误
func writeUpstreamError(w http.ResponseWriter, err error) {
	writeError(w, upstream.StatusOf(err), err.Error())
}
