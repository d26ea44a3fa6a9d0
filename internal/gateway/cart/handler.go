// Package cart 购物车接口
//
// 购物车数据由后端持有，网关在代发之外补两件事：
//   - 数量在代发前按库存收敛（夹到 [1, stock]），收敛过就推一条 warning 通知
//   - 响应里带上合计金额，前端不用自己算
package cart

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"bookstore-gateway/internal/gateway/auth"
	"bookstore-gateway/internal/gateway/toast"
	"bookstore-gateway/internal/shared/model"
	"bookstore-gateway/internal/upstream"
)

// Handler 购物车 HTTP 处理器
type Handler struct {
	client *upstream.Client
	toasts *toast.Handler
}

// NewHandler 创建购物车处理器
func NewHandler(client *upstream.Client, toasts *toast.Handler) *Handler {
	return &Handler{client: client, toasts: toasts}
}

// RegisterRoutes 注册购物车相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/cart", auth.RequireUser(h.List))
	mux.HandleFunc("POST /api/cart", auth.RequireUser(h.Add))
	mux.HandleFunc("PUT /api/cart/{id}", auth.RequireUser(h.Update))
	mux.HandleFunc("DELETE /api/cart/{id}", auth.RequireUser(h.Remove))
}

// addRequest 加购请求体
type addRequest struct {
	BookID   int `json:"book_id"`
	Quantity int `json:"quantity"`
}

// updateRequest 改数量请求体
type updateRequest struct {
	Quantity int `json:"quantity"`
}

// List 购物车列表
// GET /api/cart
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.client.Cart(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"cart":  items,
		"total": model.CartTotal(items),
	})
}

// Add 加入购物车
// POST /api/cart
//
// 同一本书重复加购由后端合并数量；网关在代发前把数量夹到库存内。
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.BookID <= 0 {
		writeError(w, http.StatusBadRequest, "book_id is required")
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	book, err := h.client.GetBook(r.Context(), req.BookID)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	if book.Stock <= 0 {
		writeError(w, http.StatusBadRequest, "book is out of stock")
		return
	}

	quantity := h.clampQuantity(r, req.Quantity, book.Stock, book.Title)

	item, err := h.client.AddToCart(r.Context(), req.BookID, quantity)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"item": item})
}

// Update 修改数量
// PUT /api/cart/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Quantity <= 0 {
		writeError(w, http.StatusBadRequest, "quantity must be positive")
		return
	}

	// 库存上限从当前购物车里这行的图书取
	quantity := req.Quantity
	if items, err := h.client.Cart(r.Context()); err == nil {
		for _, item := range items {
			if item.ID == id && item.Book != nil {
				quantity = h.clampQuantity(r, req.Quantity, item.Book.Stock, item.Book.Title)
				break
			}
		}
	} else {
		log.Printf("[cart] stock lookup before update: %v", err)
	}

	item, err := h.client.UpdateCartItem(r.Context(), id, quantity)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"item": item})
}

// Remove 移除一行
// DELETE /api/cart/{id}
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	if err := h.client.RemoveFromCart(r.Context(), id); err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "item removed"})
}

// clampQuantity 把数量夹到 [1, stock]，收敛过就推 warning 通知
func (h *Handler) clampQuantity(r *http.Request, quantity, stock int, title string) int {
	if stock > 0 && quantity > stock {
		h.toasts.Push(r.Context(), toast.SeverityWarning,
			fmt.Sprintf("chỉ còn %d cuốn \"%s\", số lượng đã được điều chỉnh", stock, title))
		return stock
	}
	if quantity < 1 {
		return 1
	}
	return quantity
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
