// Package catalog 店面公开接口
//
// 图书、分类、横幅的只读浏览，全部匿名可访问，数据从后端代取。
// 网关负责查询参数的清洗（页码、每页数量的收敛），后端负责过滤和分页。
package catalog

import (
	"encoding/json"
	"net/http"
	"strconv"

	"bookstore-gateway/internal/shared/model"
	"bookstore-gateway/internal/upstream"
)

// 分页参数收敛边界
const (
	defaultPerPage         = 20
	categoryDefaultPerPage = 12
	maxPerPage             = 100
	defaultBestSellerLimit = 10
	maxBestSellerLimit     = 50
)

// Handler 店面 HTTP 处理器
type Handler struct {
	client *upstream.Client
}

// NewHandler 创建店面处理器
func NewHandler(client *upstream.Client) *Handler {
	return &Handler{client: client}
}

// RegisterRoutes 注册店面相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/books", h.ListBooks)
	mux.HandleFunc("GET /api/books/bestsellers", h.BestSellers)
	mux.HandleFunc("GET /api/books/{id}", h.GetBook)
	mux.HandleFunc("GET /api/categories", h.ListCategories)
	mux.HandleFunc("GET /api/categories/{slug}/books", h.CategoryBooks)
	mux.HandleFunc("GET /api/categories/{slug}/books/{id}", h.CategoryBook)
	mux.HandleFunc("GET /api/banners", h.Banners)
}

// ListBooks 图书列表（搜索 / 按分类 / 按作者）
// GET /api/books?page=&per_page=&search=&category=&author=
func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, perPage := clampPage(q.Get("page"), q.Get("per_page"), defaultPerPage)

	result, err := h.client.ListBooks(r.Context(), upstream.BookQuery{
		Page:     page,
		PerPage:  perPage,
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Author:   q.Get("author"),
	})
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetBook 图书详情
// GET /api/books/{id}
func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid book id")
		return
	}
	book, err := h.client.GetBook(r.Context(), id)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"book": book})
}

// BestSellers 销量榜
// GET /api/books/bestsellers?limit=
func (h *Handler) BestSellers(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultBestSellerLimit
	}
	if limit > maxBestSellerLimit {
		limit = maxBestSellerLimit
	}

	books, err := h.client.BestSellers(r.Context(), limit)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"books": books})
}

// ListCategories 分类列表（只含启用的分类）
// GET /api/categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.client.ListCategories(r.Context(), false)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"categories": categories})
}

// CategoryBooks 分类下的图书（分类页每页 12 本）
// GET /api/categories/{slug}/books?page=&per_page=
func (h *Handler) CategoryBooks(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	q := r.URL.Query()
	page, perPage := clampPage(q.Get("page"), q.Get("per_page"), categoryDefaultPerPage)

	result, err := h.client.CategoryBooks(r.Context(), slug, page, perPage)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CategoryBook 分类上下文里的图书详情
// GET /api/categories/{slug}/books/{id}
func (h *Handler) CategoryBook(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid book id")
		return
	}
	book, err := h.client.CategoryBook(r.Context(), r.PathValue("slug"), id)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"book": book})
}

// Banners 指定位置的横幅（只含启用的）
// GET /api/banners?position=main|side_top|side_bottom
func (h *Handler) Banners(w http.ResponseWriter, r *http.Request) {
	position := model.BannerPosition(r.URL.Query().Get("position"))
	switch position {
	case model.BannerMain, model.BannerSideTop, model.BannerSideBottom:
	case "":
		position = model.BannerMain
	default:
		writeError(w, http.StatusBadRequest, "invalid banner position")
		return
	}

	banners, err := h.client.Banners(r.Context(), position)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"banners": banners})
}

// clampPage 清洗分页参数：page ≥ 1，per_page 夹到 [1, maxPerPage]
func clampPage(pageStr, perPageStr string, defaultPer int) (int, int) {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	perPage, err := strconv.Atoi(perPageStr)
	if err != nil || perPage < 1 {
		perPage = defaultPer
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
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
