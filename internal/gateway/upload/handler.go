// Package upload 后台图片上传接口
//
// 图片直接落到对象存储，网关返回对外地址；
// 后端数据库里只保存这个地址字符串。
package upload

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"bookstore-gateway/internal/gateway/auth"
	"bookstore-gateway/internal/shared/objstore"
)

// allowedFolders 上传目标目录白名单
var allowedFolders = map[string]bool{
	"books":   true,
	"banners": true,
}

// allowedExtensions 图片扩展名白名单
var allowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// Handler 上传处理器
type Handler struct {
	store     objstore.Store
	maxSizeMB int
}

// NewHandler 创建上传处理器
func NewHandler(store objstore.Store, maxSizeMB int) *Handler {
	if maxSizeMB <= 0 {
		maxSizeMB = 5
	}
	return &Handler{store: store, maxSizeMB: maxSizeMB}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/admin/upload",
		auth.RequireCapability(auth.CapUploadImages, h.Upload))
}

// Upload 接收 multipart 表单中的 file 字段
//
// 查询参数 folder 指定目标目录（books 或 banners，默认 books）。
// 对象键带随机前缀，重名文件互不覆盖。
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	folder := r.URL.Query().Get("folder")
	if folder == "" {
		folder = "books"
	}
	if !allowedFolders[folder] {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown folder %q", folder))
		return
	}

	maxBytes := int64(h.maxSizeMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+4096) // 预留表单开销

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("file exceeds %d MB limit", h.maxSizeMB))
			return
		}
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	if header.Size > maxBytes {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("file exceeds %d MB limit", h.maxSizeMB))
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	contentType, ok := allowedExtensions[ext]
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("file type %q is not allowed", ext))
		return
	}

	key := objectKey(folder, ext)
	url, err := h.store.Put(r.Context(), key, file, header.Size, contentType)
	if err != nil {
		log.Printf("[upload] put %s: %v", key, err)
		writeError(w, http.StatusBadGateway, "failed to store file")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"url": url, "key": key})
}

// objectKey 生成对象键，如 books/20260829-4f3a9c1b.jpg
func objectKey(folder, ext string) string {
	stamp := time.Now().Format("20060102")
	return fmt.Sprintf("%s/%s-%s%s", folder, stamp, uuid.NewString()[:8], ext)
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
