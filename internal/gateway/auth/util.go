package auth

import (
	"encoding/json"
	"net/http"

	"bookstore-gateway/internal/upstream"
)

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

// writeUpstreamError 把后端调用错误透传给浏览器（已归一化）
func writeUpstreamError(w http.ResponseWriter, err error) {
	writeError(w, upstream.StatusOf(err), err.Error())
}
