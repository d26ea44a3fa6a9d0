// Package server 路由配置与核心基础设施
//
// 本包把各领域包的处理器装配成完整的 HTTP 服务：
//   - handler.go: 路由装配与中间件链
//   - metrics.go: Prometheus 指标
//   - static.go: 内嵌前端页面与页面级访问守卫
package server

import (
	"encoding/json"
	"io/fs"
	"net/http"

	"bookstore-gateway/internal/config"
	"bookstore-gateway/internal/gateway/session"
	"bookstore-gateway/internal/gateway/toast"
	"bookstore-gateway/internal/shared/chatlog"
	"bookstore-gateway/internal/shared/objstore"
	"bookstore-gateway/internal/shared/storage/repository"
	"bookstore-gateway/internal/upstream"
)

// Deps 装配路由所需的依赖
//
// Prefs、Objects、Chatlog 允许为 nil：对应功能的路由不会注册
// （偏好接口）或退化为空操作（转录）。
type Deps struct {
	Config   *config.Config
	Client   *upstream.Client   // 后端 API 客户端
	Sessions *session.Manager   // 浏览器会话
	Toasts   toast.Store        // 通知队列
	Prefs    *repository.Store  // 偏好存储（SQL）
	Objects  objstore.Store     // 图片对象存储
	Chatlog  chatlog.Recorder   // 咨询转录（可选）
	Static   fs.FS              // 内嵌前端文件（可选）
}

// Handler HTTP 服务装配器
type Handler struct {
	deps    Deps
	metrics *Metrics
}

// NewHandler 创建装配器
func NewHandler(deps Deps) *Handler {
	return &Handler{
		deps:    deps,
		metrics: NewMetrics("gateway"),
	}
}

// Metrics 返回指标实例
func (h *Handler) Metrics() *Metrics {
	return h.metrics
}

// Health 健康检查接口
//
// 路由: GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON 将数据以 JSON 格式写入 HTTP 响应
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
