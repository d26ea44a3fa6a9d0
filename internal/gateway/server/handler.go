package server

import (
	"log"
	"net/http"
	"runtime/debug"

	"bookstore-gateway/internal/gateway/admin"
	"bookstore-gateway/internal/gateway/auth"
	"bookstore-gateway/internal/gateway/cart"
	"bookstore-gateway/internal/gateway/catalog"
	"bookstore-gateway/internal/gateway/chatbot"
	"bookstore-gateway/internal/gateway/crudproxy"
	"bookstore-gateway/internal/gateway/order"
	"bookstore-gateway/internal/gateway/prefs"
	"bookstore-gateway/internal/gateway/toast"
	"bookstore-gateway/internal/gateway/upload"
)

// Router 返回配置好的 HTTP 路由
//
// 路由分四层（外→内）：
//  1. 顶层 mux: WebSocket 直连（绕过指标中间件，包装后的
//     ResponseWriter 不支持 http.Hijacker）、其余进入中间件链
//  2. 恢复 / CORS / 会话解析中间件
//  3. 指标中间件
//  4. 业务 mux: 各领域包注册的 REST 路由 + 内嵌前端
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	// 健康检查
	mux.HandleFunc("GET /health", h.Health)

	// Prometheus 指标端点
	mux.Handle("GET /metrics", MetricsHandler())

	// 登录 / 注册 / 会话
	authHandler := auth.NewHandler(h.deps.Sessions, h.deps.Client)
	authHandler.OnSessionCreated = h.metrics.SessionCreated
	authHandler.OnSessionDestroyed = h.metrics.SessionDestroyed
	authHandler.RegisterRoutes(mux)

	// 通知队列
	toastHandler := toast.NewHandler(h.deps.Toasts)
	toastHandler.RegisterRoutes(mux)

	// 商品目录（公开）
	catalog.NewHandler(h.deps.Client).RegisterRoutes(mux)

	// 购物车 / 订单
	cart.NewHandler(h.deps.Client, toastHandler).RegisterRoutes(mux)
	order.NewHandler(h.deps.Client, toastHandler).RegisterRoutes(mux)

	// 用户偏好（依赖 SQL 存储，未配置时不注册）
	if h.deps.Prefs != nil {
		prefs.NewHandler(h.deps.Prefs).RegisterRoutes(mux)
	}

	// 后台实体管理
	crudproxy.NewHandler(crudproxy.Resources(h.deps.Client)).RegisterRoutes(mux)
	admin.NewHandler(h.deps.Client).RegisterRoutes(mux)

	// 图片上传（依赖对象存储，未配置时不注册）
	if h.deps.Objects != nil {
		upload.NewHandler(h.deps.Objects, h.deps.Config.Upload.MaxSizeMB).RegisterRoutes(mux)
	}

	// 购书咨询
	chatbotHandler := chatbot.NewHandler(h.deps.Client, h.deps.Chatlog)
	chatbotHandler.OnQuestion = h.metrics.ChatQuestion
	chatbotHandler.RegisterRoutes(mux)

	// 内嵌前端页面
	if h.deps.Static != nil {
		mux.Handle("/", h.staticHandler())
	}

	// 指标中间件只覆盖 REST 路由
	apiHandler := h.metrics.Middleware(mux)

	// 会话解析：把会话和后端凭证注入 context
	sessionMW := auth.NewMiddleware(h.deps.Sessions, h.deps.Client)
	resolved := sessionMW.Resolve(apiHandler)

	chained := recoverMiddleware(corsMiddleware(resolved))

	// WebSocket 绕过指标中间件，但仍经过会话解析
	topMux := http.NewServeMux()
	wsMux := http.NewServeMux()
	chatbotHandler.RegisterWSRoutes(wsMux)
	topMux.Handle("GET /ws/chat", recoverMiddleware(sessionMW.Resolve(wsMux)))
	topMux.Handle("/", chained)

	return topMux
}

// corsMiddleware 添加 CORS 头支持跨域请求
//
// 凭证走 Cookie，所以不能用通配 Origin，按请求回显并允许携带凭证。
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Confirm")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// recoverMiddleware 捕获 panic，返回 500 而不是挂掉整个进程
func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("[server] panic serving %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
