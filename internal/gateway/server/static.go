package server

import (
	"io/fs"
	"net/http"
	"strings"

	"bookstore-gateway/internal/gateway/auth"
)

// staticHandler 内嵌前端页面
//
// 前端是单页应用：磁盘上不存在的路径一律回退到 index.html，
// 由前端路由接管。守卫只做页面级重定向，数据接口的鉴权在 API 层。
func (h *Handler) staticHandler() http.Handler {
	fileServer := http.FileServer(http.FS(h.deps.Static))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if target := pageRedirect(r); target != "" {
			http.Redirect(w, r, target, http.StatusFound)
			return
		}

		path := strings.TrimPrefix(r.URL.Path, "/")
		if path == "" {
			path = "index.html"
		}
		if _, err := fs.Stat(h.deps.Static, path); err != nil {
			// SPA 回退
			r2 := r.Clone(r.Context())
			r2.URL.Path = "/"
			fileServer.ServeHTTP(w, r2)
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}

// pageRedirect 页面级访问守卫，返回空串表示放行
//
//   - 非员工访问 /admin/* 页面：跳登录页
//   - 已登录员工访问登录/注册页：跳后台首页
//   - 已登录顾客访问登录/注册页：跳商城首页
func pageRedirect(r *http.Request) string {
	user := auth.UserFrom(r.Context())
	path := r.URL.Path

	if strings.HasPrefix(path, "/admin") && path != "/admin/login" {
		if user == nil || !user.Role.IsStaff() {
			return "/admin/login"
		}
		return ""
	}

	switch path {
	case "/admin/login":
		if user != nil && user.Role.IsStaff() {
			return "/admin"
		}
	case "/login", "/register":
		if user == nil {
			return ""
		}
		if user.Role.IsStaff() {
			return "/admin"
		}
		return "/"
	}
	return ""
}
