package auth

import (
	"context"
	"log"
	"net/http"

	"bookstore-gateway/internal/gateway/session"
	"bookstore-gateway/internal/shared/model"
	"bookstore-gateway/internal/upstream"
)

type contextKey int

const ctxKeySession contextKey = iota

// WithSession 将会话注入 context
func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, ctxKeySession, s)
}

// SessionFrom 从 context 获取会话，匿名请求返回 nil
func SessionFrom(ctx context.Context) *session.Session {
	s, _ := ctx.Value(ctxKeySession).(*session.Session)
	return s
}

// UserFrom 从 context 获取当前用户，匿名请求返回 nil
func UserFrom(ctx context.Context) *model.User {
	if s := SessionFrom(ctx); s != nil {
		return s.User
	}
	return nil
}

// Middleware 会话解析中间件
//
// 每个请求做三件事：
//  1. 解析会话 Cookie，失败按匿名放行
//  2. 用户快照过期时向后端探测 /me；后端 401 说明凭证已失效，
//     立即销毁会话并按匿名继续
//  3. 把会话和解密后的后端凭证注入 context，下游直接代发请求
type Middleware struct {
	sessions *session.Manager
	client   *upstream.Client
}

// NewMiddleware 创建会话解析中间件
func NewMiddleware(sessions *session.Manager, client *upstream.Client) *Middleware {
	return &Middleware{sessions: sessions, client: client}
}

// Resolve 解析会话并注入 context
func (m *Middleware) Resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.sessions.ReadCookie(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		s, err := m.sessions.Resolve(r.Context(), token)
		if err != nil {
			// Cookie 无效或会话过期：清掉 Cookie，按匿名继续
			m.sessions.ClearCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		cred, err := m.sessions.Credential(s)
		if err != nil {
			// 凭证解密失败（密钥轮换），会话作废
			log.Printf("[auth] credential decrypt failed for session %s: %v", s.ID, err)
			m.sessions.Destroy(r.Context(), s.ID)
			m.sessions.ClearCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		ctx := upstream.WithCredential(r.Context(), upstream.Credential(cred))

		if s.SnapshotStale() {
			user, err := m.client.CurrentUser(ctx)
			switch {
			case err == nil:
				if err := m.sessions.UpdateUser(ctx, s, user); err != nil {
					log.Printf("[auth] refresh user snapshot: %v", err)
				}
			case upstream.IsUnauthorized(err):
				// 后端会话已失效，本地会话跟着作废
				m.sessions.Destroy(r.Context(), s.ID)
				m.sessions.ClearCookie(w)
				next.ServeHTTP(w, r)
				return
			default:
				// 后端暂时不可达：继续用旧快照，不打断请求
				log.Printf("[auth] snapshot probe failed: %v", err)
			}
		}

		ctx = WithSession(ctx, s)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireUser 要求已登录（任意角色）
func RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if UserFrom(r.Context()) == nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next(w, r)
	}
}

// RequireStaff 要求员工角色（admin/moderator/editor）
func RequireStaff(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := UserFrom(r.Context())
		if user == nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !user.Role.IsStaff() {
			writeError(w, http.StatusForbidden, "staff access required")
			return
		}
		next(w, r)
	}
}

// RequireCapability 要求具备指定能力
func RequireCapability(cap Capability, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := UserFrom(r.Context())
		if user == nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !Can(user.Role, cap) {
			writeError(w, http.StatusForbidden, "permission denied")
			return
		}
		next(w, r)
	}
}
