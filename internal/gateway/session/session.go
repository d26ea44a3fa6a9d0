// Package session 浏览器会话管理
//
// 网关自己持有会话状态：浏览器只拿到一个签名的会话 Cookie（JWT），
// 会话记录存在 Redis（开发/测试可用内存实现），内含：
//   - 用户快照（渲染守卫和页面用，定期向后端刷新）
//   - 加密后的后端凭证（后端下发的会话 Cookie，AES-GCM 加密存储）
//
// 会话状态机：
//   - anonymous：无 Cookie / Cookie 无效 / 会话过期
//   - authenticated：会话有效且带后端凭证
//   - 后端返回 401 时会话立即作废，回到 anonymous
package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"bookstore-gateway/internal/shared/model"
)

// Session 一条会话记录
type Session struct {
	ID            string      `json:"id"`
	User          *model.User `json:"user"`
	EncCredential []byte      `json:"enc_credential"` // AES-GCM 加密的后端凭证
	CreatedAt     time.Time   `json:"created_at"`
	RefreshedAt   time.Time   `json:"refreshed_at"` // 用户快照最后刷新时间
	ExpiresAt     time.Time   `json:"expires_at"`
}

// Expired 会话是否已过期
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

// SnapshotStale 用户快照是否需要向后端刷新
func (s *Session) SnapshotStale() bool {
	return time.Since(s.RefreshedAt) > model.UserSnapshotMaxAge
}

// Manager 会话管理器：签发/解析 Cookie，读写会话存储，加解密后端凭证
type Manager struct {
	store      Store
	cipher     *credentialCipher
	jwtSecret  []byte
	cookieName string
	ttl        time.Duration
	secure     bool
}

// Config 会话管理器配置
type Config struct {
	Secret     string        // 签名与加密密钥的种子
	CookieName string        // 默认 bg_session
	TTL        time.Duration // 默认 168h
	Secure     bool          // Cookie Secure 标志
}

// NewManager 创建会话管理器
func NewManager(store Store, cfg Config) (*Manager, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("session secret is required")
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "bg_session"
	}
	if cfg.TTL == 0 {
		cfg.TTL = 168 * time.Hour
	}
	return &Manager{
		store:      store,
		cipher:     newCredentialCipher(cfg.Secret),
		jwtSecret:  deriveKey(cfg.Secret, "cookie-signing"),
		cookieName: cfg.CookieName,
		ttl:        cfg.TTL,
		secure:     cfg.Secure,
	}, nil
}

// Create 登录/注册成功后建立会话
//
// 后端凭证加密后入库，返回写给浏览器的 Cookie 值。
func (m *Manager) Create(ctx context.Context, user *model.User, cred string) (*Session, string, error) {
	enc, err := m.cipher.Encrypt([]byte(cred))
	if err != nil {
		return nil, "", fmt.Errorf("encrypt credential: %w", err)
	}

	now := time.Now()
	s := &Session{
		ID:            uuid.New().String(),
		User:          user,
		EncCredential: enc,
		CreatedAt:     now,
		RefreshedAt:   now,
		ExpiresAt:     now.Add(m.ttl),
	}
	if err := m.store.Save(ctx, s, m.ttl); err != nil {
		return nil, "", fmt.Errorf("save session: %w", err)
	}

	token, err := signToken(m.jwtSecret, s.ID, s.ExpiresAt)
	if err != nil {
		return nil, "", fmt.Errorf("sign session token: %w", err)
	}
	return s, token, nil
}

// Resolve 从 Cookie 值解析会话
//
// 任何一步失败（签名无效、会话不存在、已过期）都返回 ErrNotFound，
// 调用方按 anonymous 处理。
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	id, err := parseToken(m.jwtSecret, token)
	if err != nil {
		return nil, ErrNotFound
	}
	s, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Expired() {
		m.store.Delete(ctx, s.ID)
		return nil, ErrNotFound
	}
	return s, nil
}

// Credential 解密会话内的后端凭证
func (m *Manager) Credential(s *Session) (string, error) {
	plain, err := m.cipher.Decrypt(s.EncCredential)
	if err != nil {
		return "", fmt.Errorf("decrypt credential: %w", err)
	}
	return string(plain), nil
}

// UpdateUser 刷新会话内的用户快照
func (m *Manager) UpdateUser(ctx context.Context, s *Session, user *model.User) error {
	s.User = user
	s.RefreshedAt = time.Now()
	return m.store.Save(ctx, s, time.Until(s.ExpiresAt))
}

// Destroy 销毁会话（登出或后端 401）
func (m *Manager) Destroy(ctx context.Context, id string) error {
	return m.store.Delete(ctx, id)
}

// ============================================================================
// Cookie 读写
// ============================================================================

// ReadCookie 从请求中取出会话 Cookie 值，没有则返回空串
func (m *Manager) ReadCookie(r *http.Request) string {
	c, err := r.Cookie(m.cookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// WriteCookie 将会话 Cookie 写入响应
func (m *Manager) WriteCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie 清除会话 Cookie
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
