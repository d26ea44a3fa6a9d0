package auth

import (
	"encoding/json"
	"log"
	"net/http"

	"bookstore-gateway/internal/gateway/session"
	"bookstore-gateway/internal/shared/model"
	"bookstore-gateway/internal/upstream"
)

// Handler 登录/注册/登出接口
type Handler struct {
	sessions *session.Manager
	client   *upstream.Client

	// 会话生命周期指标钩子，可为 nil
	OnSessionCreated   func()
	OnSessionDestroyed func()
}

// NewHandler 创建认证处理器
func NewHandler(sessions *session.Manager, client *upstream.Client) *Handler {
	return &Handler{sessions: sessions, client: client}
}

// RegisterRoutes 注册认证相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/login", h.Login)
	mux.HandleFunc("POST /api/register", h.Register)
	mux.HandleFunc("POST /api/logout", h.Logout)
	mux.HandleFunc("GET /api/me", RequireUser(h.Me))
	mux.HandleFunc("PUT /api/profile", RequireUser(h.UpdateProfile))
	mux.HandleFunc("GET /api/capabilities", h.Capabilities)
}

// loginRequest 登录请求体
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// registerRequest 注册请求体
// ConfirmPassword 在网关侧校验，不透传给后端
type registerRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FullName        string `json:"full_name"`
}

// Login 登录
// POST /api/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, cred, err := h.client.Login(r.Context(), upstream.LoginRequest{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	if cred == "" {
		writeError(w, http.StatusBadGateway, "backend did not establish a session")
		return
	}

	h.establishSession(w, r, user, cred)
}

// Register 注册
// POST /api/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username, email and password are required")
		return
	}
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
		writeError(w, http.StatusBadRequest, "passwords do not match")
		return
	}

	user, cred, err := h.client.Register(r.Context(), upstream.RegisterRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	if cred == "" {
		writeError(w, http.StatusBadGateway, "backend did not establish a session")
		return
	}

	h.establishSession(w, r, user, cred)
}

// Logout 登出
// POST /api/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if s := SessionFrom(r.Context()); s != nil {
		// 后端登出失败不阻塞本地登出
		if err := h.client.Logout(r.Context()); err != nil {
			log.Printf("[auth] backend logout: %v", err)
		}
		if err := h.sessions.Destroy(r.Context(), s.ID); err != nil {
			log.Printf("[auth] destroy session %s: %v", s.ID, err)
		}
		if h.OnSessionDestroyed != nil {
			h.OnSessionDestroyed()
		}
	}
	h.sessions.ClearCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me 返回当前用户
// GET /api/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": UserFrom(r.Context())})
}

// UpdateProfile 更新个人资料
// PUT /api/profile
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var upd upstream.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.client.UpdateProfile(r.Context(), upd)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	// 快照立即同步，页面不用等下一次探测
	if s := SessionFrom(r.Context()); s != nil {
		if err := h.sessions.UpdateUser(r.Context(), s, user); err != nil {
			log.Printf("[auth] sync profile to session: %v", err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// Capabilities 返回当前角色的能力列表（匿名返回空表）
// GET /api/capabilities
func (h *Handler) Capabilities(w http.ResponseWriter, r *http.Request) {
	caps := []Capability{}
	authenticated := false
	var role string
	if user := UserFrom(r.Context()); user != nil {
		authenticated = true
		role = string(user.Role)
		if c := CapabilitiesFor(user.Role); c != nil {
			caps = c
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"authenticated": authenticated,
		"role":          role,
		"capabilities":  caps,
	})
}

// establishSession 建立本地会话并写 Cookie
func (h *Handler) establishSession(w http.ResponseWriter, r *http.Request, user *model.User, cred upstream.Credential) {
	_, token, err := h.sessions.Create(r.Context(), user, string(cred))
	if err != nil {
		log.Printf("[auth] create session: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to establish session")
		return
	}
	h.sessions.WriteCookie(w, token)
	if h.OnSessionCreated != nil {
		h.OnSessionCreated()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}
