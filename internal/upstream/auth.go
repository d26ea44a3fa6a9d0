// 认证领域 - 后端调用
package upstream

import (
	"context"

	"bookstore-gateway/internal/shared/model"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

// ProfileUpdate 资料更新请求
type ProfileUpdate struct {
	FullName *string `json:"full_name,omitempty"`
	Email    *string `json:"email,omitempty"`
}

type userEnvelope struct {
	User *model.User `json:"user"`
}

// Login 登录，返回用户快照与后端会话凭证
func (c *Client) Login(ctx context.Context, req LoginRequest) (*model.User, Credential, error) {
	var env userEnvelope
	resp, err := c.do(ctx, "POST", "/login", nil, req, &env)
	if err != nil {
		return nil, "", err
	}
	return env.User, sessionCookie(resp), nil
}

// Register 注册新客户，注册成功即登录
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*model.User, Credential, error) {
	var env userEnvelope
	resp, err := c.do(ctx, "POST", "/register", nil, req, &env)
	if err != nil {
		return nil, "", err
	}
	return env.User, sessionCookie(resp), nil
}

// Logout 注销后端会话（凭证来自 context）
func (c *Client) Logout(ctx context.Context) error {
	return c.post(ctx, "/logout", nil, nil)
}

// CurrentUser 探测当前会话（401 表示会话已失效）
func (c *Client) CurrentUser(ctx context.Context) (*model.User, error) {
	var env userEnvelope
	if err := c.get(ctx, "/me", nil, &env); err != nil {
		return nil, err
	}
	return env.User, nil
}

// UpdateProfile 更新个人资料
func (c *Client) UpdateProfile(ctx context.Context, upd ProfileUpdate) (*model.User, error) {
	var env userEnvelope
	if err := c.put(ctx, "/profile", upd, &env); err != nil {
		return nil, err
	}
	return env.User, nil
}
