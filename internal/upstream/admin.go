// 后台身份与订单管理 - 后端调用
package upstream

import (
	"context"
	"fmt"
	"net/url"

	"bookstore-gateway/internal/shared/model"
)

// StaffForm 创建/更新后台账号的表单
type StaffForm struct {
	Username string     `json:"username,omitempty"`
	Email    string     `json:"email,omitempty"`
	Password string     `json:"password,omitempty"`
	FullName string     `json:"full_name,omitempty"`
	Role     model.Role `json:"role,omitempty"`
}

// Users 列出用户（role 为空取全部 staff；"customer" 取客户）
func (c *Client) Users(ctx context.Context, role model.Role) ([]model.User, error) {
	v := url.Values{}
	if role != "" {
		v.Set("role", string(role))
	}
	var env struct {
		Users []model.User `json:"users"`
	}
	if err := c.get(ctx, "/admin/users", v, &env); err != nil {
		return nil, err
	}
	return env.Users, nil
}

// CreateStaff 创建后台账号
func (c *Client) CreateStaff(ctx context.Context, form StaffForm) (*model.User, error) {
	var env userEnvelope
	if err := c.post(ctx, "/admin/users", form, &env); err != nil {
		return nil, err
	}
	return env.User, nil
}

// UpdateStaff 更新后台账号
func (c *Client) UpdateStaff(ctx context.Context, id int, form StaffForm) (*model.User, error) {
	var env userEnvelope
	if err := c.put(ctx, fmt.Sprintf("/admin/users/%d", id), form, &env); err != nil {
		return nil, err
	}
	return env.User, nil
}

// UpdateUserStatus 启用/停用账号
func (c *Client) UpdateUserStatus(ctx context.Context, id int, isActive bool) (*model.User, error) {
	body := map[string]bool{"is_active": isActive}
	var env userEnvelope
	if err := c.put(ctx, fmt.Sprintf("/admin/users/%d/status", id), body, &env); err != nil {
		return nil, err
	}
	return env.User, nil
}

// AllOrders 全部订单（后台）
func (c *Client) AllOrders(ctx context.Context) ([]model.Order, error) {
	var env struct {
		Orders []orderDTO `json:"orders"`
	}
	if err := c.get(ctx, "/admin/orders", nil, &env); err != nil {
		return nil, err
	}
	return adaptOrders(env.Orders), nil
}

// OrderStatusUpdate 订单状态变更
type OrderStatusUpdate struct {
	Status        model.OrderStatus   `json:"status,omitempty"`
	PaymentStatus model.PaymentStatus `json:"payment_status,omitempty"`
}

// UpdateOrderStatus 更新订单状态/支付状态（后台）
func (c *Client) UpdateOrderStatus(ctx context.Context, id int, upd OrderStatusUpdate) (*model.Order, error) {
	var env struct {
		Order *orderDTO `json:"order"`
	}
	if err := c.put(ctx, fmt.Sprintf("/admin/orders/%d/status", id), upd, &env); err != nil {
		return nil, err
	}
	if env.Order == nil {
		return nil, malformedResponseError("order")
	}
	o := env.Order.adapt()
	return &o, nil
}

// Statistics 仪表盘统计
func (c *Client) Statistics(ctx context.Context) (*model.Statistics, error) {
	var stats model.Statistics
	if err := c.get(ctx, "/admin/statistics", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
