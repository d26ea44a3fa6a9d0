// Package model 定义书店网关的核心数据模型
//
// 所有实体均为后端 REST API 返回的纯记录（plain record），
// 网关不拥有也不持久化这些数据，仅在会话/页面生命周期内持有。
package model

import "time"

// Role 用户角色
//
// staff 角色（admin/moderator/editor）可访问后台管理区，
// customer 只能访问店面。角色在会话期间不可变，重新登录才会变化。
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleEditor    Role = "editor"
	RoleCustomer  Role = "customer"
)

// IsStaff 是否为后台角色（非 customer 均视为 staff）
func (r Role) IsStaff() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleEditor:
		return true
	}
	return false
}

// Valid 是否为已知角色
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleEditor, RoleCustomer:
		return true
	}
	return false
}

// User 用户（后端 /me、/login 等接口返回的快照）
type User struct {
	ID           int     `json:"id"`
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	FullName     string  `json:"full_name"`
	Role         Role    `json:"role"`
	IsActive     bool    `json:"is_active"`
	CustomerCode *string `json:"customer_code,omitempty"` // KH001, KH002, ...（仅 customer）
	CreatedAt    string  `json:"created_at,omitempty"`    // 后端返回 ISO8601 字符串
}

// Statistics 后台仪表盘统计数据
type Statistics struct {
	TotalBooks     int     `json:"total_books"`
	TotalOrders    int     `json:"total_orders"`
	TotalCustomers int     `json:"total_customers"`
	TotalRevenue   float64 `json:"total_revenue"`
	PendingOrders  int     `json:"pending_orders"`
	LowStockBooks  int     `json:"low_stock_books"`
}

// UserSnapshotMaxAge 会话中用户快照的最大可信时长，超过后需向后端重新校验
const UserSnapshotMaxAge = 5 * time.Minute
