// Package auth 访问守卫：会话解析中间件、角色能力表、登录/注册接口
package auth

import "bookstore-gateway/internal/shared/model"

// Capability 后台能力标识（前端据此渲染菜单和按钮）
type Capability string

const (
	CapManageBooks      Capability = "manage_books"
	CapManageCategories Capability = "manage_categories"
	CapManageBanners    Capability = "manage_banners"
	CapManageOrders     Capability = "manage_orders"
	CapManageCustomers  Capability = "manage_customers"
	CapManageStaff      Capability = "manage_staff"
	CapManageAdmins     Capability = "manage_admins"
	CapViewStatistics   Capability = "view_statistics"
	CapUploadImages     Capability = "upload_images"
)

// staffCapabilities 员工角色（moderator/editor）的能力
// 与 admin 的差别只有一条：不能管理 admin 账号
var staffCapabilities = []Capability{
	CapManageBooks,
	CapManageCategories,
	CapManageBanners,
	CapManageOrders,
	CapManageCustomers,
	CapManageStaff,
	CapViewStatistics,
	CapUploadImages,
}

var adminCapabilities = append([]Capability{CapManageAdmins}, staffCapabilities...)

// CapabilitiesFor 返回角色的能力列表（customer 和匿名为空）
func CapabilitiesFor(role model.Role) []Capability {
	switch role {
	case model.RoleAdmin:
		return adminCapabilities
	case model.RoleModerator, model.RoleEditor:
		return staffCapabilities
	default:
		return nil
	}
}

// Can 判断角色是否具备某个能力
func Can(role model.Role, cap Capability) bool {
	for _, c := range CapabilitiesFor(role) {
		if c == cap {
			return true
		}
	}
	return false
}
