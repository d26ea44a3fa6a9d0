package model

// Category 书籍分类
//
// Key 是内部定位符（如 SACH_TIENG_VIET），Slug 是 URL 标识
// （如 sach-tieng-viet），Name 是显示名。店面路由统一按 slug 取数。
type Category struct {
	ID           int    `json:"id"`
	CategoryCode string `json:"category_code"` // DM000001, DM000002, ...
	Key          string `json:"key"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Description  string `json:"description,omitempty"`
	DisplayOrder int    `json:"display_order"`
	IsActive     bool   `json:"is_active"`
	CreatedAt    string `json:"created_at,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

// CategoryForm 创建/更新分类的表单数据（后台）
type CategoryForm struct {
	Key          string `json:"key,omitempty"`
	Name         string `json:"name"`
	Slug         string `json:"slug,omitempty"`
	Description  string `json:"description,omitempty"`
	DisplayOrder int    `json:"display_order,omitempty"`
	IsActive     *bool  `json:"is_active,omitempty"`
}

// BannerPosition 横幅展示位置
type BannerPosition string

const (
	BannerMain       BannerPosition = "main"
	BannerSideTop    BannerPosition = "side_top"
	BannerSideBottom BannerPosition = "side_bottom"
)

// Banner 营销横幅
type Banner struct {
	ID           int            `json:"id"`
	Title        string         `json:"title"`
	ImageURL     string         `json:"image_url"`
	LinkURL      string         `json:"link_url,omitempty"`
	Position     BannerPosition `json:"position"`
	DisplayOrder int            `json:"display_order"`
	IsActive     bool           `json:"is_active"`
	CreatedAt    string         `json:"created_at,omitempty"`
	UpdatedAt    string         `json:"updated_at,omitempty"`
}

// BannerForm 创建/更新横幅的表单数据（后台）
type BannerForm struct {
	Title        string         `json:"title"`
	ImageURL     string         `json:"image_url"`
	LinkURL      string         `json:"link_url,omitempty"`
	Position     BannerPosition `json:"position"`
	DisplayOrder int            `json:"display_order,omitempty"`
	IsActive     *bool          `json:"is_active,omitempty"`
}
