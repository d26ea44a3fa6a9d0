package model

// Book 书籍
//
// category 字段引用 Category.Key；slug 用于店面 URL。
// Sold 由后端根据已完成订单计算，网关只读。
type Book struct {
	ID          int     `json:"id"`
	BookCode    string  `json:"book_code"` // MS000001, MS000002, ...
	Title       string  `json:"title"`
	Slug        string  `json:"slug"`
	Author      string  `json:"author"`
	Category    string  `json:"category"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	ImageURL    string  `json:"image_url,omitempty"`
	Publisher   string  `json:"publisher,omitempty"`
	PublishDate string  `json:"publish_date,omitempty"` // YYYY-MM-DD
	Distributor string  `json:"distributor,omitempty"`
	Dimensions  string  `json:"dimensions,omitempty"`
	Pages       int     `json:"pages,omitempty"`
	Weight      int     `json:"weight,omitempty"` // gram
	Sold        int     `json:"sold"`
	CreatedAt   string  `json:"created_at,omitempty"`
	UpdatedAt   string  `json:"updated_at,omitempty"`
}

// BookForm 创建/更新书籍的表单数据（后台）
type BookForm struct {
	Title       string  `json:"title"`
	Slug        string  `json:"slug,omitempty"`
	Author      string  `json:"author"`
	Category    string  `json:"category"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	ImageURL    string  `json:"image_url,omitempty"`
	Publisher   string  `json:"publisher,omitempty"`
	PublishDate string  `json:"publish_date,omitempty"`
	Distributor string  `json:"distributor,omitempty"`
	Dimensions  string  `json:"dimensions,omitempty"`
	Pages       int     `json:"pages,omitempty"`
	Weight      int     `json:"weight,omitempty"`
}

// Pagination 分页元信息（后端列表接口统一返回）
type Pagination struct {
	Total   int `json:"total"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Pages   int `json:"pages"`
}

// HasMore 是否还有后续页
func (p Pagination) HasMore() bool {
	return p.Page < p.Pages
}
