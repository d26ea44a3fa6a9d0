package model

// CartItem 购物车行项目
//
// quantity >= 1，上限受库存约束（后端裁决，网关在更新前钳制）。
// Book 为后端随行返回的书籍详情，展示用。
type CartItem struct {
	ID        int    `json:"id"`
	UserID    int    `json:"user_id"`
	BookID    int    `json:"book_id"`
	Quantity  int    `json:"quantity"`
	Book      *Book  `json:"book,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Subtotal 行小计
func (c *CartItem) Subtotal() float64 {
	if c.Book == nil {
		return 0
	}
	return c.Book.Price * float64(c.Quantity)
}

// CartTotal 购物车合计
func CartTotal(items []CartItem) float64 {
	var total float64
	for i := range items {
		total += items[i].Subtotal()
	}
	return total
}

// OrderStatus 订单状态
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// PaymentStatus 支付状态
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// OrderItem 订单行项目（下单时的价格快照）
type OrderItem struct {
	ID       int     `json:"id"`
	OrderID  int     `json:"order_id"`
	BookID   int     `json:"book_id"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Book     *Book   `json:"book,omitempty"`
}

// Order 订单
//
// Items 是前端约定字段；后端返回 order_items，由 upstream 层适配重命名。
type Order struct {
	ID              int           `json:"id"`
	UserID          int           `json:"user_id"`
	TotalAmount     float64       `json:"total_amount"`
	Status          OrderStatus   `json:"status"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	ShippingAddress string        `json:"shipping_address"`
	Items           []OrderItem   `json:"items"`
	CreatedAt       string        `json:"created_at,omitempty"`
	UpdatedAt       string        `json:"updated_at,omitempty"`
}
