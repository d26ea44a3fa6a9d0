// 订单领域 - 后端调用
package upstream

import (
	"context"
	"fmt"

	"bookstore-gateway/internal/shared/model"
)

// orderDTO 后端订单的原始形态
//
// 后端返回 order_items，前端约定字段是 items：
// 字段重命名在这里做一次（服务边界的显式适配器），
// 不在各调用点零散处理。
type orderDTO struct {
	model.Order
	OrderItems []model.OrderItem `json:"order_items"`
}

// adapt 把后端订单形态转换为前端约定形态
func (d *orderDTO) adapt() model.Order {
	o := d.Order
	if len(o.Items) == 0 {
		o.Items = d.OrderItems
	}
	if o.Items == nil {
		o.Items = []model.OrderItem{}
	}
	return o
}

func adaptOrders(dtos []orderDTO) []model.Order {
	orders := make([]model.Order, 0, len(dtos))
	for i := range dtos {
		orders = append(orders, dtos[i].adapt())
	}
	return orders
}

// Orders 当前用户的订单列表
func (c *Client) Orders(ctx context.Context) ([]model.Order, error) {
	var env struct {
		Orders []orderDTO `json:"orders"`
	}
	if err := c.get(ctx, "/orders", nil, &env); err != nil {
		return nil, err
	}
	return adaptOrders(env.Orders), nil
}

// Order 单个订单
func (c *Client) Order(ctx context.Context, id int) (*model.Order, error) {
	var env struct {
		Order *orderDTO `json:"order"`
	}
	if err := c.get(ctx, fmt.Sprintf("/orders/%d", id), nil, &env); err != nil {
		return nil, err
	}
	if env.Order == nil {
		return nil, malformedResponseError("order")
	}
	o := env.Order.adapt()
	return &o, nil
}

// CreateOrder 从购物车结算下单
func (c *Client) CreateOrder(ctx context.Context, shippingAddress string) (*model.Order, error) {
	body := map[string]string{"shipping_address": shippingAddress}
	var env struct {
		Order *orderDTO `json:"order"`
	}
	if err := c.post(ctx, "/orders", body, &env); err != nil {
		return nil, err
	}
	if env.Order == nil {
		return nil, malformedResponseError("order")
	}
	o := env.Order.adapt()
	return &o, nil
}
