// 购物车领域 - 后端调用
package upstream

import (
	"context"
	"fmt"

	"bookstore-gateway/internal/shared/model"
)

type cartItemEnvelope struct {
	CartItem *model.CartItem `json:"cart_item"`
}

// Cart 取当前用户的购物车
func (c *Client) Cart(ctx context.Context) ([]model.CartItem, error) {
	var env struct {
		Cart []model.CartItem `json:"cart"`
	}
	if err := c.get(ctx, "/cart", nil, &env); err != nil {
		return nil, err
	}
	return env.Cart, nil
}

// AddToCart 加入购物车
//
// 同一本书重复加入时后端会合并数量（单行累加），不会产生重复行。
func (c *Client) AddToCart(ctx context.Context, bookID, quantity int) (*model.CartItem, error) {
	body := map[string]int{"book_id": bookID, "quantity": quantity}
	var env cartItemEnvelope
	if err := c.post(ctx, "/cart", body, &env); err != nil {
		return nil, err
	}
	return env.CartItem, nil
}

// UpdateCartItem 修改行数量
func (c *Client) UpdateCartItem(ctx context.Context, itemID, quantity int) (*model.CartItem, error) {
	body := map[string]int{"quantity": quantity}
	var env cartItemEnvelope
	if err := c.put(ctx, fmt.Sprintf("/cart/%d", itemID), body, &env); err != nil {
		return nil, err
	}
	return env.CartItem, nil
}

// RemoveFromCart 移除行
func (c *Client) RemoveFromCart(ctx context.Context, itemID int) error {
	return c.delete(ctx, fmt.Sprintf("/cart/%d", itemID))
}
