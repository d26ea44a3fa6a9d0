// 分类领域 - 后端调用
package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"bookstore-gateway/internal/shared/model"
)

// ListCategories 列出分类（店面只取 active，后台可包含 inactive）
func (c *Client) ListCategories(ctx context.Context, includeInactive bool) ([]model.Category, error) {
	v := url.Values{}
	if includeInactive {
		v.Set("include_inactive", "true")
	}
	var env struct {
		Categories []model.Category `json:"categories"`
	}
	if err := c.get(ctx, "/categories", v, &env); err != nil {
		return nil, err
	}
	return env.Categories, nil
}

// GetCategory 获取单个分类
func (c *Client) GetCategory(ctx context.Context, id int) (*model.Category, error) {
	var env struct {
		Category *model.Category `json:"category"`
	}
	if err := c.get(ctx, fmt.Sprintf("/categories/%d", id), nil, &env); err != nil {
		return nil, err
	}
	return env.Category, nil
}

// CategoryBooks 按分类 slug 分页取书
//
// 路由统一采用 slug 方案（源实现同时存在 id/key/slug 三种路由，
// 这里只保留最新的 slug 形式）。
func (c *Client) CategoryBooks(ctx context.Context, categorySlug string, page, perPage int) (*BookPage, error) {
	v := url.Values{}
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		v.Set("per_page", strconv.Itoa(perPage))
	}
	var bp BookPage
	path := "/categories/" + url.PathEscape(categorySlug) + "/books"
	if err := c.get(ctx, path, v, &bp); err != nil {
		return nil, err
	}
	return &bp, nil
}

// CategoryBook 取分类范围内的单本书
func (c *Client) CategoryBook(ctx context.Context, categorySlug string, bookID int) (*model.Book, error) {
	var env struct {
		Book *model.Book `json:"book"`
	}
	path := fmt.Sprintf("/categories/%s/books/%d", url.PathEscape(categorySlug), bookID)
	if err := c.get(ctx, path, nil, &env); err != nil {
		return nil, err
	}
	return env.Book, nil
}

// CreateCategory 创建分类（后台）
func (c *Client) CreateCategory(ctx context.Context, form model.CategoryForm) (*model.Category, error) {
	var env struct {
		Category *model.Category `json:"category"`
	}
	if err := c.post(ctx, "/admin/categories", form, &env); err != nil {
		return nil, err
	}
	return env.Category, nil
}

// UpdateCategory 更新分类（后台）
func (c *Client) UpdateCategory(ctx context.Context, id int, form model.CategoryForm) (*model.Category, error) {
	var env struct {
		Category *model.Category `json:"category"`
	}
	if err := c.put(ctx, fmt.Sprintf("/admin/categories/%d", id), form, &env); err != nil {
		return nil, err
	}
	return env.Category, nil
}

// DeleteCategory 删除分类（后台）
func (c *Client) DeleteCategory(ctx context.Context, id int) error {
	return c.delete(ctx, fmt.Sprintf("/admin/categories/%d", id))
}
