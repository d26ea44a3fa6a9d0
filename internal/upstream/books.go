// 书籍领域 - 后端调用
package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"bookstore-gateway/internal/shared/model"
)

// BookQuery 书籍列表查询参数
type BookQuery struct {
	Page     int
	PerPage  int
	Search   string
	Category string
	Author   string
}

func (q BookQuery) values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(q.PerPage))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Author != "" {
		v.Set("author", q.Author)
	}
	return v
}

// BookPage 一页书籍及分页元信息
type BookPage struct {
	Books []model.Book `json:"books"`
	model.Pagination
}

// ListBooks 分页列出书籍
func (c *Client) ListBooks(ctx context.Context, q BookQuery) (*BookPage, error) {
	var page BookPage
	if err := c.get(ctx, "/books", q.values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ListAllBooks 按页拉取全部书籍并按序拼接
//
// 调用方拿到的是完整有序结果集：每页最多 PerPage 条，
// 无重复、无遗漏（以后端排序为准）。
func (c *Client) ListAllBooks(ctx context.Context, q BookQuery) ([]model.Book, error) {
	if q.PerPage <= 0 {
		q.PerPage = 50
	}
	q.Page = 1

	var all []model.Book
	for {
		page, err := c.ListBooks(ctx, q)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Books...)
		if !page.HasMore() || len(page.Books) == 0 {
			return all, nil
		}
		q.Page++
	}
}

// GetBook 获取单本书
func (c *Client) GetBook(ctx context.Context, id int) (*model.Book, error) {
	var env struct {
		Book *model.Book `json:"book"`
	}
	if err := c.get(ctx, fmt.Sprintf("/books/%d", id), nil, &env); err != nil {
		return nil, err
	}
	return env.Book, nil
}

// CreateBook 创建书籍（后台）
func (c *Client) CreateBook(ctx context.Context, form model.BookForm) (*model.Book, error) {
	var env struct {
		Book *model.Book `json:"book"`
	}
	if err := c.post(ctx, "/books", form, &env); err != nil {
		return nil, err
	}
	return env.Book, nil
}

// UpdateBook 更新书籍（后台）
func (c *Client) UpdateBook(ctx context.Context, id int, form model.BookForm) (*model.Book, error) {
	var env struct {
		Book *model.Book `json:"book"`
	}
	if err := c.put(ctx, fmt.Sprintf("/books/%d", id), form, &env); err != nil {
		return nil, err
	}
	return env.Book, nil
}

// DeleteBook 删除书籍（后台）
func (c *Client) DeleteBook(ctx context.Context, id int) error {
	return c.delete(ctx, fmt.Sprintf("/books/%d", id))
}

// BestSellers 畅销榜
func (c *Client) BestSellers(ctx context.Context, limit int) ([]model.Book, error) {
	v := url.Values{}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	var env struct {
		Books []model.Book `json:"books"`
		Count int          `json:"count"`
	}
	if err := c.get(ctx, "/books/bestsellers", v, &env); err != nil {
		return nil, err
	}
	return env.Books, nil
}
