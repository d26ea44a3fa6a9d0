// 横幅领域 - 后端调用
package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"bookstore-gateway/internal/shared/model"
)

// Banners 店面可见横幅（按位置过滤，空串表示全部）
func (c *Client) Banners(ctx context.Context, position model.BannerPosition) ([]model.Banner, error) {
	v := url.Values{}
	if position != "" {
		v.Set("position", string(position))
	}
	var env struct {
		Banners []model.Banner `json:"banners"`
	}
	if err := c.get(ctx, "/banners", v, &env); err != nil {
		return nil, err
	}
	return env.Banners, nil
}

// BannerPage 一页横幅及分页元信息（后台列表）
type BannerPage struct {
	Banners []model.Banner `json:"banners"`
	model.Pagination
}

// AllBanners 后台分页列出全部横幅
func (c *Client) AllBanners(ctx context.Context, page, perPage int) (*BannerPage, error) {
	v := url.Values{}
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		v.Set("per_page", strconv.Itoa(perPage))
	}
	var bp BannerPage
	if err := c.get(ctx, "/admin/banners", v, &bp); err != nil {
		return nil, err
	}
	return &bp, nil
}

// GetBanner 获取单个横幅（后台）
func (c *Client) GetBanner(ctx context.Context, id int) (*model.Banner, error) {
	var env struct {
		Banner *model.Banner `json:"banner"`
	}
	if err := c.get(ctx, fmt.Sprintf("/admin/banners/%d", id), nil, &env); err != nil {
		return nil, err
	}
	return env.Banner, nil
}

// CreateBanner 创建横幅（后台）
func (c *Client) CreateBanner(ctx context.Context, form model.BannerForm) (*model.Banner, error) {
	var env struct {
		Banner *model.Banner `json:"banner"`
	}
	if err := c.post(ctx, "/admin/banners", form, &env); err != nil {
		return nil, err
	}
	return env.Banner, nil
}

// UpdateBanner 更新横幅（后台）
func (c *Client) UpdateBanner(ctx context.Context, id int, form model.BannerForm) (*model.Banner, error) {
	var env struct {
		Banner *model.Banner `json:"banner"`
	}
	if err := c.put(ctx, fmt.Sprintf("/admin/banners/%d", id), form, &env); err != nil {
		return nil, err
	}
	return env.Banner, nil
}

// DeleteBanner 删除横幅（后台）
func (c *Client) DeleteBanner(ctx context.Context, id int) error {
	return c.delete(ctx, fmt.Sprintf("/admin/banners/%d", id))
}

// ToggleBanner 切换横幅启用状态（后台）
func (c *Client) ToggleBanner(ctx context.Context, id int) (*model.Banner, error) {
	var env struct {
		Banner *model.Banner `json:"banner"`
	}
	if err := c.put(ctx, fmt.Sprintf("/admin/banners/%d/toggle", id), nil, &env); err != nil {
		return nil, err
	}
	return env.Banner, nil
}
