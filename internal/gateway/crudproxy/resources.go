package crudproxy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"bookstore-gateway/internal/gateway/auth"
	"bookstore-gateway/internal/shared/model"
	"bookstore-gateway/internal/slug"
	"bookstore-gateway/internal/upstream"
)

const (
	adminDefaultPerPage = 20
	adminMaxPerPage     = 100
)

// invalid 构造 400 级别的表单校验错误
func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidBody, fmt.Sprintf(format, args...))
}

func adminPaging(query url.Values) (page, perPage int) {
	page, _ = strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(query.Get("per_page"))
	if perPage < 1 {
		perPage = adminDefaultPerPage
	}
	if perPage > adminMaxPerPage {
		perPage = adminMaxPerPage
	}
	return page, perPage
}

// Resources 全部后台实体的描述符
func Resources(client *upstream.Client) []Resource {
	return []Resource{
		bookResource(client),
		categoryResource(client),
		bannerResource(client),
		staffResource(client),
	}
}

// ============================================================================
// 图书
// ============================================================================

func decodeBookForm(body []byte) (model.BookForm, error) {
	var form model.BookForm
	if err := json.Unmarshal(body, &form); err != nil {
		return form, ErrInvalidBody
	}
	form.Title = strings.TrimSpace(form.Title)
	form.Author = strings.TrimSpace(form.Author)
	if form.Title == "" {
		return form, invalid("title is required")
	}
	if form.Author == "" {
		return form, invalid("author is required")
	}
	if form.Category == "" {
		return form, invalid("category is required")
	}
	if form.Price <= 0 {
		return form, invalid("price must be positive")
	}
	if form.Stock < 0 {
		return form, invalid("stock cannot be negative")
	}
	// 未提供 slug 时从标题生成，与后端规则一致
	if form.Slug == "" {
		form.Slug = slug.Make(form.Title)
	}
	return form, nil
}

func bookResource(client *upstream.Client) Resource {
	return Resource{
		Name:       "book",
		Plural:     "books",
		Capability: auth.CapManageBooks,
		List: func(ctx context.Context, query url.Values) (interface{}, error) {
			page, perPage := adminPaging(query)
			return client.ListBooks(ctx, upstream.BookQuery{
				Page:     page,
				PerPage:  perPage,
				Search:   query.Get("search"),
				Category: query.Get("category"),
			})
		},
		Get: func(ctx context.Context, id int) (interface{}, error) {
			book, err := client.GetBook(ctx, id)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{"book": book}, nil
		},
		Create: func(ctx context.Context, _ *http.Request, body []byte) (interface{}, error) {
			form, err := decodeBookForm(body)
			if err != nil {
				return nil, err
			}
			book, err := client.CreateBook(ctx, form)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{"book": book}, nil
		},
		Update: func(ctx context.Context, _ *http.Request, id int, body []byte) (interface{}, error) {
			form, err := decodeBookForm(body)
			if err != nil {
				return nil, err
			}
			book, err := client.UpdateBook(ctx, id, form)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{"book": book}, nil
		},
		Delete: client.DeleteBook,
	}
}

// ============================================================================
// 分类
// ============================================================================

func decodeCategoryForm(body []byte) (model.CategoryForm, error) {
	var form model.CategoryForm
	if err := json.Unmarshal(body, &form); err != nil {
		return form, ErrInvalidBody
	}
	form.Name = strings.TrimSpace(form.Name)
	if form.Name == "" {
		return form, invalid("name is required")
	}
	if form.Slug == "" {
		form.Slug = slug.Make(form.Name)
	}
	if form.Key == "" {
		form.Key = slug.MakeKey(form.Name)
	}
	return form, nil
}

func categoryResource(client *upstream.Client) Resource {
	return Resource{
		Name:       "category",
		Plural:     "categories",
		Capability: auth.CapManageCategories,
		List: func(ctx context.Context, _ url.Values) (interface{}, error) {
			// 后台需要看到停用的分类
			cats, err := client.ListCategories(ctx, true)
			if err != nil {
				return nil, err
			}
			if cats == nil {
				cats = []model.Category{}
			}
			return map[string]interface{}{"categories": cats}, nil
		},
		Get: func(ctx context.Context, id int) (interface{}, error) {
			cat, err := client.GetCategory(ctx, id)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{"category": cat}, nil
		},
		Create: func(ctx context.Context, _ *http.Request, body []byte) (interface{}, error) {
			form, err := decodeCategoryForm(body)
			if err != nil {
				return nil, err
			}
			cat, err := client.CreateCategory(ctx, form)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{"category": cat}, nil
		},
		Update: func(ctx context.Context, _ *http.Request, id int, body []byte) (interface{}, error) {
			form, err := decodeCategoryForm(body)
			if err != nil {
				return nil, err
			}
			cat, err := client.UpdateCategory(ctx, id, form)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{"category": cat}, nil
		},
		Delete: client.DeleteCategory,
	}
}

// ============================================================================
// 横幅
// ============================================================================

func decodeBannerForm(body []byte) (model.BannerForm, error) {
	var form model.BannerForm
	if err := json.Unmarshal(body, &form); err != nil {
		return form, ErrInvalidBody
	}
	form.Title = strings.TrimSpace(form.Title)
	if form.Title == "" {
		return form, invalid("title is required")
	}
	if form.ImageURL == "" {
		return form, invalid("image_url is required")
	}
	switch form.Position {
	case "":
		form.Position = model.BannerMain
	case model.BannerMain, model.BannerSideTop, model.BannerSideBottom:
	default:
		return form, invalid("unknown position %q", form.Position)
	}
	return form, nil
}

func bannerResource(client *upstream.Client) Resource {
	return Resource{
		Name:       "banner",
		Plural:     "banners",
		Capability: auth.CapManageBanners,
		List: func(ctx context.Context, query url.Values) (interface{}, error) {
			page, perPage := adminPaging(query)
			return client.AllBanners(ctx, page, perPage)
		},
		Get: func(ctx context.Context, id int) (interface{}, error) {
			banner, err := client.GetBanner(ctx, id)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{"banner": banner}, nil
		},
		Create: func(ctx context.Context, _ *http.Request, body []byte) (interface{}, error) {
			form, err := decodeBannerForm(body)
			if err != nil {
				return nil, err
			}
			banner, err := client.CreateBanner(ctx, form)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{"banner": banner}, nil
		},
		Update: func(ctx context.Context, _ *http.Request, id int, body []byte) (interface{}, error) {
			form, err := decodeBannerForm(body)
			if err != nil {
				return nil, err
			}
			banner, err := client.UpdateBanner(ctx, id, form)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{"banner": banner}, nil
		},
		Delete: client.DeleteBanner,
		Toggle: func(ctx context.Context, id int) (interface{}, error) {
			banner, err := client.ToggleBanner(ctx, id)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{"banner": banner}, nil
		},
	}
}

// ============================================================================
// 员工账号
// ============================================================================

// staffGuard 涉及 admin 角色的账号操作仅限具备 manage_admins 能力的调用方
func staffGuard(r *http.Request, role model.Role) error {
	if role != model.RoleAdmin {
		return nil
	}
	user := auth.UserFrom(r.Context())
	if user == nil || !auth.Can(user.Role, auth.CapManageAdmins) {
		return &ForbiddenError{Message: "managing admin accounts requires the manage_admins capability"}
	}
	return nil
}

func decodeStaffForm(body []byte, create bool) (upstream.StaffForm, error) {
	var form upstream.StaffForm
	if err := json.Unmarshal(body, &form); err != nil {
		return form, ErrInvalidBody
	}
	form.Username = strings.TrimSpace(form.Username)
	form.Email = strings.TrimSpace(form.Email)
	if create {
		if form.Username == "" {
			return form, invalid("username is required")
		}
		if form.Email == "" {
			return form, invalid("email is required")
		}
		if form.Password == "" {
			return form, invalid("password is required")
		}
		if form.Role == "" {
			return form, invalid("role is required")
		}
	}
	if form.Role != "" && !form.Role.IsStaff() {
		return form, invalid("role %q is not a staff role", form.Role)
	}
	return form, nil
}

func staffResource(client *upstream.Client) Resource {
	return Resource{
		Name:       "staff",
		Plural:     "staff",
		Capability: auth.CapManageStaff,
		List: func(ctx context.Context, _ url.Values) (interface{}, error) {
			users, err := client.Users(ctx, "")
			if err != nil {
				return nil, err
			}
			if users == nil {
				users = []model.User{}
			}
			return map[string]interface{}{"users": users}, nil
		},
		Create: func(ctx context.Context, r *http.Request, body []byte) (interface{}, error) {
			form, err := decodeStaffForm(body, true)
			if err != nil {
				return nil, err
			}
			if err := staffGuard(r, form.Role); err != nil {
				return nil, err
			}
			user, err := client.CreateStaff(ctx, form)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{"user": user}, nil
		},
		Update: func(ctx context.Context, r *http.Request, id int, body []byte) (interface{}, error) {
			form, err := decodeStaffForm(body, false)
			if err != nil {
				return nil, err
			}
			if err := staffGuard(r, form.Role); err != nil {
				return nil, err
			}
			user, err := client.UpdateStaff(ctx, id, form)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{"user": user}, nil
		},
	}
}
