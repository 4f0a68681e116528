package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/sekawan-grup/raya/internal/domain"
)

// LinkInput is the body of link create and update calls.
type LinkInput struct {
	Title      string          `json:"title"`
	URL        string          `json:"url"`
	ImageURL   string          `json:"image_url"`
	Price      decimal.Decimal `json:"price"`
	PriceStr   string          `json:"price_str"`
	Order      int             `json:"order"`
	IsActive   bool            `json:"is_active"`
	CategoryID uint            `json:"category_id"`
}

// LinkInputFrom copies the editable fields of l.
func LinkInputFrom(l domain.Link) LinkInput {
	return LinkInput{
		Title:      l.Title,
		URL:        l.URL,
		ImageURL:   l.ImageURL,
		Price:      l.Price,
		PriceStr:   l.PriceStr,
		Order:      l.Order,
		IsActive:   l.IsActive,
		CategoryID: l.CategoryID,
	}
}

type categoryInput struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// ─────────────────────────────────────────────────────────────────
// Auth
// ─────────────────────────────────────────────────────────────────

// Login exchanges credentials for a token. It does not store the token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/api/login",
		body:     map[string]string{"username": username, "password": password},
		out:      &out,
		fallback: "Login failed",
	})
	if err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", &APIError{Status: http.StatusOK, Message: "Login failed"}
	}
	return out.Token, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/api/logout",
		authed:   true,
		fallback: "Logout failed",
	})
}

func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	return c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/api/change-password",
		authed:   true,
		body:     map[string]string{"current_password": current, "new_password": next},
		fallback: "Gagal mengubah password",
	})
}

// ─────────────────────────────────────────────────────────────────
// Categories
// ─────────────────────────────────────────────────────────────────

func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/api/categories",
		authed:   true,
		out:      &out,
		fallback: "Failed to fetch categories",
	})
	return out, err
}

func (c *Client) CreateCategory(ctx context.Context, name string, order int) (*domain.Category, error) {
	var out domain.Category
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/api/category",
		authed:   true,
		body:     categoryInput{Name: name, Order: order},
		out:      &out,
		fallback: "Gagal menambah kategori",
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id uint, name string, order int) (*domain.Category, error) {
	var out domain.Category
	err := c.do(ctx, call{
		method:   http.MethodPatch,
		path:     fmt.Sprintf("/api/category/%d", id),
		authed:   true,
		body:     categoryInput{Name: name, Order: order},
		out:      &out,
		fallback: "Gagal memperbarui kategori",
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id uint) error {
	return c.do(ctx, call{
		method:   http.MethodDelete,
		path:     fmt.Sprintf("/api/category/%d", id),
		authed:   true,
		fallback: "Gagal menghapus kategori",
	})
}

// ─────────────────────────────────────────────────────────────────
// Links
// ─────────────────────────────────────────────────────────────────

// AllLinks returns every link, active or not.
func (c *Client) AllLinks(ctx context.Context) ([]domain.Link, error) {
	var out []domain.Link
	err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/api/links/all",
		authed:   true,
		out:      &out,
		fallback: "Failed to fetch links",
	})
	return out, err
}

// CategoryLinks returns the active links of one category.
func (c *Client) CategoryLinks(ctx context.Context, categoryID uint) ([]domain.Link, error) {
	var out []domain.Link
	err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     fmt.Sprintf("/api/categories/%d/links", categoryID),
		authed:   true,
		out:      &out,
		fallback: "Failed to fetch links",
	})
	return out, err
}

func (c *Client) CreateLink(ctx context.Context, categoryID uint, in LinkInput) (*domain.Link, error) {
	in.CategoryID = categoryID
	var out domain.Link
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     fmt.Sprintf("/api/categories/%d/links", categoryID),
		authed:   true,
		body:     in,
		out:      &out,
		fallback: "Gagal membuat link",
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateLink(ctx context.Context, categoryID, linkID uint, in LinkInput) (*domain.Link, error) {
	in.CategoryID = categoryID
	var out domain.Link
	err := c.do(ctx, call{
		method:   http.MethodPatch,
		path:     fmt.Sprintf("/api/categories/%d/links/%d", categoryID, linkID),
		authed:   true,
		body:     in,
		out:      &out,
		fallback: "Gagal memperbarui link",
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteLink(ctx context.Context, categoryID, linkID uint) error {
	return c.do(ctx, call{
		method:   http.MethodDelete,
		path:     fmt.Sprintf("/api/categories/%d/links/%d", categoryID, linkID),
		authed:   true,
		fallback: "Gagal menghapus link",
	})
}

// CategoriesWithLinks is the public catalog. It needs no token.
func (c *Client) CategoriesWithLinks(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/api/categories-with-links",
		out:      &out,
		fallback: "Failed to fetch products",
	})
	return out, err
}

// ─────────────────────────────────────────────────────────────────
// Uploads
// ─────────────────────────────────────────────────────────────────

type multipartBody struct {
	reader      io.Reader
	contentType string
}

// UploadImage sends an image as the multipart "file" field and returns the
// public URL to use as a link's image_url.
func (c *Client) UploadImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}

	var out struct {
		URL string `json:"url"`
	}
	err = c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/api/uploads/image",
		authed:   true,
		body:     &multipartBody{reader: &buf, contentType: mw.FormDataContentType()},
		out:      &out,
		fallback: "Upload gambar gagal",
	})
	return out.URL, err
}
