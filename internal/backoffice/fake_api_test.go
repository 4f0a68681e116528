package backoffice

import (
	"context"
	"sync"

	"github.com/sekawan-grup/raya/internal/apiclient"
	"github.com/sekawan-grup/raya/internal/domain"
)

// fakeAPI stands in for apiclient.Client. Err fields fail the matching call;
// calls records every method invoked, in order.
type fakeAPI struct {
	mu sync.Mutex

	CategoryList []domain.Category
	LinkList     []domain.Link
	Token        string

	LoginErr          error
	LogoutErr         error
	ChangePasswordErr error
	CategoriesErr     error
	CreateCategoryErr error
	DeleteCategoryErr error
	AllLinksErr       error
	CategoryLinksErr  error
	CreateLinkErr     error
	UpdateLinkErr     error
	DeleteLinkErr     error

	// applyDelete false simulates a delete the server acknowledged but did not apply.
	applyDelete bool
	// serverEdit rewrites a link as the server stores it on update.
	serverEdit func(domain.Link) domain.Link
	// block, when set, holds CreateLink until closed.
	block chan struct{}

	calls   []string
	created []apiclient.LinkInput
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{applyDelete: true}
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeAPI) Login(_ context.Context, username, password string) (string, error) {
	f.record("Login")
	if f.LoginErr != nil {
		return "", f.LoginErr
	}
	return f.Token, nil
}

func (f *fakeAPI) Logout(context.Context) error {
	f.record("Logout")
	return f.LogoutErr
}

func (f *fakeAPI) ChangePassword(context.Context, string, string) error {
	f.record("ChangePassword")
	return f.ChangePasswordErr
}

func (f *fakeAPI) Categories(context.Context) ([]domain.Category, error) {
	f.record("Categories")
	if f.CategoriesErr != nil {
		return nil, f.CategoriesErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Category(nil), f.CategoryList...), nil
}

func (f *fakeAPI) CreateCategory(_ context.Context, name string, order int) (*domain.Category, error) {
	f.record("CreateCategory")
	if f.CreateCategoryErr != nil {
		return nil, f.CreateCategoryErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c := domain.Category{ID: uint(len(f.CategoryList) + 1), Name: name, Order: order}
	f.CategoryList = append(f.CategoryList, c)
	return &c, nil
}

func (f *fakeAPI) UpdateCategory(_ context.Context, id uint, name string, order int) (*domain.Category, error) {
	f.record("UpdateCategory")
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.CategoryList {
		if f.CategoryList[i].ID == id {
			f.CategoryList[i].Name, f.CategoryList[i].Order = name, order
			c := f.CategoryList[i]
			return &c, nil
		}
	}
	return nil, &apiclient.APIError{Status: 404, Message: "Category not found"}
}

func (f *fakeAPI) DeleteCategory(_ context.Context, id uint) error {
	f.record("DeleteCategory")
	if f.DeleteCategoryErr != nil {
		return f.DeleteCategoryErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.CategoryList[:0]
	for _, c := range f.CategoryList {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	f.CategoryList = kept
	return nil
}

func (f *fakeAPI) AllLinks(context.Context) ([]domain.Link, error) {
	f.record("AllLinks")
	if f.AllLinksErr != nil {
		return nil, f.AllLinksErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Link(nil), f.LinkList...), nil
}

func (f *fakeAPI) CategoryLinks(_ context.Context, categoryID uint) ([]domain.Link, error) {
	f.record("CategoryLinks")
	if f.CategoryLinksErr != nil {
		return nil, f.CategoryLinksErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Link
	for _, l := range f.LinkList {
		if l.CategoryID == categoryID && l.IsActive {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeAPI) CreateLink(_ context.Context, categoryID uint, in apiclient.LinkInput) (*domain.Link, error) {
	f.record("CreateLink")
	if f.block != nil {
		<-f.block
	}
	if f.CreateLinkErr != nil {
		return nil, f.CreateLinkErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, in)
	l := domain.Link{
		ID:         uint(100 + len(f.created)),
		Title:      in.Title,
		URL:        in.URL,
		ImageURL:   in.ImageURL,
		Price:      in.Price,
		PriceStr:   in.PriceStr,
		IsActive:   in.IsActive,
		CategoryID: categoryID,
	}
	f.LinkList = append(f.LinkList, l)
	return &l, nil
}

func (f *fakeAPI) UpdateLink(_ context.Context, categoryID, linkID uint, in apiclient.LinkInput) (*domain.Link, error) {
	f.record("UpdateLink")
	if f.UpdateLinkErr != nil {
		return nil, f.UpdateLinkErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.LinkList {
		l := &f.LinkList[i]
		if l.ID != linkID || l.CategoryID != categoryID {
			continue
		}
		l.Title, l.URL, l.ImageURL = in.Title, in.URL, in.ImageURL
		l.Price, l.PriceStr, l.Order, l.IsActive = in.Price, in.PriceStr, in.Order, in.IsActive
		if f.serverEdit != nil {
			*l = f.serverEdit(*l)
		}
		out := *l
		return &out, nil
	}
	return nil, &apiclient.APIError{Status: 404, Message: "Link not found"}
}

func (f *fakeAPI) DeleteLink(_ context.Context, categoryID, linkID uint) error {
	f.record("DeleteLink")
	if f.DeleteLinkErr != nil {
		return f.DeleteLinkErr
	}
	if !f.applyDelete {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.LinkList[:0]
	for _, l := range f.LinkList {
		if l.ID != linkID {
			kept = append(kept, l)
		}
	}
	f.LinkList = kept
	return nil
}

func (f *fakeAPI) CategoriesWithLinks(context.Context) ([]domain.Category, error) {
	f.record("CategoriesWithLinks")
	if f.CategoriesErr != nil {
		return nil, f.CategoriesErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Category, 0, len(f.CategoryList))
	for _, c := range f.CategoryList {
		for _, l := range f.LinkList {
			if l.CategoryID == c.ID {
				c.Links = append(c.Links, l)
			}
		}
		out = append(out, c)
	}
	return out, nil
}
