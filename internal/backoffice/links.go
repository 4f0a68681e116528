package backoffice

import (
	"context"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/sekawan-grup/raya/internal/apiclient"
	"github.com/sekawan-grup/raya/internal/domain"
	"github.com/sekawan-grup/raya/internal/logger"
)

type LinkAPI interface {
	Categories(ctx context.Context) ([]domain.Category, error)
	AllLinks(ctx context.Context) ([]domain.Link, error)
	CategoryLinks(ctx context.Context, categoryID uint) ([]domain.Link, error)
	CreateLink(ctx context.Context, categoryID uint, in apiclient.LinkInput) (*domain.Link, error)
	UpdateLink(ctx context.Context, categoryID, linkID uint, in apiclient.LinkInput) (*domain.Link, error)
	DeleteLink(ctx context.Context, categoryID, linkID uint) error
}

// LinkForm is the create form.
type LinkForm struct {
	Title    string
	URL      string
	ImageURL string
	Price    decimal.Decimal
	PriceStr string
	Order    int
	IsActive bool
}

// NewLinkForm returns the empty form: no price, active.
func NewLinkForm() LinkForm {
	return LinkForm{IsActive: true}
}

// SetPrice parses what was typed in the price field and derives the
// formatted display string with it. Both are submitted as typed.
func (f *LinkForm) SetPrice(input string) {
	f.Price, f.PriceStr = domain.ParsePriceInput(input)
}

func (f LinkForm) input() apiclient.LinkInput {
	return apiclient.LinkInput{
		Title:    f.Title,
		URL:      f.URL,
		ImageURL: f.ImageURL,
		Price:    f.Price,
		PriceStr: f.PriceStr,
		Order:    f.Order,
		IsActive: f.IsActive,
	}
}

// FieldErrors maps a JSON field name to its validation message.
type FieldErrors map[string]string

// ValidateLink reports every empty required field at once.
func ValidateLink(title, url, imageURL string) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(title) == "" {
		errs["title"] = "Judul link wajib diisi"
	}
	if strings.TrimSpace(url) == "" {
		errs["url"] = "URL wajib diisi"
	}
	if strings.TrimSpace(imageURL) == "" {
		errs["image_url"] = "URL gambar wajib diisi"
	}
	return errs
}

// Conflict records a reconciliation where the server disagreed with the
// optimistic local state. The server version is kept.
type Conflict struct {
	Op     string // "update" or "delete"
	LinkID uint
	Local  *domain.Link // nil for a delete
	Server *domain.Link // nil when the server no longer has the link
}

type LinkState struct {
	Categories  []domain.Category
	Active      *domain.Category
	Links       map[uint][]domain.Link // by category id
	Form        LinkForm
	FieldErrors FieldErrors
	Loading     bool
	Error       string
	Conflicts   []Conflict
}

// ActiveLinks returns the list shown for the active category.
func (s LinkState) ActiveLinks() []domain.Link {
	if s.Active == nil {
		return nil
	}
	return s.Links[s.Active.ID]
}

func (s LinkState) clone() LinkState {
	s.Categories = append([]domain.Category(nil), s.Categories...)
	if s.Active != nil {
		c := *s.Active
		s.Active = &c
	}
	links := make(map[uint][]domain.Link, len(s.Links))
	for id, l := range s.Links {
		links[id] = append([]domain.Link(nil), l...)
	}
	s.Links = links
	if s.FieldErrors != nil {
		fe := make(FieldErrors, len(s.FieldErrors))
		for k, v := range s.FieldErrors {
			fe[k] = v
		}
		s.FieldErrors = fe
	}
	s.Conflicts = append([]Conflict(nil), s.Conflicts...)
	return s
}

// LinkManager edits the links of one active category at a time.
//
// Update and Delete are optimistic: the local list changes first, then the
// call is awaited, then the category is re-fetched and the server's answer
// replaces the local one.
type LinkManager struct {
	api    LinkAPI
	logger logger.Logger

	busy      busyFlag
	mu        sync.Mutex
	state     LinkState
	observers observers[LinkState]
}

func NewLinkManager(api LinkAPI, log logger.Logger) *LinkManager {
	return &LinkManager{
		api:    api,
		logger: log.Named("links"),
		state: LinkState{
			Links: make(map[uint][]domain.Link),
			Form:  NewLinkForm(),
		},
	}
}

func (m *LinkManager) State() LinkState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

func (m *LinkManager) OnChange(fn func(LinkState)) { m.observers.add(fn) }

func (m *LinkManager) set(fn func(*LinkState)) {
	m.mu.Lock()
	fn(&m.state)
	snap := m.state.clone()
	m.mu.Unlock()
	m.observers.notify(snap)
}

// SetForm replaces the create form.
func (m *LinkManager) SetForm(f LinkForm) {
	m.set(func(s *LinkState) { s.Form = f })
}

// Load fetches the categories, selects the first one and fetches its links.
func (m *LinkManager) Load(ctx context.Context) error {
	if err := m.busy.acquire(); err != nil {
		return err
	}
	defer m.busy.release()

	m.set(func(s *LinkState) { s.Loading, s.Error = true, "" })
	cats, err := m.api.Categories(ctx)
	if err != nil {
		m.set(func(s *LinkState) {
			s.Loading = false
			s.Error = message(err, "An unexpected error occurred")
		})
		return err
	}

	var active *domain.Category
	if len(cats) > 0 {
		first := cats[0]
		active = &first
	}
	m.set(func(s *LinkState) {
		s.Categories = cats
		s.Active = active
	})
	if active == nil {
		m.set(func(s *LinkState) { s.Loading = false })
		return nil
	}
	return m.refresh(ctx, active.ID)
}

// Select makes categoryID active and fetches its links.
func (m *LinkManager) Select(ctx context.Context, categoryID uint) error {
	if err := m.busy.acquire(); err != nil {
		return err
	}
	defer m.busy.release()

	var found *domain.Category
	m.mu.Lock()
	for _, c := range m.state.Categories {
		if c.ID == categoryID {
			found = &c
			break
		}
	}
	m.mu.Unlock()
	if found == nil {
		m.set(func(s *LinkState) { s.Error = "Kategori tidak ditemukan" })
		return ErrNoCategory
	}

	m.set(func(s *LinkState) { s.Active = found })
	return m.refresh(ctx, categoryID)
}

// Refresh re-fetches the links of categoryID.
func (m *LinkManager) Refresh(ctx context.Context, categoryID uint) error {
	if err := m.busy.acquire(); err != nil {
		return err
	}
	defer m.busy.release()
	return m.refresh(ctx, categoryID)
}

func (m *LinkManager) refresh(ctx context.Context, categoryID uint) error {
	m.set(func(s *LinkState) { s.Loading, s.Error = true, "" })

	links, bulkErr, err := m.fetchLinks(ctx, categoryID)
	if err != nil {
		m.set(func(s *LinkState) {
			s.Loading = false
			s.Error = message(err, "An unexpected error occurred")
		})
		return err
	}

	m.set(func(s *LinkState) {
		s.Loading = false
		s.Links[categoryID] = links
		if bulkErr != nil {
			s.Error = message(bulkErr, "Failed to fetch links")
		}
	})
	return nil
}

// fetchLinks filters the full link list by category and sorts it by order,
// keeping fetch order on ties. When the full list cannot be fetched the
// category endpoint is tried and bulkErr reports the first failure, so the
// screen keeps showing it even though links were loaded. If the fallback fails
// too, err is the first error.
func (m *LinkManager) fetchLinks(ctx context.Context, categoryID uint) (links []domain.Link, bulkErr, err error) {
	all, err := m.api.AllLinks(ctx)
	if err == nil {
		links = make([]domain.Link, 0, len(all))
		for _, l := range all {
			if l.CategoryID == categoryID {
				links = append(links, l)
			}
		}
		domain.SortLinks(links)
		return links, nil, nil
	}

	m.logger.Debug("full link list failed, trying category endpoint",
		logger.Uint("category_id", categoryID),
		logger.Error(err))

	links, fallbackErr := m.api.CategoryLinks(ctx, categoryID)
	if fallbackErr != nil {
		return nil, nil, err
	}
	return links, err, nil
}

func (m *LinkManager) activeCategory() *domain.Category {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Active == nil {
		return nil
	}
	c := *m.state.Active
	return &c
}

// Create submits the form to the active category, then re-fetches the
// category and resets the form.
func (m *LinkManager) Create(ctx context.Context) error {
	active := m.activeCategory()
	if active == nil {
		m.set(func(s *LinkState) { s.Error = "Pilih kategori terlebih dahulu" })
		return ErrNoCategory
	}

	form := m.State().Form
	if errs := ValidateLink(form.Title, form.URL, form.ImageURL); len(errs) > 0 {
		m.set(func(s *LinkState) { s.FieldErrors = errs })
		return ErrValidation
	}

	if err := m.busy.acquire(); err != nil {
		return err
	}
	defer m.busy.release()

	m.set(func(s *LinkState) {
		s.FieldErrors = nil
		s.Loading, s.Error = true, ""
	})

	if _, err := m.api.CreateLink(ctx, active.ID, form.input()); err != nil {
		m.set(func(s *LinkState) {
			s.Loading = false
			s.Error = message(err, "Gagal membuat link")
		})
		return err
	}

	m.set(func(s *LinkState) { s.Form = NewLinkForm() })
	return m.refresh(ctx, active.ID)
}

// Update saves an edited link of the active category.
func (m *LinkManager) Update(ctx context.Context, edited domain.Link) error {
	active := m.activeCategory()
	if active == nil {
		return ErrNoCategory
	}

	if errs := ValidateLink(edited.Title, edited.URL, edited.ImageURL); len(errs) > 0 {
		m.set(func(s *LinkState) { s.FieldErrors = errs })
		return ErrValidation
	}

	if err := m.busy.acquire(); err != nil {
		return err
	}
	defer m.busy.release()

	edited.CategoryID = active.ID
	m.set(func(s *LinkState) {
		s.FieldErrors = nil
		s.Loading, s.Error = true, ""
		list := s.Links[active.ID]
		for i := range list {
			if list[i].ID == edited.ID {
				list[i] = edited
			}
		}
	})

	_, err := m.api.UpdateLink(ctx, active.ID, edited.ID, apiclient.LinkInputFrom(edited))
	if err != nil {
		m.logger.Debug("update failed, reconciling", logger.Uint("link_id", edited.ID), logger.Error(err))
	}
	local := edited
	return m.reconcile(ctx, active.ID, err, "Gagal memperbarui link", func(server []domain.Link) *Conflict {
		got := findLink(server, edited.ID)
		if got != nil && sameContent(*got, local) {
			return nil
		}
		return &Conflict{Op: "update", LinkID: edited.ID, Local: &local, Server: got}
	})
}

// Delete removes a link of the active category.
func (m *LinkManager) Delete(ctx context.Context, linkID uint) error {
	active := m.activeCategory()
	if active == nil {
		return ErrNoCategory
	}

	if err := m.busy.acquire(); err != nil {
		return err
	}
	defer m.busy.release()

	m.set(func(s *LinkState) {
		s.Loading, s.Error = true, ""
		list := s.Links[active.ID]
		kept := make([]domain.Link, 0, len(list))
		for _, l := range list {
			if l.ID != linkID {
				kept = append(kept, l)
			}
		}
		s.Links[active.ID] = kept
	})

	err := m.api.DeleteLink(ctx, active.ID, linkID)
	if err != nil {
		m.logger.Debug("delete failed, reconciling", logger.Uint("link_id", linkID), logger.Error(err))
	}
	return m.reconcile(ctx, active.ID, err, "Gagal menghapus link", func(server []domain.Link) *Conflict {
		got := findLink(server, linkID)
		if got == nil {
			return nil
		}
		return &Conflict{Op: "delete", LinkID: linkID, Server: got}
	})
}

// reconcile re-fetches categoryID after a mutation finished with callErr and
// replaces the local list with the server's. check compares the result with
// the optimistic change. A failed re-fetch leaves the optimistic list.
func (m *LinkManager) reconcile(ctx context.Context, categoryID uint, callErr error, fallback string, check func([]domain.Link) *Conflict) error {
	server, bulkErr, fetchErr := m.fetchLinks(ctx, categoryID)
	if fetchErr != nil {
		m.set(func(s *LinkState) {
			s.Loading = false
			if callErr != nil {
				s.Error = message(callErr, fallback)
			} else {
				s.Error = message(fetchErr, "An unexpected error occurred")
			}
		})
		if callErr != nil {
			return callErr
		}
		return fetchErr
	}

	conflict := check(server)
	if conflict != nil {
		m.logger.Warn("server state differs from local edit",
			logger.String("op", conflict.Op),
			logger.Uint("link_id", conflict.LinkID))
	}

	m.set(func(s *LinkState) {
		s.Loading = false
		s.Links[categoryID] = server
		if conflict != nil {
			s.Conflicts = append(s.Conflicts, *conflict)
		}
		switch {
		case callErr != nil:
			s.Error = message(callErr, fallback)
		case bulkErr != nil:
			s.Error = message(bulkErr, "Failed to fetch links")
		}
	})
	return callErr
}

func findLink(links []domain.Link, id uint) *domain.Link {
	for i := range links {
		if links[i].ID == id {
			l := links[i]
			return &l
		}
	}
	return nil
}

// sameContent compares the fields an admin can edit.
func sameContent(a, b domain.Link) bool {
	return a.Title == b.Title &&
		a.URL == b.URL &&
		a.ImageURL == b.ImageURL &&
		a.Price.Equal(b.Price) &&
		a.PriceStr == b.PriceStr &&
		a.Order == b.Order &&
		a.IsActive == b.IsActive &&
		a.CategoryID == b.CategoryID
}
