package backoffice

import (
	"context"
	"strings"
	"sync"

	"github.com/sekawan-grup/raya/internal/domain"
	"github.com/sekawan-grup/raya/internal/logger"
)

type CategoryAPI interface {
	Categories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, name string, order int) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id uint, name string, order int) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id uint) error
}

type CategoryState struct {
	Categories []domain.Category
	Loading    bool
	Error      string
}

func (s CategoryState) clone() CategoryState {
	s.Categories = append([]domain.Category(nil), s.Categories...)
	return s
}

// CategoryManager lists and edits categories. Every successful mutation is
// followed by a full re-fetch; nothing is patched locally.
type CategoryManager struct {
	api    CategoryAPI
	logger logger.Logger

	busy      busyFlag
	mu        sync.Mutex
	state     CategoryState
	observers observers[CategoryState]
}

func NewCategoryManager(api CategoryAPI, log logger.Logger) *CategoryManager {
	return &CategoryManager{api: api, logger: log.Named("categories")}
}

func (m *CategoryManager) State() CategoryState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

func (m *CategoryManager) OnChange(fn func(CategoryState)) { m.observers.add(fn) }

func (m *CategoryManager) set(fn func(*CategoryState)) {
	m.mu.Lock()
	fn(&m.state)
	snap := m.state.clone()
	m.mu.Unlock()
	m.observers.notify(snap)
}

// Load fetches the list. On failure the previous list stays on screen.
func (m *CategoryManager) Load(ctx context.Context) error {
	if err := m.busy.acquire(); err != nil {
		return err
	}
	defer m.busy.release()
	return m.fetch(ctx)
}

func (m *CategoryManager) fetch(ctx context.Context) error {
	m.set(func(s *CategoryState) { s.Loading, s.Error = true, "" })

	cats, err := m.api.Categories(ctx)
	if err != nil {
		m.set(func(s *CategoryState) {
			s.Loading = false
			s.Error = message(err, "Failed to fetch categories")
		})
		return err
	}

	m.set(func(s *CategoryState) {
		s.Loading = false
		s.Categories = cats
	})
	return nil
}

func (m *CategoryManager) Create(ctx context.Context, name string, order int) error {
	if strings.TrimSpace(name) == "" {
		m.set(func(s *CategoryState) { s.Error = "Nama kategori harus diisi" })
		return ErrValidation
	}
	return m.mutate(ctx, "Gagal menambah kategori", func() error {
		_, err := m.api.CreateCategory(ctx, name, order)
		return err
	})
}

// Update replaces name and order of category id.
func (m *CategoryManager) Update(ctx context.Context, id uint, name string, order int) error {
	if strings.TrimSpace(name) == "" {
		m.set(func(s *CategoryState) { s.Error = "Nama kategori harus diisi" })
		return ErrValidation
	}
	return m.mutate(ctx, "Gagal memperbarui kategori", func() error {
		_, err := m.api.UpdateCategory(ctx, id, name, order)
		return err
	})
}

// Delete removes category id. The API deletes its links with it.
func (m *CategoryManager) Delete(ctx context.Context, id uint) error {
	return m.mutate(ctx, "Gagal menghapus kategori", func() error {
		return m.api.DeleteCategory(ctx, id)
	})
}

func (m *CategoryManager) mutate(ctx context.Context, fallback string, fn func() error) error {
	if err := m.busy.acquire(); err != nil {
		return err
	}
	defer m.busy.release()

	m.set(func(s *CategoryState) { s.Loading, s.Error = true, "" })
	if err := fn(); err != nil {
		m.set(func(s *CategoryState) {
			s.Loading = false
			s.Error = message(err, fallback)
		})
		return err
	}
	return m.fetch(ctx)
}
