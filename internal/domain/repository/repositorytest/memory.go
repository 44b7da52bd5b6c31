// Package repositorytest provides in-memory implementations of the repository,
// denylist and load-event ports for service and handler tests.
package repositorytest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"deals_api/internal/common"
	"deals_api/internal/domain/model"
	"deals_api/internal/domain/repository"

	"github.com/jackc/pgx/v5/pgconn"
)

// Store keeps all tables behind one lock so bulk inserts are atomic.
type Store struct {
	mu         sync.Mutex
	users      map[uint]*model.User
	categories map[uint]*model.Category
	products   map[uint]*model.ProductDeal
	loadLogs   []model.DataLoadLog
	nextID     uint

	// FailBulkCreate makes BulkCreate return this error without writing.
	FailBulkCreate error
}

func NewStore() *Store {
	return &Store{
		users:      map[uint]*model.User{},
		categories: map[uint]*model.Category{},
		products:   map[uint]*model.ProductDeal{},
	}
}

func (s *Store) id() uint {
	s.nextID++
	return s.nextID
}

func (s *Store) Users() repository.UserRepository          { return userRepo{s} }
func (s *Store) Categories() repository.CategoryRepository { return categoryRepo{s} }
func (s *Store) Products() repository.ProductRepository    { return productRepo{s} }
func (s *Store) LoadLogs() repository.LoadLogRepository    { return loadLogRepo{s} }

// ProductCount counts stored rows, soft-deleted included.
func (s *Store) ProductCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.products)
}

func foreignKeyViolation() error {
	return &pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"}
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == user.Username {
			return fmt.Errorf("memUserRepository.Create: %w", common.ErrConflict)
		}
	}
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	user.ID = r.s.id()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	r.s.users[user.ID] = &stored
	return nil
}

func (r userRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			found := *u
			return &found, nil
		}
	}
	return nil, common.ErrNotFound
}

// SetRole changes a stored user's role, mimicking a manual database update.
func (s *Store) SetRole(username string, role model.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			u.Role = role
		}
	}
}

type categoryRepo struct{ s *Store }

func (r categoryRepo) Create(_ context.Context, category *model.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	category.ID = r.s.id()
	category.CreatedAt = time.Now()
	category.UpdatedAt = category.CreatedAt
	stored := *category
	r.s.categories[category.ID] = &stored
	return nil
}

func (r categoryRepo) FindByID(_ context.Context, id uint) (*model.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	found := *c
	return &found, nil
}

func (r categoryRepo) List(_ context.Context, limit, offset int) ([]model.Category, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := make([]model.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		all = append(all, *c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, limit, offset), int64(len(all)), nil
}

func (r categoryRepo) Update(_ context.Context, category *model.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[category.ID]
	if !ok {
		return common.ErrNotFound
	}
	c.Name = category.Name
	c.Slug = category.Slug
	c.UpdatedAt = time.Now()
	return nil
}

func (r categoryRepo) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[id]; !ok {
		return common.ErrNotFound
	}
	for _, p := range r.s.products {
		if p.CategoryID == id {
			return fmt.Errorf("memCategoryRepository.Delete: %w", common.ErrBadRequest)
		}
	}
	delete(r.s.categories, id)
	return nil
}

func (r categoryRepo) CountProducts(_ context.Context, id uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, p := range r.s.products {
		if p.CategoryID == id {
			n++
		}
	}
	return n, nil
}

type productRepo struct{ s *Store }

func (r productRepo) insert(p *model.ProductDeal) {
	p.ID = r.s.id()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	stored := *p
	r.s.products[p.ID] = &stored
}

func (r productRepo) Create(_ context.Context, product *model.ProductDeal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[product.CategoryID]; !ok {
		return foreignKeyViolation()
	}
	r.insert(product)
	return nil
}

func (r productRepo) BulkCreate(_ context.Context, products []model.ProductDeal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailBulkCreate != nil {
		return r.s.FailBulkCreate
	}
	for _, p := range products {
		if _, ok := r.s.categories[p.CategoryID]; !ok {
			return foreignKeyViolation()
		}
	}
	for i := range products {
		r.insert(&products[i])
	}
	return nil
}

func (r productRepo) FindByID(_ context.Context, id uint) (*model.ProductDeal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok || p.Deleted {
		return nil, common.ErrNotFound
	}
	found := *p
	return &found, nil
}

func (r productRepo) List(_ context.Context, filter model.ProductFilter, limit, offset int) ([]model.ProductDeal, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []model.ProductDeal
	for _, p := range r.s.products {
		if p.Deleted {
			continue
		}
		if filter.CategoryID != nil && p.CategoryID != *filter.CategoryID {
			continue
		}
		if filter.Active != nil && p.Active != *filter.Active {
			continue
		}
		all = append(all, *p)
	}

	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if filter.DiscountOrder != "" {
			if (a.Discount == nil) != (b.Discount == nil) {
				return a.Discount != nil
			}
			if a.Discount != nil && *a.Discount != *b.Discount {
				if filter.DiscountOrder == model.DiscountAsc {
					return *a.Discount < *b.Discount
				}
				return *a.Discount > *b.Discount
			}
			return a.ID < b.ID
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		return a.ID < b.ID
	})
	return page(all, limit, offset), int64(len(all)), nil
}

func (r productRepo) Update(_ context.Context, product *model.ProductDeal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[product.ID]
	if !ok || p.Deleted {
		return common.ErrNotFound
	}
	if _, ok := r.s.categories[product.CategoryID]; !ok {
		return foreignKeyViolation()
	}
	product.UpdatedAt = time.Now()
	stored := *product
	r.s.products[product.ID] = &stored
	return nil
}

func (r productRepo) SoftDeleteByID(_ context.Context, id uint) (*model.ProductDeal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok || p.Deleted {
		return nil, common.ErrNotFound
	}
	p.Deleted = true
	found := *p
	return &found, nil
}

func (r productRepo) byDate(date time.Time, apply func(p *model.ProductDeal) bool) int64 {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	day := date.Format("2006-01-02")
	var n int64
	for _, p := range r.s.products {
		if p.Deleted || p.Date.Format("2006-01-02") != day {
			continue
		}
		if apply(p) {
			n++
		}
	}
	return n
}

func (r productRepo) SoftDeleteByDate(_ context.Context, date time.Time) (int64, error) {
	return r.byDate(date, func(p *model.ProductDeal) bool {
		p.Deleted = true
		return true
	}), nil
}

func (r productRepo) DeactivateByDate(_ context.Context, date time.Time) (int64, error) {
	return r.byDate(date, func(p *model.ProductDeal) bool {
		p.Active = false
		return true
	}), nil
}

type loadLogRepo struct{ s *Store }

func (r loadLogRepo) Create(_ context.Context, entry *model.DataLoadLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	entry.ID = r.s.id()
	entry.CreatedAt = time.Now()
	r.s.loadLogs = append(r.s.loadLogs, *entry)
	return nil
}

func (r loadLogRepo) List(_ context.Context, limit, offset int) ([]model.DataLoadLog, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := make([]model.DataLoadLog, len(r.s.loadLogs))
	for i, e := range r.s.loadLogs {
		all[len(all)-1-i] = e
	}
	return page(all, limit, offset), int64(len(all)), nil
}
