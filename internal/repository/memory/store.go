// Package memory keeps users, projects and orders in process memory. It backs
// DATABASE_URL=memory:// for local runs and the HTTP tests; contents are lost
// on exit.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aryan0dhankhar/ordertrack/internal/domain"
)

// Store holds all three tables so foreign keys can be checked
type Store struct {
	mu       sync.RWMutex
	users    map[int64]*domain.User
	projects map[int64]*domain.Project
	orders   map[int64]*domain.Order
	nextID   int64
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:    map[int64]*domain.User{},
		projects: map[int64]*domain.Project{},
		orders:   map[int64]*domain.Order{},
		now:      time.Now,
	}
}

// SetClock replaces the timestamp source
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Users() *UserRepository {
	return &UserRepository{s}
}

func (s *Store) Projects() *ProjectRepository {
	return &ProjectRepository{s}
}

func (s *Store) Orders() *OrderRepository {
	return &OrderRepository{s}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func copyUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func copyProject(p *domain.Project) *domain.Project {
	c := *p
	return &c
}

func copyOrder(o *domain.Order) *domain.Order {
	c := *o
	return &c
}

// UserRepository implements domain.UserRepository
type UserRepository struct{ s *Store }

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	user.ID = r.s.id()
	user.CreatedAt = r.s.now()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = copyUser(user)
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) List(_ context.Context, status *domain.UserStatus) ([]*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*domain.User{}
	for _, u := range r.s.users {
		if status == nil || u.Status == *status {
			out = append(out, copyUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return newerFirst(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID)
	})
	return out, nil
}

func (r *UserRepository) UpdateStatus(_ context.Context, id int64, status domain.UserStatus) (*domain.User, error) {
	return r.update(id, func(u *domain.User) { u.Status = status })
}

func (r *UserRepository) UpdateRole(_ context.Context, id int64, role domain.Role) (*domain.User, error) {
	return r.update(id, func(u *domain.User) { u.Role = role })
}

func (r *UserRepository) update(id int64, fn func(*domain.User)) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	fn(u)
	u.UpdatedAt = r.s.now()
	return copyUser(u), nil
}

// ProjectRepository implements domain.ProjectRepository
type ProjectRepository struct{ s *Store }

func (r *ProjectRepository) Create(_ context.Context, project *domain.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[project.UserID]; !ok {
		return domain.ErrUserNotFound
	}
	project.ID = r.s.id()
	project.CreatedAt = r.s.now()
	r.s.projects[project.ID] = copyProject(project)
	return nil
}

func (r *ProjectRepository) GetByID(_ context.Context, id int64) (*domain.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.projects[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	return copyProject(p), nil
}

func (r *ProjectRepository) ListByUser(_ context.Context, userID int64) ([]*domain.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*domain.Project{}
	for _, p := range r.s.projects {
		if p.UserID == userID {
			out = append(out, copyProject(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return newerFirst(out[j].CreatedAt, out[j].ID, out[i].CreatedAt, out[i].ID)
	})
	return out, nil
}

// OrderRepository implements domain.OrderRepository
type OrderRepository struct{ s *Store }

func (r *OrderRepository) Create(_ context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.projects[order.ProjectID]; !ok {
		return domain.ErrProjectNotFound
	}
	order.ID = r.s.id()
	order.CreatedAt = r.s.now()
	r.s.orders[order.ID] = copyOrder(order)
	return nil
}

func (r *OrderRepository) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return copyOrder(o), nil
}

func (r *OrderRepository) List(_ context.Context, filter domain.OrderFilter, page domain.Page) ([]*domain.Order, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	search := strings.ToLower(filter.Search)
	matched := []*domain.Order{}
	for _, o := range r.s.orders {
		if o.ProjectID != filter.ProjectID {
			continue
		}
		if filter.PaymentStatus != "" && o.PaymentStatus != filter.PaymentStatus {
			continue
		}
		if filter.DeliveryStatus != "" && o.DeliveryStatus != filter.DeliveryStatus {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(o.Title), search) {
			continue
		}
		matched = append(matched, copyOrder(o))
	}
	sort.Slice(matched, func(i, j int) bool {
		return newerFirst(matched[i].CreatedAt, matched[i].ID, matched[j].CreatedAt, matched[j].ID)
	})

	total := len(matched)
	start := min(max(page.Offset(), 0), total)
	end := min(start+max(page.Limit, 0), total)
	return matched[start:end], total, nil
}

func (r *OrderRepository) Update(_ context.Context, id int64, patch domain.OrderPatch) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	patch.Apply(o)
	return copyOrder(o), nil
}

func (r *OrderRepository) Delete(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[id]; !ok {
		return false, nil
	}
	delete(r.s.orders, id)
	return true, nil
}

func newerFirst(at time.Time, aID int64, bt time.Time, bID int64) bool {
	if !at.Equal(bt) {
		return at.After(bt)
	}
	return aID > bID
}
