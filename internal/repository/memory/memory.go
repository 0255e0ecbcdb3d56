// Package memory is an in-process implementation of the repositories,
// used by the development backend's default mode and by tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jerseyshop/storefront/internal/domain"
	"github.com/jerseyshop/storefront/internal/repository"
	"github.com/jerseyshop/storefront/pkg/errors"
)

// db is the shared state behind every repository; one lock keeps
// stock and orders consistent with each other.
type db struct {
	mu          sync.Mutex
	users       map[string]*domain.User
	orders      map[string]*domain.Order
	stock       map[string]map[string]int
	messages    []*domain.Message
	idempotency map[string]*domain.IdempotencyKey
}

// NewRepositories creates an empty in-memory repository set
func NewRepositories() *repository.Repositories {
	d := &db{
		users:       make(map[string]*domain.User),
		orders:      make(map[string]*domain.Order),
		stock:       make(map[string]map[string]int),
		idempotency: make(map[string]*domain.IdempotencyKey),
	}
	return &repository.Repositories{
		User:           &userRepository{d},
		Order:          &orderRepository{d},
		Stock:          &stockRepository{d},
		Message:        &messageRepository{d},
		IdempotencyKey: &idempotencyKeyRepository{d},
	}
}

type userRepository struct{ *db }

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return &errors.ErrConflict{Message: "An account with this email already exists"}
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "user", ID: id}
	}
	cp := *u
	return &cp, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "user", ID: email}
}

func (r *userRepository) List(ctx context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type orderRepository struct{ *db }

func (r *orderRepository) Place(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// check every line before touching anything
	need := make(map[string]map[string]int)
	for _, it := range order.Items {
		if need[it.ProductID] == nil {
			need[it.ProductID] = make(map[string]int)
		}
		need[it.ProductID][it.Size] += it.Quantity
	}
	for _, it := range order.Items {
		available := r.stock[it.ProductID][it.Size]
		if need[it.ProductID][it.Size] > available {
			return repository.InsufficientStock(it, available)
		}
	}
	for pid, sizes := range need {
		for size, n := range sizes {
			if n > 0 {
				r.stock[pid][size] -= n
			}
		}
	}

	now := time.Now().UTC()
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = order.CreatedAt
	r.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id}
	}
	return cloneOrder(o), nil
}

func (r *orderRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Order, int, error) {
	return r.list(func(o *domain.Order) bool { return o.UserID == userID }, limit, offset)
}

func (r *orderRepository) List(ctx context.Context, status domain.OrderStatus, limit, offset int) ([]*domain.Order, int, error) {
	return r.list(func(o *domain.Order) bool { return status == "" || o.Status == status }, limit, offset)
}

func (r *orderRepository) list(match func(*domain.Order) bool, limit, offset int) ([]*domain.Order, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*domain.Order
	for _, o := range r.orders {
		if match(o) {
			all = append(all, o)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	total := len(all)
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	out := make([]*domain.Order, 0, end-offset)
	for _, o := range all[offset:end] {
		out = append(out, cloneOrder(o))
	}
	return out, total, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, restock bool) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id}
	}
	if restock {
		for _, it := range o.Items {
			if r.stock[it.ProductID] == nil {
				r.stock[it.ProductID] = make(map[string]int)
			}
			r.stock[it.ProductID][it.Size] += it.Quantity
		}
	}
	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	return cloneOrder(o), nil
}

func cloneOrder(o *domain.Order) *domain.Order {
	cp := *o
	cp.Items = append([]domain.OrderItem(nil), o.Items...)
	return &cp
}

type stockRepository struct{ *db }

func (r *stockRepository) List(ctx context.Context) ([]domain.StockEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.stock))
	for id := range r.stock {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]domain.StockEntry, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.StockEntry{ProductID: id, Stock: copyStock(r.stock[id])})
	}
	return out, nil
}

func (r *stockRepository) Get(ctx context.Context, productID string) (*domain.StockEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stock[productID]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "stock", ID: productID}
	}
	return &domain.StockEntry{ProductID: productID, Stock: copyStock(s)}, nil
}

func (r *stockRepository) Set(ctx context.Context, productID string, stock map[string]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stock[productID] = copyStock(stock)
	return nil
}

func copyStock(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

type messageRepository struct{ *db }

func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	return r.CreateBatch(ctx, []*domain.Message{msg})
}

func (r *messageRepository) CreateBatch(ctx context.Context, msgs []*domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for _, m := range msgs {
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		cp := *m
		r.messages = append(r.messages, &cp)
	}
	return nil
}

func (r *messageRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Message, error) {
	return r.list(func(m *domain.Message) bool { return m.UserID == userID }), nil
}

func (r *messageRepository) List(ctx context.Context) ([]*domain.Message, error) {
	return r.list(func(*domain.Message) bool { return true }), nil
}

// list returns matching messages newest first
func (r *messageRepository) list(match func(*domain.Message) bool) []*domain.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Message
	for i := len(r.messages) - 1; i >= 0; i-- {
		if m := r.messages[i]; match(m) {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out
}

func (r *messageRepository) MarkRead(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID == id && m.UserID == userID {
			m.Read = true
			return nil
		}
	}
	return &errors.ErrNotFound{Resource: "message", ID: id}
}

type idempotencyKeyRepository struct{ *db }

func (r *idempotencyKeyRepository) GetByKey(ctx context.Context, key string) (*domain.IdempotencyKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, ok := r.idempotency[key]
	if !ok {
		return nil, nil
	}
	cp := *k
	return &cp, nil
}

func (r *idempotencyKeyRepository) Create(ctx context.Context, key *domain.IdempotencyKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.idempotency[key.Key]; ok {
		return &errors.ErrConflict{Message: "idempotency key already used"}
	}
	if key.CreatedAt.IsZero() {
		key.CreatedAt = time.Now().UTC()
	}
	cp := *key
	r.idempotency[key.Key] = &cp
	return nil
}
