package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"marketplace-backoffice/internal/core/domain"
	"marketplace-backoffice/internal/core/ports"

	"github.com/google/uuid"
)

// The in-memory repos implement the same compare-and-swap contract as
// the postgres adapters: a status write only applies when the row still
// holds the expected prior status, under a single mutex per repo. Two
// concurrent transitions on one entity therefore cannot both succeed.

// --- In-Memory User Repo ---

type inMemoryUserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.User
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *inMemoryUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return fmt.Errorf("email already exists")
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *inMemoryUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *inMemoryUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryUserRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.UserStatus, reason *string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.Status != from {
		return false, nil
	}
	u.Status = to
	u.StatusReason = reason
	u.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *inMemoryUserRepo) UpdateKYCStatus(ctx context.Context, id uuid.UUID, from, to domain.KYCStatus, plan *domain.Plan) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.KYCStatus != from {
		return false, nil
	}
	u.KYCStatus = to
	if plan != nil {
		u.Plan = plan
	}
	u.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *inMemoryUserRepo) ResetCredential(ctx context.Context, id uuid.UUID, passwordHash string, mustChange bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user not found")
	}
	u.PasswordHash = passwordHash
	u.MustChangePassword = mustChange
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *inMemoryUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return fmt.Errorf("user not found")
	}
	delete(r.users, id)
	return nil
}

func (r *inMemoryUserRepo) List(ctx context.Context, params ports.UserListParams) ([]domain.User, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.User
	for _, u := range r.users {
		if params.Role != nil && u.Role != *params.Role {
			continue
		}
		if params.Status != nil && u.Status != *params.Status {
			continue
		}
		result = append(result, *u)
	}
	sortByCreated(result, func(u domain.User) time.Time { return u.CreatedAt })
	return paginate(result, params.Page, params.PageSize)
}

func (r *inMemoryUserRepo) CountByStatus(ctx context.Context, status domain.UserStatus) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, u := range r.users {
		if u.Status == status {
			n++
		}
	}
	return n, nil
}

// --- In-Memory Product Repo ---

type inMemoryProductRepo struct {
	mu       sync.RWMutex
	products map[uuid.UUID]*domain.Product
}

func newInMemoryProductRepo() *inMemoryProductRepo {
	return &inMemoryProductRepo{products: make(map[uuid.UUID]*domain.Product)}
}

func (r *inMemoryProductRepo) Create(ctx context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *inMemoryProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *inMemoryProductRepo) Approve(ctx context.Context, id uuid.UUID, margin, finalPrice int64, approvedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || p.Status != domain.ProductStatusPending {
		return false, nil
	}
	p.Status = domain.ProductStatusApproved
	p.Margin = margin
	p.FinalPrice = finalPrice
	p.ApprovedAt = &approvedAt
	p.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *inMemoryProductRepo) Reject(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || p.Status != domain.ProductStatusPending {
		return false, nil
	}
	p.Status = domain.ProductStatusRejected
	p.RejectionReason = &reason
	p.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *inMemoryProductRepo) List(ctx context.Context, params ports.ProductListParams) ([]domain.Product, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Product
	for _, p := range r.products {
		if params.SupplierID != nil && p.SupplierID != *params.SupplierID {
			continue
		}
		if params.Status != nil && p.Status != *params.Status {
			continue
		}
		result = append(result, *p)
	}
	sortByCreated(result, func(p domain.Product) time.Time { return p.CreatedAt })
	return paginate(result, params.Page, params.PageSize)
}

func (r *inMemoryProductRepo) CountByStatus(ctx context.Context, status domain.ProductStatus) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, p := range r.products {
		if p.Status == status {
			n++
		}
	}
	return n, nil
}

// --- In-Memory Order Repo ---

type inMemoryOrderRepo struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]*domain.Order
}

func newInMemoryOrderRepo() *inMemoryOrderRepo {
	return &inMemoryOrderRepo{orders: make(map[uuid.UUID]*domain.Order)}
}

func (r *inMemoryOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *inMemoryOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *inMemoryOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus, notes, reason *string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	if notes != nil {
		o.AdminNotes = notes
	}
	if reason != nil {
		o.RejectionReason = reason
	}
	o.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *inMemoryOrderRepo) List(ctx context.Context, params ports.OrderListParams) ([]domain.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Order
	for _, o := range r.orders {
		if params.SellerID != nil && o.SellerID != *params.SellerID {
			continue
		}
		if params.SupplierID != nil && o.SupplierID != *params.SupplierID {
			continue
		}
		if params.Status != nil && o.Status != *params.Status {
			continue
		}
		result = append(result, *o)
	}
	sortByCreated(result, func(o domain.Order) time.Time { return o.CreatedAt })
	return paginate(result, params.Page, params.PageSize)
}

func (r *inMemoryOrderRepo) CountByStatus(ctx context.Context, status domain.OrderStatus) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, o := range r.orders {
		if o.Status == status {
			n++
		}
	}
	return n, nil
}

// --- In-Memory KYC Repo ---

type inMemoryKYCRepo struct {
	mu          sync.RWMutex
	submissions map[uuid.UUID]*domain.KYCSubmission
}

func newInMemoryKYCRepo() *inMemoryKYCRepo {
	return &inMemoryKYCRepo{submissions: make(map[uuid.UUID]*domain.KYCSubmission)}
}

func (r *inMemoryKYCRepo) Create(ctx context.Context, sub *domain.KYCSubmission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *sub
	r.submissions[sub.ID] = &cp
	return nil
}

func (r *inMemoryKYCRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.KYCSubmission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.submissions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *inMemoryKYCRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.KYCSubmission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.submissions {
		if s.UserID == userID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryKYCRepo) Review(ctx context.Context, id uuid.UUID, to domain.KYCStatus, reason *string, reviewedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.submissions[id]
	if !ok || s.Status != domain.KYCStatusPending {
		return false, nil
	}
	s.Status = to
	s.RejectionReason = reason
	s.ReviewedAt = &reviewedAt
	s.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *inMemoryKYCRepo) List(ctx context.Context, params ports.KYCListParams) ([]domain.KYCSubmission, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.KYCSubmission
	for _, s := range r.submissions {
		if params.Status != nil && s.Status != *params.Status {
			continue
		}
		result = append(result, *s)
	}
	sortByCreated(result, func(s domain.KYCSubmission) time.Time { return s.CreatedAt })
	return paginate(result, params.Page, params.PageSize)
}

func (r *inMemoryKYCRepo) CountByStatus(ctx context.Context, status domain.KYCStatus) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, s := range r.submissions {
		if s.Status == status {
			n++
		}
	}
	return n, nil
}

// --- In-Memory Payout Repo ---

type inMemoryPayoutRepo struct {
	mu      sync.RWMutex
	payouts map[uuid.UUID]*domain.Payout
}

func newInMemoryPayoutRepo() *inMemoryPayoutRepo {
	return &inMemoryPayoutRepo{payouts: make(map[uuid.UUID]*domain.Payout)}
}

func (r *inMemoryPayoutRepo) Create(ctx context.Context, p *domain.Payout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.payouts[p.ID] = &cp
	return nil
}

func (r *inMemoryPayoutRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.payouts[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *inMemoryPayoutRepo) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Payout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.payouts {
		if p.OrderID == orderID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryPayoutRepo) MarkPaid(ctx context.Context, id uuid.UUID, amount int64, mode domain.PayoutMode, paidAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payouts[id]
	if !ok || p.Status != domain.PayoutStatusPending {
		return false, nil
	}
	p.Status = domain.PayoutStatusPaid
	p.PaidAmount = amount
	p.Mode = &mode
	p.PaidAt = &paidAt
	p.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *inMemoryPayoutRepo) List(ctx context.Context, params ports.PayoutListParams) ([]domain.Payout, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Payout
	for _, p := range r.payouts {
		if params.SupplierID != nil && p.SupplierID != *params.SupplierID {
			continue
		}
		if params.Status != nil && p.Status != *params.Status {
			continue
		}
		result = append(result, *p)
	}
	sortByCreated(result, func(p domain.Payout) time.Time { return p.CreatedAt })
	return paginate(result, params.Page, params.PageSize)
}

func (r *inMemoryPayoutRepo) CountByStatus(ctx context.Context, status domain.PayoutStatus) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, p := range r.payouts {
		if p.Status == status {
			n++
		}
	}
	return n, nil
}

// --- In-Memory Transition Repo ---

type inMemoryTransitionRepo struct {
	mu      sync.RWMutex
	records []domain.TransitionRecord
}

func newInMemoryTransitionRepo() *inMemoryTransitionRepo {
	return &inMemoryTransitionRepo{}
}

func (r *inMemoryTransitionRepo) Append(ctx context.Context, rec *domain.TransitionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, *rec)
	return nil
}

func (r *inMemoryTransitionRepo) ListByEntity(ctx context.Context, entityType domain.EntityType, entityID uuid.UUID) ([]domain.TransitionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.TransitionRecord
	for _, rec := range r.records {
		if rec.EntityType == entityType && rec.EntityID == entityID {
			result = append(result, rec)
		}
	}
	return result, nil
}

// --- In-Memory Transactor ---

// inMemoryTransactor runs the callback against the live repos. The
// map-backed repos offer no rollback; atomicity across repos is a
// PostgreSQL property exercised by the transactor's own tests. The
// per-repo mutex CAS still holds, which is what the concurrency
// tests here rely on.
type inMemoryTransactor struct {
	repos ports.TxRepos
}

func newInMemoryTransactor(repos ports.TxRepos) *inMemoryTransactor {
	return &inMemoryTransactor{repos: repos}
}

func (t *inMemoryTransactor) WithinTx(ctx context.Context, fn func(ports.TxRepos) error) error {
	return fn(t.repos)
}

// --- Helpers ---

func sortByCreated[T any](items []T, createdAt func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return createdAt(items[i]).After(createdAt(items[j]))
	})
}

func paginate[T any](items []T, page, pageSize int) ([]T, int64, error) {
	total := int64(len(items))
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}, total, nil
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], total, nil
}
