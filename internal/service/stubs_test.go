package service_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"pharmacare/internal/auth"
	"pharmacare/internal/dto"
	"pharmacare/internal/model"
	"pharmacare/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ── Users ─────────────────────────────────────────────────────────────────────

type stubUserRepo struct {
	users map[uuid.UUID]*model.User
	roles map[string]model.Role

	createErr error
}

func newStubUserRepo() *stubUserRepo {
	r := &stubUserRepo{users: map[uuid.UUID]*model.User{}, roles: map[string]model.Role{}}
	for _, name := range []string{model.RoleUser, model.RolePharmacy, model.RoleAdmin} {
		r.roles[name] = model.Role{ID: uuid.New(), Name: name}
	}
	return r
}

// seed stores a user hashed at the minimum bcrypt cost.
func (r *stubUserRepo) seed(email, password string, roles ...string) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	u := &model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    "Test",
		LastName:     "User",
		Enabled:      true,
		CreatedAt:    time.Now(),
	}
	for _, name := range roles {
		u.Roles = append(u.Roles, r.roles[name])
	}
	r.users[u.ID] = u
	return u
}

func (r *stubUserRepo) Create(_ context.Context, _ *gorm.DB, u *model.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) ExistsByEmail(ctx context.Context, _ *gorm.DB, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

func (r *stubUserRepo) FindRoles(_ context.Context, _ *gorm.DB, names ...string) ([]model.Role, error) {
	var out []model.Role
	for _, n := range names {
		if role, ok := r.roles[n]; ok {
			out = append(out, role)
		}
	}
	return out, nil
}

func (r *stubUserRepo) AddRole(_ context.Context, _ *gorm.DB, u *model.User, role model.Role) error {
	u.Roles = append(u.Roles, role)
	return nil
}

func (r *stubUserRepo) UpdateProfile(_ context.Context, u *model.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) DB() *gorm.DB { return nil }

var _ repository.UserRepository = (*stubUserRepo)(nil)

// ── Pharmacies ────────────────────────────────────────────────────────────────

type stubPharmacyRepo struct {
	users      *stubUserRepo
	pharmacies map[uuid.UUID]*model.Pharmacy
	staff      map[uuid.UUID]*model.PharmacyStaff

	db             *gorm.DB
	createErr      error
	createStaffErr error
	// staffTx records the tx handed to UpdateStaff.
	staffTx []*gorm.DB
}

func newStubPharmacyRepo(users *stubUserRepo) *stubPharmacyRepo {
	return &stubPharmacyRepo{
		users:      users,
		pharmacies: map[uuid.UUID]*model.Pharmacy{},
		staff:      map[uuid.UUID]*model.PharmacyStaff{},
	}
}

func (r *stubPharmacyRepo) seed(name string) *model.Pharmacy {
	p := &model.Pharmacy{ID: uuid.New(), Name: name, RegistrationNumber: "REG-" + name, Active: true}
	r.pharmacies[p.ID] = p
	return p
}

func (r *stubPharmacyRepo) seedStaff(pharmacyID, userID uuid.UUID, role model.StaffRole, active bool) *model.PharmacyStaff {
	s := &model.PharmacyStaff{ID: uuid.New(), PharmacyID: pharmacyID, UserID: userID, Role: role, Active: active, CreatedAt: time.Now()}
	r.staff[s.ID] = s
	return s
}

func (r *stubPharmacyRepo) Create(_ context.Context, _ *gorm.DB, p *model.Pharmacy) error {
	if r.createErr != nil {
		return r.createErr
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.pharmacies[p.ID] = p
	return nil
}

func (r *stubPharmacyRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Pharmacy, error) {
	p, ok := r.pharmacies[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubPharmacyRepo) ExistsByRegistrationNumber(_ context.Context, _ *gorm.DB, number string) (bool, error) {
	for _, p := range r.pharmacies {
		if p.RegistrationNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubPharmacyRepo) ListByMember(_ context.Context, userID uuid.UUID) ([]model.Pharmacy, error) {
	var out []model.Pharmacy
	for _, s := range r.staff {
		if s.UserID == userID && s.Active {
			out = append(out, *r.pharmacies[s.PharmacyID])
		}
	}
	return out, nil
}

func (r *stubPharmacyRepo) CreateStaff(_ context.Context, _ *gorm.DB, s *model.PharmacyStaff) error {
	if r.createStaffErr != nil {
		return r.createStaffErr
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.staff[s.ID] = s
	return nil
}

func (r *stubPharmacyRepo) withAssociations(s *model.PharmacyStaff) *model.PharmacyStaff {
	cp := *s
	cp.Pharmacy = r.pharmacies[s.PharmacyID]
	cp.User = r.users.users[s.UserID]
	return &cp
}

func (r *stubPharmacyRepo) FindStaffByID(_ context.Context, id uuid.UUID) (*model.PharmacyStaff, error) {
	s, ok := r.staff[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.withAssociations(s), nil
}

func (r *stubPharmacyRepo) FindStaff(_ context.Context, pharmacyID, userID uuid.UUID) (*model.PharmacyStaff, error) {
	for _, s := range r.staff {
		if s.PharmacyID == pharmacyID && s.UserID == userID {
			return r.withAssociations(s), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubPharmacyRepo) ListStaffByUser(_ context.Context, userID uuid.UUID) ([]model.PharmacyStaff, error) {
	var out []model.PharmacyStaff
	for _, s := range r.staff {
		if s.UserID == userID {
			out = append(out, *r.withAssociations(s))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Active && !out[j].Active })
	return out, nil
}

func (r *stubPharmacyRepo) ListStaff(_ context.Context, pharmacyID uuid.UUID) ([]model.PharmacyStaff, error) {
	var out []model.PharmacyStaff
	for _, s := range r.staff {
		if s.PharmacyID == pharmacyID {
			out = append(out, *r.withAssociations(s))
		}
	}
	return out, nil
}

func (r *stubPharmacyRepo) UpdateStaff(_ context.Context, tx *gorm.DB, s *model.PharmacyStaff) error {
	r.staffTx = append(r.staffTx, tx)
	stored, ok := r.staff[s.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Role = s.Role
	stored.Active = s.Active
	return nil
}

func (r *stubPharmacyRepo) DB() *gorm.DB { return r.db }

var _ repository.PharmacyRepository = (*stubPharmacyRepo)(nil)

// ── Inventory ─────────────────────────────────────────────────────────────────

type stubInventoryRepo struct {
	items map[uuid.UUID]*model.Inventory
}

func newStubInventoryRepo() *stubInventoryRepo {
	return &stubInventoryRepo{items: map[uuid.UUID]*model.Inventory{}}
}

func (r *stubInventoryRepo) seed(pharmacyID uuid.UUID, name string, qty, minimum int, price string) *model.Inventory {
	inv := &model.Inventory{
		ID:                uuid.New(),
		PharmacyID:        pharmacyID,
		MedicationName:    name,
		ExpiryDate:        time.Now().AddDate(1, 0, 0),
		Quantity:          qty,
		MinimumStockLevel: minimum,
		CostPrice:         decimal.RequireFromString(price),
		SellingPrice:      decimal.RequireFromString(price),
		Active:            true,
		MedicationType:    model.MedicationOTC,
	}
	r.items[inv.ID] = inv
	return inv
}

func (r *stubInventoryRepo) Create(_ context.Context, inv *model.Inventory) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	r.items[inv.ID] = inv
	return nil
}

func (r *stubInventoryRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Inventory, error) {
	inv, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *inv
	return &cp, nil
}

func (r *stubInventoryRepo) List(_ context.Context, pharmacyID uuid.UUID, q repository.InventoryQuery) ([]model.Inventory, error) {
	var out []model.Inventory
	for _, inv := range r.items {
		if inv.PharmacyID != pharmacyID || !inv.Active {
			continue
		}
		switch {
		case q.Search != "":
			if !strings.Contains(strings.ToLower(inv.MedicationName), strings.ToLower(q.Search)) {
				continue
			}
		case q.Type != "":
			if inv.MedicationType != q.Type {
				continue
			}
		case q.LowStock:
			if !inv.IsLowStock() {
				continue
			}
		}
		out = append(out, *inv)
	}
	return out, nil
}

func (r *stubInventoryRepo) Update(_ context.Context, inv *model.Inventory) error {
	cp := *inv
	r.items[inv.ID] = &cp
	return nil
}

func (r *stubInventoryRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	inv, ok := r.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	inv.Active = false
	return nil
}

func (r *stubInventoryRepo) Counts(_ context.Context, pharmacyID uuid.UUID, today time.Time, soonDays int) (*repository.InventoryCounts, error) {
	c := &repository.InventoryCounts{}
	for _, inv := range r.items {
		if inv.PharmacyID != pharmacyID || !inv.Active {
			continue
		}
		c.Total++
		if inv.IsLowStock() {
			c.LowStock++
		}
		if inv.Quantity == 0 {
			c.OutOfStock++
		}
		if inv.IsExpired(today) {
			c.Expired++
		} else if inv.IsExpiringWithin(today, soonDays+1) {
			c.ExpiringSoon++
		}
	}
	return c, nil
}

func (r *stubInventoryRepo) LockForUpdate(_ *gorm.DB, ids []uuid.UUID) ([]model.Inventory, error) {
	var out []model.Inventory
	for _, id := range ids {
		if inv, ok := r.items[id]; ok {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *stubInventoryRepo) DecrementStockTx(_ *gorm.DB, id uuid.UUID, qty int) (bool, error) {
	inv, ok := r.items[id]
	if !ok || inv.Quantity < qty {
		return false, nil
	}
	inv.Quantity -= qty
	return true, nil
}

func (r *stubInventoryRepo) DB() *gorm.DB { return nil }

var _ repository.InventoryRepository = (*stubInventoryRepo)(nil)

// ── Stock movements ───────────────────────────────────────────────────────────

type stubMovementRepo struct {
	rows []model.StockMovement
}

func (r *stubMovementRepo) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	m.ID = uuid.New()
	m.CreatedAt = time.Now()
	r.rows = append(r.rows, *m)
	return nil
}

func (r *stubMovementRepo) ListByInventory(_ context.Context, inventoryID uuid.UUID, limit int) ([]model.StockMovement, error) {
	var out []model.StockMovement
	for _, m := range r.rows {
		if m.InventoryID == inventoryID && len(out) < limit {
			out = append(out, m)
		}
	}
	return out, nil
}

var _ repository.StockMovementRepository = (*stubMovementRepo)(nil)

// ── Bills ─────────────────────────────────────────────────────────────────────

type stubBillRepo struct {
	bills map[uuid.UUID]*model.Bill
}

func newStubBillRepo() *stubBillRepo {
	return &stubBillRepo{bills: map[uuid.UUID]*model.Bill{}}
}

func (r *stubBillRepo) Create(_ context.Context, _ *gorm.DB, b *model.Bill) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	_ = b.BeforeCreate(nil)
	for i := range b.Items {
		b.Items[i].ID = uuid.New()
		b.Items[i].BillID = b.ID
	}
	r.bills[b.ID] = b
	return nil
}

func (r *stubBillRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Bill, error) {
	b, ok := r.bills[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return b, nil
}

func (r *stubBillRepo) List(_ context.Context, pharmacyID uuid.UUID, page, limit int) ([]model.Bill, int64, error) {
	var all []model.Bill
	for _, b := range r.bills {
		if b.PharmacyID == pharmacyID {
			all = append(all, *b)
		}
	}
	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *stubBillRepo) SumPaid(_ context.Context, pharmacyID uuid.UUID, from, to time.Time) (decimal.Decimal, int64, error) {
	sum := decimal.Zero
	var n int64
	for _, b := range r.bills {
		if b.PharmacyID == pharmacyID && b.PaymentStatus == model.PaymentPaid &&
			!b.BillDate.Before(from) && b.BillDate.Before(to) {
			sum = sum.Add(b.TotalAmount)
			n++
		}
	}
	return sum, n, nil
}

func (r *stubBillRepo) DB() *gorm.DB { return nil }

var _ repository.BillRepository = (*stubBillRepo)(nil)

// ── Token store ───────────────────────────────────────────────────────────────

type stubTokenStore struct {
	mu        sync.Mutex
	refresh   map[string]uuid.UUID
	blacklist map[string]bool
}

func newStubTokenStore() *stubTokenStore {
	return &stubTokenStore{refresh: map[string]uuid.UUID{}, blacklist: map[string]bool{}}
}

func (s *stubTokenStore) StoreRefreshToken(_ context.Context, id string, userID uuid.UUID, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh[id] = userID
	return nil
}

func (s *stubTokenStore) ConsumeRefreshToken(_ context.Context, id string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid, ok := s.refresh[id]
	if !ok {
		return uuid.Nil, auth.ErrRefreshTokenNotFound
	}
	delete(s.refresh, id)
	return uid, nil
}

func (s *stubTokenStore) DeleteRefreshToken(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.refresh, id)
	return nil
}

func (s *stubTokenStore) BlacklistAccessToken(_ context.Context, id string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blacklist[id] = true
	return nil
}

func (s *stubTokenStore) IsAccessTokenBlacklisted(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blacklist[id], nil
}

var _ auth.TokenStore = (*stubTokenStore)(nil)

// ── Receipt dispatcher ────────────────────────────────────────────────────────

type stubDispatcher struct {
	sent map[uuid.UUID]string
}

func (d *stubDispatcher) EnqueueReceipt(_ context.Context, billID uuid.UUID, email string) error {
	if d.sent == nil {
		d.sent = map[uuid.UUID]string{}
	}
	d.sent[billID] = email
	return nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func principalOf(u *model.User) dto.Principal {
	return dto.Principal{UserID: u.ID, Email: u.Email, Roles: u.RoleNames()}
}

func ptr[T any](v T) *T { return &v }
