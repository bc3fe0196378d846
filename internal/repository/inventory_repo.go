package repository

import (
	"context"
	"time"

	"pharmacare/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InventoryQuery selects active items of a pharmacy. At most one criterion is
// applied, checked in field order; the zero value lists every active item.
type InventoryQuery struct {
	Search       string
	Type         model.MedicationType
	LowStock     bool
	ExpiringFrom *time.Time
	ExpiringTo   *time.Time
}

// InventoryCounts feeds the stats and overview endpoints. Every count only
// considers active items.
type InventoryCounts struct {
	Total        int64
	LowStock     int64
	OutOfStock   int64
	Expired      int64
	ExpiringSoon int64
}

// InventoryRepository defines the data access contract for pharmacy stock.
type InventoryRepository interface {
	Create(ctx context.Context, inv *model.Inventory) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Inventory, error)
	List(ctx context.Context, pharmacyID uuid.UUID, q InventoryQuery) ([]model.Inventory, error)
	Update(ctx context.Context, inv *model.Inventory) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Counts(ctx context.Context, pharmacyID uuid.UUID, today time.Time, soonDays int) (*InventoryCounts, error)

	// Used inside transactions, callers must pass the tx instance.

	// LockForUpdate loads the rows with SELECT ... FOR UPDATE in ascending id order.
	LockForUpdate(tx *gorm.DB, ids []uuid.UUID) ([]model.Inventory, error)
	// DecrementStockTx subtracts qty only when enough stock remains; it reports
	// false when no row matched.
	DecrementStockTx(tx *gorm.DB, id uuid.UUID, qty int) (bool, error)

	DB() *gorm.DB
}

type inventoryRepo struct{ db *gorm.DB }

func NewInventoryRepository(db *gorm.DB) InventoryRepository { return &inventoryRepo{db: db} }

func (r *inventoryRepo) DB() *gorm.DB { return r.db }

func (r *inventoryRepo) Create(ctx context.Context, inv *model.Inventory) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *inventoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Inventory, error) {
	var inv model.Inventory
	err := r.db.WithContext(ctx).First(&inv, "id = ?", id).Error
	return &inv, err
}

func (r *inventoryRepo) List(ctx context.Context, pharmacyID uuid.UUID, q InventoryQuery) ([]model.Inventory, error) {
	tx := r.db.WithContext(ctx).Where("pharmacy_id = ? AND active = true", pharmacyID)

	switch {
	case q.Search != "":
		tx = tx.Where(`medication_name ILIKE ? ESCAPE '\'`, containsPattern(q.Search))
	case q.Type != "":
		tx = tx.Where("medication_type = ?", q.Type)
	case q.LowStock:
		tx = tx.Where("quantity <= minimum_stock_level")
	case q.ExpiringFrom != nil && q.ExpiringTo != nil:
		tx = tx.Where("expiry_date BETWEEN ? AND ?", *q.ExpiringFrom, *q.ExpiringTo)
	}

	var items []model.Inventory
	err := tx.Order("medication_name ASC").Find(&items).Error
	return items, err
}

func (r *inventoryRepo) Update(ctx context.Context, inv *model.Inventory) error {
	return r.db.WithContext(ctx).Save(inv).Error
}

func (r *inventoryRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Inventory{}).Where("id = ?", id).Update("active", false).Error
}

func (r *inventoryRepo) Counts(ctx context.Context, pharmacyID uuid.UUID, today time.Time, soonDays int) (*InventoryCounts, error) {
	var c InventoryCounts
	soon := today.AddDate(0, 0, soonDays)
	err := r.db.WithContext(ctx).Raw(`
SELECT
  COUNT(*)                                                     AS total,
  COUNT(*) FILTER (WHERE quantity <= minimum_stock_level)      AS low_stock,
  COUNT(*) FILTER (WHERE quantity = 0)                         AS out_of_stock,
  COUNT(*) FILTER (WHERE expiry_date < ?)                      AS expired,
  COUNT(*) FILTER (WHERE expiry_date BETWEEN ? AND ?)          AS expiring_soon
FROM inventories
WHERE pharmacy_id = ? AND active = true`,
		today, today, soon, pharmacyID).Scan(&c).Error
	return &c, err
}

func (r *inventoryRepo) LockForUpdate(tx *gorm.DB, ids []uuid.UUID) ([]model.Inventory, error) {
	var items []model.Inventory
	err := pick(r.db, tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

func (r *inventoryRepo) DecrementStockTx(tx *gorm.DB, id uuid.UUID, qty int) (bool, error) {
	res := pick(r.db, tx).Model(&model.Inventory{}).
		Where("id = ? AND quantity >= ?", id, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	return res.RowsAffected == 1, res.Error
}
