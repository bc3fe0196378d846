package repository

import (
	"context"
	"time"

	"pharmacare/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BillRepository interface {
	// Create inserts the bill together with its items.
	Create(ctx context.Context, tx *gorm.DB, b *model.Bill) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Bill, error)
	List(ctx context.Context, pharmacyID uuid.UUID, page, limit int) ([]model.Bill, int64, error)
	// SumPaid totals PAID bills with bill_date in [from, to).
	SumPaid(ctx context.Context, pharmacyID uuid.UUID, from, to time.Time) (decimal.Decimal, int64, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type billRepo struct{ db *gorm.DB }

func NewBillRepository(db *gorm.DB) BillRepository { return &billRepo{db: db} }

func (r *billRepo) DB() *gorm.DB { return r.db }

func (r *billRepo) Create(ctx context.Context, tx *gorm.DB, b *model.Bill) error {
	return pick(r.db, tx).WithContext(ctx).Omit("Pharmacy", "CreatedBy").Create(b).Error
}

func (r *billRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Bill, error) {
	var b model.Bill
	err := r.db.WithContext(ctx).
		Preload("Items").Preload("Pharmacy").Preload("CreatedBy").
		First(&b, "id = ?", id).Error
	return &b, err
}

func (r *billRepo) List(ctx context.Context, pharmacyID uuid.UUID, page, limit int) ([]model.Bill, int64, error) {
	var bills []model.Bill
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Bill{}).Where("pharmacy_id = ?", pharmacyID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	_, limit, offset := Page(page, limit, 200)
	err := q.Preload("Items").Preload("Pharmacy").Preload("CreatedBy").
		Order("bill_date DESC").
		Offset(offset).Limit(limit).
		Find(&bills).Error
	return bills, total, err
}

func (r *billRepo) SumPaid(ctx context.Context, pharmacyID uuid.UUID, from, to time.Time) (decimal.Decimal, int64, error) {
	var row struct {
		Total decimal.Decimal
		Count int64
	}
	err := r.db.WithContext(ctx).Model(&model.Bill{}).
		Select("COALESCE(SUM(total_amount), 0) AS total, COUNT(*) AS count").
		Where("pharmacy_id = ? AND payment_status = ? AND bill_date >= ? AND bill_date < ?",
			pharmacyID, model.PaymentPaid, from, to).
		Scan(&row).Error
	return row.Total, row.Count, err
}
