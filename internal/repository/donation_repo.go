package repository

import (
	"context"

	"pharmacare/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DonationRepository interface {
	Create(ctx context.Context, d *model.Donation) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Donation, error)
	// ListByUser filters by status when status is not empty.
	ListByUser(ctx context.Context, userID uuid.UUID, status model.DonationStatus) ([]model.Donation, error)
	Update(ctx context.Context, d *model.Donation) error
	// DeletePending removes the row only while it is still PENDING and reports
	// whether a row was removed.
	DeletePending(ctx context.Context, id uuid.UUID) (bool, error)
}

type donationRepo struct{ db *gorm.DB }

func NewDonationRepository(db *gorm.DB) DonationRepository { return &donationRepo{db: db} }

func (r *donationRepo) Create(ctx context.Context, d *model.Donation) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *donationRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Donation, error) {
	var d model.Donation
	err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error
	return &d, err
}

func (r *donationRepo) ListByUser(ctx context.Context, userID uuid.UUID, status model.DonationStatus) ([]model.Donation, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []model.Donation
	err := q.Order("donation_date DESC").Find(&out).Error
	return out, err
}

func (r *donationRepo) Update(ctx context.Context, d *model.Donation) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *donationRepo) DeletePending(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, model.DonationPending).
		Delete(&model.Donation{})
	return res.RowsAffected > 0, res.Error
}
