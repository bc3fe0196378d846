package repository

import (
	"context"

	"pharmacare/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PharmacyRepository interface {
	Create(ctx context.Context, tx *gorm.DB, p *model.Pharmacy) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Pharmacy, error)
	ExistsByRegistrationNumber(ctx context.Context, tx *gorm.DB, number string) (bool, error)
	// ListByMember returns pharmacies where userID has an active staff row.
	ListByMember(ctx context.Context, userID uuid.UUID) ([]model.Pharmacy, error)

	CreateStaff(ctx context.Context, tx *gorm.DB, s *model.PharmacyStaff) error
	FindStaffByID(ctx context.Context, id uuid.UUID) (*model.PharmacyStaff, error)
	// FindStaff returns the membership of userID in pharmacyID regardless of Active.
	FindStaff(ctx context.Context, pharmacyID, userID uuid.UUID) (*model.PharmacyStaff, error)
	// ListStaffByUser returns all memberships of a user, active ones first.
	ListStaffByUser(ctx context.Context, userID uuid.UUID) ([]model.PharmacyStaff, error)
	ListStaff(ctx context.Context, pharmacyID uuid.UUID) ([]model.PharmacyStaff, error)
	UpdateStaff(ctx context.Context, tx *gorm.DB, s *model.PharmacyStaff) error
	DB() *gorm.DB
}

type pharmacyRepo struct{ db *gorm.DB }

func NewPharmacyRepository(db *gorm.DB) PharmacyRepository { return &pharmacyRepo{db: db} }

func (r *pharmacyRepo) DB() *gorm.DB { return r.db }

func (r *pharmacyRepo) Create(ctx context.Context, tx *gorm.DB, p *model.Pharmacy) error {
	return pick(r.db, tx).WithContext(ctx).Omit("Owner").Create(p).Error
}

func (r *pharmacyRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Pharmacy, error) {
	var p model.Pharmacy
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *pharmacyRepo) ExistsByRegistrationNumber(ctx context.Context, tx *gorm.DB, number string) (bool, error) {
	var n int64
	err := pick(r.db, tx).WithContext(ctx).Model(&model.Pharmacy{}).
		Where("registration_number = ?", number).Count(&n).Error
	return n > 0, err
}

func (r *pharmacyRepo) ListByMember(ctx context.Context, userID uuid.UUID) ([]model.Pharmacy, error) {
	var out []model.Pharmacy
	err := r.db.WithContext(ctx).
		Joins("JOIN pharmacy_staff ps ON ps.pharmacy_id = pharmacies.id").
		Where("ps.user_id = ? AND ps.active = true", userID).
		Order("pharmacies.name ASC").
		Find(&out).Error
	return out, err
}

func (r *pharmacyRepo) CreateStaff(ctx context.Context, tx *gorm.DB, s *model.PharmacyStaff) error {
	return pick(r.db, tx).WithContext(ctx).Omit("Pharmacy", "User").Create(s).Error
}

func (r *pharmacyRepo) FindStaffByID(ctx context.Context, id uuid.UUID) (*model.PharmacyStaff, error) {
	var s model.PharmacyStaff
	err := r.db.WithContext(ctx).Preload("Pharmacy").Preload("User").First(&s, "id = ?", id).Error
	return &s, err
}

func (r *pharmacyRepo) FindStaff(ctx context.Context, pharmacyID, userID uuid.UUID) (*model.PharmacyStaff, error) {
	var s model.PharmacyStaff
	err := r.db.WithContext(ctx).
		Where("pharmacy_id = ? AND user_id = ?", pharmacyID, userID).
		First(&s).Error
	return &s, err
}

func (r *pharmacyRepo) ListStaffByUser(ctx context.Context, userID uuid.UUID) ([]model.PharmacyStaff, error) {
	var out []model.PharmacyStaff
	err := r.db.WithContext(ctx).Preload("Pharmacy").Preload("User").
		Where("user_id = ?", userID).
		Order("active DESC, created_at ASC").
		Find(&out).Error
	return out, err
}

func (r *pharmacyRepo) ListStaff(ctx context.Context, pharmacyID uuid.UUID) ([]model.PharmacyStaff, error) {
	var out []model.PharmacyStaff
	err := r.db.WithContext(ctx).Preload("Pharmacy").Preload("User").
		Where("pharmacy_id = ?", pharmacyID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

func (r *pharmacyRepo) UpdateStaff(ctx context.Context, tx *gorm.DB, s *model.PharmacyStaff) error {
	return pick(r.db, tx).WithContext(ctx).Model(&model.PharmacyStaff{}).
		Where("id = ?", s.ID).
		Updates(map[string]any{"role": s.Role, "active": s.Active}).Error
}
