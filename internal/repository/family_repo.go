package repository

import (
	"context"

	"pharmacare/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FamilyMemberRepository interface {
	Create(ctx context.Context, m *model.FamilyMember) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.FamilyMember, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.FamilyMember, error)
	Update(ctx context.Context, m *model.FamilyMember) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type familyMemberRepo struct{ db *gorm.DB }

func NewFamilyMemberRepository(db *gorm.DB) FamilyMemberRepository {
	return &familyMemberRepo{db: db}
}

func (r *familyMemberRepo) Create(ctx context.Context, m *model.FamilyMember) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *familyMemberRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.FamilyMember, error) {
	var m model.FamilyMember
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	return &m, err
}

func (r *familyMemberRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.FamilyMember, error) {
	var out []model.FamilyMember
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&out).Error
	return out, err
}

func (r *familyMemberRepo) Update(ctx context.Context, m *model.FamilyMember) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *familyMemberRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.FamilyMember{}, "id = ?", id).Error
}
