package repository

import (
	"context"

	"pharmacare/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	// Create inserts the user and links the roles already present in u.Roles.
	Create(ctx context.Context, tx *gorm.DB, u *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error)
	FindRoles(ctx context.Context, tx *gorm.DB, names ...string) ([]model.Role, error)
	AddRole(ctx context.Context, tx *gorm.DB, u *model.User, role model.Role) error
	UpdateProfile(ctx context.Context, u *model.User) error
	DB() *gorm.DB
}

type userRepo struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepo{db: db} }

func (r *userRepo) DB() *gorm.DB { return r.db }

func (r *userRepo) Create(ctx context.Context, tx *gorm.DB, u *model.User) error {
	// Roles are seeded rows; only the join table is written.
	return pick(r.db, tx).WithContext(ctx).
		Omit("Roles.*").
		Create(u).Error
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Preload("Roles").First(&u, "id = ?", id).Error
	return &u, err
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Preload("Roles").Where("LOWER(email) = LOWER(?)", email).First(&u).Error
	return &u, err
}

func (r *userRepo) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	var n int64
	err := pick(r.db, tx).WithContext(ctx).Model(&model.User{}).
		Where("LOWER(email) = LOWER(?)", email).Count(&n).Error
	return n > 0, err
}

func (r *userRepo) FindRoles(ctx context.Context, tx *gorm.DB, names ...string) ([]model.Role, error) {
	var roles []model.Role
	err := pick(r.db, tx).WithContext(ctx).Where("name IN ?", names).Order("name").Find(&roles).Error
	return roles, err
}

func (r *userRepo) AddRole(ctx context.Context, tx *gorm.DB, u *model.User, role model.Role) error {
	return pick(r.db, tx).WithContext(ctx).Model(u).Omit("Roles.*").Association("Roles").Append(&role)
}

func (r *userRepo) UpdateProfile(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Omit(clause.Associations, "password_hash", "email", "created_at").Save(u).Error
}
