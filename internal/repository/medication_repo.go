package repository

import (
	"context"
	"time"

	"pharmacare/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MedicationRepository interface {
	Create(ctx context.Context, m *model.Medication) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Medication, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Medication, error)
	Update(ctx context.Context, m *model.Medication) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type medicationRepo struct{ db *gorm.DB }

func NewMedicationRepository(db *gorm.DB) MedicationRepository { return &medicationRepo{db: db} }

func (r *medicationRepo) Create(ctx context.Context, m *model.Medication) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *medicationRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Medication, error) {
	var m model.Medication
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	return &m, err
}

func (r *medicationRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Medication, error) {
	var out []model.Medication
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("name ASC").Find(&out).Error
	return out, err
}

func (r *medicationRepo) Update(ctx context.Context, m *model.Medication) error {
	return r.db.WithContext(ctx).Save(m).Error
}

// Delete removes the medication and its reminders.
func (r *medicationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("medication_id = ?", id).Delete(&model.Reminder{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Medication{}, "id = ?", id).Error
	})
}

type ReminderRepository interface {
	Create(ctx context.Context, r *model.Reminder) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Reminder, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Reminder, error)
	// ListPending returns not completed reminders of userID with time in [start, end].
	ListPending(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]model.Reminder, error)
	// ListDue returns not completed, not yet notified reminders due before until.
	ListDue(ctx context.Context, until time.Time, limit int) ([]model.Reminder, error)
	MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) error
	Update(ctx context.Context, r *model.Reminder) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type reminderRepo struct{ db *gorm.DB }

func NewReminderRepository(db *gorm.DB) ReminderRepository { return &reminderRepo{db: db} }

func (r *reminderRepo) Create(ctx context.Context, rem *model.Reminder) error {
	return r.db.WithContext(ctx).Omit("Medication").Create(rem).Error
}

func (r *reminderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Reminder, error) {
	var rem model.Reminder
	err := r.db.WithContext(ctx).Preload("Medication").First(&rem, "id = ?", id).Error
	return &rem, err
}

func (r *reminderRepo) byUser(ctx context.Context, userID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).
		Joins("Medication").
		Where("\"Medication\".user_id = ?", userID)
}

func (r *reminderRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Reminder, error) {
	var out []model.Reminder
	err := r.byUser(ctx, userID).Order("reminders.reminder_time ASC").Find(&out).Error
	return out, err
}

func (r *reminderRepo) ListPending(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]model.Reminder, error) {
	var out []model.Reminder
	err := r.byUser(ctx, userID).
		Where("reminders.completed = false AND reminders.reminder_time BETWEEN ? AND ?", start, end).
		Order("reminders.reminder_time ASC").
		Find(&out).Error
	return out, err
}

func (r *reminderRepo) ListDue(ctx context.Context, until time.Time, limit int) ([]model.Reminder, error) {
	var out []model.Reminder
	err := r.db.WithContext(ctx).
		Preload("Medication").
		Where("completed = false AND notified_at IS NULL AND reminder_time <= ?", until).
		Order("reminder_time ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *reminderRepo) MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Reminder{}).Where("id = ?", id).Update("notified_at", at).Error
}

func (r *reminderRepo) Update(ctx context.Context, rem *model.Reminder) error {
	return r.db.WithContext(ctx).Omit("Medication").Save(rem).Error
}

func (r *reminderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Reminder{}, "id = ?", id).Error
}
