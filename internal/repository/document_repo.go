package repository

import (
	"context"

	"pharmacare/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// documentMetaColumns excludes file_data so listings never load blobs.
var documentMetaColumns = []string{
	"id", "user_id", "document_type", "file_name", "file_type", "file_size",
	"checksum", "description", "upload_date", "last_modified_date",
}

type MedicalDocumentRepository interface {
	Create(ctx context.Context, d *model.MedicalDocument) error
	// FindByID loads the document including its content.
	FindByID(ctx context.Context, id uuid.UUID) (*model.MedicalDocument, error)
	// ListByUser returns metadata only; documentType filters when not empty.
	ListByUser(ctx context.Context, userID uuid.UUID, documentType string) ([]model.MedicalDocument, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type medicalDocumentRepo struct{ db *gorm.DB }

func NewMedicalDocumentRepository(db *gorm.DB) MedicalDocumentRepository {
	return &medicalDocumentRepo{db: db}
}

func (r *medicalDocumentRepo) Create(ctx context.Context, d *model.MedicalDocument) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *medicalDocumentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.MedicalDocument, error) {
	var d model.MedicalDocument
	err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error
	return &d, err
}

func (r *medicalDocumentRepo) ListByUser(ctx context.Context, userID uuid.UUID, documentType string) ([]model.MedicalDocument, error) {
	q := r.db.WithContext(ctx).Select(documentMetaColumns).Where("user_id = ?", userID)
	if documentType != "" {
		q = q.Where("document_type = ?", documentType)
	}
	var out []model.MedicalDocument
	err := q.Order("upload_date DESC").Find(&out).Error
	return out, err
}

func (r *medicalDocumentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.MedicalDocument{}, "id = ?", id).Error
}
