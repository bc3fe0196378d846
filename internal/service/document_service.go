package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"mime"
	"time"

	"pharmacare/internal/apierror"
	"pharmacare/internal/dto"
	"pharmacare/internal/model"
	"pharmacare/internal/repository"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type DocumentService interface {
	Upload(ctx context.Context, p dto.Principal, doc dto.UploadDocument) (*dto.DocumentResponse, error)
	List(ctx context.Context, p dto.Principal, documentType string) ([]dto.DocumentResponse, error)
	// Download returns the stored file including its content.
	Download(ctx context.Context, p dto.Principal, id uuid.UUID) (*model.MedicalDocument, error)
	Delete(ctx context.Context, p dto.Principal, id uuid.UUID) error
}

type documentService struct {
	repo    repository.MedicalDocumentRepository
	maxSize int64
	allowed map[string]bool
}

// NewDocumentService limits uploads to maxSize bytes and the given MIME types.
func NewDocumentService(repo repository.MedicalDocumentRepository, maxSize int64, allowedTypes []string) DocumentService {
	allowed := make(map[string]bool, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[baseMediaType(t)] = true
	}
	return &documentService{repo: repo, maxSize: maxSize, allowed: allowed}
}

func baseMediaType(ct string) string {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ct
	}
	return mt
}

// resolveContentType checks the declared type against the allowlist and the
// sniffed content. An empty or generic declaration takes the sniffed type.
func (s *documentService) resolveContentType(declared string, data []byte) (string, error) {
	detected := mimetype.Detect(data)
	ct := baseMediaType(declared)
	if ct == "" || ct == "application/octet-stream" {
		ct = baseMediaType(detected.String())
	}
	if !s.allowed[ct] {
		return "", apierror.UnsupportedMedia("File type %s is not allowed", ct)
	}
	for m := detected; m != nil; m = m.Parent() {
		if m.Is(ct) {
			return ct, nil
		}
	}
	return "", apierror.UnsupportedMedia("File content does not match declared type %s", ct)
}

func (s *documentService) Upload(ctx context.Context, p dto.Principal, doc dto.UploadDocument) (*dto.DocumentResponse, error) {
	if doc.DocumentType == "" {
		return nil, apierror.BadRequest("Document type is required")
	}
	if len(doc.Data) == 0 {
		return nil, apierror.BadRequest("File is empty")
	}
	if int64(len(doc.Data)) > s.maxSize {
		return nil, apierror.PayloadTooLarge("File exceeds the maximum size of %d bytes", s.maxSize)
	}
	ct, err := s.resolveContentType(doc.ContentType, doc.Data)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(doc.Data)
	now := time.Now()
	d := &model.MedicalDocument{
		UserID:           p.UserID,
		DocumentType:     doc.DocumentType,
		FileName:         doc.FileName,
		FileType:         ct,
		FileData:         doc.Data,
		FileSize:         int64(len(doc.Data)),
		Checksum:         hex.EncodeToString(sum[:]),
		Description:      doc.Description,
		UploadDate:       now,
		LastModifiedDate: now,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, apierror.Internal(err)
	}
	log.Info().
		Str("document_id", d.ID.String()).
		Str("type", d.DocumentType).
		Int64("size", d.FileSize).
		Msg("medical document stored")
	resp := toDocumentResponse(d)
	return &resp, nil
}

func (s *documentService) List(ctx context.Context, p dto.Principal, documentType string) ([]dto.DocumentResponse, error) {
	list, err := s.repo.ListByUser(ctx, p.UserID, documentType)
	if err != nil {
		return nil, apierror.Internal(err)
	}
	resp := make([]dto.DocumentResponse, len(list))
	for i := range list {
		resp[i] = toDocumentResponse(&list[i])
	}
	return resp, nil
}

func (s *documentService) Download(ctx context.Context, p dto.Principal, id uuid.UUID) (*model.MedicalDocument, error) {
	return s.findOwned(ctx, p, id)
}

func (s *documentService) Delete(ctx context.Context, p dto.Principal, id uuid.UUID) error {
	if _, err := s.findOwned(ctx, p, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apierror.Internal(err)
	}
	return nil
}

func (s *documentService) findOwned(ctx context.Context, p dto.Principal, id uuid.UUID) (*model.MedicalDocument, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Medical document not found with id: %s", id)
	}
	if d.UserID != p.UserID {
		return nil, apierror.NotFound("Medical document not found with id: %s", id)
	}
	return d, nil
}
