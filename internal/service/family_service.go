package service

import (
	"context"

	"pharmacare/internal/apierror"
	"pharmacare/internal/dto"
	"pharmacare/internal/model"
	"pharmacare/internal/repository"

	"github.com/google/uuid"
)

type FamilyService interface {
	List(ctx context.Context, p dto.Principal) ([]dto.FamilyMemberResponse, error)
	Get(ctx context.Context, p dto.Principal, id uuid.UUID) (*dto.FamilyMemberResponse, error)
	Create(ctx context.Context, p dto.Principal, req dto.FamilyMemberRequest) (*dto.FamilyMemberResponse, error)
	Update(ctx context.Context, p dto.Principal, id uuid.UUID, req dto.FamilyMemberRequest) (*dto.FamilyMemberResponse, error)
	Delete(ctx context.Context, p dto.Principal, id uuid.UUID) error
}

type familyService struct {
	repo repository.FamilyMemberRepository
}

func NewFamilyService(repo repository.FamilyMemberRepository) FamilyService {
	return &familyService{repo: repo}
}

func (s *familyService) List(ctx context.Context, p dto.Principal) ([]dto.FamilyMemberResponse, error) {
	list, err := s.repo.ListByUser(ctx, p.UserID)
	if err != nil {
		return nil, apierror.Internal(err)
	}
	resp := make([]dto.FamilyMemberResponse, len(list))
	for i := range list {
		resp[i] = toFamilyMemberResponse(&list[i])
	}
	return resp, nil
}

func (s *familyService) Get(ctx context.Context, p dto.Principal, id uuid.UUID) (*dto.FamilyMemberResponse, error) {
	m, err := s.findOwned(ctx, p, id)
	if err != nil {
		return nil, err
	}
	resp := toFamilyMemberResponse(m)
	return &resp, nil
}

// Create defaults canViewMedications to true and status to Active.
func (s *familyService) Create(ctx context.Context, p dto.Principal, req dto.FamilyMemberRequest) (*dto.FamilyMemberResponse, error) {
	m := &model.FamilyMember{
		UserID:             p.UserID,
		CanViewMedications: true,
		Status:             model.FamilyStatusActive,
	}
	applyFamilyRequest(m, req)
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, apierror.Internal(err)
	}
	resp := toFamilyMemberResponse(m)
	return &resp, nil
}

func (s *familyService) Update(ctx context.Context, p dto.Principal, id uuid.UUID, req dto.FamilyMemberRequest) (*dto.FamilyMemberResponse, error) {
	m, err := s.findOwned(ctx, p, id)
	if err != nil {
		return nil, err
	}
	applyFamilyRequest(m, req)
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, apierror.Internal(err)
	}
	resp := toFamilyMemberResponse(m)
	return &resp, nil
}

func (s *familyService) Delete(ctx context.Context, p dto.Principal, id uuid.UUID) error {
	if _, err := s.findOwned(ctx, p, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apierror.Internal(err)
	}
	return nil
}

func (s *familyService) findOwned(ctx context.Context, p dto.Principal, id uuid.UUID) (*model.FamilyMember, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Family member not found with id: %s", id)
	}
	if m.UserID != p.UserID {
		return nil, apierror.NotFound("Family member not found with id: %s", id)
	}
	return m, nil
}

func applyFamilyRequest(m *model.FamilyMember, req dto.FamilyMemberRequest) {
	m.Name = req.Name
	m.Relationship = req.Relationship
	m.Age = req.Age
	m.CanEditMedications = req.CanEditMedications
	m.CanManageReminders = req.CanManageReminders
	if req.CanViewMedications != nil {
		m.CanViewMedications = *req.CanViewMedications
	}
	if req.Status != nil && *req.Status != "" {
		m.Status = *req.Status
	}
}
