package service

import (
	"context"
	"errors"

	"pharmacare/internal/apierror"
	"pharmacare/internal/dto"
	"pharmacare/internal/model"
	"pharmacare/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type PharmacyService interface {
	ListMine(ctx context.Context, p dto.Principal) ([]dto.PharmacyResponse, error)
	Get(ctx context.Context, p dto.Principal, id uuid.UUID) (*dto.PharmacyResponse, error)
	ListStaff(ctx context.Context, p dto.Principal, pharmacyID uuid.UUID) ([]dto.PharmacyStaffResponse, error)
	AddStaff(ctx context.Context, p dto.Principal, pharmacyID uuid.UUID, req dto.AddStaffRequest) (*dto.PharmacyStaffResponse, error)
	DeactivateStaff(ctx context.Context, p dto.Principal, pharmacyID, staffID uuid.UUID) (*dto.PharmacyStaffResponse, error)
}

type pharmacyService struct {
	repo   repository.PharmacyRepository
	users  repository.UserRepository
	access accessChecker
}

func NewPharmacyService(repo repository.PharmacyRepository, users repository.UserRepository) PharmacyService {
	return &pharmacyService{repo: repo, users: users, access: accessChecker{pharmacies: repo}}
}

func (s *pharmacyService) ListMine(ctx context.Context, p dto.Principal) ([]dto.PharmacyResponse, error) {
	list, err := s.repo.ListByMember(ctx, p.UserID)
	if err != nil {
		return nil, apierror.Internal(err)
	}
	resp := make([]dto.PharmacyResponse, len(list))
	for i := range list {
		resp[i] = toPharmacyResponse(&list[i])
	}
	return resp, nil
}

func (s *pharmacyService) Get(ctx context.Context, p dto.Principal, id uuid.UUID) (*dto.PharmacyResponse, error) {
	ph, err := s.findPharmacy(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.access.requireMember(ctx, p, id); err != nil {
		return nil, err
	}
	resp := toPharmacyResponse(ph)
	return &resp, nil
}

func (s *pharmacyService) ListStaff(ctx context.Context, p dto.Principal, pharmacyID uuid.UUID) ([]dto.PharmacyStaffResponse, error) {
	if _, err := s.findPharmacy(ctx, pharmacyID); err != nil {
		return nil, err
	}
	if err := s.access.requireAdmin(ctx, p, pharmacyID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListStaff(ctx, pharmacyID)
	if err != nil {
		return nil, apierror.Internal(err)
	}
	resp := make([]dto.PharmacyStaffResponse, len(rows))
	for i := range rows {
		resp[i] = toStaffResponse(&rows[i])
	}
	return resp, nil
}

// AddStaff attaches an existing user to the pharmacy. An inactive assignment
// is reactivated with the requested role.
func (s *pharmacyService) AddStaff(ctx context.Context, p dto.Principal, pharmacyID uuid.UUID, req dto.AddStaffRequest) (*dto.PharmacyStaffResponse, error) {
	ph, err := s.findPharmacy(ctx, pharmacyID)
	if err != nil {
		return nil, err
	}
	if err := s.access.requireAdmin(ctx, p, pharmacyID); err != nil {
		return nil, err
	}
	role := model.StaffRole(req.Role)
	if !role.Valid() {
		return nil, apierror.BadRequest("Invalid staff role: %s", req.Role)
	}

	user, err := s.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, lookupErr(err, "User not found with email: %s", req.Email)
	}

	existing, err := s.repo.FindStaff(ctx, pharmacyID, user.ID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		existing = nil
	case err != nil:
		return nil, apierror.Internal(err)
	}
	if existing != nil && existing.Active {
		return nil, apierror.Conflict("User %s is already a staff member of this pharmacy", req.Email)
	}

	var staff *model.PharmacyStaff
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if !user.HasRole(model.RolePharmacy) {
			roles, err := s.users.FindRoles(ctx, tx, model.RolePharmacy)
			if err != nil {
				return err
			}
			if len(roles) == 0 {
				return errors.New("role ROLE_PHARMACY is not seeded")
			}
			if err := s.users.AddRole(ctx, tx, user, roles[0]); err != nil {
				return err
			}
		}
		if existing != nil {
			existing.Role = role
			existing.Active = true
			staff = existing
			return s.repo.UpdateStaff(ctx, tx, existing)
		}
		staff = &model.PharmacyStaff{PharmacyID: pharmacyID, UserID: user.ID, Role: role, Active: true}
		if err := s.repo.CreateStaff(ctx, tx, staff); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apierror.Conflict("User %s is already a staff member of this pharmacy", req.Email)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}

	staff.Pharmacy = ph
	staff.User = user
	log.Info().
		Str("pharmacy_id", pharmacyID.String()).
		Str("user_id", user.ID.String()).
		Str("role", string(role)).
		Msg("staff member added")
	resp := toStaffResponse(staff)
	return &resp, nil
}

func (s *pharmacyService) DeactivateStaff(ctx context.Context, p dto.Principal, pharmacyID, staffID uuid.UUID) (*dto.PharmacyStaffResponse, error) {
	if _, err := s.findPharmacy(ctx, pharmacyID); err != nil {
		return nil, err
	}
	if err := s.access.requireAdmin(ctx, p, pharmacyID); err != nil {
		return nil, err
	}
	staff, err := s.repo.FindStaffByID(ctx, staffID)
	if err != nil {
		return nil, lookupErr(err, "Staff member not found with id: %s", staffID)
	}
	if staff.PharmacyID != pharmacyID {
		return nil, apierror.NotFound("Staff member not found with id: %s", staffID)
	}
	if staff.UserID == p.UserID {
		return nil, apierror.BadRequest("You cannot deactivate your own staff account")
	}

	staff.Active = false
	if err := s.repo.UpdateStaff(ctx, nil, staff); err != nil {
		return nil, apierror.Internal(err)
	}
	log.Info().Str("staff_id", staffID.String()).Msg("staff member deactivated")
	resp := toStaffResponse(staff)
	return &resp, nil
}

func (s *pharmacyService) findPharmacy(ctx context.Context, id uuid.UUID) (*model.Pharmacy, error) {
	ph, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Pharmacy not found with id: %s", id)
	}
	return ph, nil
}
