package service

import (
	"context"
	"errors"

	"pharmacare/internal/apierror"
	"pharmacare/internal/dto"
	"pharmacare/internal/model"
	"pharmacare/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// accessChecker answers the two pharmacy-scoped authorization questions shared
// by inventory, billing and staff management.
type accessChecker struct {
	pharmacies repository.PharmacyRepository
}

// staffRow returns the caller's staff row, or nil when there is none.
func (a accessChecker) staffRow(ctx context.Context, p dto.Principal, pharmacyID uuid.UUID) (*model.PharmacyStaff, error) {
	s, err := a.pharmacies.FindStaff(ctx, pharmacyID, p.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apierror.Internal(err)
	}
	return s, nil
}

// isMember: global ROLE_ADMIN or an active staff row.
func (a accessChecker) isMember(ctx context.Context, p dto.Principal, pharmacyID uuid.UUID) (bool, error) {
	if p.HasRole(model.RoleAdmin) {
		return true, nil
	}
	s, err := a.staffRow(ctx, p, pharmacyID)
	if err != nil {
		return false, err
	}
	return s != nil && s.Active, nil
}

// isPharmacyAdmin: global ROLE_ADMIN or an active ADMIN staff row.
func (a accessChecker) isPharmacyAdmin(ctx context.Context, p dto.Principal, pharmacyID uuid.UUID) (bool, error) {
	if p.HasRole(model.RoleAdmin) {
		return true, nil
	}
	s, err := a.staffRow(ctx, p, pharmacyID)
	if err != nil {
		return false, err
	}
	return s != nil && s.IsAdmin(), nil
}

func (a accessChecker) requireMember(ctx context.Context, p dto.Principal, pharmacyID uuid.UUID) error {
	ok, err := a.isMember(ctx, p, pharmacyID)
	if err != nil {
		return err
	}
	if !ok {
		return apierror.Forbidden("You do not have access to this pharmacy")
	}
	return nil
}

func (a accessChecker) requireAdmin(ctx context.Context, p dto.Principal, pharmacyID uuid.UUID) error {
	ok, err := a.isPharmacyAdmin(ctx, p, pharmacyID)
	if err != nil {
		return err
	}
	if !ok {
		return apierror.Forbidden("Only pharmacy administrators can perform this action")
	}
	return nil
}
