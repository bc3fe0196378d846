package service

import (
	"context"

	"pharmacare/internal/apierror"
	"pharmacare/internal/dto"
	"pharmacare/internal/repository"

	"gorm.io/datatypes"
)

type UserService interface {
	Me(ctx context.Context, p dto.Principal) (*dto.ProfileResponse, error)
	UpdateMe(ctx context.Context, p dto.Principal, req dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
}

type userService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) Me(ctx context.Context, p dto.Principal) (*dto.ProfileResponse, error) {
	u, err := s.repo.FindByID(ctx, p.UserID)
	if err != nil {
		return nil, lookupErr(err, "User not found with id: %s", p.UserID)
	}
	resp := toProfileResponse(u)
	return &resp, nil
}

// UpdateMe replaces the profile fields. Email, password and roles are not
// editable here.
func (s *userService) UpdateMe(ctx context.Context, p dto.Principal, req dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	u, err := s.repo.FindByID(ctx, p.UserID)
	if err != nil {
		return nil, lookupErr(err, "User not found with id: %s", p.UserID)
	}
	dob, err := parseOptionalDate(req.DateOfBirth)
	if err != nil {
		return nil, err
	}

	u.FirstName = req.FirstName
	u.LastName = req.LastName
	u.ImageURL = req.ImageURL
	u.Phone = req.Phone
	u.DateOfBirth = dob
	u.Address = req.Address
	u.BloodType = req.BloodType
	u.Allergies = datatypes.JSONSlice[string](req.Allergies)
	u.EmergencyContact = datatypes.JSONMap(req.EmergencyContact)

	if err := s.repo.UpdateProfile(ctx, u); err != nil {
		return nil, apierror.Internal(err)
	}
	resp := toProfileResponse(u)
	return &resp, nil
}
