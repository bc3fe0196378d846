package service

import (
	"context"
	"time"

	"pharmacare/internal/apierror"
	"pharmacare/internal/dto"
	"pharmacare/internal/model"
	"pharmacare/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type DonationService interface {
	List(ctx context.Context, p dto.Principal) ([]dto.DonationResponse, error)
	Pending(ctx context.Context, p dto.Principal) ([]dto.DonationResponse, error)
	Get(ctx context.Context, p dto.Principal, id uuid.UUID) (*dto.DonationResponse, error)
	Create(ctx context.Context, p dto.Principal, req dto.DonationRequest) (*dto.DonationResponse, error)
	Update(ctx context.Context, p dto.Principal, id uuid.UUID, req dto.DonationRequest) (*dto.DonationResponse, error)
	Delete(ctx context.Context, p dto.Principal, id uuid.UUID) error
}

type donationService struct {
	repo repository.DonationRepository
}

func NewDonationService(repo repository.DonationRepository) DonationService {
	return &donationService{repo: repo}
}

func (s *donationService) List(ctx context.Context, p dto.Principal) ([]dto.DonationResponse, error) {
	return s.list(ctx, p, "")
}

func (s *donationService) Pending(ctx context.Context, p dto.Principal) ([]dto.DonationResponse, error) {
	return s.list(ctx, p, model.DonationPending)
}

func (s *donationService) list(ctx context.Context, p dto.Principal, status model.DonationStatus) ([]dto.DonationResponse, error) {
	list, err := s.repo.ListByUser(ctx, p.UserID, status)
	if err != nil {
		return nil, apierror.Internal(err)
	}
	resp := make([]dto.DonationResponse, len(list))
	for i := range list {
		resp[i] = toDonationResponse(&list[i])
	}
	return resp, nil
}

func (s *donationService) Get(ctx context.Context, p dto.Principal, id uuid.UUID) (*dto.DonationResponse, error) {
	d, err := s.findOwned(ctx, p, id)
	if err != nil {
		return nil, err
	}
	resp := toDonationResponse(d)
	return &resp, nil
}

// Create always starts in PENDING, whatever status the request carries.
func (s *donationService) Create(ctx context.Context, p dto.Principal, req dto.DonationRequest) (*dto.DonationResponse, error) {
	expiry, err := parseOptionalDate(req.ExpiryDate)
	if err != nil {
		return nil, err
	}
	d := &model.Donation{
		UserID:       p.UserID,
		MedicineName: req.MedicineName,
		Quantity:     req.Quantity,
		ExpiryDate:   expiry,
		Location:     req.Location,
		Organization: req.Organization,
		Notes:        req.Notes,
		Status:       model.DonationPending,
		DonationDate: time.Now(),
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, apierror.Internal(err)
	}
	resp := toDonationResponse(d)
	return &resp, nil
}

func (s *donationService) Update(ctx context.Context, p dto.Principal, id uuid.UUID, req dto.DonationRequest) (*dto.DonationResponse, error) {
	d, err := s.findOwned(ctx, p, id)
	if err != nil {
		return nil, err
	}
	expiry, err := parseOptionalDate(req.ExpiryDate)
	if err != nil {
		return nil, err
	}
	if req.Status != nil && *req.Status != "" {
		next := model.DonationStatus(*req.Status)
		if !next.Valid() {
			return nil, apierror.BadRequest("Invalid donation status: %s", *req.Status)
		}
		from := d.Status
		if !d.TransitionTo(next, time.Now()) {
			return nil, apierror.BadRequest("Cannot change donation status from %s to %s", from, next)
		}
		if from != next {
			log.Info().Str("donation_id", id.String()).Str("from", string(from)).Str("to", string(next)).Msg("donation status changed")
		}
	}
	d.MedicineName = req.MedicineName
	d.Quantity = req.Quantity
	d.ExpiryDate = expiry
	d.Location = req.Location
	d.Organization = req.Organization
	d.Notes = req.Notes

	if err := s.repo.Update(ctx, d); err != nil {
		return nil, apierror.Internal(err)
	}
	resp := toDonationResponse(d)
	return &resp, nil
}

// Delete is allowed only while the donation is PENDING.
func (s *donationService) Delete(ctx context.Context, p dto.Principal, id uuid.UUID) error {
	d, err := s.findOwned(ctx, p, id)
	if err != nil {
		return err
	}
	if !d.CanDelete() {
		return apierror.BadRequest("Cannot delete a donation that is not in pending status")
	}
	removed, err := s.repo.DeletePending(ctx, id)
	if err != nil {
		return apierror.Internal(err)
	}
	if !removed {
		// status changed between the read and the delete
		return apierror.BadRequest("Cannot delete a donation that is not in pending status")
	}
	return nil
}

func (s *donationService) findOwned(ctx context.Context, p dto.Principal, id uuid.UUID) (*model.Donation, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Donation not found with id: %s", id)
	}
	if d.UserID != p.UserID {
		return nil, apierror.NotFound("Donation not found with id: %s", id)
	}
	return d, nil
}
