package service

import (
	"context"
	"time"

	"pharmacare/internal/apierror"
	"pharmacare/internal/dto"
	"pharmacare/internal/model"
	"pharmacare/internal/repository"

	"github.com/google/uuid"
)

type MedicationService interface {
	List(ctx context.Context, p dto.Principal) ([]dto.MedicationResponse, error)
	Get(ctx context.Context, p dto.Principal, id uuid.UUID) (*dto.MedicationResponse, error)
	Create(ctx context.Context, p dto.Principal, req dto.MedicationRequest) (*dto.MedicationResponse, error)
	Update(ctx context.Context, p dto.Principal, id uuid.UUID, req dto.MedicationRequest) (*dto.MedicationResponse, error)
	Delete(ctx context.Context, p dto.Principal, id uuid.UUID) error
}

type medicationService struct {
	repo repository.MedicationRepository
}

func NewMedicationService(repo repository.MedicationRepository) MedicationService {
	return &medicationService{repo: repo}
}

func (s *medicationService) List(ctx context.Context, p dto.Principal) ([]dto.MedicationResponse, error) {
	list, err := s.repo.ListByUser(ctx, p.UserID)
	if err != nil {
		return nil, apierror.Internal(err)
	}
	resp := make([]dto.MedicationResponse, len(list))
	for i := range list {
		resp[i] = toMedicationResponse(&list[i])
	}
	return resp, nil
}

func (s *medicationService) Get(ctx context.Context, p dto.Principal, id uuid.UUID) (*dto.MedicationResponse, error) {
	m, err := findOwnedMedication(ctx, s.repo, p, id)
	if err != nil {
		return nil, err
	}
	resp := toMedicationResponse(m)
	return &resp, nil
}

func (s *medicationService) Create(ctx context.Context, p dto.Principal, req dto.MedicationRequest) (*dto.MedicationResponse, error) {
	m := &model.Medication{UserID: p.UserID, Active: true}
	if err := applyMedicationRequest(m, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, apierror.Internal(err)
	}
	resp := toMedicationResponse(m)
	return &resp, nil
}

func (s *medicationService) Update(ctx context.Context, p dto.Principal, id uuid.UUID, req dto.MedicationRequest) (*dto.MedicationResponse, error) {
	m, err := findOwnedMedication(ctx, s.repo, p, id)
	if err != nil {
		return nil, err
	}
	if err := applyMedicationRequest(m, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, apierror.Internal(err)
	}
	resp := toMedicationResponse(m)
	return &resp, nil
}

// Delete also removes the medication's reminders.
func (s *medicationService) Delete(ctx context.Context, p dto.Principal, id uuid.UUID) error {
	if _, err := findOwnedMedication(ctx, s.repo, p, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apierror.Internal(err)
	}
	return nil
}

// findOwnedMedication reports a medication of another user as missing.
func findOwnedMedication(ctx context.Context, repo repository.MedicationRepository, p dto.Principal, id uuid.UUID) (*model.Medication, error) {
	m, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Medication not found with id: %s", id)
	}
	if m.UserID != p.UserID {
		return nil, apierror.NotFound("Medication not found with id: %s", id)
	}
	return m, nil
}

func applyMedicationRequest(m *model.Medication, req dto.MedicationRequest) error {
	start, err := parseOptionalDate(req.StartDate)
	if err != nil {
		return err
	}
	end, err := parseOptionalDate(req.EndDate)
	if err != nil {
		return err
	}
	if start != nil && end != nil && end.Before(*start) {
		return apierror.BadRequest("End date must not be before start date")
	}
	m.Name = req.Name
	m.Description = req.Description
	m.Dosage = req.Dosage
	m.Frequency = req.Frequency
	m.StartDate = start
	m.EndDate = end
	m.Stock = req.Stock
	if req.Active != nil {
		m.Active = *req.Active
	}
	return nil
}

// ── Reminders ────────────────────────────────────────────────────────────────

const defaultPendingWindow = 24 * time.Hour

type ReminderService interface {
	List(ctx context.Context, p dto.Principal) ([]dto.ReminderResponse, error)
	Pending(ctx context.Context, p dto.Principal, r dto.PendingRange) ([]dto.ReminderResponse, error)
	Get(ctx context.Context, p dto.Principal, id uuid.UUID) (*dto.ReminderResponse, error)
	Create(ctx context.Context, p dto.Principal, req dto.ReminderRequest) (*dto.ReminderResponse, error)
	Update(ctx context.Context, p dto.Principal, id uuid.UUID, req dto.ReminderRequest) (*dto.ReminderResponse, error)
	Complete(ctx context.Context, p dto.Principal, id uuid.UUID) (*dto.ReminderResponse, error)
	Delete(ctx context.Context, p dto.Principal, id uuid.UUID) error
}

type reminderService struct {
	repo        repository.ReminderRepository
	medications repository.MedicationRepository
}

func NewReminderService(repo repository.ReminderRepository, medications repository.MedicationRepository) ReminderService {
	return &reminderService{repo: repo, medications: medications}
}

func (s *reminderService) List(ctx context.Context, p dto.Principal) ([]dto.ReminderResponse, error) {
	list, err := s.repo.ListByUser(ctx, p.UserID)
	if err != nil {
		return nil, apierror.Internal(err)
	}
	return toReminderResponses(list), nil
}

// Pending lists open reminders in [start, end], defaulting to the next 24 hours.
func (s *reminderService) Pending(ctx context.Context, p dto.Principal, r dto.PendingRange) ([]dto.ReminderResponse, error) {
	start, end := r.Start, r.End
	if start.IsZero() {
		start = time.Now()
	}
	if end.IsZero() {
		end = start.Add(defaultPendingWindow)
	}
	if end.Before(start) {
		return nil, apierror.BadRequest("End must not be before start")
	}
	list, err := s.repo.ListPending(ctx, p.UserID, start, end)
	if err != nil {
		return nil, apierror.Internal(err)
	}
	return toReminderResponses(list), nil
}

func (s *reminderService) Get(ctx context.Context, p dto.Principal, id uuid.UUID) (*dto.ReminderResponse, error) {
	r, err := s.findOwned(ctx, p, id)
	if err != nil {
		return nil, err
	}
	resp := toReminderResponse(r)
	return &resp, nil
}

func (s *reminderService) Create(ctx context.Context, p dto.Principal, req dto.ReminderRequest) (*dto.ReminderResponse, error) {
	med, err := s.ownedMedication(ctx, p, req.MedicationID)
	if err != nil {
		return nil, err
	}
	r := &model.Reminder{
		MedicationID: med.ID,
		ReminderTime: req.ReminderTime,
		Notes:        req.Notes,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, apierror.Internal(err)
	}
	r.Medication = med
	resp := toReminderResponse(r)
	return &resp, nil
}

// Update may move the reminder to another medication of the caller.
func (s *reminderService) Update(ctx context.Context, p dto.Principal, id uuid.UUID, req dto.ReminderRequest) (*dto.ReminderResponse, error) {
	r, err := s.findOwned(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if req.MedicationID != r.MedicationID.String() {
		med, err := s.ownedMedication(ctx, p, req.MedicationID)
		if err != nil {
			return nil, err
		}
		r.MedicationID = med.ID
		r.Medication = med
	}
	if !r.ReminderTime.Equal(req.ReminderTime) {
		r.NotifiedAt = nil // rescheduled reminders notify again
	}
	r.ReminderTime = req.ReminderTime
	r.Notes = req.Notes
	r.SetCompleted(req.Completed, req.CompletedAt, time.Now())
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, apierror.Internal(err)
	}
	resp := toReminderResponse(r)
	return &resp, nil
}

func (s *reminderService) Complete(ctx context.Context, p dto.Principal, id uuid.UUID) (*dto.ReminderResponse, error) {
	r, err := s.findOwned(ctx, p, id)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	r.SetCompleted(true, &now, now)
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, apierror.Internal(err)
	}
	resp := toReminderResponse(r)
	return &resp, nil
}

func (s *reminderService) Delete(ctx context.Context, p dto.Principal, id uuid.UUID) error {
	if _, err := s.findOwned(ctx, p, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apierror.Internal(err)
	}
	return nil
}

// findOwned resolves ownership through the reminder's medication.
func (s *reminderService) findOwned(ctx context.Context, p dto.Principal, id uuid.UUID) (*model.Reminder, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Reminder not found with id: %s", id)
	}
	if r.Medication == nil {
		med, err := s.medications.FindByID(ctx, r.MedicationID)
		if err != nil {
			return nil, lookupErr(err, "Reminder not found with id: %s", id)
		}
		r.Medication = med
	}
	if r.Medication.UserID != p.UserID {
		return nil, apierror.NotFound("Reminder not found with id: %s", id)
	}
	return r, nil
}

func (s *reminderService) ownedMedication(ctx context.Context, p dto.Principal, rawID string) (*model.Medication, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, apierror.BadRequest("Invalid medication id: %s", rawID)
	}
	return findOwnedMedication(ctx, s.medications, p, id)
}

func toReminderResponses(list []model.Reminder) []dto.ReminderResponse {
	resp := make([]dto.ReminderResponse, len(list))
	for i := range list {
		resp[i] = toReminderResponse(&list[i])
	}
	return resp
}
