package service_test

import (
	"context"
	"sort"
	"time"

	"pharmacare/internal/model"
	"pharmacare/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── Medications & reminders ───────────────────────────────────────────────────

type stubMedicationRepo struct {
	meds      map[uuid.UUID]*model.Medication
	reminders *stubReminderRepo
}

func newStubMedicationRepo() *stubMedicationRepo {
	return &stubMedicationRepo{meds: map[uuid.UUID]*model.Medication{}}
}

func (r *stubMedicationRepo) Create(_ context.Context, m *model.Medication) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.meds[m.ID] = m
	return nil
}

func (r *stubMedicationRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Medication, error) {
	m, ok := r.meds[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m, nil
}

func (r *stubMedicationRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]model.Medication, error) {
	var out []model.Medication
	for _, m := range r.meds {
		if m.UserID == userID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *stubMedicationRepo) Update(_ context.Context, m *model.Medication) error {
	r.meds[m.ID] = m
	return nil
}

func (r *stubMedicationRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.meds, id)
	if r.reminders != nil {
		for rid, rem := range r.reminders.rows {
			if rem.MedicationID == id {
				delete(r.reminders.rows, rid)
			}
		}
	}
	return nil
}

var _ repository.MedicationRepository = (*stubMedicationRepo)(nil)

type stubReminderRepo struct {
	meds *stubMedicationRepo
	rows map[uuid.UUID]*model.Reminder
}

func newStubReminderRepo(meds *stubMedicationRepo) *stubReminderRepo {
	r := &stubReminderRepo{meds: meds, rows: map[uuid.UUID]*model.Reminder{}}
	meds.reminders = r
	return r
}

func (r *stubReminderRepo) Create(_ context.Context, rem *model.Reminder) error {
	if rem.ID == uuid.Nil {
		rem.ID = uuid.New()
	}
	cp := *rem
	cp.Medication = nil
	r.rows[rem.ID] = &cp
	return nil
}

func (r *stubReminderRepo) withMedication(rem *model.Reminder) model.Reminder {
	cp := *rem
	cp.Medication = r.meds.meds[rem.MedicationID]
	return cp
}

func (r *stubReminderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Reminder, error) {
	rem, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := r.withMedication(rem)
	return &cp, nil
}

func (r *stubReminderRepo) filter(keep func(model.Reminder) bool) []model.Reminder {
	var out []model.Reminder
	for _, rem := range r.rows {
		cp := r.withMedication(rem)
		if cp.Medication != nil && keep(cp) {
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReminderTime.Before(out[j].ReminderTime) })
	return out
}

func (r *stubReminderRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]model.Reminder, error) {
	return r.filter(func(rem model.Reminder) bool { return rem.Medication.UserID == userID }), nil
}

func (r *stubReminderRepo) ListPending(_ context.Context, userID uuid.UUID, start, end time.Time) ([]model.Reminder, error) {
	return r.filter(func(rem model.Reminder) bool {
		return rem.Medication.UserID == userID && !rem.Completed &&
			!rem.ReminderTime.Before(start) && !rem.ReminderTime.After(end)
	}), nil
}

func (r *stubReminderRepo) ListDue(_ context.Context, until time.Time, limit int) ([]model.Reminder, error) {
	out := r.filter(func(rem model.Reminder) bool {
		return !rem.Completed && rem.NotifiedAt == nil && !rem.ReminderTime.After(until)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *stubReminderRepo) MarkNotified(_ context.Context, id uuid.UUID, at time.Time) error {
	if rem, ok := r.rows[id]; ok {
		rem.NotifiedAt = &at
	}
	return nil
}

func (r *stubReminderRepo) Update(_ context.Context, rem *model.Reminder) error {
	cp := *rem
	cp.Medication = nil
	r.rows[rem.ID] = &cp
	return nil
}

func (r *stubReminderRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.rows, id)
	return nil
}

var _ repository.ReminderRepository = (*stubReminderRepo)(nil)

// ── Family ────────────────────────────────────────────────────────────────────

type stubFamilyRepo struct {
	rows map[uuid.UUID]*model.FamilyMember
}

func (r *stubFamilyRepo) Create(_ context.Context, m *model.FamilyMember) error {
	if r.rows == nil {
		r.rows = map[uuid.UUID]*model.FamilyMember{}
	}
	m.ID = uuid.New()
	r.rows[m.ID] = m
	return nil
}

func (r *stubFamilyRepo) FindByID(_ context.Context, id uuid.UUID) (*model.FamilyMember, error) {
	m, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m, nil
}

func (r *stubFamilyRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]model.FamilyMember, error) {
	var out []model.FamilyMember
	for _, m := range r.rows {
		if m.UserID == userID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *stubFamilyRepo) Update(_ context.Context, m *model.FamilyMember) error {
	r.rows[m.ID] = m
	return nil
}

func (r *stubFamilyRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.rows, id)
	return nil
}

var _ repository.FamilyMemberRepository = (*stubFamilyRepo)(nil)

// ── Donations ─────────────────────────────────────────────────────────────────

type stubDonationRepo struct {
	rows map[uuid.UUID]*model.Donation
}

func (r *stubDonationRepo) Create(_ context.Context, d *model.Donation) error {
	if r.rows == nil {
		r.rows = map[uuid.UUID]*model.Donation{}
	}
	d.ID = uuid.New()
	r.rows[d.ID] = d
	return nil
}

func (r *stubDonationRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Donation, error) {
	d, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *stubDonationRepo) ListByUser(_ context.Context, userID uuid.UUID, status model.DonationStatus) ([]model.Donation, error) {
	var out []model.Donation
	for _, d := range r.rows {
		if d.UserID == userID && (status == "" || d.Status == status) {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *stubDonationRepo) Update(_ context.Context, d *model.Donation) error {
	cp := *d
	r.rows[d.ID] = &cp
	return nil
}

func (r *stubDonationRepo) DeletePending(_ context.Context, id uuid.UUID) (bool, error) {
	d, ok := r.rows[id]
	if !ok || d.Status != model.DonationPending {
		return false, nil
	}
	delete(r.rows, id)
	return true, nil
}

var _ repository.DonationRepository = (*stubDonationRepo)(nil)

// ── Documents ─────────────────────────────────────────────────────────────────

type stubDocumentRepo struct {
	rows map[uuid.UUID]*model.MedicalDocument
}

func (r *stubDocumentRepo) Create(_ context.Context, d *model.MedicalDocument) error {
	if r.rows == nil {
		r.rows = map[uuid.UUID]*model.MedicalDocument{}
	}
	d.ID = uuid.New()
	r.rows[d.ID] = d
	return nil
}

func (r *stubDocumentRepo) FindByID(_ context.Context, id uuid.UUID) (*model.MedicalDocument, error) {
	d, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return d, nil
}

func (r *stubDocumentRepo) ListByUser(_ context.Context, userID uuid.UUID, documentType string) ([]model.MedicalDocument, error) {
	var out []model.MedicalDocument
	for _, d := range r.rows {
		if d.UserID == userID && (documentType == "" || d.DocumentType == documentType) {
			cp := *d
			cp.FileData = nil
			out = append(out, cp)
		}
	}
	return out, nil
}

func (r *stubDocumentRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.rows, id)
	return nil
}

var _ repository.MedicalDocumentRepository = (*stubDocumentRepo)(nil)
