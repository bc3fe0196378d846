package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pharmacare/internal/metrics"
	"pharmacare/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const defaultNotifyBatch = 100

// DueReminders is the reminder store as seen by the notifier.
type DueReminders interface {
	// ListDue returns open, not yet notified reminders due at or before until,
	// with their medication loaded.
	ListDue(ctx context.Context, until time.Time, limit int) ([]model.Reminder, error)
	MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) error
}

// UserFinder resolves the owner of a medication.
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// ReminderNotifier emails medication owners about reminders coming due.
type ReminderNotifier struct {
	reminders DueReminders
	users     UserFinder
	emails    EmailEnqueuer
	lookahead time.Duration
	batch     int
	now       func() time.Time
}

func NewReminderNotifier(reminders DueReminders, users UserFinder, emails EmailEnqueuer, lookahead time.Duration) *ReminderNotifier {
	return &ReminderNotifier{
		reminders: reminders,
		users:     users,
		emails:    emails,
		lookahead: lookahead,
		batch:     defaultNotifyBatch,
		now:       time.Now,
	}
}

// RunOnce handles one batch of due reminders and reports how many were
// notified.
func (n *ReminderNotifier) RunOnce(ctx context.Context) (int, error) {
	now := n.now().UTC()
	due, err := n.reminders.ListDue(ctx, now.Add(n.lookahead), n.batch)
	if err != nil {
		return 0, fmt.Errorf("reminder_notifier: list due: %w", err)
	}

	notified := 0
	for i := range due {
		r := &due[i]
		if r.Medication == nil {
			// Orphaned by a deleted medication; stamp it so it leaves the batch.
			log.Warn().Str("reminder_id", r.ID.String()).Msg("reminder_notifier: reminder without medication, skipping")
			if err := n.reminders.MarkNotified(ctx, r.ID, now); err != nil {
				log.Error().Err(err).Str("reminder_id", r.ID.String()).Msg("reminder_notifier: mark notified failed")
			}
			continue
		}

		owner, err := n.users.FindByID(ctx, r.Medication.UserID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Nobody to notify; stamp it so it is not picked up again.
			_ = n.reminders.MarkNotified(ctx, r.ID, now)
			continue
		case err != nil:
			log.Error().Err(err).Str("reminder_id", r.ID.String()).Msg("reminder_notifier: owner lookup failed")
			continue
		}

		if err := n.emails.EnqueueEmail(ctx, reminderEmail(owner, r)); err != nil {
			log.Error().Err(err).Str("reminder_id", r.ID.String()).Msg("reminder_notifier: enqueue failed")
			continue
		}
		if err := n.reminders.MarkNotified(ctx, r.ID, now); err != nil {
			log.Error().Err(err).Str("reminder_id", r.ID.String()).Msg("reminder_notifier: mark notified failed")
			continue
		}
		notified++
		metrics.RemindersNotified.Inc()
	}

	if notified > 0 {
		log.Info().Int("count", notified).Msg("reminder_notifier: reminders notified")
	}
	return notified, nil
}

func reminderEmail(owner *model.User, r *model.Reminder) EmailJobPayload {
	med := r.Medication
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", owner.FirstName)
	fmt.Fprintf(&b, "It is time to take %s at %s UTC.\n", med.Name, r.ReminderTime.UTC().Format("2006-01-02 15:04"))
	if med.Dosage != nil && *med.Dosage != "" {
		fmt.Fprintf(&b, "Dosage: %s\n", *med.Dosage)
	}
	if r.Notes != nil && *r.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", *r.Notes)
	}
	return EmailJobPayload{
		ToEmail: owner.Email,
		Subject: "Medication reminder: " + med.Name,
		Body:    b.String(),
	}
}
