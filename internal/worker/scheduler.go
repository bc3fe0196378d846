package worker

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const dlqGaugeSchedule = "@every 1m"

// StartScheduler registers the reminder notifier under schedule and a DLQ
// gauge refresh, then runs them until ctx is cancelled. The returned cron is
// already started.
func StartScheduler(ctx context.Context, schedule string, notifier *ReminderNotifier, rdb Queue) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	if _, err := c.AddFunc(schedule, func() {
		if _, err := notifier.RunOnce(ctx); err != nil {
			log.Error().Err(err).Msg("reminder_notifier: tick failed")
		}
	}); err != nil {
		return nil, err
	}
	if _, err := c.AddFunc(dlqGaugeSchedule, func() {
		RefreshDLQGauges(ctx, rdb, QueueReceipt, QueueEmail)
	}); err != nil {
		return nil, err
	}

	c.Start()
	log.Info().Str("schedule", schedule).Msg("reminder_notifier: started")

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		log.Info().Msg("reminder_notifier: stopped")
	}()
	return c, nil
}
