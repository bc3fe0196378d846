package worker

// Dead letter queue: jobs that exhaust their retries land in a Redis list per
// source queue, dlq:{original_queue}, for manual inspection.

import (
	"context"
	"encoding/json"
	"time"

	"pharmacare/internal/metrics"

	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DLQEntry wraps a failed job with metadata for debugging.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      string          `json:"failed_at"` // RFC 3339
	Attempts      int             `json:"attempts"`
}

// SendToDLQ pushes a failed job to the dead letter queue and refreshes the
// size gauge of that queue.
func SendToDLQ(ctx context.Context, rdb Queue, queue string, jobType string, payload json.RawMessage, reason string, attempts int) {
	entry := DLQEntry{
		OriginalQueue: queue,
		JobType:       jobType,
		Payload:       payload,
		Reason:        reason,
		FailedAt:      time.Now().UTC().Format(time.RFC3339),
		Attempts:      attempts,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to marshal entry")
		return
	}

	dlqKey := DLQPrefix + queue
	size, err := rdb.LPush(context.WithoutCancel(ctx), dlqKey, data).Result()
	if err != nil {
		log.Error().Err(err).Str("dlq_key", dlqKey).Msg("dlq: failed to push to DLQ")
		return
	}
	metrics.DLQSize.WithLabelValues(queue).Set(float64(size))

	log.Warn().
		Str("queue", queue).
		Str("job_type", jobType).
		Str("reason", reason).
		Int("attempts", attempts).
		Msg("dlq: job moved to dead letter queue")
}

// DLQLength returns the number of entries in a DLQ for monitoring.
func DLQLength(ctx context.Context, rdb Queue, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}

// RefreshDLQGauges sets the DLQ size gauge for each queue from Redis.
func RefreshDLQGauges(ctx context.Context, rdb Queue, queues ...string) {
	for _, q := range queues {
		n, err := DLQLength(ctx, rdb, q)
		if err != nil {
			log.Warn().Err(err).Str("queue", q).Msg("dlq: length lookup failed")
			continue
		}
		metrics.DLQSize.WithLabelValues(q).Set(float64(n))
	}
}
