package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"pharmacare/internal/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueReceipt = "jobs:receipt"
	QueueEmail   = "jobs:email"

	JobReceipt = "receipt"
	JobEmail   = "email"

	defaultMaxAttempts = 3
	popTimeout         = 5 * time.Second
)

// Queue is the part of the Redis API the dispatcher and the pool use.
// *redis.Client satisfies it.
type Queue interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
	LLen(ctx context.Context, key string) *redis.IntCmd
}

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb Queue
}

func NewDispatcher(rdb Queue) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueReceipt pushes a receipt job for a committed bill.
func (d *Dispatcher) EnqueueReceipt(ctx context.Context, billID uuid.UUID, email string) error {
	return d.enqueue(ctx, QueueReceipt, JobReceipt, ReceiptJobPayload{BillID: billID.String(), CustomerEmail: email})
}

// EnqueueEmail pushes an email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, JobEmail, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// HandlerFunc processes one job payload. Returning an error schedules a retry
// unless the error is permanent.
type HandlerFunc func(ctx context.Context, payload json.RawMessage) error

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying; the job goes straight to the DLQ.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func isPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// Pool consumes the registered queues with a fixed number of goroutines.
type Pool struct {
	rdb         Queue
	handlers    map[string]HandlerFunc
	queues      []string
	maxAttempts int
	backoff     func(attempt int) time.Duration
	wg          sync.WaitGroup
}

func NewPool(rdb Queue) *Pool {
	return &Pool{
		rdb:         rdb,
		handlers:    make(map[string]HandlerFunc),
		maxAttempts: defaultMaxAttempts,
		backoff:     exponentialBackoff,
	}
}

// Handle registers h for jobs of jobType arriving on queue.
func (p *Pool) Handle(queue, jobType string, h HandlerFunc) {
	p.handlers[jobType] = h
	for _, q := range p.queues {
		if q == queue {
			return
		}
	}
	p.queues = append(p.queues, queue)
}

// Start launches n goroutines consuming all registered queues.
// Each goroutine blocks on BRPOP, so idle workers cost nothing.
func (p *Pool) Start(ctx context.Context, n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
	log.Info().Int("workers", n).Strs("queues", p.queues).Msg("worker pool started")
}

// Wait blocks until every worker has returned after ctx cancellation.
func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) run(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("worker", id).Msg("worker shutting down")
			return
		default:
		}
		result, err := p.rdb.BRPop(ctx, popTimeout, p.queues...).Result()
		if err != nil {
			// redis.Nil on timeout, context error on shutdown
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				log.Warn().Err(err).Int("worker", id).Msg("worker: BRPOP failed")
				sleep(ctx, time.Second)
			}
			continue
		}
		if len(result) < 2 {
			continue
		}
		p.process(ctx, result[0], result[1])
	}
}

func (p *Pool) process(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("worker: failed to unmarshal job")
		quoted, _ := json.Marshal(raw)
		SendToDLQ(ctx, p.rdb, queue, "unknown", quoted, "malformed envelope: "+err.Error(), 0)
		metrics.JobsProcessed.WithLabelValues("unknown", "dead").Inc()
		return
	}

	h, ok := p.handlers[job.Type]
	if !ok {
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, "no handler for job type", 0)
		metrics.JobsProcessed.WithLabelValues(job.Type, "dead").Inc()
		return
	}

	attempts, err := withRetry(ctx, p.maxAttempts, p.backoff, func(attempt int) error {
		err := h(ctx, job.Payload)
		if err != nil && !isPermanent(err) {
			log.Warn().Err(err).Str("type", job.Type).Int("attempt", attempt+1).Msg("worker: job attempt failed")
		}
		return err
	})
	if err != nil {
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, err.Error(), attempts)
		metrics.JobsProcessed.WithLabelValues(job.Type, "dead").Inc()
		return
	}
	metrics.JobsProcessed.WithLabelValues(job.Type, "ok").Inc()
}

// withRetry calls fn up to maxAttempts times, waiting backoff(i) before
// attempt i. Permanent errors stop the loop. It returns the number of
// attempts made and the last error.
func withRetry(ctx context.Context, maxAttempts int, backoff func(int) time.Duration, fn func(attempt int) error) (int, error) {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			if !sleep(ctx, backoff(i)) {
				return i, ctx.Err()
			}
		}
		lastErr = fn(i)
		if lastErr == nil {
			return i + 1, nil
		}
		if isPermanent(lastErr) {
			return i + 1, lastErr
		}
	}
	return maxAttempts, lastErr
}

// exponentialBackoff: attempt 1 waits 1s, attempt 2 waits 2s, and so on.
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt-1)) * time.Second
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
