package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"pharmacare/internal/infra"
	"pharmacare/internal/metrics"
	"pharmacare/internal/model"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memQueue is an in-memory stand-in for the Redis lists.
type memQueue struct {
	mu    sync.Mutex
	lists map[string][]string
}

func newMemQueue() *memQueue { return &memQueue{lists: make(map[string][]string)} }

func (q *memQueue) LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, v := range values {
		var s string
		switch t := v.(type) {
		case []byte:
			s = string(t)
		case string:
			s = t
		}
		q.lists[key] = append([]string{s}, q.lists[key]...)
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(q.lists[key])))
	return cmd
}

func (q *memQueue) BRPop(ctx context.Context, _ time.Duration, keys ...string) *redis.StringSliceCmd {
	cmd := redis.NewStringSliceCmd(ctx)
	q.mu.Lock()
	for _, k := range keys {
		if l := q.lists[k]; len(l) > 0 {
			v := l[len(l)-1]
			q.lists[k] = l[:len(l)-1]
			q.mu.Unlock()
			cmd.SetVal([]string{k, v})
			return cmd
		}
	}
	q.mu.Unlock()
	select {
	case <-ctx.Done():
		cmd.SetErr(ctx.Err())
	case <-time.After(5 * time.Millisecond):
		cmd.SetErr(redis.Nil)
	}
	return cmd
}

func (q *memQueue) LLen(ctx context.Context, key string) *redis.IntCmd {
	q.mu.Lock()
	defer q.mu.Unlock()
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(q.lists[key])))
	return cmd
}

func (q *memQueue) items(key string) []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.lists[key]...)
}

func (q *memQueue) dlq(t *testing.T, queue string) []DLQEntry {
	t.Helper()
	var out []DLQEntry
	for _, raw := range q.items(DLQPrefix + queue) {
		var e DLQEntry
		require.NoError(t, json.Unmarshal([]byte(raw), &e))
		out = append(out, e)
	}
	return out
}

func envelope(t *testing.T, jobType string, payload any) string {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	raw, err := json.Marshal(Job{Type: jobType, Payload: data})
	require.NoError(t, err)
	return string(raw)
}

func newTestPool(q *memQueue) *Pool {
	p := NewPool(q)
	p.backoff = func(int) time.Duration { return 0 }
	return p
}

// ── Dispatcher ──────────────────────────────────────────────────────────────

func TestDispatcher_EnqueueReceipt(t *testing.T) {
	q := newMemQueue()
	d := NewDispatcher(q)
	id := uuid.New()

	require.NoError(t, d.EnqueueReceipt(context.Background(), id, "ana@example.com"))

	items := q.items(QueueReceipt)
	require.Len(t, items, 1)
	var job Job
	require.NoError(t, json.Unmarshal([]byte(items[0]), &job))
	assert.Equal(t, JobReceipt, job.Type)

	var p ReceiptJobPayload
	require.NoError(t, json.Unmarshal(job.Payload, &p))
	assert.Equal(t, id.String(), p.BillID)
	assert.Equal(t, "ana@example.com", p.CustomerEmail)
}

func TestDispatcher_EnqueueEmail(t *testing.T) {
	q := newMemQueue()
	require.NoError(t, NewDispatcher(q).EnqueueEmail(context.Background(), EmailJobPayload{ToEmail: "a@b.c", Subject: "hi"}))
	assert.Len(t, q.items(QueueEmail), 1)
	assert.Empty(t, q.items(QueueReceipt))
}

// ── Pool ────────────────────────────────────────────────────────────────────

func TestPool_ProcessSuccess(t *testing.T) {
	q := newMemQueue()
	p := newTestPool(q)
	var got EmailJobPayload
	p.Handle(QueueEmail, JobEmail, func(_ context.Context, raw json.RawMessage) error {
		return json.Unmarshal(raw, &got)
	})

	before := testutil.ToFloat64(metrics.JobsProcessed.WithLabelValues(JobEmail, "ok"))
	p.process(context.Background(), QueueEmail, envelope(t, JobEmail, EmailJobPayload{ToEmail: "x@y.z"}))

	assert.Equal(t, "x@y.z", got.ToEmail)
	assert.Empty(t, q.dlq(t, QueueEmail))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.JobsProcessed.WithLabelValues(JobEmail, "ok")))
}

func TestPool_RetriesTransientFailures(t *testing.T) {
	q := newMemQueue()
	p := newTestPool(q)
	calls := 0
	p.Handle(QueueEmail, JobEmail, func(context.Context, json.RawMessage) error {
		calls++
		if calls < 3 {
			return errors.New("smtp timeout")
		}
		return nil
	})

	p.process(context.Background(), QueueEmail, envelope(t, JobEmail, EmailJobPayload{}))

	assert.Equal(t, 3, calls)
	assert.Empty(t, q.dlq(t, QueueEmail))
}

func TestPool_ExhaustedRetriesGoToDLQ(t *testing.T) {
	q := newMemQueue()
	p := newTestPool(q)
	calls := 0
	p.Handle(QueueEmail, JobEmail, func(context.Context, json.RawMessage) error {
		calls++
		return errors.New("relay down")
	})

	p.process(context.Background(), QueueEmail, envelope(t, JobEmail, EmailJobPayload{ToEmail: "x@y.z"}))

	assert.Equal(t, defaultMaxAttempts, calls)
	entries := q.dlq(t, QueueEmail)
	require.Len(t, entries, 1)
	assert.Equal(t, QueueEmail, entries[0].OriginalQueue)
	assert.Equal(t, JobEmail, entries[0].JobType)
	assert.Equal(t, "relay down", entries[0].Reason)
	assert.Equal(t, defaultMaxAttempts, entries[0].Attempts)
	assert.JSONEq(t, `{"to_email":"x@y.z","subject":"","body":""}`, string(entries[0].Payload))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.DLQSize.WithLabelValues(QueueEmail)))
}

func TestPool_PermanentErrorSkipsRetries(t *testing.T) {
	q := newMemQueue()
	p := newTestPool(q)
	calls := 0
	p.Handle(QueueReceipt, JobReceipt, func(context.Context, json.RawMessage) error {
		calls++
		return Permanent(errors.New("bill not found"))
	})

	p.process(context.Background(), QueueReceipt, envelope(t, JobReceipt, ReceiptJobPayload{}))

	assert.Equal(t, 1, calls)
	entries := q.dlq(t, QueueReceipt)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Attempts)
}

func TestPool_UnknownTypeAndMalformedEnvelope(t *testing.T) {
	q := newMemQueue()
	p := newTestPool(q)

	p.process(context.Background(), QueueEmail, envelope(t, "fax", map[string]string{}))
	p.process(context.Background(), QueueEmail, "{not json")

	entries := q.dlq(t, QueueEmail)
	require.Len(t, entries, 2)
	reasons := []string{entries[0].Reason, entries[1].Reason}
	assert.Contains(t, reasons, "no handler for job type")
}

func TestPool_StartConsumesQueues(t *testing.T) {
	q := newMemQueue()
	p := newTestPool(q)

	var mu sync.Mutex
	var seen []string
	p.Handle(QueueReceipt, JobReceipt, func(_ context.Context, raw json.RawMessage) error {
		var r ReceiptJobPayload
		_ = json.Unmarshal(raw, &r)
		mu.Lock()
		seen = append(seen, r.BillID)
		mu.Unlock()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx, 2)

	d := NewDispatcher(q)
	a, b := uuid.New(), uuid.New()
	require.NoError(t, d.EnqueueReceipt(ctx, a, ""))
	require.NoError(t, d.EnqueueReceipt(ctx, b, ""))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 2
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	p.Wait()
	assert.ElementsMatch(t, []string{a.String(), b.String()}, seen)
}

func TestWithRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	attempts, err := withRetry(ctx, 3, func(int) time.Duration { return time.Hour }, func(int) error {
		calls++
		cancel()
		return errors.New("fail")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, attempts)
}

func TestExponentialBackoff(t *testing.T) {
	assert.Equal(t, time.Second, exponentialBackoff(1))
	assert.Equal(t, 2*time.Second, exponentialBackoff(2))
	assert.Equal(t, 4*time.Second, exponentialBackoff(3))
}

// ── Email worker ────────────────────────────────────────────────────────────

type fakeSender struct {
	sent []infra.Message
	err  error
}

func (f *fakeSender) Send(msg infra.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func TestEmailWorker_Sends(t *testing.T) {
	s := &fakeSender{}
	w := NewEmailWorker(s)
	raw, _ := json.Marshal(EmailJobPayload{ToEmail: "a@b.c", Subject: "S", Body: "B", AttachmentPath: "/tmp/r.pdf"})

	require.NoError(t, w.Process(context.Background(), raw))
	require.Len(t, s.sent, 1)
	assert.Equal(t, infra.Message{To: "a@b.c", Subject: "S", Body: "B", AttachmentPath: "/tmp/r.pdf"}, s.sent[0])
}

func TestEmailWorker_Failures(t *testing.T) {
	w := NewEmailWorker(&fakeSender{err: infra.ErrCircuitOpen})
	raw, _ := json.Marshal(EmailJobPayload{ToEmail: "a@b.c"})
	err := w.Process(context.Background(), raw)
	assert.ErrorIs(t, err, infra.ErrCircuitOpen)
	assert.False(t, isPermanent(err))

	err = w.Process(context.Background(), json.RawMessage(`[`))
	assert.True(t, isPermanent(err))

	s := &fakeSender{}
	require.NoError(t, NewEmailWorker(s).Process(context.Background(), json.RawMessage(`{"to_email":""}`)))
	assert.Empty(t, s.sent)
}

// ── Receipt worker ──────────────────────────────────────────────────────────

type fakeBills struct {
	bill *model.Bill
	err  error
}

func (f *fakeBills) FindByID(_ context.Context, id uuid.UUID) (*model.Bill, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.bill == nil || f.bill.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.bill, nil
}

type fakeEmails struct {
	queued []EmailJobPayload
	err    error
}

func (f *fakeEmails) EnqueueEmail(_ context.Context, p EmailJobPayload) error {
	if f.err != nil {
		return f.err
	}
	f.queued = append(f.queued, p)
	return nil
}

func receiptFixture() (*model.Bill, *ReceiptWorker, *fakeEmails, *[]string) {
	bill := &model.Bill{
		ID:          uuid.New(),
		BillNumber:  "BILL-20261016-0001",
		TotalAmount: decimal.RequireFromString("42.5"),
		BillDate:    time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC),
		Pharmacy:    &model.Pharmacy{Name: "Green Cross"},
	}
	emails := &fakeEmails{}
	w := NewReceiptWorker(&fakeBills{bill: bill}, emails, "/srv/receipts")
	var rendered []string
	w.render = func(b *model.Bill, dir string) (string, error) {
		p := dir + "/receipt_" + b.BillNumber + ".pdf"
		rendered = append(rendered, p)
		return p, nil
	}
	return bill, w, emails, &rendered
}

func TestReceiptWorker_RendersAndQueuesEmail(t *testing.T) {
	bill, w, emails, rendered := receiptFixture()
	raw, _ := json.Marshal(ReceiptJobPayload{BillID: bill.ID.String(), CustomerEmail: "cust@example.com"})

	require.NoError(t, w.Process(context.Background(), raw))

	require.Equal(t, []string{"/srv/receipts/receipt_BILL-20261016-0001.pdf"}, *rendered)
	require.Len(t, emails.queued, 1)
	got := emails.queued[0]
	assert.Equal(t, "cust@example.com", got.ToEmail)
	assert.Equal(t, "Your receipt BILL-20261016-0001 from Green Cross", got.Subject)
	assert.Contains(t, got.Body, "Total: 42.50")
	assert.Equal(t, (*rendered)[0], got.AttachmentPath)
}

func TestReceiptWorker_NoEmailOnlyRenders(t *testing.T) {
	bill, w, emails, rendered := receiptFixture()
	raw, _ := json.Marshal(ReceiptJobPayload{BillID: bill.ID.String()})

	require.NoError(t, w.Process(context.Background(), raw))
	assert.Len(t, *rendered, 1)
	assert.Empty(t, emails.queued)
}

func TestReceiptWorker_Errors(t *testing.T) {
	_, w, _, _ := receiptFixture()

	err := w.Process(context.Background(), json.RawMessage(`{"bill_id":"nope"}`))
	assert.True(t, isPermanent(err))

	raw, _ := json.Marshal(ReceiptJobPayload{BillID: uuid.NewString()})
	err = w.Process(context.Background(), raw)
	assert.True(t, isPermanent(err), "missing bill is not retried")

	w.bills = &fakeBills{err: errors.New("conn refused")}
	err = w.Process(context.Background(), raw)
	require.Error(t, err)
	assert.False(t, isPermanent(err))
}

// ── Reminder notifier ───────────────────────────────────────────────────────

type fakeReminders struct {
	due      []model.Reminder
	until    time.Time
	notified map[uuid.UUID]time.Time
}

func (f *fakeReminders) ListDue(_ context.Context, until time.Time, _ int) ([]model.Reminder, error) {
	f.until = until
	return f.due, nil
}

func (f *fakeReminders) MarkNotified(_ context.Context, id uuid.UUID, at time.Time) error {
	f.notified[id] = at
	return nil
}

type fakeUsers map[uuid.UUID]*model.User

func (f fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func TestReminderNotifier_RunOnce(t *testing.T) {
	now := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)
	owner := &model.User{ID: uuid.New(), Email: "pat@example.com", FirstName: "Pat"}
	dosage := "500mg"
	notes := "after breakfast"
	med := &model.Medication{ID: uuid.New(), UserID: owner.ID, Name: "Amoxicillin", Dosage: &dosage}
	orphan := &model.Medication{ID: uuid.New(), UserID: uuid.New(), Name: "Ghost"}

	due := []model.Reminder{
		{ID: uuid.New(), MedicationID: med.ID, Medication: med, ReminderTime: now.Add(10 * time.Minute), Notes: &notes},
		{ID: uuid.New(), MedicationID: orphan.ID, Medication: orphan, ReminderTime: now},
	}
	rems := &fakeReminders{due: due, notified: map[uuid.UUID]time.Time{}}
	emails := &fakeEmails{}
	n := NewReminderNotifier(rems, fakeUsers{owner.ID: owner}, emails, 15*time.Minute)
	n.now = func() time.Time { return now }

	before := testutil.ToFloat64(metrics.RemindersNotified)
	count, err := n.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, count)
	assert.Equal(t, now.Add(15*time.Minute), rems.until)
	require.Len(t, emails.queued, 1)
	assert.Equal(t, "pat@example.com", emails.queued[0].ToEmail)
	assert.Equal(t, "Medication reminder: Amoxicillin", emails.queued[0].Subject)
	assert.Contains(t, emails.queued[0].Body, "Dosage: 500mg")
	assert.Contains(t, emails.queued[0].Body, "Notes: after breakfast")

	// both are stamped: the orphan has no owner to notify
	assert.Equal(t, now, rems.notified[due[0].ID])
	assert.Contains(t, rems.notified, due[1].ID)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.RemindersNotified))
}

func TestReminderNotifier_EnqueueFailureLeavesReminderOpen(t *testing.T) {
	owner := &model.User{ID: uuid.New(), Email: "pat@example.com"}
	med := &model.Medication{ID: uuid.New(), UserID: owner.ID, Name: "Ibuprofen"}
	r := model.Reminder{ID: uuid.New(), Medication: med, ReminderTime: time.Now()}
	rems := &fakeReminders{due: []model.Reminder{r}, notified: map[uuid.UUID]time.Time{}}

	n := NewReminderNotifier(rems, fakeUsers{owner.ID: owner}, &fakeEmails{err: errors.New("redis down")}, time.Minute)
	count, err := n.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Zero(t, count)
	assert.NotContains(t, rems.notified, r.ID)
}

func TestReminderNotifier_StampsReminderWithoutMedication(t *testing.T) {
	now := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)
	dangling := model.Reminder{ID: uuid.New(), MedicationID: uuid.New(), ReminderTime: now}
	rems := &fakeReminders{due: []model.Reminder{dangling}, notified: map[uuid.UUID]time.Time{}}
	emails := &fakeEmails{}

	n := NewReminderNotifier(rems, fakeUsers{}, emails, time.Minute)
	n.now = func() time.Time { return now }
	count, err := n.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, emails.queued)
	assert.Equal(t, now, rems.notified[dangling.ID], "stamped so the next batch skips it")
}

func TestStartScheduler_RejectsBadSchedule(t *testing.T) {
	n := NewReminderNotifier(&fakeReminders{notified: map[uuid.UUID]time.Time{}}, fakeUsers{}, &fakeEmails{}, time.Minute)
	_, err := StartScheduler(context.Background(), "every now and then", n, newMemQueue())
	assert.Error(t, err)
}

func TestStartScheduler_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	n := NewReminderNotifier(&fakeReminders{notified: map[uuid.UUID]time.Time{}}, fakeUsers{}, &fakeEmails{}, time.Minute)
	c, err := StartScheduler(ctx, "@every 1h", n, newMemQueue())
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 2)
	cancel()
}
