package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"financas/internal/amqp"
	"financas/internal/analytics"
	"financas/internal/core"
	"financas/internal/session"
	"financas/internal/storage"
)

var fixedClock = Clock{
	Now:      func() time.Time { return time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC) },
	Location: time.UTC,
}

func withSession(id string) context.Context {
	return session.WithSession(context.Background(), &session.Session{ID: id, Token: "tok-" + id, Email: id + "@example.com"})
}

type fakeSource struct {
	txCalls  atomic.Int32
	catCalls atomic.Int32
	mu       sync.Mutex
	raws     []analytics.RawTransaction
	cats     []core.Category
	err      error
	created  []core.TransactionInput
	deleted  []string
	// firstTx, when set, receives the first ListTransactions context and
	// holds that call until releaseTx is closed.
	firstTx   chan context.Context
	releaseTx chan struct{}
}

func (f *fakeSource) ListTransactions(ctx context.Context) ([]analytics.RawTransaction, error) {
	n := f.txCalls.Add(1)
	f.mu.Lock()
	raws := f.raws
	f.mu.Unlock()
	if n == 1 && f.firstTx != nil {
		f.firstTx <- ctx
		<-f.releaseTx
	}
	return raws, f.err
}

func (f *fakeSource) setRaws(raws []analytics.RawTransaction) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.raws = raws
}

func (f *fakeSource) ListCategories(context.Context) ([]core.Category, error) {
	f.catCalls.Add(1)
	return f.cats, f.err
}

func (f *fakeSource) CreateTransaction(_ context.Context, in core.TransactionInput) (analytics.RawTransaction, error) {
	f.created = append(f.created, in)
	return analytics.RawTransaction{"id": 99}, f.err
}

func (f *fakeSource) DeleteTransaction(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

type fakeGoals struct {
	goals    []core.Goal
	progress map[int64]core.Money
}

func (f *fakeGoals) ListGoals(context.Context) ([]core.Goal, error) { return f.goals, nil }

func (f *fakeGoals) CreateGoal(_ context.Context, in core.GoalInput) (core.Goal, error) {
	g := core.Goal{ID: int64(len(f.goals) + 1), Title: in.Title, Target: in.Target, Current: in.Current, DueDate: in.DueDate}
	f.goals = append(f.goals, g)
	return g, nil
}

func (f *fakeGoals) UpdateGoal(_ context.Context, id int64, in core.GoalInput) (core.Goal, error) {
	return core.Goal{ID: id, Title: in.Title, Target: in.Target, Current: in.Current, DueDate: in.DueDate}, nil
}

func (f *fakeGoals) SetGoalProgress(_ context.Context, id int64, current core.Money) (core.Goal, error) {
	if f.progress == nil {
		f.progress = make(map[int64]core.Money)
	}
	f.progress[id] = current
	for _, g := range f.goals {
		if g.ID == id {
			g.Current = current
			return g, nil
		}
	}
	return core.Goal{}, ErrGoalNotFound
}

func (f *fakeGoals) DeleteGoal(context.Context, int64) error { return nil }

type fakeReminders struct {
	mu      sync.Mutex
	byMonth map[[2]int][]core.Reminder
	err     error
	paid    []int64
	// gate, when set, blocks ListReminders for the given month until closed.
	gate map[[2]int]chan struct{}
}

func (f *fakeReminders) ListReminders(_ context.Context, year, month int) ([]core.Reminder, error) {
	f.mu.Lock()
	gate := f.gate[[2]int{year, month}]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.byMonth[[2]int{year, month}], nil
}

func (f *fakeReminders) MarkReminderPaid(_ context.Context, id int64) error {
	f.paid = append(f.paid, id)
	return nil
}

type fakeLedger struct {
	mu        sync.Mutex
	recorded  map[string]bool
	forgotten int
}

func noticeKey(id int64, u core.Urgency) string {
	return fmt.Sprintf("%d/%s", id, u)
}

func (f *fakeLedger) RecordNotice(_ context.Context, n storage.Notice, _ time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recorded == nil {
		f.recorded = make(map[string]bool)
	}
	key := noticeKey(n.ReminderID, n.Urgency)
	if f.recorded[key] {
		return false, nil
	}
	f.recorded[key] = true
	return true, nil
}

func (f *fakeLedger) ForgetNotice(_ context.Context, reminderID int64, urgency core.Urgency) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.recorded, noticeKey(reminderID, urgency))
	f.forgotten++
	return nil
}

func (f *fakeLedger) Announced(_ context.Context, reminderID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recorded[noticeKey(reminderID, core.DueSoon)] || f.recorded[noticeKey(reminderID, core.Overdue)], nil
}

func (f *fakeLedger) PurgeNotices(context.Context, time.Time) (int64, error) { return 0, nil }

type fakePublisher struct {
	sent []*amqp.ReminderNotice
	err  error
}

func (f *fakePublisher) PublishReminderNotice(_ context.Context, msg *amqp.ReminderNotice) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeSessions struct {
	list  []session.Session
	ended []string
}

func (f *fakeSessions) Active(context.Context) ([]session.Session, error) { return f.list, nil }

func (f *fakeSessions) End(_ context.Context, id string) error {
	f.ended = append(f.ended, id)
	return nil
}
