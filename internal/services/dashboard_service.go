package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"financas/internal/analytics"
	"financas/internal/api"
	"financas/internal/core"
	"financas/internal/session"
)

// TransactionSource is the slice of the remote API the dashboard needs.
type TransactionSource interface {
	ListTransactions(ctx context.Context) ([]analytics.RawTransaction, error)
	ListCategories(ctx context.Context) ([]core.Category, error)
	CreateTransaction(ctx context.Context, in core.TransactionInput) (analytics.RawTransaction, error)
	DeleteTransaction(ctx context.Context, id string) error
}

// DashboardService fetches transactions and categories for the current session
// and runs the analytics pipeline over them.
type DashboardService struct {
	src          TransactionSource
	cache        *ViewCache
	clock        Clock
	group        singleflight.Group
	fetchTimeout time.Duration
}

const defaultFetchTimeout = 30 * time.Second

func NewDashboardService(src TransactionSource, cache *ViewCache, clock Clock) *DashboardService {
	return &DashboardService{src: src, cache: cache, clock: clock, fetchTimeout: defaultFetchTimeout}
}

// WithFetchTimeout bounds a shared fetch. It runs detached from the request
// that started it, so this is its only deadline.
func (s *DashboardService) WithFetchTimeout(d time.Duration) *DashboardService {
	if d > 0 {
		s.fetchTimeout = d
	}
	return s
}

func currentSession(ctx context.Context) (*session.Session, error) {
	s, ok := session.FromContext(ctx)
	if !ok {
		return nil, api.ErrNotAuthenticated
	}
	return s, nil
}

// Load returns every derived view for the given filters. Transactions and
// categories are fetched concurrently unless already cached for the session.
func (s *DashboardService) Load(ctx context.Context, c analytics.Criteria) (analytics.Dashboard, error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return analytics.Dashboard{}, err
	}

	var (
		raws []analytics.RawTransaction
		cats []core.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		raws, err = s.transactions(gctx, sess.ID)
		return err
	})
	g.Go(func() error {
		var err error
		cats, err = s.categories(gctx, sess.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return analytics.Dashboard{}, err
	}

	d := analytics.BuildDashboard(raws, cats, c, s.clock.Today())
	logWarnings(ctx, d.Warnings)
	return d, nil
}

// Categories returns the session's categories, cached like the dashboard data.
func (s *DashboardService) Categories(ctx context.Context) ([]core.Category, error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}
	return s.categories(ctx, sess.ID)
}

func (s *DashboardService) transactions(ctx context.Context, sessionID string) ([]analytics.RawTransaction, error) {
	if raws, ok := s.cache.Transactions(sessionID); ok {
		return raws, nil
	}
	gen := s.cache.Generation(sessionID)
	v, err := s.shared(ctx, cacheKey(sessionID, keyTransactions), func(fctx context.Context) (any, error) {
		raws, err := s.src.ListTransactions(fctx)
		if err != nil {
			return nil, err
		}
		if !s.cache.SetTransactions(sessionID, gen, raws) {
			slog.DebugContext(ctx, "Discarded transactions fetched before an invalidation", "component", "services")
		}
		return raws, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]analytics.RawTransaction), nil
}

func (s *DashboardService) categories(ctx context.Context, sessionID string) ([]core.Category, error) {
	if cats, ok := s.cache.Categories(sessionID); ok {
		return cats, nil
	}
	gen := s.cache.Generation(sessionID)
	v, err := s.shared(ctx, cacheKey(sessionID, keyCategories), func(fctx context.Context) (any, error) {
		cats, err := s.src.ListCategories(fctx)
		if err != nil {
			return nil, err
		}
		s.cache.SetCategories(sessionID, gen, cats)
		return cats, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]core.Category), nil
}

// shared runs fetch once per key for all concurrent callers. The fetch keeps
// the session values of ctx but not its cancellation, so one caller going away
// does not fail the others; each caller still stops waiting on its own ctx.
func (s *DashboardService) shared(ctx context.Context, key string, fetch func(context.Context) (any, error)) (any, error) {
	ch := s.group.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
		defer cancel()
		return fetch(fctx)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// CreateTransaction validates and submits a new transaction. Invalid input
// never reaches the network.
func (s *DashboardService) CreateTransaction(ctx context.Context, in core.TransactionInput) error {
	sess, err := currentSession(ctx)
	if err != nil {
		return err
	}
	if err := in.Validate(); err != nil {
		return err
	}
	if _, err := s.src.CreateTransaction(ctx, in); err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	s.invalidateTransactions(sess.ID)
	slog.InfoContext(ctx, "Transaction created", "component", "services", "kind", in.Kind, "amount_cents", in.Amount.Cents)
	return nil
}

func (s *DashboardService) DeleteTransaction(ctx context.Context, id string) error {
	sess, err := currentSession(ctx)
	if err != nil {
		return err
	}
	if err := s.src.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	s.invalidateTransactions(sess.ID)
	slog.InfoContext(ctx, "Transaction deleted", "component", "services", "id", id)
	return nil
}

func logWarnings(ctx context.Context, warnings []analytics.Warning) {
	for _, w := range warnings {
		level := slog.LevelDebug
		if w.Kind == analytics.WarnCoerced {
			level = slog.LevelWarn
		}
		slog.Log(ctx, level, "Transaction field substituted",
			"component", "analytics",
			"record_id", w.RecordID,
			"field", w.Field,
			"kind", w.Kind,
			"reason", w.Reason)
	}
}

// invalidateTransactions also detaches any fetch still in flight, so the next
// Load starts a new one instead of joining it.
func (s *DashboardService) invalidateTransactions(sessionID string) {
	s.cache.InvalidateTransactions(sessionID)
	s.group.Forget(cacheKey(sessionID, keyTransactions))
}

// Forget drops the cached views of a session that ended.
func (s *DashboardService) Forget(sessionID string) {
	s.cache.Invalidate(sessionID)
	s.group.Forget(cacheKey(sessionID, keyTransactions))
	s.group.Forget(cacheKey(sessionID, keyCategories))
}
