package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"financas/internal/core"
)

// ErrGoalNotFound is returned when a goal id is not in the remote list.
var ErrGoalNotFound = errors.New("goal not found")

type GoalStore interface {
	ListGoals(ctx context.Context) ([]core.Goal, error)
	CreateGoal(ctx context.Context, in core.GoalInput) (core.Goal, error)
	UpdateGoal(ctx context.Context, id int64, in core.GoalInput) (core.Goal, error)
	SetGoalProgress(ctx context.Context, id int64, current core.Money) (core.Goal, error)
	DeleteGoal(ctx context.Context, id int64) error
}

// GoalView is a goal with its derived fields computed for one read.
type GoalView struct {
	core.Goal
	Status    core.GoalStatus
	Progress  float64
	Remaining core.Money
}

type GoalService struct {
	store GoalStore
	clock Clock
}

func NewGoalService(store GoalStore, clock Clock) *GoalService {
	return &GoalService{store: store, clock: clock}
}

func (s *GoalService) view(g core.Goal) GoalView {
	return GoalView{
		Goal:      g,
		Status:    g.Status(s.clock.Today()),
		Progress:  g.Progress(),
		Remaining: g.Remaining(),
	}
}

// List fetches the goals and derives status against today on every call.
func (s *GoalService) List(ctx context.Context) ([]GoalView, error) {
	goals, err := s.store.ListGoals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	out := make([]GoalView, len(goals))
	for i, g := range goals {
		out[i] = s.view(g)
	}
	return out, nil
}

func (s *GoalService) Create(ctx context.Context, in core.GoalInput) (GoalView, error) {
	if err := in.Validate(); err != nil {
		return GoalView{}, err
	}
	g, err := s.store.CreateGoal(ctx, in)
	if err != nil {
		return GoalView{}, fmt.Errorf("create goal: %w", err)
	}
	slog.InfoContext(ctx, "Goal created", "component", "services", "goal_id", g.ID)
	return s.view(g), nil
}

func (s *GoalService) Update(ctx context.Context, id int64, in core.GoalInput) (GoalView, error) {
	if err := in.Validate(); err != nil {
		return GoalView{}, err
	}
	g, err := s.store.UpdateGoal(ctx, id, in)
	if err != nil {
		return GoalView{}, fmt.Errorf("update goal %d: %w", id, err)
	}
	return s.view(g), nil
}

func (s *GoalService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteGoal(ctx, id); err != nil {
		return fmt.Errorf("delete goal %d: %w", id, err)
	}
	slog.InfoContext(ctx, "Goal deleted", "component", "services", "goal_id", id)
	return nil
}

// Contribute adds amount to the goal's current value. The remote API only
// stores the running total, so the goal is read first.
func (s *GoalService) Contribute(ctx context.Context, id int64, amount core.Money) (GoalView, error) {
	if amount.Cents <= 0 {
		return GoalView{}, core.FieldErrors{"amount": "Valor deve ser maior que zero"}
	}
	goals, err := s.store.ListGoals(ctx)
	if err != nil {
		return GoalView{}, fmt.Errorf("list goals: %w", err)
	}
	for _, g := range goals {
		if g.ID != id {
			continue
		}
		updated, err := s.store.SetGoalProgress(ctx, id, core.Money{Cents: g.Current.Cents + amount.Cents})
		if err != nil {
			return GoalView{}, fmt.Errorf("contribute to goal %d: %w", id, err)
		}
		v := s.view(updated)
		slog.InfoContext(ctx, "Goal contribution recorded",
			"component", "services", "goal_id", id, "amount_cents", amount.Cents, "status", v.Status)
		return v, nil
	}
	return GoalView{}, fmt.Errorf("goal %d: %w", id, ErrGoalNotFound)
}
