package core

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalOverdue   GoalStatus = "overdue"
)

const (
	Overdue  Urgency = "overdue"
	DueSoon  Urgency = "dueSoon"
	Upcoming Urgency = "upcoming"
	// Paid is never classified from a date. It only marks the notice that
	// retracts an earlier due-soon or overdue notice once the reminder is paid.
	Paid Urgency = "paid"
)

// DueSoonDays is the inclusive window in which an unpaid reminder counts as due soon.
const DueSoonDays = 7

type (
	GoalStatus string
	Urgency    string

	Goal struct {
		ID            int64
		Title         string
		Description   string
		Target        Money
		Current       Money
		DueDate       Date // zero when the goal has no deadline
		CreatedAt     Date
		CategoryLabel string
	}

	// Reminder is an installment due-date notice owned by the remote API.
	Reminder struct {
		ID               int64
		Title            string
		Amount           Money
		DueDate          Date
		InstallmentIndex int
		InstallmentTotal int
		Paid             bool
	}
)

// Status derives the goal state from amounts and the given date. It is never
// stored: the amount check comes first so a funded goal is completed even
// after its deadline.
func (g Goal) Status(today Date) GoalStatus {
	if g.Current.Cents >= g.Target.Cents {
		return GoalCompleted
	}
	if !g.DueDate.IsZero() && g.DueDate.Before(today) {
		return GoalOverdue
	}
	return GoalActive
}

// Progress returns the funded percentage capped at 100.
func (g Goal) Progress() float64 {
	if g.Target.Cents <= 0 {
		return 0
	}
	p := float64(g.Current.Cents) / float64(g.Target.Cents) * 100
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}

// Remaining returns how much is still missing to reach the target.
func (g Goal) Remaining() Money {
	if r := g.Target.Cents - g.Current.Cents; r > 0 {
		return Money{Cents: r}
	}
	return Money{}
}

// Urgency classifies the reminder's due date against today.
func (r Reminder) Urgency(today Date) Urgency {
	return ClassifyDue(r.DueDate, today, DueSoonDays)
}

// ClassifyDue places a due date into overdue, due-soon (0..window days) or upcoming.
func ClassifyDue(due, today Date, window int) Urgency {
	days := today.DaysUntil(due)
	switch {
	case days < 0:
		return Overdue
	case days <= window:
		return DueSoon
	default:
		return Upcoming
	}
}

// Label returns the pt-BR badge text for the urgency.
func (u Urgency) Label() string {
	switch u {
	case Overdue:
		return "Atrasado"
	case DueSoon:
		return "Vence em breve"
	case Paid:
		return "Pago"
	default:
		return "Próximo"
	}
}

// Label returns the pt-BR badge text for the goal status.
func (s GoalStatus) Label() string {
	switch s {
	case GoalCompleted:
		return "CONCLUÍDO"
	case GoalOverdue:
		return "ATRASADO"
	default:
		return "ATIVO"
	}
}
