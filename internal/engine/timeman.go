package engine

import (
	"time"
)

// Budget is the depth and time allowed for one move.
type Budget struct {
	MaxDepth int
	MoveTime time.Duration
}

// BudgetBand applies its budget to every turn before BeforeTurn.
type BudgetBand struct {
	BeforeTurn int
	Budget
}

// BudgetTable picks search limits from the game turn and the agent's
// remaining clock.
type BudgetTable struct {
	Bands   []BudgetBand // ascending by BeforeTurn
	Default Budget       // turns past the last band

	// With at most LowTime left, the search drops to LowTimeBudget.
	LowTime       time.Duration
	LowTimeBudget Budget

	// With at most CriticalTime left, only one ply is searched.
	CriticalTime time.Duration
}

// DefaultBudgetTable returns the tournament budgets.
func DefaultBudgetTable() BudgetTable {
	return BudgetTable{
		Bands: []BudgetBand{
			{BeforeTurn: 5, Budget: Budget{MaxDepth: 100, MoveTime: 1000 * time.Millisecond}},
			{BeforeTurn: 25, Budget: Budget{MaxDepth: 1000, MoveTime: 2000 * time.Millisecond}},
			{BeforeTurn: 45, Budget: Budget{MaxDepth: 1500, MoveTime: 4000 * time.Millisecond}},
			{BeforeTurn: 60, Budget: Budget{MaxDepth: 1000, MoveTime: 2000 * time.Millisecond}},
		},
		Default:       Budget{MaxDepth: 500, MoveTime: 1000 * time.Millisecond},
		LowTime:       2000 * time.Millisecond,
		LowTimeBudget: Budget{MaxDepth: 25, MoveTime: 100 * time.Millisecond},
		CriticalTime:  500 * time.Millisecond,
	}
}

// Budget returns the budget for turn given the remaining clock. A zero
// remaining time means the clock is not tracked.
func (bt BudgetTable) Budget(turn int, remaining time.Duration) Budget {
	b := bt.Default
	for _, band := range bt.Bands {
		if turn < band.BeforeTurn {
			b = band.Budget
			break
		}
	}

	if remaining <= 0 {
		return b
	}
	if remaining <= bt.LowTime && remaining > bt.CriticalTime {
		b = bt.LowTimeBudget
	}
	if remaining <= bt.CriticalTime {
		b.MaxDepth = 1
	}
	return b
}

// Limits converts the budget for turn into search limits.
func (bt BudgetTable) Limits(turn int, remaining time.Duration) Limits {
	b := bt.Budget(turn, remaining)
	return Limits{Depth: b.MaxDepth, MoveTime: b.MoveTime}
}
