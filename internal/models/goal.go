package models

import (
	"strings"
	"time"
)

// GoalStatus is the lifecycle state of a savings goal
type GoalStatus string

const (
	GoalActive    GoalStatus = "ACTIVE"
	GoalCompleted GoalStatus = "COMPLETED"
	GoalCancelled GoalStatus = "CANCELLED"
)

// Cadence is the repeat interval between installments
type Cadence string

const (
	CadenceWeekly   Cadence = "WEEKLY"
	CadenceBiweekly Cadence = "BIWEEKLY"
	CadenceMonthly  Cadence = "MONTHLY"
)

// ParseCadence normalizes a cadence string. Unrecognized values fall back
// to monthly rather than failing.
func ParseCadence(s string) Cadence {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(CadenceWeekly):
		return CadenceWeekly
	case string(CadenceBiweekly):
		return CadenceBiweekly
	case string(CadenceMonthly):
		return CadenceMonthly
	default:
		return CadenceMonthly
	}
}

// SavingsGoal represents a savings target split into dated installments
type SavingsGoal struct {
	ID                int64      `json:"id"`
	UserID            int64      `json:"user_id"`
	Name              string     `json:"name"`
	TargetAmount      float64    `json:"target_amount"`
	AmountSaved       float64    `json:"amount_saved"`
	InstallmentCount  int        `json:"installment_count"`
	InstallmentAmount float64    `json:"installment_amount"`
	Cadence           Cadence    `json:"cadence"`
	StartDate         time.Time  `json:"start_date"`
	EndDate           time.Time  `json:"end_date"`
	Status            GoalStatus `json:"status"`
	BalancePercent    float64    `json:"balance_percent,omitempty"` // suggestion hint, not a scheduling input
	CreatedAt         string     `json:"created_at"`
	UpdatedAt         string     `json:"updated_at"`
}

// Progress returns the percentage of the target amount saved so far
func (g *SavingsGoal) Progress() float64 {
	if g.TargetAmount == 0 {
		return 0
	}
	return (g.AmountSaved / g.TargetAmount) * 100
}

// AmountRemaining returns how much is still missing to reach the target
func (g *SavingsGoal) AmountRemaining() float64 {
	remaining := g.TargetAmount - g.AmountSaved
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsComplete reports whether the saved amount has reached the target
func (g *SavingsGoal) IsComplete() bool {
	return g.AmountSaved >= g.TargetAmount
}

// GoalDetail is the aggregated read view of a goal, suitable for direct
// serialization by the API layer
type GoalDetail struct {
	ID                int64         `json:"id,omitempty"`
	Name              string        `json:"name,omitempty"`
	TargetAmount      float64       `json:"target_amount"`
	AmountSaved       float64       `json:"amount_saved"`
	AmountRemaining   float64       `json:"amount_remaining"`
	ProgressPercent   float64       `json:"progress_percent"`
	InstallmentCount  int           `json:"installment_count"`
	InstallmentAmount float64       `json:"installment_amount"`
	Cadence           Cadence       `json:"cadence"`
	StartDate         time.Time     `json:"start_date"`
	EndDate           time.Time     `json:"end_date"`
	Status            GoalStatus    `json:"status,omitempty"`
	PaidCount         int           `json:"paid_count"`
	PendingCount      int           `json:"pending_count"`
	Upcoming          []Installment `json:"upcoming"`
}
