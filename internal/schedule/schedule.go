// Package schedule computes installment plans for savings goals: cadence
// date-stepping, the per-installment amount, and the estimated end date.
// All computations are pure; callers persist the results.
package schedule

import (
	"time"

	"github.com/finly/finance-service/internal/models"
)

// Step advances a date by one cadence unit. Monthly steps preserve the day
// of month where valid and clamp to the last day of shorter months, so
// stepping Jan 31 yields Feb 28 (or 29). Unknown cadences step monthly.
func Step(date time.Time, cadence models.Cadence) time.Time {
	switch cadence {
	case models.CadenceWeekly:
		return date.AddDate(0, 0, 7)
	case models.CadenceBiweekly:
		return date.AddDate(0, 0, 14)
	default:
		return addMonth(date)
	}
}

// StepN applies Step n times
func StepN(date time.Time, cadence models.Cadence, n int) time.Time {
	for i := 0; i < n; i++ {
		date = Step(date, cadence)
	}
	return date
}

// addMonth adds one calendar month, clamping the day of month to the last
// valid day of the target month. time.Time.AddDate normalizes overflow
// (Jan 31 + 1 month = Mar 2/3), which is not the calendar semantics we want.
func addMonth(date time.Time) time.Time {
	year, month, day := date.Date()
	firstOfNext := time.Date(year, month+1, 1, 0, 0, 0, 0, date.Location())
	lastDay := firstOfNext.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfNext.Year(), firstOfNext.Month(), day, 0, 0, 0, 0, date.Location())
}

// Plan is the computed installment schedule for a goal
type Plan struct {
	InstallmentAmount float64
	EndDate           time.Time
	Installments      []models.Installment
}

// New builds the installment plan for a goal: count equal installments of
// target/count, the first due on the start date and each subsequent one a
// cadence step later. The end date equals the last installment's date.
func New(targetAmount float64, installmentCount int, cadence models.Cadence, startDate time.Time) (*Plan, error) {
	if targetAmount <= 0 || installmentCount <= 0 {
		return nil, models.ErrInvalidGoalParameters
	}

	amount := targetAmount / float64(installmentCount)
	installments := make([]models.Installment, 0, installmentCount)
	date := startDate
	for i := 1; i <= installmentCount; i++ {
		if i > 1 {
			date = Step(date, cadence)
		}
		installments = append(installments, models.Installment{
			Sequence:      i,
			Amount:        amount,
			ScheduledDate: date,
			Status:        models.InstallmentPending,
		})
	}

	return &Plan{
		InstallmentAmount: amount,
		EndDate:           installments[installmentCount-1].ScheduledDate,
		Installments:      installments,
	}, nil
}
