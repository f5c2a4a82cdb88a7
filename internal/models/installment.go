package models

import "time"

// InstallmentStatus is the lifecycle state of a single installment
type InstallmentStatus string

const (
	InstallmentPending InstallmentStatus = "PENDING"
	InstallmentPaid    InstallmentStatus = "PAID"
	InstallmentOverdue InstallmentStatus = "OVERDUE"
)

// Installment represents one scheduled payment obligation of a savings goal
type Installment struct {
	ID            int64             `json:"id"`
	GoalID        int64             `json:"goal_id"`
	Sequence      int               `json:"sequence"` // 1-based, payment order
	Amount        float64           `json:"amount"`
	ScheduledDate time.Time         `json:"scheduled_date"`
	PaidDate      *time.Time        `json:"paid_date,omitempty"`
	Status        InstallmentStatus `json:"status"`
}

// Pay transitions the installment to PAID, recording the payment date.
// Paying an overdue installment is allowed and clears the overdue state.
func (i *Installment) Pay(today time.Time) error {
	if i.Status == InstallmentPaid {
		return ErrAlreadyPaid
	}
	i.Status = InstallmentPaid
	paid := today
	i.PaidDate = &paid
	return nil
}

// MarkOverdue transitions a pending installment past its scheduled date to
// OVERDUE. Paid installments are left untouched; marking an installment
// that is already overdue is a no-op.
func (i *Installment) MarkOverdue(today time.Time) {
	if i.Status != InstallmentPending {
		return
	}
	if i.ScheduledDate.Before(today) {
		i.Status = InstallmentOverdue
	}
}

// IsOverdue reports whether the installment is pending and past its
// scheduled date
func (i *Installment) IsOverdue(today time.Time) bool {
	return i.Status == InstallmentPending && i.ScheduledDate.Before(today)
}
