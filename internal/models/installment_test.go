package models

import (
	"testing"
	"time"
)

var today = time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

func TestInstallmentPay(t *testing.T) {
	tests := []struct {
		name    string
		status  InstallmentStatus
		wantErr error
	}{
		{"pending installment can be paid", InstallmentPending, nil},
		{"overdue installment can be paid", InstallmentOverdue, nil},
		{"paid installment cannot be paid again", InstallmentPaid, ErrAlreadyPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst := &Installment{Status: tt.status, ScheduledDate: today.AddDate(0, 0, -10)}
			err := inst.Pay(today)
			if err != tt.wantErr {
				t.Fatalf("Pay() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if inst.Status != InstallmentPaid {
				t.Errorf("status = %s, want PAID", inst.Status)
			}
			if inst.PaidDate == nil || !inst.PaidDate.Equal(today) {
				t.Errorf("paid date = %v, want %v", inst.PaidDate, today)
			}
		})
	}
}

func TestInstallmentMarkOverdue(t *testing.T) {
	tests := []struct {
		name      string
		status    InstallmentStatus
		scheduled time.Time
		want      InstallmentStatus
	}{
		{"pending past due becomes overdue", InstallmentPending, today.AddDate(0, 0, -1), InstallmentOverdue},
		{"pending due today stays pending", InstallmentPending, today, InstallmentPending},
		{"pending future stays pending", InstallmentPending, today.AddDate(0, 0, 1), InstallmentPending},
		{"already overdue stays overdue", InstallmentOverdue, today.AddDate(0, 0, -1), InstallmentOverdue},
		{"paid is never marked overdue", InstallmentPaid, today.AddDate(0, 0, -1), InstallmentPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst := &Installment{Status: tt.status, ScheduledDate: tt.scheduled}
			inst.MarkOverdue(today)
			if inst.Status != tt.want {
				t.Errorf("status = %s, want %s", inst.Status, tt.want)
			}
		})
	}
}

func TestInstallmentIsOverdue(t *testing.T) {
	tests := []struct {
		name      string
		status    InstallmentStatus
		scheduled time.Time
		want      bool
	}{
		{"pending past due", InstallmentPending, today.AddDate(0, 0, -1), true},
		{"pending due today", InstallmentPending, today, false},
		{"pending future", InstallmentPending, today.AddDate(0, 0, 30), false},
		{"paid past due", InstallmentPaid, today.AddDate(0, 0, -1), false},
		{"already overdue", InstallmentOverdue, today.AddDate(0, 0, -1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst := &Installment{Status: tt.status, ScheduledDate: tt.scheduled}
			if got := inst.IsOverdue(today); got != tt.want {
				t.Errorf("IsOverdue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPaidInstallmentNeverReverts(t *testing.T) {
	inst := &Installment{Status: InstallmentPending, ScheduledDate: today.AddDate(0, 0, -5)}
	if err := inst.Pay(today); err != nil {
		t.Fatalf("Pay() error = %v", err)
	}

	inst.MarkOverdue(today)
	if inst.Status != InstallmentPaid {
		t.Errorf("status after MarkOverdue = %s, want PAID", inst.Status)
	}
	if err := inst.Pay(today); err != ErrAlreadyPaid {
		t.Errorf("second Pay() error = %v, want ErrAlreadyPaid", err)
	}
}
