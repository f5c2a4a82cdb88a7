package models

import "errors"

// Domain errors surfaced by the savings goal engine. Callers match them
// with errors.Is to map onto their own error presentation.
var (
	ErrInvalidGoalParameters = errors.New("target amount and installment count must be greater than zero")
	ErrUserNotFound          = errors.New("user not found")
	ErrGoalNotFound          = errors.New("savings goal not found")
	ErrInstallmentNotFound   = errors.New("installment not found")
	ErrAlreadyPaid           = errors.New("installment already paid")
	ErrNoPositiveBalance     = errors.New("no positive balance available to save")
	ErrIncomeNotFound        = errors.New("income not found")
	ErrExpenseNotFound       = errors.New("expense not found")
)
