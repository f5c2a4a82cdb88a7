package models

// OverdueSummary aggregates a user's overdue installments for notification
type OverdueSummary struct {
	UserID       int64   `json:"user_id"`
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	OverdueCount int     `json:"overdue_count"`
	AmountDue    float64 `json:"amount_due"`
}
