package models

// Income represents a single income entry for a user
type Income struct {
	ID        int64   `json:"id"`
	UserID    int64   `json:"user_id"`
	Name      string  `json:"name"`
	Amount    float64 `json:"amount"`
	Kind      string  `json:"kind"` // "fixed" or "variable"
	CreatedAt string  `json:"created_at"`
}

// Expense represents a single expense entry for a user
type Expense struct {
	ID        int64   `json:"id"`
	UserID    int64   `json:"user_id"`
	Name      string  `json:"name"`
	Amount    float64 `json:"amount"`
	Kind      string  `json:"kind"` // "fixed" or "variable"
	CreatedAt string  `json:"created_at"`
}

// FinancialSummary represents a user's income/expense totals and running balance
type FinancialSummary struct {
	TotalIncome  float64 `json:"total_income"`
	TotalExpense float64 `json:"total_expense"`
	Balance      float64 `json:"balance"`
}
