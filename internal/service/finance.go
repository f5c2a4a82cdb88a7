package service

import (
	"fmt"

	"github.com/finly/finance-service/internal/models"
)

// AddIncome records an income entry for a user
func (s *Service) AddIncome(userID int64, name string, amount float64, kind string) (*models.Income, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("income amount must be greater than zero")
	}
	income := &models.Income{UserID: userID, Name: name, Amount: amount, Kind: kind}
	if err := s.store.CreateIncome(income); err != nil {
		return nil, err
	}
	s.log.Infof("Income %d recorded for user %d: %.2f", income.ID, userID, amount)
	return income, nil
}

// ListIncomes lists a user's income entries
func (s *Service) ListIncomes(userID int64) ([]models.Income, error) {
	return s.store.IncomesByUser(userID)
}

// ListIncomesByKind lists income entries of one kind across all users
func (s *Service) ListIncomesByKind(kind string) ([]models.Income, error) {
	return s.store.IncomesByKind(kind)
}

// UpdateIncome replaces an income entry's name, amount and kind. The owning
// user never changes.
func (s *Service) UpdateIncome(id int64, name string, amount float64, kind string) (*models.Income, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("income amount must be greater than zero")
	}
	income, err := s.store.FindIncomeByID(id)
	if err != nil {
		return nil, err
	}
	if income == nil {
		return nil, models.ErrIncomeNotFound
	}
	income.Name = name
	income.Amount = amount
	income.Kind = kind
	if err := s.store.UpdateIncome(income); err != nil {
		return nil, err
	}
	return income, nil
}

// DeleteIncome removes an income entry
func (s *Service) DeleteIncome(id int64) error {
	income, err := s.store.FindIncomeByID(id)
	if err != nil {
		return err
	}
	if income == nil {
		return models.ErrIncomeNotFound
	}
	return s.store.DeleteIncome(id)
}

// AddExpense records an expense entry for a user
func (s *Service) AddExpense(userID int64, name string, amount float64, kind string) (*models.Expense, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("expense amount must be greater than zero")
	}
	expense := &models.Expense{UserID: userID, Name: name, Amount: amount, Kind: kind}
	if err := s.store.CreateExpense(expense); err != nil {
		return nil, err
	}
	s.log.Infof("Expense %d recorded for user %d: %.2f", expense.ID, userID, amount)
	return expense, nil
}

// ListExpenses lists a user's expense entries
func (s *Service) ListExpenses(userID int64) ([]models.Expense, error) {
	return s.store.ExpensesByUser(userID)
}

// ListExpensesByKind lists expense entries of one kind across all users
func (s *Service) ListExpensesByKind(kind string) ([]models.Expense, error) {
	return s.store.ExpensesByKind(kind)
}

// UpdateExpense replaces an expense entry's name, amount and kind. The
// owning user never changes.
func (s *Service) UpdateExpense(id int64, name string, amount float64, kind string) (*models.Expense, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("expense amount must be greater than zero")
	}
	expense, err := s.store.FindExpenseByID(id)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, models.ErrExpenseNotFound
	}
	expense.Name = name
	expense.Amount = amount
	expense.Kind = kind
	if err := s.store.UpdateExpense(expense); err != nil {
		return nil, err
	}
	return expense, nil
}

// DeleteExpense removes an expense entry
func (s *Service) DeleteExpense(id int64) error {
	expense, err := s.store.FindExpenseByID(id)
	if err != nil {
		return err
	}
	if expense == nil {
		return models.ErrExpenseNotFound
	}
	return s.store.DeleteExpense(id)
}

// Summary returns a user's income/expense totals and running balance
func (s *Service) Summary(userID int64) (*models.FinancialSummary, error) {
	income, err := s.store.TotalIncome(userID)
	if err != nil {
		return nil, err
	}
	expense, err := s.store.TotalExpense(userID)
	if err != nil {
		return nil, err
	}
	return &models.FinancialSummary{
		TotalIncome:  income,
		TotalExpense: expense,
		Balance:      income - expense,
	}, nil
}
