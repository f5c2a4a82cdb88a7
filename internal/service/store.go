package service

import (
	"time"

	"github.com/finly/finance-service/internal/models"
)

// Store is the persistence boundary consumed by the service layer. Find
// methods return a nil entity (and nil error) when nothing matches; the
// service maps that onto the not-found error kinds. ApplyPayment increments
// the goal's aggregates relative to the stored row and writes the committed
// values back onto goal, so concurrent payments of different installments
// accumulate instead of overwriting each other. *repository.Repository
// satisfies this interface.
type Store interface {
	CreateUser(user *models.User) error
	FindUserByID(id int64) (*models.User, error)
	FindUserByUsername(username string) (*models.User, error)
	FindUserByEmail(email string) (*models.User, error)
	ListUsers() ([]models.User, error)
	UpdateUser(user *models.User) error
	DeleteUser(id int64) error

	SaveFaceEncoding(enc *models.FaceEncoding) error
	FaceEncodingByUser(userID int64) (*models.FaceEncoding, error)

	CreateIncome(income *models.Income) error
	FindIncomeByID(id int64) (*models.Income, error)
	IncomesByUser(userID int64) ([]models.Income, error)
	IncomesByKind(kind string) ([]models.Income, error)
	UpdateIncome(income *models.Income) error
	DeleteIncome(id int64) error
	CreateExpense(expense *models.Expense) error
	FindExpenseByID(id int64) (*models.Expense, error)
	ExpensesByUser(userID int64) ([]models.Expense, error)
	ExpensesByKind(kind string) ([]models.Expense, error)
	UpdateExpense(expense *models.Expense) error
	DeleteExpense(id int64) error
	TotalIncome(userID int64) (float64, error)
	TotalExpense(userID int64) (float64, error)
	Balance(userID int64) (float64, error)

	CreateGoal(goal *models.SavingsGoal, installments []models.Installment) error
	FindGoalByID(id int64) (*models.SavingsGoal, error)
	GoalsByUser(userID int64) ([]models.SavingsGoal, error)
	GoalsByUserAndStatus(userID int64, status models.GoalStatus) ([]models.SavingsGoal, error)
	UpdateGoalStatus(goalID int64, status models.GoalStatus) error
	InstallmentsByGoal(goalID int64) ([]models.Installment, error)
	PendingInstallmentsByGoal(goalID int64) ([]models.Installment, error)
	FindInstallmentByID(id int64) (*models.Installment, error)
	ApplyPayment(goal *models.SavingsGoal, inst *models.Installment) (bool, error)
	SweepOverdue(before time.Time) (int64, error)
	OverdueSummaries() ([]models.OverdueSummary, error)
}

// Mailer sends overdue-installment notices after a sweep
type Mailer interface {
	SendOverdueNotice(to, username string, overdueCount int, amountDue float64) error
}
