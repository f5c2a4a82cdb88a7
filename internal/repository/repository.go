package repository

import (
	"database/sql"
	"fmt"

	"github.com/finly/finance-service/internal/models"
)

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(user *models.User) error {
	query := `
		INSERT INTO finance.users (username, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRow(query, user.Username, user.Email, user.PasswordHash, user.Role).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByID retrieves a user by id, returning nil when absent
func (r *Repository) FindUserByID(id int64) (*models.User, error) {
	return r.findUser("id = $1", id)
}

// FindUserByUsername retrieves a user by username, returning nil when absent
func (r *Repository) FindUserByUsername(username string) (*models.User, error) {
	return r.findUser("username = $1", username)
}

// FindUserByEmail retrieves a user by email, returning nil when absent
func (r *Repository) FindUserByEmail(email string) (*models.User, error) {
	return r.findUser("email = $1", email)
}

// ListUsers lists every registered user
func (r *Repository) ListUsers() ([]models.User, error) {
	query := `
		SELECT id, username, email, password_hash, role, created_at
		FROM finance.users
		ORDER BY id`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUser updates a user's profile fields
func (r *Repository) UpdateUser(user *models.User) error {
	query := `
		UPDATE finance.users
		SET username = $1, email = $2, role = $3
		WHERE id = $4`
	if _, err := r.db.Exec(query, user.Username, user.Email, user.Role, user.ID); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// DeleteUser removes a user; owned incomes, expenses and goals cascade in
// the schema
func (r *Repository) DeleteUser(id int64) error {
	if _, err := r.db.Exec(`DELETE FROM finance.users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (r *Repository) findUser(where string, arg interface{}) (*models.User, error) {
	user := &models.User{}
	query := fmt.Sprintf(`
		SELECT id, username, email, password_hash, role, created_at
		FROM finance.users
		WHERE %s`, where)
	err := r.db.QueryRow(query, arg).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// SaveFaceEncoding stores the facial embedding for a user
func (r *Repository) SaveFaceEncoding(enc *models.FaceEncoding) error {
	query := `
		INSERT INTO finance.face_encodings (user_id, embedding, created_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRow(query, enc.UserID, enc.Embedding).Scan(&enc.ID, &enc.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save face encoding: %w", err)
	}
	return nil
}

// FaceEncodingByUser retrieves a user's stored facial embedding, returning nil when absent
func (r *Repository) FaceEncodingByUser(userID int64) (*models.FaceEncoding, error) {
	enc := &models.FaceEncoding{}
	query := `
		SELECT id, user_id, embedding, created_at
		FROM finance.face_encodings
		WHERE user_id = $1`
	err := r.db.QueryRow(query, userID).Scan(&enc.ID, &enc.UserID, &enc.Embedding, &enc.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find face encoding: %w", err)
	}
	return enc, nil
}

// CreateIncome creates a new income entry
func (r *Repository) CreateIncome(income *models.Income) error {
	query := `
		INSERT INTO finance.incomes (user_id, name, amount, kind, created_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRow(query, income.UserID, income.Name, income.Amount, income.Kind).
		Scan(&income.ID, &income.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create income: %w", err)
	}
	return nil
}

// FindIncomeByID retrieves an income entry by id, returning nil when absent
func (r *Repository) FindIncomeByID(id int64) (*models.Income, error) {
	in := &models.Income{}
	query := `
		SELECT id, user_id, name, amount, kind, created_at
		FROM finance.incomes
		WHERE id = $1`
	err := r.db.QueryRow(query, id).
		Scan(&in.ID, &in.UserID, &in.Name, &in.Amount, &in.Kind, &in.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find income: %w", err)
	}
	return in, nil
}

// IncomesByUser lists all income entries for a user
func (r *Repository) IncomesByUser(userID int64) ([]models.Income, error) {
	query := `
		SELECT id, user_id, name, amount, kind, created_at
		FROM finance.incomes
		WHERE user_id = $1
		ORDER BY id`
	return r.queryIncomes(query, userID)
}

// IncomesByKind lists income entries of the given kind across all users
func (r *Repository) IncomesByKind(kind string) ([]models.Income, error) {
	query := `
		SELECT id, user_id, name, amount, kind, created_at
		FROM finance.incomes
		WHERE kind = $1
		ORDER BY id`
	return r.queryIncomes(query, kind)
}

func (r *Repository) queryIncomes(query string, args ...interface{}) ([]models.Income, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list incomes: %w", err)
	}
	defer rows.Close()

	var incomes []models.Income
	for rows.Next() {
		var in models.Income
		if err := rows.Scan(&in.ID, &in.UserID, &in.Name, &in.Amount, &in.Kind, &in.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan income: %w", err)
		}
		incomes = append(incomes, in)
	}
	return incomes, rows.Err()
}

// UpdateIncome updates an income entry's fields; the owning user is untouched
func (r *Repository) UpdateIncome(income *models.Income) error {
	query := `
		UPDATE finance.incomes
		SET name = $1, amount = $2, kind = $3
		WHERE id = $4`
	if _, err := r.db.Exec(query, income.Name, income.Amount, income.Kind, income.ID); err != nil {
		return fmt.Errorf("failed to update income: %w", err)
	}
	return nil
}

// DeleteIncome removes an income entry
func (r *Repository) DeleteIncome(id int64) error {
	if _, err := r.db.Exec(`DELETE FROM finance.incomes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete income: %w", err)
	}
	return nil
}

// CreateExpense creates a new expense entry
func (r *Repository) CreateExpense(expense *models.Expense) error {
	query := `
		INSERT INTO finance.expenses (user_id, name, amount, kind, created_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRow(query, expense.UserID, expense.Name, expense.Amount, expense.Kind).
		Scan(&expense.ID, &expense.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// FindExpenseByID retrieves an expense entry by id, returning nil when absent
func (r *Repository) FindExpenseByID(id int64) (*models.Expense, error) {
	ex := &models.Expense{}
	query := `
		SELECT id, user_id, name, amount, kind, created_at
		FROM finance.expenses
		WHERE id = $1`
	err := r.db.QueryRow(query, id).
		Scan(&ex.ID, &ex.UserID, &ex.Name, &ex.Amount, &ex.Kind, &ex.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find expense: %w", err)
	}
	return ex, nil
}

// ExpensesByUser lists all expense entries for a user
func (r *Repository) ExpensesByUser(userID int64) ([]models.Expense, error) {
	query := `
		SELECT id, user_id, name, amount, kind, created_at
		FROM finance.expenses
		WHERE user_id = $1
		ORDER BY id`
	return r.queryExpenses(query, userID)
}

// ExpensesByKind lists expense entries of the given kind across all users
func (r *Repository) ExpensesByKind(kind string) ([]models.Expense, error) {
	query := `
		SELECT id, user_id, name, amount, kind, created_at
		FROM finance.expenses
		WHERE kind = $1
		ORDER BY id`
	return r.queryExpenses(query, kind)
}

func (r *Repository) queryExpenses(query string, args ...interface{}) ([]models.Expense, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var ex models.Expense
		if err := rows.Scan(&ex.ID, &ex.UserID, &ex.Name, &ex.Amount, &ex.Kind, &ex.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, ex)
	}
	return expenses, rows.Err()
}

// UpdateExpense updates an expense entry's fields; the owning user is untouched
func (r *Repository) UpdateExpense(expense *models.Expense) error {
	query := `
		UPDATE finance.expenses
		SET name = $1, amount = $2, kind = $3
		WHERE id = $4`
	if _, err := r.db.Exec(query, expense.Name, expense.Amount, expense.Kind, expense.ID); err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	return nil
}

// DeleteExpense removes an expense entry
func (r *Repository) DeleteExpense(id int64) error {
	if _, err := r.db.Exec(`DELETE FROM finance.expenses WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return nil
}

// TotalIncome sums all income amounts for a user
func (r *Repository) TotalIncome(userID int64) (float64, error) {
	var total float64
	query := `SELECT COALESCE(SUM(amount), 0) FROM finance.incomes WHERE user_id = $1`
	if err := r.db.QueryRow(query, userID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum incomes: %w", err)
	}
	return total, nil
}

// TotalExpense sums all expense amounts for a user
func (r *Repository) TotalExpense(userID int64) (float64, error) {
	var total float64
	query := `SELECT COALESCE(SUM(amount), 0) FROM finance.expenses WHERE user_id = $1`
	if err := r.db.QueryRow(query, userID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum expenses: %w", err)
	}
	return total, nil
}

// Balance returns a user's running balance (income total minus expense total)
func (r *Repository) Balance(userID int64) (float64, error) {
	income, err := r.TotalIncome(userID)
	if err != nil {
		return 0, err
	}
	expense, err := r.TotalExpense(userID)
	if err != nil {
		return 0, err
	}
	return income - expense, nil
}
