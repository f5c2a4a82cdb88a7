package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/finly/finance-service/internal/models"
)

// CreateGoal persists a goal and its generated installments in one
// transaction, assigning generated ids back onto the entities.
func (r *Repository) CreateGoal(goal *models.SavingsGoal, installments []models.Installment) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO finance.savings_goals
			(user_id, name, target_amount, amount_saved, installment_count, installment_amount,
			 cadence, start_date, end_date, status, balance_percent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err = tx.QueryRow(query,
		goal.UserID, goal.Name, goal.TargetAmount, goal.AmountSaved, goal.InstallmentCount,
		goal.InstallmentAmount, goal.Cadence, goal.StartDate, goal.EndDate, goal.Status,
		goal.BalancePercent).
		Scan(&goal.ID, &goal.CreatedAt, &goal.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}

	instQuery := `
		INSERT INTO finance.installments (goal_id, seq, amount, scheduled_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	for i := range installments {
		installments[i].GoalID = goal.ID
		err := tx.QueryRow(instQuery,
			goal.ID, installments[i].Sequence, installments[i].Amount,
			installments[i].ScheduledDate, installments[i].Status).
			Scan(&installments[i].ID)
		if err != nil {
			return fmt.Errorf("failed to create installment %d: %w", installments[i].Sequence, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit goal creation: %w", err)
	}
	return nil
}

// FindGoalByID retrieves a goal by id, returning nil when absent
func (r *Repository) FindGoalByID(id int64) (*models.SavingsGoal, error) {
	goal := &models.SavingsGoal{}
	query := goalSelect + ` WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(goalFields(goal)...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find goal: %w", err)
	}
	return goal, nil
}

// GoalsByUser lists all savings goals owned by a user
func (r *Repository) GoalsByUser(userID int64) ([]models.SavingsGoal, error) {
	return r.queryGoals(goalSelect+` WHERE user_id = $1 ORDER BY id`, userID)
}

// GoalsByUserAndStatus lists a user's goals filtered by status
func (r *Repository) GoalsByUserAndStatus(userID int64, status models.GoalStatus) ([]models.SavingsGoal, error) {
	return r.queryGoals(goalSelect+` WHERE user_id = $1 AND status = $2 ORDER BY id`, userID, status)
}

const goalSelect = `
	SELECT id, user_id, name, target_amount, amount_saved, installment_count, installment_amount,
	       cadence, start_date, end_date, status, balance_percent, created_at, updated_at
	FROM finance.savings_goals`

func goalFields(g *models.SavingsGoal) []interface{} {
	return []interface{}{
		&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.AmountSaved, &g.InstallmentCount,
		&g.InstallmentAmount, &g.Cadence, &g.StartDate, &g.EndDate, &g.Status,
		&g.BalancePercent, &g.CreatedAt, &g.UpdatedAt,
	}
}

func (r *Repository) queryGoals(query string, args ...interface{}) ([]models.SavingsGoal, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	var goals []models.SavingsGoal
	for rows.Next() {
		var g models.SavingsGoal
		if err := rows.Scan(goalFields(&g)...); err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// UpdateGoalStatus sets a goal's status
func (r *Repository) UpdateGoalStatus(goalID int64, status models.GoalStatus) error {
	query := `
		UPDATE finance.savings_goals
		SET status = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2`
	if _, err := r.db.Exec(query, status, goalID); err != nil {
		return fmt.Errorf("failed to update goal status: %w", err)
	}
	return nil
}

// InstallmentsByGoal lists a goal's installments in payment order
func (r *Repository) InstallmentsByGoal(goalID int64) ([]models.Installment, error) {
	return r.queryInstallments(installmentSelect+` WHERE goal_id = $1 ORDER BY seq`, goalID)
}

// PendingInstallmentsByGoal lists a goal's pending installments ordered by
// scheduled date, ties broken by sequence number
func (r *Repository) PendingInstallmentsByGoal(goalID int64) ([]models.Installment, error) {
	query := installmentSelect + `
		WHERE goal_id = $1 AND status = $2
		ORDER BY scheduled_date, seq`
	return r.queryInstallments(query, goalID, models.InstallmentPending)
}

// FindInstallmentByID retrieves an installment by id, returning nil when absent
func (r *Repository) FindInstallmentByID(id int64) (*models.Installment, error) {
	inst := &models.Installment{}
	var paidDate sql.NullTime
	query := installmentSelect + ` WHERE id = $1`
	err := r.db.QueryRow(query, id).
		Scan(&inst.ID, &inst.GoalID, &inst.Sequence, &inst.Amount, &inst.ScheduledDate, &paidDate, &inst.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find installment: %w", err)
	}
	if paidDate.Valid {
		inst.PaidDate = &paidDate.Time
	}
	return inst, nil
}

const installmentSelect = `
	SELECT id, goal_id, seq, amount, scheduled_date, paid_date, status
	FROM finance.installments`

func (r *Repository) queryInstallments(query string, args ...interface{}) ([]models.Installment, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list installments: %w", err)
	}
	defer rows.Close()

	var installments []models.Installment
	for rows.Next() {
		var inst models.Installment
		var paidDate sql.NullTime
		if err := rows.Scan(&inst.ID, &inst.GoalID, &inst.Sequence, &inst.Amount,
			&inst.ScheduledDate, &paidDate, &inst.Status); err != nil {
			return nil, fmt.Errorf("failed to scan installment: %w", err)
		}
		if paidDate.Valid {
			inst.PaidDate = &paidDate.Time
		}
		installments = append(installments, inst)
	}
	return installments, rows.Err()
}

// ApplyPayment persists a payment: the installment transition and the goal's
// updated aggregates commit together or not at all. The installment update
// is conditional on the row not being PAID yet, so of two concurrent payers
// of the same installment exactly one observes applied == true. The goal
// update is a relative increment against the stored row, so concurrent
// payments of different installments of the same goal both land instead of
// the later commit clobbering the earlier one. The committed aggregates are
// written back onto goal.
func (r *Repository) ApplyPayment(goal *models.SavingsGoal, inst *models.Installment) (bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE finance.installments
		SET status = $1, paid_date = $2
		WHERE id = $3 AND status <> $4`,
		inst.Status, inst.PaidDate, inst.ID, models.InstallmentPaid)
	if err != nil {
		return false, fmt.Errorf("failed to update installment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	err = tx.QueryRow(`
		UPDATE finance.savings_goals
		SET amount_saved = amount_saved + $1,
		    status = CASE
		        WHEN status = $2 AND amount_saved + $1 >= target_amount THEN $3
		        ELSE status
		    END,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $4
		RETURNING amount_saved, status`,
		inst.Amount, models.GoalActive, models.GoalCompleted, goal.ID).
		Scan(&goal.AmountSaved, &goal.Status)
	if err != nil {
		return false, fmt.Errorf("failed to update goal aggregates: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit payment: %w", err)
	}
	return true, nil
}

// SweepOverdue marks every pending installment scheduled strictly before the
// given date as overdue and returns the number of rows transitioned. The
// single conditional UPDATE makes the sweep all-or-nothing and safe against
// a concurrent payment of the same installment.
func (r *Repository) SweepOverdue(before time.Time) (int64, error) {
	res, err := r.db.Exec(`
		UPDATE finance.installments
		SET status = $1
		WHERE status = $2 AND scheduled_date < $3`,
		models.InstallmentOverdue, models.InstallmentPending, before)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep overdue installments: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected, nil
}

// OverdueSummaries aggregates overdue installments per user for notification
func (r *Repository) OverdueSummaries() ([]models.OverdueSummary, error) {
	query := `
		SELECT u.id, u.username, u.email, COUNT(i.id), COALESCE(SUM(i.amount), 0)
		FROM finance.installments i
		JOIN finance.savings_goals g ON g.id = i.goal_id
		JOIN finance.users u ON u.id = g.user_id
		WHERE i.status = $1
		GROUP BY u.id, u.username, u.email`
	rows, err := r.db.Query(query, models.InstallmentOverdue)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize overdue installments: %w", err)
	}
	defer rows.Close()

	var summaries []models.OverdueSummary
	for rows.Next() {
		var s models.OverdueSummary
		if err := rows.Scan(&s.UserID, &s.Username, &s.Email, &s.OverdueCount, &s.AmountDue); err != nil {
			return nil, fmt.Errorf("failed to scan overdue summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
