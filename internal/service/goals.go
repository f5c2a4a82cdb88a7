package service

import (
	"github.com/finly/finance-service/internal/models"
	"github.com/finly/finance-service/internal/schedule"
)

// upcomingLimit is the number of pending installments included in a goal
// detail view and a savings suggestion.
const upcomingLimit = 5

// CreateGoal validates the goal parameters, computes the installment plan,
// persists the goal with its installments, and returns the detail view.
func (s *Service) CreateGoal(userID int64, name string, targetAmount float64, installmentCount int, cadence models.Cadence, balancePercent float64) (*models.GoalDetail, error) {
	user, err := s.store.FindUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.ErrUserNotFound
	}

	cadence = models.ParseCadence(string(cadence))
	start := s.today()
	plan, err := schedule.New(targetAmount, installmentCount, cadence, start)
	if err != nil {
		return nil, err
	}

	goal := &models.SavingsGoal{
		UserID:            userID,
		Name:              name,
		TargetAmount:      targetAmount,
		AmountSaved:       0,
		InstallmentCount:  installmentCount,
		InstallmentAmount: plan.InstallmentAmount,
		Cadence:           cadence,
		StartDate:         start,
		EndDate:           plan.EndDate,
		Status:            models.GoalActive,
		BalancePercent:    balancePercent,
	}
	if err := s.store.CreateGoal(goal, plan.Installments); err != nil {
		return nil, err
	}

	s.log.Infof("Savings goal %d created for user %d: %s (%d installments of %.2f)",
		goal.ID, userID, goal.Name, installmentCount, plan.InstallmentAmount)
	return s.GetGoalDetail(goal.ID)
}

// GetGoalDetail returns the aggregated view of a goal, including the next
// pending installments.
func (s *Service) GetGoalDetail(goalID int64) (*models.GoalDetail, error) {
	goal, err := s.store.FindGoalByID(goalID)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, models.ErrGoalNotFound
	}

	all, err := s.store.InstallmentsByGoal(goalID)
	if err != nil {
		return nil, err
	}
	var paid, pending int
	for _, inst := range all {
		switch inst.Status {
		case models.InstallmentPaid:
			paid++
		case models.InstallmentPending:
			pending++
		}
	}

	upcoming, err := s.store.PendingInstallmentsByGoal(goalID)
	if err != nil {
		return nil, err
	}
	if len(upcoming) > upcomingLimit {
		upcoming = upcoming[:upcomingLimit]
	}

	return &models.GoalDetail{
		ID:                goal.ID,
		Name:              goal.Name,
		TargetAmount:      goal.TargetAmount,
		AmountSaved:       goal.AmountSaved,
		AmountRemaining:   goal.AmountRemaining(),
		ProgressPercent:   goal.Progress(),
		InstallmentCount:  goal.InstallmentCount,
		InstallmentAmount: goal.InstallmentAmount,
		Cadence:           goal.Cadence,
		StartDate:         goal.StartDate,
		EndDate:           goal.EndDate,
		Status:            goal.Status,
		PaidCount:         paid,
		PendingCount:      pending,
		Upcoming:          upcoming,
	}, nil
}

// ListGoals lists all savings goals owned by a user
func (s *Service) ListGoals(userID int64) ([]models.SavingsGoal, error) {
	return s.store.GoalsByUser(userID)
}

// ListActiveGoals lists a user's goals that are still active
func (s *Service) ListActiveGoals(userID int64) ([]models.SavingsGoal, error) {
	return s.store.GoalsByUserAndStatus(userID, models.GoalActive)
}

// PayInstallment marks an installment as paid, adds its amount to the
// goal's saved total, and completes the goal when the target is reached.
// The ledger transition and the goal aggregates persist atomically; a
// concurrent payment of the same installment surfaces as ErrAlreadyPaid.
func (s *Service) PayInstallment(goalID, installmentID int64) (*models.SavingsGoal, error) {
	goal, err := s.store.FindGoalByID(goalID)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, models.ErrGoalNotFound
	}

	inst, err := s.store.FindInstallmentByID(installmentID)
	if err != nil {
		return nil, err
	}
	if inst == nil || inst.GoalID != goalID {
		return nil, models.ErrInstallmentNotFound
	}

	if err := inst.Pay(s.today()); err != nil {
		return nil, err
	}

	wasActive := goal.Status == models.GoalActive
	applied, err := s.store.ApplyPayment(goal, inst)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, models.ErrAlreadyPaid
	}

	s.log.Infof("Installment %d of goal %d paid: %.2f saved of %.2f",
		inst.Sequence, goal.ID, goal.AmountSaved, goal.TargetAmount)
	if wasActive && goal.Status == models.GoalCompleted {
		s.log.Infof("Savings goal %d completed", goal.ID)
	}
	return goal, nil
}

// CancelGoal marks a goal as cancelled. Installments are left untouched and
// the transition applies regardless of the goal's current status.
func (s *Service) CancelGoal(goalID int64) error {
	goal, err := s.store.FindGoalByID(goalID)
	if err != nil {
		return err
	}
	if goal == nil {
		return models.ErrGoalNotFound
	}

	if err := s.store.UpdateGoalStatus(goalID, models.GoalCancelled); err != nil {
		return err
	}
	s.log.Infof("Savings goal %d cancelled", goalID)
	return nil
}

// SuggestGoal derives a savings suggestion from a percentage of the user's
// running balance. The returned detail is a preview only; nothing is
// persisted.
func (s *Service) SuggestGoal(userID int64, balancePercent float64, installmentCount int, cadence models.Cadence) (*models.GoalDetail, error) {
	balance, err := s.store.Balance(userID)
	if err != nil {
		return nil, err
	}
	if balance <= 0 {
		return nil, models.ErrNoPositiveBalance
	}

	amountToSave := balance * (balancePercent / 100)
	cadence = models.ParseCadence(string(cadence))
	plan, err := schedule.New(amountToSave, installmentCount, cadence, s.today())
	if err != nil {
		return nil, err
	}

	upcoming := plan.Installments
	if len(upcoming) > upcomingLimit {
		upcoming = upcoming[:upcomingLimit]
	}

	return &models.GoalDetail{
		TargetAmount:      amountToSave,
		AmountSaved:       0,
		AmountRemaining:   amountToSave,
		ProgressPercent:   0,
		InstallmentCount:  installmentCount,
		InstallmentAmount: plan.InstallmentAmount,
		Cadence:           cadence,
		StartDate:         s.today(),
		EndDate:           plan.EndDate,
		Upcoming:          upcoming,
	}, nil
}

// SweepOverdueInstallments transitions every pending installment scheduled
// before today to overdue, across all goals. Goal aggregates are not
// touched; overdue is informational until the installment is paid.
func (s *Service) SweepOverdueInstallments() (int64, error) {
	swept, err := s.store.SweepOverdue(s.today())
	if err != nil {
		return 0, err
	}
	if swept > 0 {
		s.log.Infof("Overdue sweep transitioned %d installments", swept)
	}
	return swept, nil
}

// NotifyOverdue emails each user a summary of their overdue installments.
// Send failures are logged per user and do not abort the batch.
func (s *Service) NotifyOverdue() error {
	if s.mailer == nil {
		return nil
	}
	summaries, err := s.store.OverdueSummaries()
	if err != nil {
		return err
	}
	for _, sum := range summaries {
		if err := s.mailer.SendOverdueNotice(sum.Email, sum.Username, sum.OverdueCount, sum.AmountDue); err != nil {
			s.log.Errorf("Failed to send overdue notice to %s: %v", sum.Email, err)
		}
	}
	return nil
}
