package service

import (
	"errors"
	"io"
	"math"
	"sort"
	"testing"
	"time"

	"github.com/finly/finance-service/internal/config"
	"github.com/finly/finance-service/internal/models"
	"github.com/sirupsen/logrus"
)

// fakeStore keeps goals and installments in memory. Methods the goal
// engine does not touch fall through to the embedded nil Store and panic
// if reached.
type fakeStore struct {
	Store
	users        map[int64]*models.User
	balances     map[int64]float64
	totals       map[int64][2]float64 // income, expense
	incomes      map[int64]*models.Income
	expenses     map[int64]*models.Expense
	goals        map[int64]*models.SavingsGoal
	installments map[int64][]*models.Installment // by goal id, in sequence order
	nextID       int64
	beforeApply  func() // hook to mutate state between load and ApplyPayment
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:        make(map[int64]*models.User),
		balances:     make(map[int64]float64),
		totals:       make(map[int64][2]float64),
		incomes:      make(map[int64]*models.Income),
		expenses:     make(map[int64]*models.Expense),
		goals:        make(map[int64]*models.SavingsGoal),
		installments: make(map[int64][]*models.Installment),
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) addUser(username, email string) *models.User {
	u := &models.User{ID: f.id(), Username: username, Email: email}
	f.users[u.ID] = u
	return u
}

func (f *fakeStore) FindUserByID(id int64) (*models.User, error) {
	return f.users[id], nil
}

func (f *fakeStore) Balance(userID int64) (float64, error) {
	return f.balances[userID], nil
}

func (f *fakeStore) CreateGoal(goal *models.SavingsGoal, installments []models.Installment) error {
	goal.ID = f.id()
	stored := *goal
	f.goals[goal.ID] = &stored
	for i := range installments {
		installments[i].ID = f.id()
		installments[i].GoalID = goal.ID
		c := installments[i]
		f.installments[goal.ID] = append(f.installments[goal.ID], &c)
	}
	return nil
}

func (f *fakeStore) FindGoalByID(id int64) (*models.SavingsGoal, error) {
	g, ok := f.goals[id]
	if !ok {
		return nil, nil
	}
	c := *g
	return &c, nil
}

func (f *fakeStore) GoalsByUser(userID int64) ([]models.SavingsGoal, error) {
	var goals []models.SavingsGoal
	for _, g := range f.goals {
		if g.UserID == userID {
			goals = append(goals, *g)
		}
	}
	sort.Slice(goals, func(i, j int) bool { return goals[i].ID < goals[j].ID })
	return goals, nil
}

func (f *fakeStore) GoalsByUserAndStatus(userID int64, status models.GoalStatus) ([]models.SavingsGoal, error) {
	all, _ := f.GoalsByUser(userID)
	var goals []models.SavingsGoal
	for _, g := range all {
		if g.Status == status {
			goals = append(goals, g)
		}
	}
	return goals, nil
}

func (f *fakeStore) UpdateGoalStatus(goalID int64, status models.GoalStatus) error {
	if g, ok := f.goals[goalID]; ok {
		g.Status = status
	}
	return nil
}

func (f *fakeStore) InstallmentsByGoal(goalID int64) ([]models.Installment, error) {
	var out []models.Installment
	for _, inst := range f.installments[goalID] {
		out = append(out, *inst)
	}
	return out, nil
}

func (f *fakeStore) PendingInstallmentsByGoal(goalID int64) ([]models.Installment, error) {
	var out []models.Installment
	for _, inst := range f.installments[goalID] {
		if inst.Status == models.InstallmentPending {
			out = append(out, *inst)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledDate.Equal(out[j].ScheduledDate) {
			return out[i].ScheduledDate.Before(out[j].ScheduledDate)
		}
		return out[i].Sequence < out[j].Sequence
	})
	return out, nil
}

func (f *fakeStore) FindInstallmentByID(id int64) (*models.Installment, error) {
	if inst := f.findInstallment(id); inst != nil {
		c := *inst
		return &c, nil
	}
	return nil, nil
}

func (f *fakeStore) findInstallment(id int64) *models.Installment {
	for _, insts := range f.installments {
		for _, inst := range insts {
			if inst.ID == id {
				return inst
			}
		}
	}
	return nil
}

// ApplyPayment mirrors the SQL semantics: the goal aggregates are updated
// relative to the stored row, not overwritten with the caller's snapshot,
// and the committed values are copied back onto goal.
func (f *fakeStore) ApplyPayment(goal *models.SavingsGoal, inst *models.Installment) (bool, error) {
	if f.beforeApply != nil {
		f.beforeApply()
	}
	stored := f.findInstallment(inst.ID)
	if stored == nil || stored.Status == models.InstallmentPaid {
		return false, nil
	}
	*stored = *inst
	g := f.goals[goal.ID]
	g.AmountSaved += inst.Amount
	if g.Status == models.GoalActive && g.AmountSaved >= g.TargetAmount {
		g.Status = models.GoalCompleted
	}
	goal.AmountSaved = g.AmountSaved
	goal.Status = g.Status
	return true, nil
}

func (f *fakeStore) SweepOverdue(before time.Time) (int64, error) {
	var swept int64
	for _, insts := range f.installments {
		for _, inst := range insts {
			if inst.Status == models.InstallmentPending && inst.ScheduledDate.Before(before) {
				inst.Status = models.InstallmentOverdue
				swept++
			}
		}
	}
	return swept, nil
}

func (f *fakeStore) OverdueSummaries() ([]models.OverdueSummary, error) {
	byUser := make(map[int64]*models.OverdueSummary)
	for goalID, insts := range f.installments {
		goal := f.goals[goalID]
		for _, inst := range insts {
			if inst.Status != models.InstallmentOverdue {
				continue
			}
			sum, ok := byUser[goal.UserID]
			if !ok {
				user := f.users[goal.UserID]
				sum = &models.OverdueSummary{UserID: user.ID, Username: user.Username, Email: user.Email}
				byUser[goal.UserID] = sum
			}
			sum.OverdueCount++
			sum.AmountDue += inst.Amount
		}
	}
	var out []models.OverdueSummary
	for _, sum := range byUser {
		out = append(out, *sum)
	}
	return out, nil
}

type fakeMailer struct {
	notices []models.OverdueSummary
}

func (m *fakeMailer) SendOverdueNotice(to, username string, count int, amount float64) error {
	m.notices = append(m.notices, models.OverdueSummary{
		Email: to, Username: username, OverdueCount: count, AmountDue: amount,
	})
	return nil
}

var testToday = time.Date(2024, time.January, 15, 10, 30, 0, 0, time.UTC)

func newTestService(store Store, mailer Mailer) *Service {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	svc := NewService(store, nil, mailer, logger, &config.Config{JWTSecret: "test-secret"})
	svc.now = func() time.Time { return testToday }
	return svc
}

func TestCreateGoal(t *testing.T) {
	store := newFakeStore()
	user := store.addUser("ana", "ana@example.com")
	svc := newTestService(store, nil)

	detail, err := svc.CreateGoal(user.ID, "Trip", 1200, 12, models.CadenceMonthly, 0)
	if err != nil {
		t.Fatalf("CreateGoal returned error: %v", err)
	}

	if detail.InstallmentAmount != 100 {
		t.Errorf("InstallmentAmount = %v, want 100", detail.InstallmentAmount)
	}
	if detail.Status != models.GoalActive {
		t.Errorf("Status = %s, want ACTIVE", detail.Status)
	}
	if detail.PendingCount != 12 || detail.PaidCount != 0 {
		t.Errorf("counts = %d pending / %d paid, want 12/0", detail.PendingCount, detail.PaidCount)
	}
	if detail.ProgressPercent != 0 || detail.AmountRemaining != 1200 {
		t.Errorf("progress = %v, remaining = %v, want 0 and 1200", detail.ProgressPercent, detail.AmountRemaining)
	}
	if len(detail.Upcoming) != 5 {
		t.Fatalf("got %d upcoming installments, want 5", len(detail.Upcoming))
	}
	wantStart := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	if !detail.Upcoming[0].ScheduledDate.Equal(wantStart) {
		t.Errorf("first installment scheduled %v, want %v", detail.Upcoming[0].ScheduledDate, wantStart)
	}
	wantEnd := time.Date(2024, time.December, 15, 0, 0, 0, 0, time.UTC)
	if !detail.EndDate.Equal(wantEnd) {
		t.Errorf("EndDate = %v, want %v", detail.EndDate, wantEnd)
	}

	all, _ := store.InstallmentsByGoal(detail.ID)
	if len(all) != 12 {
		t.Errorf("persisted %d installments, want 12", len(all))
	}
}

func TestCreateGoalUserNotFound(t *testing.T) {
	svc := newTestService(newFakeStore(), nil)
	_, err := svc.CreateGoal(99, "Trip", 1200, 12, models.CadenceMonthly, 0)
	if !errors.Is(err, models.ErrUserNotFound) {
		t.Errorf("error = %v, want ErrUserNotFound", err)
	}
}

func TestCreateGoalInvalidParameters(t *testing.T) {
	store := newFakeStore()
	user := store.addUser("ana", "ana@example.com")
	svc := newTestService(store, nil)

	tests := []struct {
		name   string
		target float64
		count  int
	}{
		{"zero target", 0, 12},
		{"negative target", -50, 12},
		{"zero count", 1200, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateGoal(user.ID, "Trip", tt.target, tt.count, models.CadenceMonthly, 0)
			if !errors.Is(err, models.ErrInvalidGoalParameters) {
				t.Errorf("error = %v, want ErrInvalidGoalParameters", err)
			}
		})
	}
}

func createGoal(t *testing.T, svc *Service, store *fakeStore, userID int64, target float64, count int) (*models.GoalDetail, []models.Installment) {
	t.Helper()
	detail, err := svc.CreateGoal(userID, "Goal", target, count, models.CadenceWeekly, 0)
	if err != nil {
		t.Fatalf("CreateGoal returned error: %v", err)
	}
	insts, _ := store.InstallmentsByGoal(detail.ID)
	return detail, insts
}

func TestPayInstallmentCompletesGoal(t *testing.T) {
	store := newFakeStore()
	user := store.addUser("ana", "ana@example.com")
	svc := newTestService(store, nil)
	detail, insts := createGoal(t, svc, store, user.ID, 300, 3)

	for i, inst := range insts {
		goal, err := svc.PayInstallment(detail.ID, inst.ID)
		if err != nil {
			t.Fatalf("PayInstallment %d returned error: %v", i+1, err)
		}
		wantSaved := float64(i+1) * 100
		if math.Abs(goal.AmountSaved-wantSaved) > 1e-9 {
			t.Errorf("after payment %d: AmountSaved = %v, want %v", i+1, goal.AmountSaved, wantSaved)
		}
		if i < len(insts)-1 && goal.Status != models.GoalActive {
			t.Errorf("after payment %d: status = %s, want ACTIVE", i+1, goal.Status)
		}
		if i == len(insts)-1 && goal.Status != models.GoalCompleted {
			t.Errorf("after final payment: status = %s, want COMPLETED", goal.Status)
		}
	}

	final, err := svc.GetGoalDetail(detail.ID)
	if err != nil {
		t.Fatalf("GetGoalDetail returned error: %v", err)
	}
	if !(&models.SavingsGoal{TargetAmount: final.TargetAmount, AmountSaved: final.AmountSaved}).IsComplete() {
		t.Error("goal should be complete after paying every installment")
	}
	if final.PaidCount != 3 || final.PendingCount != 0 {
		t.Errorf("counts = %d paid / %d pending, want 3/0", final.PaidCount, final.PendingCount)
	}
	if final.ProgressPercent != 100 {
		t.Errorf("progress = %v, want 100", final.ProgressPercent)
	}
}

func TestPayInstallmentAlreadyPaid(t *testing.T) {
	store := newFakeStore()
	user := store.addUser("ana", "ana@example.com")
	svc := newTestService(store, nil)
	detail, insts := createGoal(t, svc, store, user.ID, 300, 3)

	if _, err := svc.PayInstallment(detail.ID, insts[0].ID); err != nil {
		t.Fatalf("first payment returned error: %v", err)
	}
	_, err := svc.PayInstallment(detail.ID, insts[0].ID)
	if !errors.Is(err, models.ErrAlreadyPaid) {
		t.Fatalf("second payment error = %v, want ErrAlreadyPaid", err)
	}

	goal, _ := store.FindGoalByID(detail.ID)
	if goal.AmountSaved != 100 {
		t.Errorf("AmountSaved = %v after failed re-payment, want 100", goal.AmountSaved)
	}
}

func TestPayInstallmentNotFound(t *testing.T) {
	store := newFakeStore()
	user := store.addUser("ana", "ana@example.com")
	svc := newTestService(store, nil)
	detail, insts := createGoal(t, svc, store, user.ID, 300, 3)
	other, _ := createGoal(t, svc, store, user.ID, 500, 5)

	if _, err := svc.PayInstallment(999, insts[0].ID); !errors.Is(err, models.ErrGoalNotFound) {
		t.Errorf("unknown goal: error = %v, want ErrGoalNotFound", err)
	}
	if _, err := svc.PayInstallment(detail.ID, 999); !errors.Is(err, models.ErrInstallmentNotFound) {
		t.Errorf("unknown installment: error = %v, want ErrInstallmentNotFound", err)
	}
	if _, err := svc.PayInstallment(other.ID, insts[0].ID); !errors.Is(err, models.ErrInstallmentNotFound) {
		t.Errorf("installment of another goal: error = %v, want ErrInstallmentNotFound", err)
	}
}

func TestPayInstallmentLosesRace(t *testing.T) {
	store := newFakeStore()
	user := store.addUser("ana", "ana@example.com")
	svc := newTestService(store, nil)
	detail, insts := createGoal(t, svc, store, user.ID, 300, 3)

	// A concurrent payer wins between our load and our write.
	store.beforeApply = func() {
		store.findInstallment(insts[0].ID).Status = models.InstallmentPaid
	}
	_, err := svc.PayInstallment(detail.ID, insts[0].ID)
	if !errors.Is(err, models.ErrAlreadyPaid) {
		t.Fatalf("error = %v, want ErrAlreadyPaid", err)
	}

	goal, _ := store.FindGoalByID(detail.ID)
	if goal.AmountSaved != 0 {
		t.Errorf("AmountSaved = %v after lost race, want 0", goal.AmountSaved)
	}
}

func TestConcurrentPaymentsOfSiblingInstallments(t *testing.T) {
	store := newFakeStore()
	user := store.addUser("ana", "ana@example.com")
	svc := newTestService(store, nil)
	detail, insts := createGoal(t, svc, store, user.ID, 200, 2)

	// A payment of the second installment commits between our load of the
	// goal and our write of the first. Both contributions must land.
	store.beforeApply = func() {
		store.beforeApply = nil
		if _, err := svc.PayInstallment(detail.ID, insts[1].ID); err != nil {
			t.Fatalf("interleaved payment returned error: %v", err)
		}
	}
	goal, err := svc.PayInstallment(detail.ID, insts[0].ID)
	if err != nil {
		t.Fatalf("PayInstallment returned error: %v", err)
	}

	if math.Abs(goal.AmountSaved-200) > 1e-9 {
		t.Errorf("AmountSaved = %v, want 200", goal.AmountSaved)
	}
	if goal.Status != models.GoalCompleted {
		t.Errorf("status = %s, want COMPLETED", goal.Status)
	}
	stored, _ := store.FindGoalByID(detail.ID)
	if math.Abs(stored.AmountSaved-200) > 1e-9 || stored.Status != models.GoalCompleted {
		t.Errorf("stored goal = %v saved, status %s; want 200 and COMPLETED",
			stored.AmountSaved, stored.Status)
	}
}

func TestCreateGoalUnknownCadenceFallsBack(t *testing.T) {
	store := newFakeStore()
	user := store.addUser("ana", "ana@example.com")
	svc := newTestService(store, nil)

	// Cadence arrives raw from the transport layer; normalization happens
	// here, and anything unrecognized schedules monthly.
	detail, err := svc.CreateGoal(user.ID, "Trip", 1200, 12, models.Cadence("YEARLY"), 0)
	if err != nil {
		t.Fatalf("CreateGoal returned error: %v", err)
	}
	if detail.Cadence != models.CadenceMonthly {
		t.Errorf("Cadence = %s, want MONTHLY", detail.Cadence)
	}
	want := time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC)
	if !detail.Upcoming[1].ScheduledDate.Equal(want) {
		t.Errorf("second installment scheduled %v, want %v", detail.Upcoming[1].ScheduledDate, want)
	}
}

func TestPayOverdueInstallment(t *testing.T) {
	store := newFakeStore()
	user := store.addUser("ana", "ana@example.com")
	svc := newTestService(store, nil)
	detail, insts := createGoal(t, svc, store, user.ID, 300, 3)

	svc.now = func() time.Time { return testToday.AddDate(0, 2, 0) }
	if _, err := svc.SweepOverdueInstallments(); err != nil {
		t.Fatalf("sweep returned error: %v", err)
	}

	goal, err := svc.PayInstallment(detail.ID, insts[0].ID)
	if err != nil {
		t.Fatalf("paying an overdue installment returned error: %v", err)
	}
	if goal.AmountSaved != 100 {
		t.Errorf("AmountSaved = %v, want 100", goal.AmountSaved)
	}
	paid, _ := store.FindInstallmentByID(insts[0].ID)
	if paid.Status != models.InstallmentPaid {
		t.Errorf("installment status = %s, want PAID", paid.Status)
	}
	if paid.PaidDate == nil {
		t.Error("paid installment should carry a payment date")
	}
}

func TestSweepOverdueInstallments(t *testing.T) {
	store := newFakeStore()
	user := store.addUser("ana", "ana@example.com")
	svc := newTestService(store, nil)
	detail, _ := createGoal(t, svc, store, user.ID, 300, 3) // weekly: Jan 15, 22, 29

	// Nothing is due on creation day: scheduled today is not past due.
	swept, err := svc.SweepOverdueInstallments()
	if err != nil {
		t.Fatalf("sweep returned error: %v", err)
	}
	if swept != 0 {
		t.Errorf("sweep on start date transitioned %d installments, want 0", swept)
	}

	svc.now = func() time.Time { return time.Date(2024, time.January, 23, 8, 0, 0, 0, time.UTC) }
	swept, err = svc.SweepOverdueInstallments()
	if err != nil {
		t.Fatalf("sweep returned error: %v", err)
	}
	if swept != 2 {
		t.Errorf("swept %d installments, want 2", swept)
	}

	// Goal aggregates are untouched by the sweep.
	goal, _ := store.FindGoalByID(detail.ID)
	if goal.AmountSaved != 0 || goal.Status != models.GoalActive {
		t.Errorf("sweep touched goal aggregates: saved=%v status=%s", goal.AmountSaved, goal.Status)
	}

	// Running the sweep again transitions nothing.
	swept, err = svc.SweepOverdueInstallments()
	if err != nil {
		t.Fatalf("second sweep returned error: %v", err)
	}
	if swept != 0 {
		t.Errorf("second sweep transitioned %d installments, want 0", swept)
	}
}

func TestSuggestGoal(t *testing.T) {
	store := newFakeStore()
	user := store.addUser("ana", "ana@example.com")
	store.balances[user.ID] = 1000
	svc := newTestService(store, nil)

	suggestion, err := svc.SuggestGoal(user.ID, 20, 5, models.CadenceWeekly)
	if err != nil {
		t.Fatalf("SuggestGoal returned error: %v", err)
	}
	if suggestion.TargetAmount != 200 {
		t.Errorf("TargetAmount = %v, want 200", suggestion.TargetAmount)
	}
	if suggestion.InstallmentAmount != 40 {
		t.Errorf("InstallmentAmount = %v, want 40", suggestion.InstallmentAmount)
	}
	if suggestion.AmountSaved != 0 || suggestion.ProgressPercent != 0 {
		t.Errorf("suggestion should start empty: saved=%v progress=%v", suggestion.AmountSaved, suggestion.ProgressPercent)
	}
	if len(suggestion.Upcoming) != 5 {
		t.Errorf("got %d preview installments, want 5", len(suggestion.Upcoming))
	}

	// The suggestion is a calculator, not a creator.
	goals, _ := svc.ListGoals(user.ID)
	if len(goals) != 0 {
		t.Errorf("suggestion persisted %d goals, want 0", len(goals))
	}
}

func TestSuggestGoalPreviewTruncated(t *testing.T) {
	store := newFakeStore()
	user := store.addUser("ana", "ana@example.com")
	store.balances[user.ID] = 1000
	svc := newTestService(store, nil)

	long, err := svc.SuggestGoal(user.ID, 20, 12, models.CadenceMonthly)
	if err != nil {
		t.Fatalf("SuggestGoal returned error: %v", err)
	}
	if len(long.Upcoming) != 5 {
		t.Errorf("12-installment preview has %d upcoming, want 5", len(long.Upcoming))
	}

	short, err := svc.SuggestGoal(user.ID, 20, 3, models.CadenceMonthly)
	if err != nil {
		t.Fatalf("SuggestGoal returned error: %v", err)
	}
	if len(short.Upcoming) != 3 {
		t.Errorf("3-installment preview has %d upcoming, want 3", len(short.Upcoming))
	}
}

func TestSuggestGoalNoPositiveBalance(t *testing.T) {
	store := newFakeStore()
	user := store.addUser("ana", "ana@example.com")
	svc := newTestService(store, nil)

	for _, balance := range []float64{0, -250} {
		store.balances[user.ID] = balance
		_, err := svc.SuggestGoal(user.ID, 20, 5, models.CadenceWeekly)
		if !errors.Is(err, models.ErrNoPositiveBalance) {
			t.Errorf("balance %v: error = %v, want ErrNoPositiveBalance", balance, err)
		}
	}
}

func TestCancelGoal(t *testing.T) {
	store := newFakeStore()
	user := store.addUser("ana", "ana@example.com")
	svc := newTestService(store, nil)
	detail, insts := createGoal(t, svc, store, user.ID, 100, 1)

	if err := svc.CancelGoal(999); !errors.Is(err, models.ErrGoalNotFound) {
		t.Errorf("unknown goal: error = %v, want ErrGoalNotFound", err)
	}

	// Cancelling is permissive: even a completed goal transitions.
	if _, err := svc.PayInstallment(detail.ID, insts[0].ID); err != nil {
		t.Fatalf("PayInstallment returned error: %v", err)
	}
	goal, _ := store.FindGoalByID(detail.ID)
	if goal.Status != models.GoalCompleted {
		t.Fatalf("status = %s, want COMPLETED", goal.Status)
	}

	if err := svc.CancelGoal(detail.ID); err != nil {
		t.Fatalf("CancelGoal returned error: %v", err)
	}
	goal, _ = store.FindGoalByID(detail.ID)
	if goal.Status != models.GoalCancelled {
		t.Errorf("status = %s, want CANCELLED", goal.Status)
	}

	// Installments are left untouched.
	inst, _ := store.FindInstallmentByID(insts[0].ID)
	if inst.Status != models.InstallmentPaid {
		t.Errorf("installment status = %s after cancel, want PAID", inst.Status)
	}

	active, _ := svc.ListActiveGoals(user.ID)
	if len(active) != 0 {
		t.Errorf("cancelled goal still listed as active")
	}
}

func TestNotifyOverdue(t *testing.T) {
	store := newFakeStore()
	user := store.addUser("ana", "ana@example.com")
	mailer := &fakeMailer{}
	svc := newTestService(store, mailer)
	createGoal(t, svc, store, user.ID, 300, 3)

	svc.now = func() time.Time { return testToday.AddDate(0, 2, 0) }
	if _, err := svc.SweepOverdueInstallments(); err != nil {
		t.Fatalf("sweep returned error: %v", err)
	}
	if err := svc.NotifyOverdue(); err != nil {
		t.Fatalf("NotifyOverdue returned error: %v", err)
	}

	if len(mailer.notices) != 1 {
		t.Fatalf("sent %d notices, want 1", len(mailer.notices))
	}
	notice := mailer.notices[0]
	if notice.Email != "ana@example.com" || notice.OverdueCount != 3 {
		t.Errorf("notice = %+v, want 3 overdue installments for ana@example.com", notice)
	}
	if math.Abs(notice.AmountDue-300) > 1e-9 {
		t.Errorf("AmountDue = %v, want 300", notice.AmountDue)
	}
}
