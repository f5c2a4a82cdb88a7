package service

import (
	"strings"
	"testing"

	"github.com/finly/finance-service/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func (f *fakeStore) CreateUser(user *models.User) error {
	user.ID = f.id()
	f.users[user.ID] = user
	return nil
}

func (f *fakeStore) FindUserByUsername(username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindUserByEmail(email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func TestRegister(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)

	user, token, err := svc.Register("ana", "ana@example.com", "s3cret", "")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Role != "USER" {
		t.Errorf("role = %q, want USER default", user.Role)
	}
	if user.PasswordHash == "s3cret" {
		t.Error("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}

	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("issued token does not parse: %v", err)
	}
	subject, _ := parsed.Claims.GetSubject()
	if subject != "1" {
		t.Errorf("token subject = %q, want %q", subject, "1")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)
	if _, _, err := svc.Register("ana", "ana@example.com", "s3cret", ""); err != nil {
		t.Fatalf("first Register returned error: %v", err)
	}

	if _, _, err := svc.Register("ana", "other@example.com", "s3cret", ""); err == nil ||
		!strings.Contains(err.Error(), "username") {
		t.Errorf("duplicate username: error = %v, want username conflict", err)
	}
	if _, _, err := svc.Register("other", "ana@example.com", "s3cret", ""); err == nil ||
		!strings.Contains(err.Error(), "email") {
		t.Errorf("duplicate email: error = %v, want email conflict", err)
	}
}

func TestLogin(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)
	if _, _, err := svc.Register("ana", "ana@example.com", "s3cret", ""); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	user, token, err := svc.Login("ana", "s3cret")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if user.Username != "ana" || token == "" {
		t.Errorf("Login returned user %q with token %q", user.Username, token)
	}

	if _, _, err := svc.Login("ana", "wrong"); err == nil {
		t.Error("Login with wrong password should fail")
	}
	if _, _, err := svc.Login("nobody", "s3cret"); err == nil {
		t.Error("Login with unknown username should fail")
	}
}

func TestSummary(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil)
	store.totals = map[int64][2]float64{7: {1500, 400}}

	summary, err := svc.Summary(7)
	if err != nil {
		t.Fatalf("Summary returned error: %v", err)
	}
	if summary.TotalIncome != 1500 || summary.TotalExpense != 400 || summary.Balance != 1100 {
		t.Errorf("summary = %+v, want 1500/400/1100", summary)
	}
}

func (f *fakeStore) TotalIncome(userID int64) (float64, error) {
	return f.totals[userID][0], nil
}

func (f *fakeStore) TotalExpense(userID int64) (float64, error) {
	return f.totals[userID][1], nil
}
