package service

import (
	"github.com/finly/finance-service/internal/models"
)

// ListUsers lists every registered user
func (s *Service) ListUsers() ([]models.User, error) {
	return s.store.ListUsers()
}

// GetUser retrieves a user by id
func (s *Service) GetUser(id int64) (*models.User, error) {
	user, err := s.store.FindUserByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.ErrUserNotFound
	}
	return user, nil
}

// UpdateUser replaces a user's username, email and role. The password hash
// is untouched; credentials change through registration flows only.
func (s *Service) UpdateUser(id int64, username, email, role string) (*models.User, error) {
	user, err := s.store.FindUserByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.ErrUserNotFound
	}
	if username != "" {
		user.Username = username
	}
	if email != "" {
		user.Email = email
	}
	if role != "" {
		user.Role = role
	}
	if err := s.store.UpdateUser(user); err != nil {
		return nil, err
	}
	s.log.Infof("User %d updated", id)
	return user, nil
}

// DeleteUser removes a user together with their financial records
func (s *Service) DeleteUser(id int64) error {
	user, err := s.store.FindUserByID(id)
	if err != nil {
		return err
	}
	if user == nil {
		return models.ErrUserNotFound
	}
	if err := s.store.DeleteUser(id); err != nil {
		return err
	}
	s.log.Infof("User %d deleted", id)
	return nil
}
