package service

import (
	"fmt"
	"time"

	"github.com/finly/finance-service/internal/config"
	"github.com/finly/finance-service/internal/integrations/facerec"
	"github.com/finly/finance-service/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Service handles business logic
type Service struct {
	store  Store
	faces  *facerec.Client
	mailer Mailer
	log    *logrus.Logger
	config *config.Config
	now    func() time.Time
}

// NewService initializes a new service
func NewService(store Store, faces *facerec.Client, mailer Mailer, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{
		store:  store,
		faces:  faces,
		mailer: mailer,
		log:    log,
		config: cfg,
		now:    time.Now,
	}
}

// today returns the current calendar date at midnight UTC. Overdue
// detection and payment dating work on whole days.
func (s *Service) today() time.Time {
	year, month, day := s.now().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Register creates a new user with hashed password and returns a session token
func (s *Service) Register(username, email, password, role string) (*models.User, string, error) {
	if err := s.checkAvailable(username, email); err != nil {
		return nil, "", err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}
	if role == "" {
		role = "USER"
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         role,
	}
	if err := s.store.CreateUser(user); err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, token, nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(username, password string) (*models.User, string, error) {
	user, err := s.store.FindUserByUsername(username)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", fmt.Errorf("invalid credentials")
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}

	s.log.Infof("User logged in: %s", user.Username)
	return user, token, nil
}

// RegisterWithFace creates a user whose identity is backed by a facial
// embedding generated by the external recognition service
func (s *Service) RegisterWithFace(username, email, password, role, imageBase64 string) (*models.User, string, error) {
	if err := s.checkAvailable(username, email); err != nil {
		return nil, "", err
	}
	if !s.faces.Healthy() {
		return nil, "", fmt.Errorf("face recognition service is unavailable")
	}

	embedding, err := s.faces.GenerateEmbedding(imageBase64)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate face embedding: %w", err)
	}

	user, token, err := s.Register(username, email, password, role)
	if err != nil {
		return nil, "", err
	}

	enc := &models.FaceEncoding{UserID: user.ID, Embedding: embedding}
	if err := s.store.SaveFaceEncoding(enc); err != nil {
		return nil, "", err
	}

	s.log.Infof("Face encoding registered for user %d", user.ID)
	return user, token, nil
}

// LoginWithFace authenticates a user by verifying an image against their
// stored facial embedding
func (s *Service) LoginWithFace(username, imageBase64 string) (*models.User, string, error) {
	user, err := s.store.FindUserByUsername(username)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", models.ErrUserNotFound
	}

	enc, err := s.store.FaceEncodingByUser(user.ID)
	if err != nil {
		return nil, "", err
	}
	if enc == nil {
		return nil, "", fmt.Errorf("no face encoding registered for user")
	}

	result, err := s.faces.Verify(enc.Embedding, imageBase64)
	if err != nil {
		return nil, "", fmt.Errorf("face verification failed: %w", err)
	}
	if !result.Verified {
		return nil, "", fmt.Errorf("face verification failed")
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}

	s.log.Infof("User logged in via face recognition: %s (similarity %.2f)", user.Username, result.Similarity)
	return user, token, nil
}

func (s *Service) checkAvailable(username, email string) error {
	existing, err := s.store.FindUserByUsername(username)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("username is already taken")
	}
	existing, err = s.store.FindUserByEmail(email)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("email is already registered")
	}
	return nil
}

func (s *Service) issueToken(user *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", user.ID),
		ExpiresAt: jwt.NewNumericDate(s.now().Add(24 * time.Hour)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}
