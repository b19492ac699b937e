package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"taskboard/internal/models"
	"taskboard/internal/repositories"
)

type UserService interface {
	Register(ctx context.Context, name, email, plainPassword string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateRefresh(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	GetByRefreshToken(ctx context.Context, token string) (*models.User, error)
	LinkTelegram(ctx context.Context, userID int64, chatID int64, notify bool) error
}

type userService struct {
	repo         repositories.UserRepository
	emailService EmailService
	authService  AuthService
}

func NewUserService(repo repositories.UserRepository, emailService EmailService, authService AuthService) UserService {
	return &userService{
		repo:         repo,
		emailService: emailService,
		authService:  authService,
	}
}

func (s *userService) Register(ctx context.Context, name, email, plainPassword string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if strings.TrimSpace(plainPassword) == "" {
		return nil, fmt.Errorf("password is required")
	}
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("email already registered")
	}

	hash, err := s.authService.HashPassword(plainPassword)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.emailService != nil {
		if err := s.emailService.SendWelcomeEmail(user.Email, user.Name); err != nil {
			// warn but do not fail registration
			log.Printf("[user][register] welcome email to %s failed: %v", user.Email, err)
		}
	}
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

func (s *userService) UpdateRefresh(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	return s.repo.UpdateRefresh(ctx, userID, token, expiresAt)
}

func (s *userService) GetByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	return s.repo.GetByRefreshToken(ctx, token)
}

func (s *userService) LinkTelegram(ctx context.Context, userID int64, chatID int64, notify bool) error {
	return s.repo.UpdateTelegramLink(ctx, userID, chatID, notify)
}
