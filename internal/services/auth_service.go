package services

import (
	"golang.org/x/crypto/bcrypt"
)

// AuthService owns password hashing so handlers and user service never
// touch bcrypt directly.
type AuthService interface {
	HashPassword(plain string) (string, error)
	CheckPassword(hash, plain string) bool
}

type authService struct{}

func NewAuthService() AuthService {
	return &authService{}
}

func (s *authService) HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *authService) CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
