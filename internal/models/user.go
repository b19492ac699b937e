package models

import "time"

type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`

	// refresh-token storage
	RefreshToken     *string    `json:"-"`
	RefreshExpiresAt *time.Time `json:"-"`

	// optional Telegram link for assignment pings
	TelegramChatID int64 `json:"-"`
	NotifyTelegram bool  `json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// UserRef is the public projection embedded in tasks, logs and rosters.
type UserRef struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}
