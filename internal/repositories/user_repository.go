package repositories

import (
	"context"
	"database/sql"
	"time"

	"taskboard/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// refresh helpers
	UpdateRefresh(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	GetByRefreshToken(ctx context.Context, token string) (*models.User, error)

	// Telegram helpers
	UpdateTelegramLink(ctx context.Context, userID int64, chatID int64, notify bool) error
	GetTelegramSettings(ctx context.Context, userID int64) (chatID int64, notify bool, err error)
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `id, name, email, password_hash,
       refresh_token, refresh_expires_at,
       COALESCE(telegram_chat_id, 0), notify_telegram, created_at`

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	const q = `
		INSERT INTO users (name, email, password_hash, notify_telegram, created_at)
		VALUES ($1,$2,$3,FALSE,$4)
		RETURNING id`
	return r.DB.QueryRowContext(ctx, q,
		user.Name, user.Email, user.PasswordHash, user.CreatedAt,
	).Scan(&user.ID)
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *userRepository) GetByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	return r.getOne(ctx,
		`SELECT `+userColumns+` FROM users WHERE refresh_token = $1 AND refresh_expires_at > NOW()`,
		token)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	u := &models.User{}
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash,
		&u.RefreshToken, &u.RefreshExpiresAt,
		&u.TelegramChatID, &u.NotifyTelegram, &u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) UpdateRefresh(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET refresh_token=$1, refresh_expires_at=$2 WHERE id=$3`,
		token, expiresAt, userID)
	return err
}

func (r *userRepository) UpdateTelegramLink(ctx context.Context, userID int64, chatID int64, notify bool) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET telegram_chat_id=$1, notify_telegram=$2 WHERE id=$3`,
		chatID, notify, userID)
	return err
}

func (r *userRepository) GetTelegramSettings(ctx context.Context, userID int64) (int64, bool, error) {
	var chatID int64
	var notify bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT COALESCE(telegram_chat_id, 0), notify_telegram FROM users WHERE id=$1`,
		userID).Scan(&chatID, &notify)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, err
	}
	return chatID, notify, nil
}
