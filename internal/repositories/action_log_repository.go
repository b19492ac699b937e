package repositories

import (
	"context"
	"database/sql"

	"taskboard/internal/models"
)

type ActionLogRepository interface {
	Store(ctx context.Context, entry *models.ActionLog) error
	FindRecent(ctx context.Context, limit int) ([]models.ActionLog, error)
	FindByRoom(ctx context.Context, roomID int64, limit int) ([]models.ActionLog, error)
}

type actionLogRepository struct {
	db *sql.DB
}

func NewActionLogRepository(db *sql.DB) ActionLogRepository {
	return &actionLogRepository{db: db}
}

func (r *actionLogRepository) Store(ctx context.Context, entry *models.ActionLog) error {
	const q = `
		INSERT INTO action_logs (user_id, task_id, room_id, action_type, message, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id`
	return r.db.QueryRowContext(ctx, q,
		entry.UserID, entry.TaskID, entry.RoomID, entry.ActionType, entry.Message, entry.Timestamp,
	).Scan(&entry.ID)
}

// Task title joins are best effort: entries outlive deleted tasks.
const logSelect = `
SELECT l.id, l.user_id, l.task_id, l.room_id, l.action_type, l.message, l.created_at,
       u.id, u.name, u.email, COALESCE(t.title, '')
FROM action_logs l
JOIN users u ON u.id = l.user_id
LEFT JOIN tasks t ON t.id = l.task_id`

func (r *actionLogRepository) FindRecent(ctx context.Context, limit int) ([]models.ActionLog, error) {
	return r.query(ctx, logSelect+` ORDER BY l.created_at DESC, l.id DESC LIMIT $1`, limit)
}

func (r *actionLogRepository) FindByRoom(ctx context.Context, roomID int64, limit int) ([]models.ActionLog, error) {
	return r.query(ctx, logSelect+` WHERE l.room_id = $1 ORDER BY l.created_at DESC, l.id DESC LIMIT $2`, roomID, limit)
}

func (r *actionLogRepository) query(ctx context.Context, q string, args ...interface{}) ([]models.ActionLog, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []models.ActionLog{}
	for rows.Next() {
		var l models.ActionLog
		ref := models.UserRef{}
		if err := rows.Scan(
			&l.ID, &l.UserID, &l.TaskID, &l.RoomID, &l.ActionType, &l.Message, &l.Timestamp,
			&ref.ID, &ref.Name, &ref.Email, &l.TaskTitle,
		); err != nil {
			return nil, err
		}
		l.User = &ref
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
