package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"taskboard/internal/models"
)

type RoomRepository interface {
	Store(ctx context.Context, room *models.Room, ownerID int64) error
	FindByID(ctx context.Context, id int64) (*models.Room, error)
	FindByCode(ctx context.Context, code string) (*models.Room, error)
	AddMember(ctx context.Context, roomID, userID int64) error
	ListMembers(ctx context.Context, roomID int64) ([]models.RoomMember, error)
	IsMember(ctx context.Context, roomID, userID int64) (bool, error)
}

// ErrCodeTaken is returned by Store when the generated join code collides
// with an existing room. The service regenerates and retries.
var ErrCodeTaken = errors.New("room code already taken")

type roomRepository struct {
	db *sql.DB
}

func NewRoomRepository(db *sql.DB) RoomRepository {
	return &roomRepository{db: db}
}

// Store inserts the room and its owner's membership in one transaction, so
// a room can never exist without its creator on the roster.
func (r *roomRepository) Store(ctx context.Context, room *models.Room, ownerID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	const q = `
		INSERT INTO rooms (name, code, created_by, created_at)
		VALUES ($1,$2,$3,$4)
		RETURNING id`
	err = tx.QueryRowContext(ctx, q,
		room.Name, room.Code, room.CreatedBy, room.CreatedAt,
	).Scan(&room.ID)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		room.ID = 0
		return ErrCodeTaken
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO room_members (room_id, user_id, joined_at)
		VALUES ($1,$2,NOW())`,
		room.ID, ownerID); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *roomRepository) FindByID(ctx context.Context, id int64) (*models.Room, error) {
	return r.findOne(ctx, `SELECT id, name, code, created_by, created_at FROM rooms WHERE id = $1`, id)
}

func (r *roomRepository) FindByCode(ctx context.Context, code string) (*models.Room, error) {
	return r.findOne(ctx, `SELECT id, name, code, created_by, created_at FROM rooms WHERE code = $1`, code)
}

func (r *roomRepository) findOne(ctx context.Context, query string, arg interface{}) (*models.Room, error) {
	room := &models.Room{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&room.ID, &room.Name, &room.Code, &room.CreatedBy, &room.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return room, nil
}

// AddMember is idempotent: joining twice leaves the roster unchanged.
func (r *roomRepository) AddMember(ctx context.Context, roomID, userID int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO room_members (room_id, user_id, joined_at)
		VALUES ($1,$2,NOW())
		ON CONFLICT (room_id, user_id) DO NOTHING`,
		roomID, userID)
	return err
}

func (r *roomRepository) ListMembers(ctx context.Context, roomID int64) ([]models.RoomMember, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.id, u.name, u.email, rm.joined_at
		FROM room_members rm
		JOIN users u ON u.id = rm.user_id
		WHERE rm.room_id = $1
		ORDER BY rm.joined_at, u.id`,
		roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.RoomMember
	for rows.Next() {
		var m models.RoomMember
		if err := rows.Scan(&m.UserID, &m.Name, &m.Email, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *roomRepository) IsMember(ctx context.Context, roomID, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM room_members WHERE room_id=$1 AND user_id=$2)`,
		roomID, userID).Scan(&exists)
	return exists, err
}
