package repositories

import (
	"context"
	"database/sql"

	"taskboard/internal/models"
)

type TaskRepository interface {
	Store(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id int64) (*models.Task, error)
	FindByRoom(ctx context.Context, roomID int64) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id int64) error
	MemberActiveCounts(ctx context.Context, roomID int64) ([]models.MemberTaskCount, error)
}

type taskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Store(ctx context.Context, task *models.Task) error {
	const q = `
		INSERT INTO tasks (
			room_id, title, description, status, priority,
			assigned_to_id, created_by, created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id`
	return r.db.QueryRowContext(ctx, q,
		task.RoomID, task.Title, task.Description, task.Status, task.Priority,
		task.AssignedToID, task.CreatedBy, task.CreatedAt, task.UpdatedAt,
	).Scan(&task.ID)
}

const taskSelect = `
SELECT t.id, t.room_id, t.title, t.description, t.status, t.priority,
       t.assigned_to_id, t.created_by, t.created_at, t.updated_at,
       u.id, u.name, u.email
FROM tasks t
LEFT JOIN users u ON u.id = t.assigned_to_id`

func scanTask(scan func(dest ...interface{}) error) (*models.Task, error) {
	t := &models.Task{}
	var refID sql.NullInt64
	var refName, refEmail sql.NullString
	if err := scan(
		&t.ID, &t.RoomID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.AssignedToID, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
		&refID, &refName, &refEmail,
	); err != nil {
		return nil, err
	}
	if refID.Valid {
		t.AssignedTo = &models.UserRef{ID: refID.Int64, Name: refName.String, Email: refEmail.String}
	}
	return t, nil
}

func (r *taskRepository) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	row := r.db.QueryRowContext(ctx, taskSelect+` WHERE t.id = $1`, id)
	task, err := scanTask(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) FindByRoom(ctx context.Context, roomID int64) ([]models.Task, error) {
	rows, err := r.db.QueryContext(ctx, taskSelect+` WHERE t.room_id = $1 ORDER BY t.created_at, t.id`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	const q = `
		UPDATE tasks SET
			title=$1, description=$2, status=$3, priority=$4,
			assigned_to_id=$5, updated_at=$6
		WHERE id=$7`
	_, err := r.db.ExecContext(ctx, q,
		task.Title, task.Description, task.Status, task.Priority,
		task.AssignedToID, task.UpdatedAt, task.ID,
	)
	return err
}

func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	return err
}

// MemberActiveCounts returns every member of the room with the number of
// non-Done tasks currently assigned to them there, ordered by join time.
func (r *taskRepository) MemberActiveCounts(ctx context.Context, roomID int64) ([]models.MemberTaskCount, error) {
	const q = `
SELECT u.id, u.name, u.email, COUNT(t.id)
FROM room_members rm
JOIN users u ON u.id = rm.user_id
LEFT JOIN tasks t ON t.assigned_to_id = u.id AND t.room_id = rm.room_id AND t.status <> 'Done'
WHERE rm.room_id = $1
GROUP BY u.id, u.name, u.email, rm.joined_at
ORDER BY rm.joined_at, u.id`
	rows, err := r.db.QueryContext(ctx, q, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.MemberTaskCount
	for rows.Next() {
		var c models.MemberTaskCount
		if err := rows.Scan(&c.UserID, &c.Name, &c.Email, &c.ActiveTasks); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
