package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskboard/internal/models"
	"taskboard/internal/repositories"
)

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrRoomRequired    = errors.New("room_id is required")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidPriority = errors.New("invalid priority")
)

// TaskConflictError rejects an update whose caller-supplied updated_at no
// longer matches the stored value. Current carries the server-side copy so
// the client can re-render and decide to overwrite.
type TaskConflictError struct {
	Current *models.Task
}

func (e *TaskConflictError) Error() string {
	return "task was modified by another user"
}

type TaskService interface {
	ListByRoom(ctx context.Context, roomID int64) ([]models.Task, error)
	Create(ctx context.Context, task *models.Task, actingUser int64) (*models.Task, error)
	Update(ctx context.Context, id int64, fields models.TaskUpdate, expectedUpdatedAt *time.Time, actingUser int64) (*models.Task, error)
	Delete(ctx context.Context, id int64, actingUser int64) (*models.Task, error)
	SmartAssign(ctx context.Context, id int64, actingUser int64) (*models.Task, error)
	RecentLogs(ctx context.Context, roomID int64, limit int) ([]models.ActionLog, error)
}

// AssignmentNotifier pings a user about a task newly assigned to them.
// Implementations must never fail the primary mutation.
type AssignmentNotifier interface {
	NotifyAssigned(ctx context.Context, userID int64, task *models.Task)
}

type taskService struct {
	tasks    repositories.TaskRepository
	rooms    repositories.RoomRepository
	logs     repositories.ActionLogRepository
	logger   ActionLogger
	notifier AssignmentNotifier
}

// NewTaskService creates a new instance of TaskService. notifier may be nil.
func NewTaskService(
	tasks repositories.TaskRepository,
	rooms repositories.RoomRepository,
	logs repositories.ActionLogRepository,
	logger ActionLogger,
	notifier AssignmentNotifier,
) TaskService {
	return &taskService{tasks: tasks, rooms: rooms, logs: logs, logger: logger, notifier: notifier}
}

// stamp returns the write timestamp for a task, strictly after prev.
// Millisecond precision survives both Postgres storage and the JSON
// round-trip the conflict check depends on.
func stamp(prev time.Time) time.Time {
	now := time.Now().UTC().Truncate(time.Millisecond)
	if !now.After(prev) {
		now = prev.Add(time.Millisecond)
	}
	return now
}

func (s *taskService) ListByRoom(ctx context.Context, roomID int64) ([]models.Task, error) {
	return s.tasks.FindByRoom(ctx, roomID)
}

func (s *taskService) Create(ctx context.Context, task *models.Task, actingUser int64) (*models.Task, error) {
	if task.RoomID == 0 {
		return nil, ErrRoomRequired
	}
	room, err := s.rooms.FindByID(ctx, task.RoomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}

	if task.Status == "" {
		task.Status = models.StatusTodo
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	task.CreatedBy = actingUser
	task.CreatedAt = stamp(time.Time{})
	task.UpdatedAt = task.CreatedAt

	if err := s.tasks.Store(ctx, task); err != nil {
		return nil, err
	}
	s.logger.LogInRoom(ctx, actingUser, task.ID, task.RoomID, models.ActionCreate,
		fmt.Sprintf("Created task: %s", task.Title))
	if s.notifier != nil && task.AssignedToID != nil {
		s.notifier.NotifyAssigned(ctx, *task.AssignedToID, task)
	}
	return task, nil
}

func (s *taskService) Update(ctx context.Context, id int64, fields models.TaskUpdate, expectedUpdatedAt *time.Time, actingUser int64) (*models.Task, error) {
	current, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrTaskNotFound
	}

	// Optimistic concurrency on a single logical clock: a stale guard
	// rejects the whole payload, nothing is merged.
	if expectedUpdatedAt != nil && !expectedUpdatedAt.Equal(current.UpdatedAt) {
		return nil, &TaskConflictError{Current: current}
	}

	update := *current
	if fields.Title != nil {
		update.Title = *fields.Title
	}
	if fields.Description != nil {
		update.Description = *fields.Description
	}
	if fields.Status != nil {
		if !models.IsValidStatus(*fields.Status) {
			return nil, fmt.Errorf("%w %q", ErrInvalidStatus, *fields.Status)
		}
		update.Status = *fields.Status
	}
	if fields.Priority != nil {
		if !models.IsValidPriority(*fields.Priority) {
			return nil, fmt.Errorf("%w %q", ErrInvalidPriority, *fields.Priority)
		}
		update.Priority = *fields.Priority
	}
	if fields.AssignedToID != nil {
		if *fields.AssignedToID == 0 {
			update.AssignedToID = nil
		} else {
			update.AssignedToID = fields.AssignedToID
		}
		update.AssignedTo = nil
	}
	update.UpdatedAt = stamp(current.UpdatedAt)

	if err := s.tasks.Update(ctx, &update); err != nil {
		return nil, err
	}
	s.logger.LogInRoom(ctx, actingUser, update.ID, update.RoomID, models.ActionUpdate,
		fmt.Sprintf("Updated task: %s", update.Title))
	if s.notifier != nil && update.AssignedToID != nil &&
		(current.AssignedToID == nil || *current.AssignedToID != *update.AssignedToID) {
		s.notifier.NotifyAssigned(ctx, *update.AssignedToID, &update)
	}

	return s.tasks.FindByID(ctx, id)
}

// Delete removes the task permanently and returns the copy it just loaded,
// which the handler needs for the room-scoped broadcast.
func (s *taskService) Delete(ctx context.Context, id int64, actingUser int64) (*models.Task, error) {
	current, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrTaskNotFound
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return nil, err
	}
	// The row is gone, so the room comes from the copy we just loaded.
	s.logger.LogInRoom(ctx, actingUser, id, current.RoomID, models.ActionDelete,
		fmt.Sprintf("Deleted task: %s", current.Title))
	return current, nil
}

// SmartAssign hands the task to the room member with the fewest non-Done
// tasks. Ties go to the earliest joiner, which keeps the pick deterministic
// for a fixed roster.
func (s *taskService) SmartAssign(ctx context.Context, id int64, actingUser int64) (*models.Task, error) {
	current, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrTaskNotFound
	}

	counts, err := s.tasks.MemberActiveCounts(ctx, current.RoomID)
	if err != nil {
		return nil, err
	}
	if len(counts) == 0 {
		return nil, ErrRoomNotFound
	}

	leastBusy := counts[0]
	for _, c := range counts[1:] {
		if c.ActiveTasks < leastBusy.ActiveTasks {
			leastBusy = c
		}
	}

	update := *current
	update.AssignedToID = &leastBusy.UserID
	update.AssignedTo = nil
	update.UpdatedAt = stamp(current.UpdatedAt)
	if err := s.tasks.Update(ctx, &update); err != nil {
		return nil, err
	}

	s.logger.LogInRoom(ctx, actingUser, id, update.RoomID, models.ActionSmartAssign,
		fmt.Sprintf("Smart-assigned task to %s", leastBusy.Name))
	if s.notifier != nil {
		s.notifier.NotifyAssigned(ctx, leastBusy.UserID, &update)
	}

	return s.tasks.FindByID(ctx, id)
}

func (s *taskService) RecentLogs(ctx context.Context, roomID int64, limit int) ([]models.ActionLog, error) {
	if limit <= 0 {
		limit = 20
	}
	if roomID != 0 {
		return s.logs.FindByRoom(ctx, roomID, limit)
	}
	return s.logs.FindRecent(ctx, limit)
}
