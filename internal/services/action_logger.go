package services

import (
	"context"
	"log"
	"time"

	"taskboard/internal/models"
	"taskboard/internal/repositories"
)

// ActionLogger records audit entries for task mutations. Logging is
// fire-and-forget: the task change has already committed when an entry is
// written, so a logging failure never propagates to the caller.
type ActionLogger interface {
	Log(ctx context.Context, userID, taskID int64, action models.ActionType, message string)
	LogInRoom(ctx context.Context, userID, taskID, roomID int64, action models.ActionType, message string)
}

type actionLogger struct {
	logs  repositories.ActionLogRepository
	tasks repositories.TaskRepository
}

func NewActionLogger(logs repositories.ActionLogRepository, tasks repositories.TaskRepository) ActionLogger {
	return &actionLogger{logs: logs, tasks: tasks}
}

// Log resolves the task's room before persisting. When the task cannot be
// found the entry is skipped silently.
func (l *actionLogger) Log(ctx context.Context, userID, taskID int64, action models.ActionType, message string) {
	task, err := l.tasks.FindByID(ctx, taskID)
	if err != nil || task == nil {
		if err != nil {
			log.Printf("[log][skip] resolve task id=%d: %v", taskID, err)
		}
		return
	}
	l.LogInRoom(ctx, userID, taskID, task.RoomID, action, message)
}

// LogInRoom is used when the caller already knows the room, notably for
// delete entries where the task row is gone.
func (l *actionLogger) LogInRoom(ctx context.Context, userID, taskID, roomID int64, action models.ActionType, message string) {
	entry := &models.ActionLog{
		UserID:     userID,
		TaskID:     taskID,
		RoomID:     roomID,
		ActionType: action,
		Message:    message,
		Timestamp:  time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := l.logs.Store(ctx, entry); err != nil {
		log.Printf("[log][err] store action=%q task=%d: %v", action, taskID, err)
	}
}
