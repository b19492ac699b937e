package models

import "time"

// ActionType enumerates the audited task operations.
type ActionType string

const (
	ActionCreate      ActionType = "create"
	ActionUpdate      ActionType = "update"
	ActionDelete      ActionType = "delete"
	ActionSmartAssign ActionType = "smart-assign"
)

// ActionLog is an append-only audit row. Entries outlive the task they
// reference; TaskTitle is resolved at read time and empty once the task
// is gone.
type ActionLog struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	TaskID     int64      `json:"task_id"`
	RoomID     int64      `json:"room_id"`
	ActionType ActionType `json:"action_type"`
	Message    string     `json:"message"`
	Timestamp  time.Time  `json:"timestamp"`

	User      *UserRef `json:"user,omitempty"`
	TaskTitle string   `json:"task_title,omitempty"`
}
