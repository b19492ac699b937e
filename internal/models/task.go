package models

import "time"

// TaskStatus defines the possible board columns for a task.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "Todo"
	StatusInProgress TaskStatus = "In Progress"
	StatusDone       TaskStatus = "Done"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "Low"
	PriorityMedium TaskPriority = "Medium"
	PriorityHigh   TaskPriority = "High"
)

// Task represents a card on a room's board.
type Task struct {
	ID           int64        `json:"id"`
	RoomID       int64        `json:"room_id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Status       TaskStatus   `json:"status"`
	Priority     TaskPriority `json:"priority"`
	AssignedToID *int64       `json:"assigned_to_id,omitempty"`
	AssignedTo   *UserRef     `json:"assigned_to,omitempty"`
	CreatedBy    int64        `json:"created_by"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// TaskUpdate carries the fields a client may change on an existing task.
// Nil pointers leave the stored value untouched.
type TaskUpdate struct {
	Title        *string       `json:"title"`
	Description  *string       `json:"description"`
	Status       *TaskStatus   `json:"status"`
	Priority     *TaskPriority `json:"priority"`
	AssignedToID *int64        `json:"assigned_to_id"`
}

// MemberTaskCount is one row of the smart-assign workload query.
type MemberTaskCount struct {
	UserID      int64
	Name        string
	Email       string
	ActiveTasks int
}

func IsValidStatus(s TaskStatus) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

func IsValidPriority(p TaskPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}
