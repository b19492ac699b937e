package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"taskboard/internal/models"
)

type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Store(ctx context.Context, task *models.Task) error {
	args := m.Called(ctx, task)
	if args.Error(0) == nil && task.ID == 0 {
		task.ID = 1
	}
	return args.Error(0)
}

func (m *MockTaskRepository) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	args := m.Called(ctx, id)
	task, _ := args.Get(0).(*models.Task)
	return task, args.Error(1)
}

func (m *MockTaskRepository) FindByRoom(ctx context.Context, roomID int64) ([]models.Task, error) {
	args := m.Called(ctx, roomID)
	return args.Get(0).([]models.Task), args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, task *models.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskRepository) MemberActiveCounts(ctx context.Context, roomID int64) ([]models.MemberTaskCount, error) {
	args := m.Called(ctx, roomID)
	return args.Get(0).([]models.MemberTaskCount), args.Error(1)
}

// recordingLogger captures audit calls instead of hitting a store.
type recordingLogger struct {
	entries []models.ActionLog
}

func (l *recordingLogger) Log(ctx context.Context, userID, taskID int64, action models.ActionType, message string) {
	l.LogInRoom(ctx, userID, taskID, 0, action, message)
}

func (l *recordingLogger) LogInRoom(ctx context.Context, userID, taskID, roomID int64, action models.ActionType, message string) {
	l.entries = append(l.entries, models.ActionLog{
		UserID: userID, TaskID: taskID, RoomID: roomID, ActionType: action, Message: message,
	})
}

func newTaskServiceForTest(tasks *MockTaskRepository, rooms *MockRoomRepository) (TaskService, *recordingLogger) {
	logger := &recordingLogger{}
	return NewTaskService(tasks, rooms, nil, logger, nil), logger
}

func storedTask(updatedAt time.Time) *models.Task {
	return &models.Task{
		ID:        7,
		RoomID:    3,
		Title:     "Ship the release",
		Status:    models.StatusTodo,
		Priority:  models.PriorityMedium,
		CreatedBy: 1,
		CreatedAt: updatedAt.Add(-time.Hour),
		UpdatedAt: updatedAt,
	}
}

func TestTaskService_Create(t *testing.T) {
	tests := []struct {
		name      string
		task      models.Task
		setupMock func(*MockTaskRepository, *MockRoomRepository)
		wantErr   error
	}{
		{
			name: "defaults applied",
			task: models.Task{RoomID: 3, Title: "New card"},
			setupMock: func(tasks *MockTaskRepository, rooms *MockRoomRepository) {
				rooms.On("FindByID", mock.Anything, int64(3)).Return(&models.Room{ID: 3}, nil)
				tasks.On("Store", mock.Anything, mock.MatchedBy(func(task *models.Task) bool {
					return task.Status == models.StatusTodo &&
						task.Priority == models.PriorityMedium &&
						task.CreatedBy == 1 &&
						task.UpdatedAt.Equal(task.CreatedAt)
				})).Return(nil)
			},
		},
		{
			name:      "missing room id",
			task:      models.Task{Title: "Orphan"},
			setupMock: func(tasks *MockTaskRepository, rooms *MockRoomRepository) {},
			wantErr:   ErrRoomRequired,
		},
		{
			name: "room does not exist",
			task: models.Task{RoomID: 99, Title: "Ghost room"},
			setupMock: func(tasks *MockTaskRepository, rooms *MockRoomRepository) {
				rooms.On("FindByID", mock.Anything, int64(99)).Return(nil, nil)
			},
			wantErr: ErrRoomNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks := new(MockTaskRepository)
			rooms := new(MockRoomRepository)
			tt.setupMock(tasks, rooms)
			svc, logger := newTaskServiceForTest(tasks, rooms)

			created, err := svc.Create(context.Background(), &tt.task, 1)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, logger.entries)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.StatusTodo, created.Status)
			require.Len(t, logger.entries, 1)
			assert.Equal(t, models.ActionCreate, logger.entries[0].ActionType)
			tasks.AssertExpectations(t)
		})
	}
}

func TestTaskService_Update_ConflictGuard(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("matching guard succeeds and advances updated_at", func(t *testing.T) {
		tasks := new(MockTaskRepository)
		rooms := new(MockRoomRepository)
		current := storedTask(base)
		tasks.On("FindByID", mock.Anything, int64(7)).Return(current, nil).Once()
		tasks.On("Update", mock.Anything, mock.MatchedBy(func(task *models.Task) bool {
			return task.Status == models.StatusDone && task.UpdatedAt.After(base)
		})).Return(nil)
		after := storedTask(base.Add(time.Second))
		after.Status = models.StatusDone
		tasks.On("FindByID", mock.Anything, int64(7)).Return(after, nil).Once()

		svc, logger := newTaskServiceForTest(tasks, rooms)
		status := models.StatusDone
		expected := base
		updated, err := svc.Update(context.Background(), 7, models.TaskUpdate{Status: &status}, &expected, 2)
		require.NoError(t, err)
		assert.Equal(t, models.StatusDone, updated.Status)
		assert.True(t, updated.UpdatedAt.After(base))
		require.Len(t, logger.entries, 1)
		assert.Equal(t, models.ActionUpdate, logger.entries[0].ActionType)
		tasks.AssertExpectations(t)
	})

	t.Run("stale guard returns conflict with server copy, store untouched", func(t *testing.T) {
		tasks := new(MockTaskRepository)
		rooms := new(MockRoomRepository)
		current := storedTask(base.Add(2 * time.Second)) // another client already wrote
		tasks.On("FindByID", mock.Anything, int64(7)).Return(current, nil)

		svc, logger := newTaskServiceForTest(tasks, rooms)
		status := models.StatusDone
		stale := base
		_, err := svc.Update(context.Background(), 7, models.TaskUpdate{Status: &status}, &stale, 2)

		var conflict *TaskConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, current.UpdatedAt, conflict.Current.UpdatedAt)
		tasks.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		assert.Empty(t, logger.entries)
	})

	t.Run("no guard overwrites unconditionally", func(t *testing.T) {
		tasks := new(MockTaskRepository)
		rooms := new(MockRoomRepository)
		current := storedTask(base)
		tasks.On("FindByID", mock.Anything, int64(7)).Return(current, nil)
		tasks.On("Update", mock.Anything, mock.Anything).Return(nil)

		svc, _ := newTaskServiceForTest(tasks, rooms)
		title := "Rewritten"
		_, err := svc.Update(context.Background(), 7, models.TaskUpdate{Title: &title}, nil, 2)
		require.NoError(t, err)
		tasks.AssertCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("unknown task", func(t *testing.T) {
		tasks := new(MockTaskRepository)
		rooms := new(MockRoomRepository)
		tasks.On("FindByID", mock.Anything, int64(404)).Return(nil, nil)

		svc, _ := newTaskServiceForTest(tasks, rooms)
		_, err := svc.Update(context.Background(), 404, models.TaskUpdate{}, nil, 2)
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})
}

func TestTaskService_Delete(t *testing.T) {
	tasks := new(MockTaskRepository)
	rooms := new(MockRoomRepository)
	current := storedTask(time.Now().UTC())
	tasks.On("FindByID", mock.Anything, int64(7)).Return(current, nil)
	tasks.On("Delete", mock.Anything, int64(7)).Return(nil)

	svc, logger := newTaskServiceForTest(tasks, rooms)
	deleted, err := svc.Delete(context.Background(), 7, 4)
	require.NoError(t, err)
	assert.Equal(t, current.RoomID, deleted.RoomID)

	// the audit entry survives with the room resolved from the loaded copy
	require.Len(t, logger.entries, 1)
	assert.Equal(t, models.ActionDelete, logger.entries[0].ActionType)
	assert.Equal(t, current.RoomID, logger.entries[0].RoomID)
	assert.Equal(t, int64(7), logger.entries[0].TaskID)
}

func TestTaskService_SmartAssign(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		counts     []models.MemberTaskCount
		wantUserID int64
	}{
		{
			name: "least busy member wins",
			counts: []models.MemberTaskCount{
				{UserID: 1, Name: "alice", ActiveTasks: 3},
				{UserID: 2, Name: "bob", ActiveTasks: 1},
				{UserID: 3, Name: "carol", ActiveTasks: 2},
			},
			wantUserID: 2,
		},
		{
			name: "tie goes to the earliest joiner",
			counts: []models.MemberTaskCount{
				{UserID: 1, Name: "alice", ActiveTasks: 0},
				{UserID: 2, Name: "bob", ActiveTasks: 0},
			},
			wantUserID: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks := new(MockTaskRepository)
			rooms := new(MockRoomRepository)
			current := storedTask(base)
			tasks.On("FindByID", mock.Anything, int64(7)).Return(current, nil).Once()
			tasks.On("MemberActiveCounts", mock.Anything, int64(3)).Return(tt.counts, nil)
			tasks.On("Update", mock.Anything, mock.MatchedBy(func(task *models.Task) bool {
				return task.AssignedToID != nil &&
					*task.AssignedToID == tt.wantUserID &&
					task.UpdatedAt.After(base)
			})).Return(nil)
			after := storedTask(base.Add(time.Second))
			after.AssignedToID = &tt.wantUserID
			tasks.On("FindByID", mock.Anything, int64(7)).Return(after, nil).Once()

			svc, logger := newTaskServiceForTest(tasks, rooms)
			updated, err := svc.SmartAssign(context.Background(), 7, 9)
			require.NoError(t, err)
			require.NotNil(t, updated.AssignedToID)
			assert.Equal(t, tt.wantUserID, *updated.AssignedToID)
			require.Len(t, logger.entries, 1)
			assert.Equal(t, models.ActionSmartAssign, logger.entries[0].ActionType)
			tasks.AssertExpectations(t)
		})
	}

	t.Run("empty roster", func(t *testing.T) {
		tasks := new(MockTaskRepository)
		rooms := new(MockRoomRepository)
		tasks.On("FindByID", mock.Anything, int64(7)).Return(storedTask(base), nil)
		tasks.On("MemberActiveCounts", mock.Anything, int64(3)).Return([]models.MemberTaskCount{}, nil)

		svc, _ := newTaskServiceForTest(tasks, rooms)
		_, err := svc.SmartAssign(context.Background(), 7, 9)
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})
}

type recordingNotifier struct {
	pinged []int64
}

func (n *recordingNotifier) NotifyAssigned(ctx context.Context, userID int64, task *models.Task) {
	n.pinged = append(n.pinged, userID)
}

func TestTaskService_AssignmentNotifies(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	assignee := int64(2)

	t.Run("update handing the task over pings the new assignee", func(t *testing.T) {
		tasks := new(MockTaskRepository)
		rooms := new(MockRoomRepository)
		tasks.On("FindByID", mock.Anything, int64(7)).Return(storedTask(base), nil)
		tasks.On("Update", mock.Anything, mock.Anything).Return(nil)

		notifier := &recordingNotifier{}
		svc := NewTaskService(tasks, rooms, nil, &recordingLogger{}, notifier)
		_, err := svc.Update(context.Background(), 7, models.TaskUpdate{AssignedToID: &assignee}, nil, 1)
		require.NoError(t, err)
		assert.Equal(t, []int64{2}, notifier.pinged)
	})

	t.Run("update keeping the assignee stays quiet", func(t *testing.T) {
		tasks := new(MockTaskRepository)
		rooms := new(MockRoomRepository)
		current := storedTask(base)
		current.AssignedToID = &assignee
		tasks.On("FindByID", mock.Anything, int64(7)).Return(current, nil)
		tasks.On("Update", mock.Anything, mock.Anything).Return(nil)

		notifier := &recordingNotifier{}
		svc := NewTaskService(tasks, rooms, nil, &recordingLogger{}, notifier)
		title := "Renamed"
		_, err := svc.Update(context.Background(), 7, models.TaskUpdate{Title: &title, AssignedToID: &assignee}, nil, 1)
		require.NoError(t, err)
		assert.Empty(t, notifier.pinged)
	})

	t.Run("create with an assignee pings", func(t *testing.T) {
		tasks := new(MockTaskRepository)
		rooms := new(MockRoomRepository)
		rooms.On("FindByID", mock.Anything, int64(3)).Return(&models.Room{ID: 3}, nil)
		tasks.On("Store", mock.Anything, mock.Anything).Return(nil)

		notifier := &recordingNotifier{}
		svc := NewTaskService(tasks, rooms, nil, &recordingLogger{}, notifier)
		_, err := svc.Create(context.Background(), &models.Task{RoomID: 3, Title: "Pre-assigned", AssignedToID: &assignee}, 1)
		require.NoError(t, err)
		assert.Equal(t, []int64{2}, notifier.pinged)
	})
}

func TestStamp_StrictlyAdvances(t *testing.T) {
	prev := time.Now().UTC().Truncate(time.Millisecond).Add(time.Hour) // prev in the future
	next := stamp(prev)
	assert.True(t, next.After(prev))

	zero := stamp(time.Time{})
	assert.False(t, zero.IsZero())
	assert.Equal(t, zero, zero.Truncate(time.Millisecond))
}
