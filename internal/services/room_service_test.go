package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"taskboard/internal/models"
	"taskboard/internal/repositories"
)

type MockRoomRepository struct {
	mock.Mock
}

func (m *MockRoomRepository) Store(ctx context.Context, room *models.Room, ownerID int64) error {
	args := m.Called(ctx, room, ownerID)
	if args.Error(0) == nil && room.ID == 0 {
		room.ID = 1
	}
	return args.Error(0)
}

func (m *MockRoomRepository) FindByID(ctx context.Context, id int64) (*models.Room, error) {
	args := m.Called(ctx, id)
	room, _ := args.Get(0).(*models.Room)
	return room, args.Error(1)
}

func (m *MockRoomRepository) FindByCode(ctx context.Context, code string) (*models.Room, error) {
	args := m.Called(ctx, code)
	room, _ := args.Get(0).(*models.Room)
	return room, args.Error(1)
}

func (m *MockRoomRepository) AddMember(ctx context.Context, roomID, userID int64) error {
	args := m.Called(ctx, roomID, userID)
	return args.Error(0)
}

func (m *MockRoomRepository) ListMembers(ctx context.Context, roomID int64) ([]models.RoomMember, error) {
	args := m.Called(ctx, roomID)
	return args.Get(0).([]models.RoomMember), args.Error(1)
}

func (m *MockRoomRepository) IsMember(ctx context.Context, roomID, userID int64) (bool, error) {
	args := m.Called(ctx, roomID, userID)
	return args.Bool(0), args.Error(1)
}

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendWelcomeEmail(email, name string) error {
	args := m.Called(email, name)
	return args.Error(0)
}

func (m *MockEmailService) SendRoomInvite(email, roomName, code string) error {
	args := m.Called(email, roomName, code)
	return args.Error(0)
}

func TestRoomService_Create(t *testing.T) {
	t.Run("creator membership is stored with the room", func(t *testing.T) {
		rooms := new(MockRoomRepository)
		// one Store call carries room and owner, so a room can never be
		// written without its first member
		rooms.On("Store", mock.Anything, mock.MatchedBy(func(room *models.Room) bool {
			return room.Name == "Alpha" && len(room.Code) == 8 && room.CreatedBy == int64(5)
		}), int64(5)).Return(nil)

		svc := NewRoomService(rooms, nil)
		room, err := svc.Create(context.Background(), "Alpha", 5)
		require.NoError(t, err)
		assert.Len(t, room.Code, 8)
		rooms.AssertExpectations(t)
		rooms.AssertNotCalled(t, "AddMember", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("code collision triggers a fresh code", func(t *testing.T) {
		rooms := new(MockRoomRepository)
		var codes []string
		rooms.On("Store", mock.Anything, mock.Anything, mock.Anything).Return(repositories.ErrCodeTaken).Once()
		rooms.On("Store", mock.Anything, mock.MatchedBy(func(room *models.Room) bool {
			codes = append(codes, room.Code)
			return true
		}), mock.Anything).Return(nil).Once()

		svc := NewRoomService(rooms, nil)
		room, err := svc.Create(context.Background(), "Beta", 5)
		require.NoError(t, err)
		assert.Equal(t, codes[len(codes)-1], room.Code)
		rooms.AssertNumberOfCalls(t, "Store", 2)
	})
}

func TestRoomService_Join(t *testing.T) {
	t.Run("unknown code", func(t *testing.T) {
		rooms := new(MockRoomRepository)
		rooms.On("FindByCode", mock.Anything, "NOPE1234").Return(nil, nil)

		svc := NewRoomService(rooms, nil)
		_, err := svc.Join(context.Background(), "NOPE1234", 5)
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})

	t.Run("repeated join leaves the roster unchanged", func(t *testing.T) {
		rooms := new(MockRoomRepository)
		room := &models.Room{ID: 2, Name: "Alpha", Code: "K1K1K1K1"}
		rooms.On("FindByCode", mock.Anything, "K1K1K1K1").Return(room, nil)
		// AddMember is ON CONFLICT DO NOTHING underneath, so calling it
		// twice is the idempotency contract
		rooms.On("AddMember", mock.Anything, int64(2), int64(9)).Return(nil).Twice()

		svc := NewRoomService(rooms, nil)
		first, err := svc.Join(context.Background(), "K1K1K1K1", 9)
		require.NoError(t, err)
		second, err := svc.Join(context.Background(), "K1K1K1K1", 9)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		rooms.AssertExpectations(t)
	})
}

func TestRoomService_Invite(t *testing.T) {
	t.Run("member sends the code", func(t *testing.T) {
		rooms := new(MockRoomRepository)
		emails := new(MockEmailService)
		room := &models.Room{ID: 2, Name: "Alpha", Code: "K1K1K1K1"}
		rooms.On("FindByID", mock.Anything, int64(2)).Return(room, nil)
		rooms.On("IsMember", mock.Anything, int64(2), int64(5)).Return(true, nil)
		emails.On("SendRoomInvite", "friend@example.com", "Alpha", "K1K1K1K1").Return(nil)

		svc := NewRoomService(rooms, emails)
		err := svc.Invite(context.Background(), 2, "friend@example.com", 5)
		require.NoError(t, err)
		emails.AssertExpectations(t)
	})

	t.Run("non-member is rejected", func(t *testing.T) {
		rooms := new(MockRoomRepository)
		emails := new(MockEmailService)
		rooms.On("FindByID", mock.Anything, int64(2)).Return(&models.Room{ID: 2}, nil)
		rooms.On("IsMember", mock.Anything, int64(2), int64(8)).Return(false, nil)

		svc := NewRoomService(rooms, emails)
		err := svc.Invite(context.Background(), 2, "friend@example.com", 8)
		assert.ErrorIs(t, err, ErrNotRoomMember)
		emails.AssertNotCalled(t, "SendRoomInvite", mock.Anything, mock.Anything, mock.Anything)
	})
}
