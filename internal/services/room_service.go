package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"taskboard/internal/models"
	"taskboard/internal/repositories"
)

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrNotRoomMember = errors.New("not a room member")
)

const (
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength   = 8
	codeRetries  = 5
)

type RoomService interface {
	Create(ctx context.Context, name string, actingUser int64) (*models.Room, error)
	Join(ctx context.Context, code string, actingUser int64) (*models.Room, error)
	Get(ctx context.Context, roomID int64) (*models.Room, []models.RoomMember, error)
	EnsureMember(ctx context.Context, roomID, userID int64) error
	Invite(ctx context.Context, roomID int64, email string, actingUser int64) error
}

type roomService struct {
	rooms  repositories.RoomRepository
	emails EmailService
}

// NewRoomService creates a new instance of RoomService. The email service
// may be nil; invitations are then rejected.
func NewRoomService(rooms repositories.RoomRepository, emails EmailService) RoomService {
	return &roomService{rooms: rooms, emails: emails}
}

func (s *roomService) Create(ctx context.Context, name string, actingUser int64) (*models.Room, error) {
	room := &models.Room{
		Name:      name,
		CreatedBy: actingUser,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	// Unique index on rooms.code backs the collision check; on the
	// unlikely clash we roll a fresh code. Store also writes the creator's
	// membership, so a room never exists without its first member.
	for attempt := 0; attempt < codeRetries; attempt++ {
		code, err := gonanoid.Generate(codeAlphabet, codeLength)
		if err != nil {
			return nil, err
		}
		room.Code = code

		err = s.rooms.Store(ctx, room, actingUser)
		if err == nil {
			break
		}
		if err == repositories.ErrCodeTaken {
			log.Printf("[room][create] code collision %q, retrying", code)
			continue
		}
		return nil, err
	}
	if room.ID == 0 {
		return nil, fmt.Errorf("could not allocate a unique room code")
	}
	return room, nil
}

func (s *roomService) Join(ctx context.Context, code string, actingUser int64) (*models.Room, error) {
	room, err := s.rooms.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}
	if err := s.rooms.AddMember(ctx, room.ID, actingUser); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *roomService) Get(ctx context.Context, roomID int64) (*models.Room, []models.RoomMember, error) {
	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}
	if room == nil {
		return nil, nil, ErrRoomNotFound
	}
	members, err := s.rooms.ListMembers(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}
	return room, members, nil
}

func (s *roomService) EnsureMember(ctx context.Context, roomID, userID int64) error {
	ok, err := s.rooms.IsMember(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotRoomMember
	}
	return nil
}

func (s *roomService) Invite(ctx context.Context, roomID int64, email string, actingUser int64) error {
	if s.emails == nil {
		return fmt.Errorf("email delivery is not configured")
	}
	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return err
	}
	if room == nil {
		return ErrRoomNotFound
	}
	if err := s.EnsureMember(ctx, roomID, actingUser); err != nil {
		return err
	}
	return s.emails.SendRoomInvite(email, room.Name, room.Code)
}
