package models

import "time"

// Room is a named collaboration space joined via a short code.
type Room struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// RoomMember is one entry of a room's roster. JoinedAt doubles as the
// smart-assign tie-break order.
type RoomMember struct {
	UserID   int64     `json:"user_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	JoinedAt time.Time `json:"joined_at"`
}
