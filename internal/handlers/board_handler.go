package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/realtime"
	"taskboard/internal/services"
)

// BoardHandler upgrades board clients to a websocket and wires them into
// the room's broadcast hub.
type BoardHandler struct {
	rooms services.RoomService
	hub   *realtime.BoardHub
}

func NewBoardHandler(rooms services.RoomService, hub *realtime.BoardHub) *BoardHandler {
	return &BoardHandler{rooms: rooms, hub: hub}
}

// Stream relays task-changed events from one client to every other client
// of the same room as task-updated. No delivery guarantee, no ordering, no
// backfill: a client that was offline catches up on its next poll.
func (h *BoardHandler) Stream(c *gin.Context) {
	userID := getUserID(c)
	roomID, ok := parseIDParam(c, "roomId")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}
	if err := h.rooms.EnsureMember(c.Request.Context(), roomID, userID); err != nil {
		status := http.StatusInternalServerError
		if err == services.ErrNotRoomMember {
			status = http.StatusForbidden
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	conn, err := realtime.Upgrade(c.Writer, c.Request)
	if err != nil {
		return
	}
	h.hub.Register(roomID, conn)
	defer h.hub.Unregister(roomID, conn)
	log.Printf("[board][stream] user=%d connected room=%d", userID, roomID)

	for {
		var incoming realtime.Event
		if err := conn.ReadJSON(&incoming); err != nil {
			break
		}
		if incoming.Event != realtime.EventTaskChanged {
			continue
		}
		h.hub.BroadcastExcept(roomID, conn, incoming.Data)
	}
	log.Printf("[board][stream] user=%d disconnected room=%d", userID, roomID)
}
