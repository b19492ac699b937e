package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskboard/internal/pdf"
	"taskboard/internal/services"
)

type RoomHandler struct {
	rooms  services.RoomService
	tasks  services.TaskService
	report *pdf.BoardReportGenerator
}

func NewRoomHandler(rooms services.RoomService, tasks services.TaskService, report *pdf.BoardReportGenerator) *RoomHandler {
	return &RoomHandler{rooms: rooms, tasks: tasks, report: report}
}

// @Summary      Create a room
// @Tags         Rooms
// @Accept       json
// @Produce      json
// @Param        body  body      object  true  "Room name"
// @Success      200   {object}  map[string]interface{}
// @Router       /rooms/create [post]
// @Security     BearerAuth
func (h *RoomHandler) Create(c *gin.Context) {
	userID := getUserID(c)

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.rooms.Create(c.Request.Context(), req.Name, userID)
	if err != nil {
		log.Printf("[room][create][err] user=%d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create room"})
		return
	}
	log.Printf("[room][create][ok] id=%d code=%s by=%d", room.ID, room.Code, userID)
	c.JSON(http.StatusOK, gin.H{"room_id": room.ID, "code": room.Code})
}

// @Summary      Join a room by code
// @Tags         Rooms
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /rooms/join [post]
// @Security     BearerAuth
func (h *RoomHandler) Join(c *gin.Context) {
	userID := getUserID(c)

	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.rooms.Join(c.Request.Context(), req.Code, userID)
	if err != nil {
		if err == services.ErrRoomNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
			return
		}
		log.Printf("[room][join][err] code=%q user=%d: %v", req.Code, userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to join room"})
		return
	}
	log.Printf("[room][join][ok] room=%d user=%d", room.ID, userID)
	c.JSON(http.StatusOK, gin.H{"room_id": room.ID, "name": room.Name})
}

// @Summary      Room info with member roster
// @Tags         Rooms
// @Produce      json
// @Param        id   path      int  true  "Room ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /rooms/{id} [get]
// @Security     BearerAuth
func (h *RoomHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	room, members, err := h.rooms.Get(c.Request.Context(), id)
	if err != nil {
		if err == services.ErrRoomNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
			return
		}
		log.Printf("[room][get][err] id=%d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get room info"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"name":    room.Name,
		"code":    room.Code,
		"members": members,
	})
}

// @Summary      Email a join code
// @Tags         Rooms
// @Accept       json
// @Param        id  path  int  true  "Room ID"
// @Success      202
// @Router       /rooms/{id}/invite [post]
// @Security     BearerAuth
func (h *RoomHandler) Invite(c *gin.Context) {
	userID := getUserID(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.rooms.Invite(c.Request.Context(), id, req.Email, userID)
	switch {
	case err == services.ErrRoomNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
	case err == services.ErrNotRoomMember:
		c.JSON(http.StatusForbidden, gin.H{"error": "not a room member"})
	case err != nil:
		log.Printf("[room][invite][err] room=%d to=%q: %v", id, req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send invite"})
	default:
		log.Printf("[room][invite][ok] room=%d to=%q by=%d", id, req.Email, userID)
		c.JSON(http.StatusAccepted, gin.H{"message": "invite sent"})
	}
}

// @Summary      Export the board as PDF
// @Tags         Rooms
// @Produce      application/pdf
// @Param        id  path  int  true  "Room ID"
// @Success      200
// @Router       /rooms/{id}/report [get]
// @Security     BearerAuth
func (h *RoomHandler) ExportReport(c *gin.Context) {
	userID := getUserID(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.rooms.EnsureMember(c.Request.Context(), id, userID); err != nil {
		if err == services.ErrNotRoomMember {
			c.JSON(http.StatusForbidden, gin.H{"error": "not a room member"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check membership"})
		return
	}

	room, members, err := h.rooms.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get room"})
		return
	}
	tasks, err := h.tasks.ListByRoom(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tasks"})
		return
	}
	logs, err := h.tasks.RecentLogs(c.Request.Context(), id, 20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list activity"})
		return
	}

	out, err := h.report.Generate(pdf.BoardReportData{
		Room:        *room,
		Members:     members,
		Tasks:       tasks,
		Activity:    logs,
		GeneratedAt: time.Now(),
	})
	if err != nil {
		log.Printf("[room][report][err] room=%d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render report"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="board_report.pdf"`)
	c.Data(http.StatusOK, "application/pdf", out)
}
