package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"taskboard/internal/models"
	"taskboard/internal/realtime"
	"taskboard/internal/services"
)

type TaskHandler struct {
	service services.TaskService
	hub     *realtime.BoardHub
}

func NewTaskHandler(service services.TaskService, hub *realtime.BoardHub) *TaskHandler {
	return &TaskHandler{service: service, hub: hub}
}

// @Summary      List tasks of a room
// @Tags         Tasks
// @Produce      json
// @Param        roomId  path      int  true  "Room ID"
// @Success      200     {array}   models.Task
// @Router       /tasks/room/{roomId} [get]
// @Security     BearerAuth
func (h *TaskHandler) ListByRoom(c *gin.Context) {
	roomID, ok := parseIDParam(c, "roomId")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	tasks, err := h.service.ListByRoom(c.Request.Context(), roomID)
	if err != nil {
		log.Printf("[task][list][err] room=%d: %v", roomID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve tasks"})
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// @Summary      Create a task
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Success      201  {object}  models.Task
// @Failure      400  {object}  map[string]string
// @Router       /tasks [post]
// @Security     BearerAuth
func (h *TaskHandler) Create(c *gin.Context) {
	userID := getUserID(c)

	var req struct {
		Title        string              `json:"title" binding:"required"`
		Description  string              `json:"description"`
		Priority     models.TaskPriority `json:"priority"`
		AssignedToID *int64              `json:"assigned_to_id"`
		RoomID       int64               `json:"room_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[task][create][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Priority != "" && !models.IsValidPriority(req.Priority) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid priority"})
		return
	}

	task := &models.Task{
		RoomID:       req.RoomID,
		Title:        req.Title,
		Description:  req.Description,
		Priority:     req.Priority,
		AssignedToID: req.AssignedToID,
	}
	created, err := h.service.Create(c.Request.Context(), task, userID)
	if err != nil {
		switch {
		case err == services.ErrRoomRequired:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case err == services.ErrRoomNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		default:
			log.Printf("[task][create][err] %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create task"})
		}
		return
	}
	log.Printf("[task][create][ok] id=%d room=%d by=%d", created.ID, created.RoomID, userID)
	c.JSON(http.StatusCreated, created)

	h.publish(created.RoomID, created)
}

// @Summary      Update a task with an optimistic-concurrency guard
// @Description  When updated_at is supplied and no longer matches the stored
// @Description  value, the update is rejected with 409 and the current server
// @Description  copy of the task.
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        id  path      int  true  "Task ID"
// @Success      200  {object}  models.Task
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]interface{}
// @Router       /tasks/{id} [put]
// @Security     BearerAuth
func (h *TaskHandler) Update(c *gin.Context) {
	userID := getUserID(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req struct {
		models.TaskUpdate
		UpdatedAt *string `json:"updated_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[task][update][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var expected *time.Time
	if req.UpdatedAt != nil && *req.UpdatedAt != "" {
		t, err := time.Parse(time.RFC3339Nano, *req.UpdatedAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid updated_at (RFC3339)"})
			return
		}
		expected = &t
	}

	updated, err := h.service.Update(c.Request.Context(), id, req.TaskUpdate, expected, userID)
	if err != nil {
		var conflict *services.TaskConflictError
		switch {
		case errors.As(err, &conflict):
			log.Printf("[task][update][conflict] id=%d", id)
			c.JSON(http.StatusConflict, gin.H{
				"error":                  conflict.Error(),
				"current_server_version": conflict.Current,
			})
		case err == services.ErrTaskNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		case errors.Is(err, services.ErrInvalidStatus), errors.Is(err, services.ErrInvalidPriority):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Printf("[task][update][err] id=%d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update task"})
		}
		return
	}
	log.Printf("[task][update][ok] id=%d by=%d", id, userID)
	c.JSON(http.StatusOK, updated)

	h.publish(updated.RoomID, updated)
}

// @Summary      Delete a task
// @Tags         Tasks
// @Produce      json
// @Param        id  path  int  true  "Task ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id} [delete]
// @Security     BearerAuth
func (h *TaskHandler) Delete(c *gin.Context) {
	userID := getUserID(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	deleted, err := h.service.Delete(c.Request.Context(), id, userID)
	if err != nil {
		if err == services.ErrTaskNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		log.Printf("[task][delete][err] id=%d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete task"})
		return
	}
	log.Printf("[task][delete][ok] id=%d by=%d", id, userID)
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})

	h.publish(deleted.RoomID, gin.H{"task_id": id, "deleted": true})
}

// @Summary      Assign the task to the least busy room member
// @Tags         Tasks
// @Produce      json
// @Param        id  path      int  true  "Task ID"
// @Success      200  {object}  models.Task
// @Failure      404  {object}  map[string]string
// @Router       /tasks/smart-assign/{id} [put]
// @Security     BearerAuth
func (h *TaskHandler) SmartAssign(c *gin.Context) {
	userID := getUserID(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	updated, err := h.service.SmartAssign(c.Request.Context(), id, userID)
	if err != nil {
		switch {
		case err == services.ErrTaskNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		case err == services.ErrRoomNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		default:
			log.Printf("[task][smart-assign][err] id=%d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Smart assign failed"})
		}
		return
	}
	log.Printf("[task][smart-assign][ok] id=%d assignee=%v by=%d", id, updated.AssignedToID, userID)
	c.JSON(http.StatusOK, updated)

	h.publish(updated.RoomID, updated)
}

// @Summary      Recent activity log
// @Tags         Tasks
// @Produce      json
// @Param        room_id  query     int  false  "Limit to one room"
// @Success      200      {array}   models.ActionLog
// @Router       /tasks/logs/recent [get]
// @Security     BearerAuth
func (h *TaskHandler) RecentLogs(c *gin.Context) {
	var roomID int64
	if v, ok := c.GetQuery("room_id"); ok {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room_id"})
			return
		}
		roomID = id
	}

	logs, err := h.service.RecentLogs(c.Request.Context(), roomID, 20)
	if err != nil {
		log.Printf("[task][logs][err] room=%d: %v", roomID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve logs"})
		return
	}
	c.JSON(http.StatusOK, logs)
}

// publish fans the change out to every board client of the room.
func (h *TaskHandler) publish(roomID int64, data interface{}) {
	if h.hub == nil {
		return
	}
	h.hub.BroadcastExcept(roomID, nil, data)
}
