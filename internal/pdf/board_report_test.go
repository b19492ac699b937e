package pdf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/models"
)

func TestBoardReportGenerator_Generate(t *testing.T) {
	gen := NewBoardReportGenerator()

	out, err := gen.Generate(BoardReportData{
		Room: models.Room{ID: 1, Name: "Sprint 12", Code: "K1K1K1K1"},
		Members: []models.RoomMember{
			{UserID: 1, Name: "alice", Email: "alice@example.com"},
		},
		Tasks: []models.Task{
			{ID: 1, Title: "Write docs", Status: models.StatusTodo, Priority: models.PriorityHigh},
			{ID: 2, Title: "Ship it", Status: models.StatusDone, Priority: models.PriorityLow,
				AssignedTo: &models.UserRef{ID: 1, Name: "alice"}},
		},
		Activity: []models.ActionLog{
			{ID: 1, Message: "created Write docs", Timestamp: time.Now(),
				User: &models.UserRef{ID: 1, Name: "alice"}},
		},
		GeneratedAt: time.Now(),
	})

	require.NoError(t, err)
	assert.True(t, len(out) > 500, "expected a rendered document, got %d bytes", len(out))
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestBoardReportGenerator_EmptyBoard(t *testing.T) {
	gen := NewBoardReportGenerator()

	out, err := gen.Generate(BoardReportData{
		Room:        models.Room{ID: 1, Name: "Empty", Code: "AAAA2222"},
		GeneratedAt: time.Now(),
	})

	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(out[:4]))
}
