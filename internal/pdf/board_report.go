package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"taskboard/internal/models"
)

// BoardReportData is everything a board snapshot needs.
type BoardReportData struct {
	Room        models.Room
	Members     []models.RoomMember
	Tasks       []models.Task
	Activity    []models.ActionLog
	GeneratedAt time.Time
}

// BoardReportGenerator renders a room's board as a PDF: tasks grouped by
// status column, then the recent activity trail.
type BoardReportGenerator struct{}

func NewBoardReportGenerator() *BoardReportGenerator {
	return &BoardReportGenerator{}
}

func (g *BoardReportGenerator) Generate(data BoardReportData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Board report - %s", data.Room.Name), true)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, fmt.Sprintf("Board: %s", data.Room.Name), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Join code: %s", data.Room.Code), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", data.GeneratedAt.Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Members (%d)", len(data.Members)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, m := range data.Members {
		pdf.CellFormat(0, 5, fmt.Sprintf("- %s <%s>", m.Name, m.Email), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	for _, status := range []models.TaskStatus{models.StatusTodo, models.StatusInProgress, models.StatusDone} {
		g.writeColumn(pdf, status, data.Tasks)
	}

	if len(data.Activity) > 0 {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, "Recent activity", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		for _, entry := range data.Activity {
			who := ""
			if entry.User != nil {
				who = entry.User.Name
			}
			line := fmt.Sprintf("%s  %s  %s",
				entry.Timestamp.Format("01-02 15:04"), who, entry.Message)
			pdf.CellFormat(0, 5, line, "", 1, "L", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render board report: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *BoardReportGenerator) writeColumn(pdf *gofpdf.Fpdf, status models.TaskStatus, tasks []models.Task) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, string(status), "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)

	count := 0
	for _, t := range tasks {
		if t.Status != status {
			continue
		}
		count++
		assignee := "unassigned"
		if t.AssignedTo != nil {
			assignee = t.AssignedTo.Name
		}
		pdf.CellFormat(0, 6, fmt.Sprintf("[%s] %s - %s", t.Priority, t.Title, assignee), "", 1, "L", false, 0, "")
	}
	if count == 0 {
		pdf.CellFormat(0, 6, "(empty)", "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
}
