package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/farmacal/roster-api/internal/service"
	"github.com/farmacal/roster-api/pkg/dates"
	appErrors "github.com/farmacal/roster-api/pkg/errors"
	"github.com/farmacal/roster-api/pkg/export"
	"github.com/farmacal/roster-api/pkg/response"
)

// RosterHandler exposes the resolved week board and its edits.
type RosterHandler struct {
	roster *service.RosterService
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
}

// NewRosterHandler constructs RosterHandler.
func NewRosterHandler(roster *service.RosterService) *RosterHandler {
	return &RosterHandler{
		roster: roster,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
	}
}

// anchorDate reads the optional ?start= query, defaulting to today. Any
// date inside a week selects that week.
func anchorDate(c *gin.Context) (time.Time, error) {
	raw := c.Query("start")
	if raw == "" {
		return time.Now().UTC(), nil
	}
	day, err := dates.ParseDay(raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid start %q, expected YYYY-MM-DD", raw))
	}
	return day, nil
}

// Week returns the resolved board for the week containing ?date=.
func (h *RosterHandler) Week(c *gin.Context) {
	anchor, err := anchorDate(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	board, err := h.roster.GetWeekBoard(c.Request.Context(), anchor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, board)
}

// SaveWeek stores one employee's explicit week vector.
func (h *RosterHandler) SaveWeek(c *gin.Context) {
	var req service.SaveWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid week payload"))
		return
	}
	if err := h.roster.SaveWeek(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Coverage returns the tracked-shift coverage for the selected week.
func (h *RosterHandler) Coverage(c *gin.Context) {
	anchor, err := anchorDate(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	report, err := h.roster.Coverage(c.Request.Context(), anchor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}

// Export renders the week board as CSV or PDF.
func (h *RosterHandler) Export(c *gin.Context) {
	anchor, err := anchorDate(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "pdf" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return
	}
	dataset, err := h.roster.WeekDataset(c.Request.Context(), anchor)
	if err != nil {
		response.Error(c, err)
		return
	}

	weekStart := dates.WeekStart(anchor).Format(dates.DayFormat)
	switch format {
	case "csv":
		payload, err := h.csv.Render(dataset)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=semana-%s.csv", weekStart))
		c.Data(http.StatusOK, "text/csv", payload)
	case "pdf":
		payload, err := h.pdf.Render(dataset, fmt.Sprintf("Turnos semana %s", weekStart))
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=semana-%s.pdf", weekStart))
		c.Data(http.StatusOK, "application/pdf", payload)
	}
}
