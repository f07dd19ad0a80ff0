package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/farmacal/roster-api/internal/service"
	appErrors "github.com/farmacal/roster-api/pkg/errors"
	"github.com/farmacal/roster-api/pkg/response"
)

// AbsenceHandler exposes time-off endpoints.
type AbsenceHandler struct {
	absences *service.AbsenceService
}

// NewAbsenceHandler constructs AbsenceHandler.
func NewAbsenceHandler(absences *service.AbsenceService) *AbsenceHandler {
	return &AbsenceHandler{absences: absences}
}

// Types returns the absence-type rulebook for pickers.
func (h *AbsenceHandler) Types(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.absences.Types())
}

// List returns absences filtered by ?employee_id= and ?year=.
func (h *AbsenceHandler) List(c *gin.Context) {
	year := 0
	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year must be numeric"))
			return
		}
		year = parsed
	}
	absences, err := h.absences.List(c.Request.Context(), c.Query("employee_id"), year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, absences)
}

// Create validates and stores an absence request.
func (h *AbsenceHandler) Create(c *gin.Context) {
	var req service.CreateAbsenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid absence payload"))
		return
	}
	absence, err := h.absences.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, absence)
}

// Delete removes a stored absence.
func (h *AbsenceHandler) Delete(c *gin.Context) {
	if err := h.absences.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
