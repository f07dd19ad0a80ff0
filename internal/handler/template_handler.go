package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farmacal/roster-api/internal/service"
	appErrors "github.com/farmacal/roster-api/pkg/errors"
	"github.com/farmacal/roster-api/pkg/response"
)

// TemplateHandler exposes weekly-template and whitelist endpoints.
type TemplateHandler struct {
	templates *service.TemplateService
}

// NewTemplateHandler constructs TemplateHandler.
func NewTemplateHandler(templates *service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

type putTemplateRequest struct {
	Shifts [7]string `json:"shifts"`
}

type putAllowedShiftsRequest struct {
	Shifts []string `json:"shifts"`
}

// Catalog returns the fixed shift catalog.
func (h *TemplateHandler) Catalog(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.templates.Catalog())
}

// GetTemplate returns one employee's weekly pattern.
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	pattern, err := h.templates.GetTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pattern)
}

// PutTemplate replaces one employee's weekly pattern.
func (h *TemplateHandler) PutTemplate(c *gin.Context) {
	var req putTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid template payload"))
		return
	}
	pattern, err := h.templates.PutTemplate(c.Request.Context(), c.Param("id"), req.Shifts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pattern)
}

// GetAllowedShifts returns the whitelist for an employee.
func (h *TemplateHandler) GetAllowedShifts(c *gin.Context) {
	codes, err := h.templates.GetAllowedShifts(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, codes)
}

// PutAllowedShifts replaces the whitelist for an employee.
func (h *TemplateHandler) PutAllowedShifts(c *gin.Context) {
	var req putAllowedShiftsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid whitelist payload"))
		return
	}
	codes, err := h.templates.PutAllowedShifts(c.Request.Context(), c.Param("id"), req.Shifts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, codes)
}
