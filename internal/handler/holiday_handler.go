package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/farmacal/roster-api/internal/service"
	appErrors "github.com/farmacal/roster-api/pkg/errors"
	"github.com/farmacal/roster-api/pkg/jobs"
	"github.com/farmacal/roster-api/pkg/response"
)

// HolidayHandler exposes the holiday cache and its sync trigger.
type HolidayHandler struct {
	holidays *service.HolidayService
	queue    *jobs.Queue
}

// NewHolidayHandler constructs HolidayHandler. queue may be nil, in which
// case sync requests run inline.
func NewHolidayHandler(holidays *service.HolidayService, queue *jobs.Queue) *HolidayHandler {
	return &HolidayHandler{holidays: holidays, queue: queue}
}

func yearParam(c *gin.Context) (int, error) {
	raw := c.Query("year")
	if raw == "" {
		return time.Now().UTC().Year(), nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 2000 || year > 2200 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "year must be a four-digit number")
	}
	return year, nil
}

// List returns the cached holidays of one year that apply to the pharmacy's
// region.
func (h *HolidayHandler) List(c *gin.Context) {
	year, err := yearParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	holidays, err := h.holidays.ListYear(c.Request.Context(), year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, holidays, map[string]interface{}{"year": year})
}

// Sync refreshes the cache for one year from the remote source. With a queue
// available the work happens in the background and 202 is returned.
func (h *HolidayHandler) Sync(c *gin.Context) {
	year, err := yearParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if h.queue != nil {
		if err := h.queue.Enqueue(jobs.Job{Type: "holiday_sync", Payload: year}); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue holiday sync"))
			return
		}
		response.JSON(c, http.StatusAccepted, gin.H{"year": year, "status": "QUEUED"})
		return
	}

	if err := h.holidays.SyncYear(c.Request.Context(), year); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusBadGateway, "holiday sync failed"))
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"year": year, "status": "OK"})
}
