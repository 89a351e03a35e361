package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DayHandler struct {
	days    DayService
	summary SummaryService
	loc     *time.Location
	logger  *zap.Logger
}

func NewDayHandler(days DayService, summary SummaryService, loc *time.Location, logger *zap.Logger) *DayHandler {
	return &DayHandler{days: days, summary: summary, loc: loc, logger: logger}
}

// GetDay GET /day?date=
func (h *DayHandler) GetDay(c *gin.Context) {
	date, ok := optionalDate(c, "date", h.loc)
	if !ok {
		return
	}
	if date == nil {
		badRequest(c, "date required")
		return
	}

	detail, err := h.days.Detail(c.Request.Context(), *date)
	if err != nil {
		respondError(c, h.logger, "GetDay", err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// GetSummary GET /summary?from=&to=
func (h *DayHandler) GetSummary(c *gin.Context) {
	from, ok := optionalDate(c, "from", h.loc)
	if !ok {
		return
	}
	to, ok := optionalDate(c, "to", h.loc)
	if !ok {
		return
	}

	rows, err := h.summary.Summary(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, h.logger, "GetSummary", err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
