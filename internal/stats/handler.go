package stats

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"emailstats/internal/logger"
	"emailstats/pkg/errors"
)

type Handler struct {
	Service Service
	Logger  logger.Logger
}

func NewHandler(service Service, log logger.Logger) *Handler {
	return &Handler{
		Service: service,
		Logger:  log,
	}
}

func (h *Handler) RegisterRoutes(router gin.IRouter) {
	api := router.Group("/api/email")
	{
		api.GET("/stats", h.GetStats)
	}
}

// GetStats godoc
// @Summary      Get email stats
// @Description  Returns the records collected on a day. With hour, only the record written at the top of that hour.
// @Tags         stats
// @Produce      json
// @Param        day   query     string  true   "Day in YYYY-MM-DD format"
// @Param        hour  query     int     false  "Hour of day, 0 to 23"
// @Success      200   {array}   Record
// @Failure      400   {object}  errors.ErrorResponse
// @Failure      500   {object}  errors.ErrorResponse
// @Router       /api/email/stats [get]
func (h *Handler) GetStats(c *gin.Context) {
	records, err := h.Service.Query(c.Request.Context(), c.Query("day"), c.Query("hour"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	status := errors.ToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.Logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)
	} else {
		h.Logger.InfowCtx(c.Request.Context(), "Request rejected", "error", err, "path", c.Request.URL.Path)
	}

	c.JSON(status, errors.ToErrorResponse(err))
}
