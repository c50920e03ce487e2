package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/elmolle/eggtrack/internal/domain/models"
	"github.com/elmolle/eggtrack/internal/service/reporting"
)

// ReportsHandler handles summary and export HTTP operations.
type ReportsHandler struct {
	svc    *reporting.Service
	logger *zap.Logger
}

// NewReportsHandler constructs the HTTP handler adapter.
func NewReportsHandler(svc *reporting.Service, logger *zap.Logger) *ReportsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportsHandler{svc: svc, logger: logger}
}

// Summary returns category totals for one shed over the last ?days=N window
// ending at ?end (default today, 7 days).
func (h *ReportsHandler) Summary(c *gin.Context) {
	endDate := c.Query("end")
	if endDate == "" {
		endDate = time.Now().UTC().Format(models.DateLayout)
	}

	days := 7
	if daysRaw := c.Query("days"); daysRaw != "" {
		parsed, err := strconv.Atoi(daysRaw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		days = parsed
	}

	summary, err := h.svc.WindowSummary(c.Request.Context(), c.Param("farmId"), c.Param("shedId"), endDate, days)
	if err != nil {
		h.logger.Error("failed building summary", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al cargar el reporte"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Export streams an XLSX of one shed's records for ?start..?end inclusive.
func (h *ReportsHandler) Export(c *gin.Context) {
	startDate := c.Query("start")
	endDate := c.Query("end")
	if startDate == "" || endDate == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start and end are required"})
		return
	}

	data, err := h.svc.ExportRangeXLSX(c.Request.Context(), c.Param("farmId"), c.Param("shedId"), startDate, endDate)
	if err != nil {
		h.logger.Error("failed building export", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al generar la exportación"})
		return
	}

	filename := fmt.Sprintf("registro_%s_%s_%s.xlsx", c.Param("shedId"), startDate, endDate)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// Sheds returns the farm's shed catalog.
func (h *ReportsHandler) Sheds(sectors int) gin.HandlerFunc {
	catalog := models.ShedCatalog(sectors)
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"sheds": catalog})
	}
}
