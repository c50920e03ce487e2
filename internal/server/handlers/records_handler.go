package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/elmolle/eggtrack/internal/domain/models"
	"github.com/elmolle/eggtrack/internal/service/records"
)

// RecordsHandler handles daily egg record HTTP operations.
type RecordsHandler struct {
	svc    *records.Service
	logger *zap.Logger
}

// NewRecordsHandler constructs the HTTP handler adapter.
func NewRecordsHandler(svc *records.Service, logger *zap.Logger) *RecordsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordsHandler{svc: svc, logger: logger}
}

// currentUser pulls the session user resolved by the auth middleware.
func currentUser(c *gin.Context) *models.User {
	value, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}

// GetDay returns the record for one shed and date, 404 when absent.
func (h *RecordsHandler) GetDay(c *gin.Context) {
	record, err := h.svc.GetDay(c.Request.Context(), currentUser(c), c.Param("farmId"), c.Param("shedId"), c.Param("date"))
	if err != nil {
		h.respondError(c, err, "failed to load record")
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return
	}

	c.JSON(http.StatusOK, record)
}

// StartDay returns the day's record, creating a zeroed one when absent.
func (h *RecordsHandler) StartDay(c *gin.Context) {
	record, err := h.svc.StartDay(c.Request.Context(), currentUser(c), c.Param("farmId"), c.Param("shedId"), c.Param("date"))
	if err != nil {
		h.respondError(c, err, "failed to start record")
		return
	}

	c.JSON(http.StatusOK, record)
}

type saveCountsRequest struct {
	Counts models.EggCounts `json:"counts"`
	Notes  string           `json:"notes"`
}

// SaveCounts performs the absolute write for one shed and date.
func (h *RecordsHandler) SaveCounts(c *gin.Context) {
	var req saveCountsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid counts payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := h.svc.SaveCounts(c.Request.Context(), currentUser(c), c.Param("farmId"), c.Param("shedId"), c.Param("date"), req.Counts, req.Notes)
	if err != nil {
		h.respondError(c, err, "failed to save counts")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Registro guardado correctamente."})
}

type incrementRequest struct {
	Key   models.EggKey `json:"key" binding:"required"`
	Delta int           `json:"delta"`
}

// Increment applies a delta to one category and returns the new value.
func (h *RecordsHandler) Increment(c *gin.Context) {
	var req incrementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid increment payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	value, err := h.svc.Increment(c.Request.Context(), currentUser(c), c.Param("farmId"), c.Param("shedId"), c.Param("date"), req.Key, req.Delta)
	if err != nil {
		h.respondError(c, err, "failed to increment")
		return
	}

	c.JSON(http.StatusOK, gin.H{"key": req.Key, "value": value})
}

// List returns a shed's records either for an explicit start/end range or
// for the last ?days=N window ending at ?end (today's records last).
func (h *RecordsHandler) List(c *gin.Context) {
	user := currentUser(c)
	farmID := c.Param("farmId")
	shedID := c.Param("shedId")
	descending := c.Query("order") == "desc"

	var (
		result []models.EggRecord
		err    error
	)

	if daysRaw := c.Query("days"); daysRaw != "" {
		days, convErr := strconv.Atoi(daysRaw)
		if convErr != nil || days < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		result, err = h.svc.ListLastDays(c.Request.Context(), user, farmID, shedID, c.Query("end"), days)
		if err == nil && descending {
			reverse(result)
		}
	} else {
		result, err = h.svc.ListRange(c.Request.Context(), user, farmID, shedID, c.Query("start"), c.Query("end"), descending)
	}

	if err != nil {
		h.respondError(c, err, "failed to list records")
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": result})
}

func reverse(records []models.EggRecord) {
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
}

func (h *RecordsHandler) respondError(c *gin.Context, err error, logMessage string) {
	switch {
	case errors.Is(err, records.ErrDayLocked):
		c.JSON(http.StatusConflict, gin.H{"error": "Ya existe un registro para este galpón en este día. No puedes modificarlo."})
	case errors.Is(err, records.ErrShedNotAllowed):
		c.JSON(http.StatusForbidden, gin.H{"error": "No tienes acceso a este galpón."})
	case errors.Is(err, records.ErrUnknownCategory), errors.Is(err, records.ErrInvalidDate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error(logMessage, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ocurrió un error. Intenta nuevamente."})
	}
}
