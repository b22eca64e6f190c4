package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Cyndi121404/Henhacks2026/models"
	"github.com/Cyndi121404/Henhacks2026/services"
)

type EventsHandler struct {
	writer *services.EventWriter
	logger *logrus.Logger
}

func NewEventsHandler(writer *services.EventWriter, logger *logrus.Logger) *EventsHandler {
	return &EventsHandler{writer: writer, logger: logger}
}

type writeRequest struct {
	Table  string          `json:"table"`
	Record json.RawMessage `json:"record"`
}

// Write is the single endpoint the browser client posts every event to.
// It dispatches on the table name and answers with the generated id.
func (h *EventsHandler) Write(c *gin.Context) {
	var req writeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	table := strings.ToUpper(req.Table)
	switch table {
	case models.CrossingEvent{}.TableName():
		var ev models.CrossingEvent
		if len(req.Record) > 0 {
			if err := json.Unmarshal(req.Record, &ev); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid record: " + err.Error()})
				return
			}
		}
		eventID, err := h.writer.WriteCrossing(c.Request.Context(), ev)
		if err != nil {
			h.logger.WithError(err).Error("crossing write failed")
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "event_id": eventID})

	case models.ViolationEvent{}.TableName():
		var ev models.ViolationEvent
		if len(req.Record) > 0 {
			if err := json.Unmarshal(req.Record, &ev); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid record: " + err.Error()})
				return
			}
		}
		violationID, err := h.writer.WriteViolation(c.Request.Context(), ev)
		if err != nil {
			h.logger.WithError(err).Error("violation write failed")
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "violation_id": violationID})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": fmt.Sprintf("unknown table: %s", table)})
	}
}
