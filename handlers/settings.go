package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Cyndi121404/Henhacks2026/services"
)

type SettingsHandler struct {
	store  *services.SettingsStore
	logger *logrus.Logger
}

func NewSettingsHandler(store *services.SettingsStore, logger *logrus.Logger) *SettingsHandler {
	return &SettingsHandler{store: store, logger: logger}
}

func (h *SettingsHandler) Get(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "missing key"})
		return
	}

	settings, err := h.store.Get(c.Request.Context(), key)
	if err != nil {
		h.logger.WithError(err).Error("settings read failed")
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "settings": settings})
}

type putSettingsRequest struct {
	Key      string          `json:"key"`
	Settings json.RawMessage `json:"settings"`
}

func (h *SettingsHandler) Put(c *gin.Context) {
	var req putSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}
	if req.Key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "missing key"})
		return
	}

	if err := h.store.Put(c.Request.Context(), req.Key, req.Settings); err != nil {
		h.logger.WithError(err).Error("settings write failed")
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
