package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Cyndi121404/Henhacks2026/models"
	"github.com/Cyndi121404/Henhacks2026/services"
)

const listingCacheTTL = 5 * time.Second

type ListingsHandler struct {
	query  *services.QueryService
	cache  *services.CacheService
	logger *logrus.Logger
}

func NewListingsHandler(query *services.QueryService, cache *services.CacheService, logger *logrus.Logger) *ListingsHandler {
	return &ListingsHandler{query: query, cache: cache, logger: logger}
}

// GetViolations lists recent violation metadata, newest first. Image blobs
// never travel through this endpoint.
func (h *ListingsHandler) GetViolations(c *gin.Context) {
	limit := ParseLimit(c, DefaultViolationsLimit)
	cacheKey := fmt.Sprintf("crosswalk:violations:%d", limit)

	var cached []models.ViolationEvent
	if err := h.cache.Get(c.Request.Context(), cacheKey, &cached); err == nil && cached != nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	rows, err := h.query.RecentViolations(c.Request.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("violations query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	go h.cache.Set(context.Background(), cacheKey, rows, listingCacheTTL)
	c.JSON(http.StatusOK, rows)
}

// GetCrossings lists recent crossing log entries, newest first.
func (h *ListingsHandler) GetCrossings(c *gin.Context) {
	limit := ParseLimit(c, DefaultCrossingsLimit)
	cacheKey := fmt.Sprintf("crosswalk:crossings:%d", limit)

	var cached []models.CrossingEvent
	if err := h.cache.Get(c.Request.Context(), cacheKey, &cached); err == nil && cached != nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	rows, err := h.query.RecentCrossings(c.Request.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("crossings query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	go h.cache.Set(context.Background(), cacheKey, rows, listingCacheTTL)
	c.JSON(http.StatusOK, rows)
}

// GetViolationImage streams one stored violation photo as a file download.
func (h *ListingsHandler) GetViolationImage(c *gin.Context) {
	violationID := c.Param("id")

	raw, filename, err := h.query.ViolationImage(c.Request.Context(), violationID)
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("violation image lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	contentType := "image/png"
	if strings.HasSuffix(filename, ".jpg") {
		contentType = "image/jpeg"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, raw)
}
