package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultViolationsLimit = 50
	DefaultCrossingsLimit  = 100
	// MaxLimit caps caller-supplied limits so a single request cannot drag
	// the whole append-only log back over the wire.
	MaxLimit = 500
)

func ParseLimit(c *gin.Context, fallback int) int {
	limit := fallback
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return limit
}
