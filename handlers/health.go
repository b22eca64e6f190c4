package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const healthRoundTripSQL = `SELECT CURRENT_USER(), CURRENT_ACCOUNT(), TO_CHAR(CURRENT_TIMESTAMP(), 'YYYY-MM-DD HH24:MI:SS')`

// warehouseSource is the slice of warehouse.Provider the health check needs.
type warehouseSource interface {
	Acquire(ctx context.Context) (*sql.DB, error)
}

type HealthHandler struct {
	wh     warehouseSource
	logger *logrus.Logger
}

func NewHealthHandler(wh warehouseSource, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{wh: wh, logger: logger}
}

// Check performs a trivial round-trip query so the dashboard can tell a dead
// warehouse from a dead gateway.
func (h *HealthHandler) Check(c *gin.Context) {
	db, err := h.wh.Acquire(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "status": fmt.Sprintf("warehouse error: %v", err)})
		return
	}

	var user, account, now string
	if err := db.QueryRowContext(c.Request.Context(), healthRoundTripSQL).Scan(&user, &account, &now); err != nil {
		h.logger.WithError(err).Error("health round-trip failed")
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "status": fmt.Sprintf("warehouse error: %v", err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"status":  "warehouse connected",
		"user":    user,
		"account": account,
		"time":    now,
	})
}
