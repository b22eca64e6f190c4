package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHealthRouter(t *testing.T, wh warehouseSource) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/api/health", NewHealthHandler(wh, discardLogger()).Check)
	return router
}

func TestHealthCheck(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectQuery("CURRENT_USER").
		WillReturnRows(sqlmock.NewRows([]string{"user", "account", "time"}).
			AddRow("CROSSWALK_SVC", "IPMGUFF-RM98977", "2026-02-14 12:30:45"))

	router := setupHealthRouter(t, stubWarehouse{db: db})
	w := getPath(router, "/api/health")

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		OK      bool   `json:"ok"`
		Status  string `json:"status"`
		User    string `json:"user"`
		Account string `json:"account"`
		Time    string `json:"time"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "warehouse connected", resp.Status)
	assert.Equal(t, "CROSSWALK_SVC", resp.User)
	assert.Equal(t, "IPMGUFF-RM98977", resp.Account)
	assert.Equal(t, "2026-02-14 12:30:45", resp.Time)
}

func TestHealthCheckConnectionFailure(t *testing.T) {
	router := setupHealthRouter(t, stubWarehouse{err: errors.New("no reachable account")})
	w := getPath(router, "/api/health")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var resp struct {
		OK     bool   `json:"ok"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.OK)
	assert.Contains(t, resp.Status, "warehouse error")
}

func TestHealthCheckQueryFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectQuery("CURRENT_USER").WillReturnError(errors.New("session expired"))

	router := setupHealthRouter(t, stubWarehouse{db: db})
	w := getPath(router, "/api/health")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var resp struct {
		OK     bool   `json:"ok"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.OK)
	assert.Contains(t, resp.Status, "warehouse error")
}
