package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func limitForQuery(query string, fallback int) int {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/violations"+query, nil)
	return ParseLimit(c, fallback)
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		fallback int
		want     int
	}{
		{"absent uses fallback", "", DefaultViolationsLimit, DefaultViolationsLimit},
		{"explicit value", "?limit=5", DefaultViolationsLimit, 5},
		{"over cap is clamped", "?limit=100000", DefaultViolationsLimit, MaxLimit},
		{"zero ignored", "?limit=0", DefaultCrossingsLimit, DefaultCrossingsLimit},
		{"negative ignored", "?limit=-3", DefaultCrossingsLimit, DefaultCrossingsLimit},
		{"garbage ignored", "?limit=lots", DefaultViolationsLimit, DefaultViolationsLimit},
		{"cap exactly", "?limit=500", DefaultViolationsLimit, MaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, limitForQuery(tt.query, tt.fallback))
		})
	}
}
