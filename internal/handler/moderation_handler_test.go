package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestParseLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{name: "missing falls back to default", query: "", want: 50},
		{name: "valid value passes through", query: "?limit=80", want: 80},
		{name: "max is accepted", query: "?limit=100", want: 100},
		{name: "above max falls back to default", query: "?limit=150", want: 50},
		{name: "zero falls back to default", query: "?limit=0", want: 50},
		{name: "negative falls back to default", query: "?limit=-5", want: 50},
		{name: "garbage falls back to default", query: "?limit=abc", want: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/moderation/queue"+tt.query, nil)
			assert.Equal(t, tt.want, parseLimit(c, 50, maxQueueLimit))
		})
	}
}
