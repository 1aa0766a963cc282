package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type windowQuery struct {
	Start  string `form:"start" binding:"omitempty,dateonly"`
	End    string `form:"end" binding:"omitempty,dateonly"`
	Status string `form:"status" binding:"omitempty,oneof=FULL PARTIAL NONE"`
}

func newValidationRouter() *gin.Engine {
	SetupValidator()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/window", func(c *gin.Context) {
		var q windowQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(q))
	})
	return router
}

func TestValidation_DateOnly(t *testing.T) {
	router := newValidationRouter()

	tests := []struct {
		name   string
		query  string
		status int
		fields []string
	}{
		{"no window", "", http.StatusOK, nil},
		{"date window", "?start=2025-04-01&end=2025-06-30", http.StatusOK, nil},
		{"timestamp rejected", "?start=2025-04-01T10:00:00Z", http.StatusBadRequest, []string{"start"}},
		{"garbage in both bounds", "?start=yesterday&end=31/12/2025", http.StatusBadRequest, []string{"start", "end"}},
		{"bad status", "?status=DONE", http.StatusBadRequest, []string{"status"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/window"+tt.query, nil))
			require.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.status == http.StatusOK {
				return
			}

			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
			assert.Equal(t, w.Header().Get(RequestIDHeader), resp.Error.RequestID)

			var fields []string
			for _, d := range resp.Error.Details {
				fields = append(fields, d.Field)
			}
			assert.ElementsMatch(t, tt.fields, fields)
		})
	}
}

func TestValidation_Messages(t *testing.T) {
	router := newValidationRouter()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/window?end=soon&status=X", nil))

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	messages := map[string]string{}
	for _, d := range resp.Error.Details {
		messages[d.Field] = d.Message
	}
	assert.Equal(t, "Must be a date in YYYY-MM-DD format", messages["end"])
	assert.Equal(t, "Must be one of: FULL PARTIAL NONE", messages["status"])
}

func TestFormatValidationErrors_NonValidatorError(t *testing.T) {
	resp := FormatValidationErrors(assert.AnError, "req-1")
	require.NotNil(t, resp.Error)
	assert.Empty(t, resp.Error.Details)
	assert.Equal(t, "req-1", resp.Error.RequestID)
}
