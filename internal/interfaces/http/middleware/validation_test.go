package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type paymentBody struct {
	Amount decimal.Decimal `json:"amount" binding:"required,gt=0"`
	PaidBy string          `json:"paid_by" binding:"required,min=1"`
}

func newValidationEngine(t *testing.T) (*gin.Engine, *error) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	SetupValidator()

	var bindErr error
	engine := gin.New()
	engine.POST("/payments", func(c *gin.Context) {
		var body paymentBody
		if err := c.ShouldBindJSON(&body); err != nil {
			bindErr = err
			c.String(http.StatusBadRequest, FormatValidationError(err))
			return
		}
		c.Status(http.StatusOK)
	})
	return engine, &bindErr
}

func TestSetupValidator_DecimalFields(t *testing.T) {
	t.Run("accepts a positive decimal amount", func(t *testing.T) {
		engine, _ := newValidationEngine(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/payments",
			strings.NewReader(`{"amount": "1500.50", "paid_by": "daw khin"}`))
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects a zero amount", func(t *testing.T) {
		engine, _ := newValidationEngine(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/payments",
			strings.NewReader(`{"amount": "0", "paid_by": "daw khin"}`))
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "amount")
	})

	t.Run("rejects a negative amount", func(t *testing.T) {
		engine, _ := newValidationEngine(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/payments",
			strings.NewReader(`{"amount": "-25", "paid_by": "daw khin"}`))
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("reports JSON field names in messages", func(t *testing.T) {
		engine, bindErr := newValidationEngine(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/payments",
			strings.NewReader(`{"amount": "10"}`))
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		msg := FormatValidationError(*bindErr)
		assert.Contains(t, msg, "paid_by")
		assert.Contains(t, msg, "required")
		assert.NotContains(t, msg, "PaidBy")
	})
}

func TestFormatValidationError_PassThrough(t *testing.T) {
	err := errors.New("unexpected EOF")
	assert.Equal(t, "unexpected EOF", FormatValidationError(err))
}
