package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/itarutakasaka-glitch/rental-crm-sub000/pkg/logger"
	"github.com/stretchr/testify/assert"
)

func TestRequireDispatchSecret(t *testing.T) {
	log := logger.NewForTesting()

	newHandler := func(secret string, called *bool) http.Handler {
		return RequireDispatchSecret(secret, log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*called = true
			w.WriteHeader(http.StatusOK)
		}))
	}

	t.Run("valid secret passes through", func(t *testing.T) {
		called := false
		handler := newHandler("s3cret", &called)

		req := httptest.NewRequest(http.MethodPost, "/internal/dispatch", nil)
		req.Header.Set(DispatchSecretHeader, "s3cret")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, called)
	})

	t.Run("wrong secret is rejected without side effects", func(t *testing.T) {
		called := false
		handler := newHandler("s3cret", &called)

		req := httptest.NewRequest(http.MethodPost, "/internal/dispatch", nil)
		req.Header.Set(DispatchSecretHeader, "wrong")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, called)
		assert.Contains(t, rec.Body.String(), "Invalid dispatch secret")
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		called := false
		handler := newHandler("s3cret", &called)

		req := httptest.NewRequest(http.MethodPost, "/internal/dispatch", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, called)
	})

	t.Run("unconfigured secret disables the endpoint", func(t *testing.T) {
		called := false
		handler := newHandler("", &called)

		req := httptest.NewRequest(http.MethodPost, "/internal/dispatch", nil)
		req.Header.Set(DispatchSecretHeader, "")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, called)
	})
}
