package health

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthChecker(t *testing.T) {
	t.Run("存活检查通过", func(t *testing.T) {
		hc := NewHealthChecker(nil, nil)

		w := httptest.NewRecorder()
		hc.LiveHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("就绪检查解析失败", func(t *testing.T) {
		hc := NewHealthChecker([]string{"does-not-exist.invalid"}, nil)

		w := httptest.NewRecorder()
		hc.ReadyHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready?full=1", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "upstream-dns-does-not-exist.invalid")
	})
}
