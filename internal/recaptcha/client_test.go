package recaptcha

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supportdesk/backend/internal/domain"
)

func TestClient_Verify(t *testing.T) {
	t.Run("验证通过", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "server-secret", r.URL.Query().Get("secret"))
			assert.Equal(t, "challenge-token", r.URL.Query().Get("response"))
			assert.Equal(t, "203.0.113.9", r.URL.Query().Get("remoteip"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"success":true,"challenge_ts":"2026-10-14T08:00:00Z","hostname":"shop.test"}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, "server-secret", time.Second)
		result, err := client.Verify(context.Background(), "challenge-token", "203.0.113.9")

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "shop.test", result.Hostname)
		assert.Equal(t, 2026, result.ChallengeTS.Year())
	})

	t.Run("服务商拒绝", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, "server-secret", time.Second)
		result, err := client.Verify(context.Background(), "bad-token", "")

		var verr *domain.VerificationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, []string{"invalid-input-response"}, verr.Codes)
		require.NotNil(t, result)
		assert.False(t, result.Success)
	})

	t.Run("响应格式错误", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>oops</html>`))
		}))
		defer server.Close()

		client := NewClient(server.URL, "server-secret", time.Second)
		_, err := client.Verify(context.Background(), "token", "")

		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("非 2xx 状态", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := NewClient(server.URL, "server-secret", time.Second)
		_, err := client.Verify(context.Background(), "token", "")

		var verr *domain.VerificationError
		assert.True(t, errors.As(err, &verr))
	})

	t.Run("服务不可达", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		client := NewClient(url, "server-secret", time.Second)
		_, err := client.Verify(context.Background(), "token", "")

		var verr *domain.VerificationError
		require.True(t, errors.As(err, &verr))
		assert.NotContains(t, err.Error(), "server-secret")
	})

	t.Run("超时", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer server.Close()

		client := NewClient(server.URL, "server-secret", 50*time.Millisecond)
		_, err := client.Verify(context.Background(), "token", "")

		var verr *domain.VerificationError
		assert.True(t, errors.As(err, &verr))
	})

	t.Run("空令牌不发起请求", func(t *testing.T) {
		called := make(chan struct{}, 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called <- struct{}{}
		}))
		defer server.Close()

		client := NewClient(server.URL, "server-secret", time.Second)
		_, err := client.Verify(context.Background(), "  ", "")

		assert.ErrorIs(t, err, ErrEmptyToken)
		assert.Empty(t, called)
	})
}
