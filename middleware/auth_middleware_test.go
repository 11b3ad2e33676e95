package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nimbusdrive/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	secret := "unit-test-secret"

	newContext := func(t *testing.T) *gin.Context {
		t.Helper()
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		return c
	}

	t.Run("bearer token populates the principal", func(t *testing.T) {
		token, err := utils.GenerateAccessToken("abc123", "alice@example.com", "Alice", secret, time.Hour)
		require.NoError(t, err)

		c := newContext(t)
		c.Request.Header.Set("Authorization", "Bearer "+token)

		AttachUser(nil, secret)(c)

		assert.Equal(t, "abc123", c.GetString(ContextUserID))
		assert.Equal(t, "alice@example.com", c.GetString(ContextPrincipal))
		assert.Equal(t, "Alice", c.GetString(ContextUserName))
		assert.False(t, c.IsAborted())
	})

	t.Run("garbage bearer token stays anonymous without aborting", func(t *testing.T) {
		c := newContext(t)
		c.Request.Header.Set("Authorization", "Bearer not-a-token")

		AttachUser(nil, secret)(c)

		assert.Empty(t, c.GetString(ContextPrincipal))
		assert.False(t, c.IsAborted())
	})

	t.Run("no credential stays anonymous without aborting", func(t *testing.T) {
		c := newContext(t)

		AttachUser(nil, secret)(c)

		assert.Empty(t, c.GetString(ContextPrincipal))
		assert.False(t, c.IsAborted())
	})
}
