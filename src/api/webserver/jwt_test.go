package webserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func runJWTMiddleware(t *testing.T, secret []byte, authz string) (string, int) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if authz != "" {
		c.Request.Header.Set("Authorization", authz)
	}

	JWTMiddleware(secret)(c)
	return c.GetString("addr"), w.Code
}

func TestJWTMiddleware(t *testing.T) {
	secret := []byte("test-secret")

	token, err := issueJWT("0xAlice", secret)
	require.NoError(t, err)

	// Addresses from the claim are lowercased before use as keys.
	addr, code := runJWTMiddleware(t, secret, "Bearer "+token)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "0xalice", addr)

	_, code = runJWTMiddleware(t, secret, "")
	require.Equal(t, http.StatusUnauthorized, code)

	_, code = runJWTMiddleware(t, secret, "Bearer not-a-token")
	require.Equal(t, http.StatusUnauthorized, code)

	_, code = runJWTMiddleware(t, []byte("other-secret"), "Bearer "+token)
	require.Equal(t, http.StatusUnauthorized, code)
}

func TestJWTMiddlewareRejectsMissingAddr(t *testing.T) {
	secret := []byte("test-secret")

	anon := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	token, err := anon.SignedString(secret)
	require.NoError(t, err)

	_, code := runJWTMiddleware(t, secret, "Bearer "+token)
	require.Equal(t, http.StatusUnauthorized, code)
}
