package webserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// JWTMiddleware authenticates requests against tokens minted by
// issueJWT and exposes the wallet address as the "addr" context key,
// lowercased. Tokens without an address claim are rejected.
func JWTMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		claims := &authClaims{}
		tok, err := jwt.ParseWithClaims(h[7:], claims, func(*jwt.Token) (interface{}, error) { return secret, nil })
		if err != nil || !tok.Valid || claims.Addr == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Set("addr", strings.ToLower(strings.TrimSpace(claims.Addr)))
		c.Next()
	}
}
