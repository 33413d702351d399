package webserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/trustchain-dao/trustchain-engine/src/api/data"
)

// Auth implements the wallet challenge/verify flow. The engine itself
// never sees signatures; it trusts the address this layer puts in the
// JWT claims.
type Auth struct {
	rdb       *redis.Client
	jwtSecret []byte
	log       *zap.Logger
}

func NewAuth(rdb *redis.Client, secret []byte, log *zap.Logger) Auth {
	return Auth{rdb: rdb, jwtSecret: secret, log: log}
}

func (a Auth) Challenge(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required"`
		Method  string `json:"method"  binding:"required,oneof=walletconnect extension"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	addr := strings.ToLower(strings.TrimSpace(req.Address))

	nonce := uuid.NewString()
	if err := data.SetNonce(c, a.rdb, addr, nonce); err != nil {
		a.log.Error("nonce store failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"nonce": nonce}})
}

func (a Auth) Verify(c *gin.Context) {
	var req struct {
		Address   string `json:"address"   binding:"required"`
		Method    string `json:"method"    binding:"required,oneof=walletconnect extension"`
		Signature string `json:"signature" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	addr := strings.ToLower(strings.TrimSpace(req.Address))

	nonce, err := data.GetAndDelNonce(c, a.rdb, addr)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "challenge expired"})
		return
	}

	if err := verifySignature(req.Address, req.Signature, nonce); err != nil {
		a.log.Warn("signature rejected", zap.String("address", addr), zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "bad signature"})
		return
	}

	token, err := issueJWT(addr, a.jwtSecret)
	if err != nil {
		a.log.Error("jwt issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"token": token}})
}
