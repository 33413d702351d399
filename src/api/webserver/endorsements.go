package webserver

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/trustchain-dao/trustchain-engine/src/api/data"
	"github.com/trustchain-dao/trustchain-engine/src/engine"
)

type Endorsements struct {
	eng *engine.Engine
	rdb *redis.Client
}

func NewEndorsements(eng *engine.Engine, rdb *redis.Client) Endorsements {
	return Endorsements{eng: eng, rdb: rdb}
}

func (h Endorsements) Endorse(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.eng.Endorse(c, c.GetString("addr"), req.Address); err != nil {
		respondErr(c, err)
		return
	}
	respondData(c, http.StatusCreated, gin.H{"endorsed": req.Address})
}

func (h Endorsements) Revoke(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.eng.RevokeEndorsement(c, c.GetString("addr"), req.Address); err != nil {
		respondErr(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"revoked": req.Address})
}

func (h Endorsements) List(c *gin.Context) {
	rows, err := h.eng.UserEndorsements(c, c.Param("address"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondData(c, http.StatusOK, rows)
}

// Leaderboard pages are cached briefly in redis; responses carry an
// ETag so unchanged pages short-circuit with 304.
func (h Endorsements) Leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "25"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	cacheKey := fmt.Sprintf("%d:%d", limit, offset)
	if body := data.CachedLeaderboard(c, h.rdb, cacheKey); body != "" {
		serveETag(c, []byte(body))
		return
	}

	rows, err := h.eng.Leaderboard(c, limit, offset)
	if err != nil {
		respondErr(c, err)
		return
	}
	if body := respondDataETag(c, rows); body != nil {
		data.CacheLeaderboard(c, h.rdb, cacheKey, string(body))
	}
}
