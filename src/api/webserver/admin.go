package webserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/trustchain-dao/trustchain-engine/src/api/types"
	"github.com/trustchain-dao/trustchain-engine/src/engine"
	"gorm.io/gorm"
)

type Admin struct {
	eng *engine.Engine
	log *zap.Logger
}

func NewAdmin(eng *engine.Engine, log *zap.Logger) Admin {
	return Admin{eng: eng, log: log}
}

// OperatorMiddleware rejects callers not present in the operators
// table. The engine re-checks the principal on every privileged
// operation; this just keeps noise off the admin routes.
func OperatorMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var op types.Operator
		if err := db.First(&op, "address = ?", c.GetString("addr")).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "operator access required"})
			return
		}
		c.Next()
	}
}

func (a Admin) Verify(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a.log.Info("operator verifying profile",
		zap.String("operator", c.GetString("addr")), zap.String("address", req.Address))

	if err := a.eng.VerifyProfile(c, c.GetString("addr"), req.Address); err != nil {
		respondErr(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"verified": req.Address})
}

func (a Admin) Metrics(c *gin.Context) {
	var req struct {
		Address    string  `json:"address" binding:"required"`
		Trading    *uint32 `json:"trading" binding:"required"`
		Governance *uint32 `json:"governance" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	score, err := a.eng.UpdateMetrics(c, c.GetString("addr"), req.Address, *req.Trading, *req.Governance)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"address": req.Address, "trustScore": score})
}

func (a Admin) TradingMetrics(c *gin.Context) {
	a.syncMetric(c, a.eng.SyncTradingMetrics)
}

func (a Admin) GovernanceMetrics(c *gin.Context) {
	a.syncMetric(c, a.eng.SyncGovernanceMetrics)
}

func (a Admin) syncMetric(c *gin.Context, sync func(ctx context.Context, operator, address string, value uint32) (uint32, error)) {
	var req struct {
		Address string  `json:"address" binding:"required"`
		Value   *uint32 `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	score, err := sync(c, c.GetString("addr"), req.Address, *req.Value)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"address": req.Address, "trustScore": score})
}
