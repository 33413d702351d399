package webserver

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/trustchain-dao/trustchain-engine/src/api/config"
	"github.com/trustchain-dao/trustchain-engine/src/engine"
	"gorm.io/gorm"
)

func New(cfg config.Config, db *gorm.DB, rdb *redis.Client, eng *engine.Engine, log *zap.Logger) *gin.Engine {
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery())
	attachRoutes(g, cfg, db, rdb, eng, log)
	return g
}
