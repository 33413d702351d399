package webserver

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/trustchain-dao/trustchain-engine/src/api/config"
	"github.com/trustchain-dao/trustchain-engine/src/engine"
	"gorm.io/gorm"
)

func attachRoutes(r *gin.Engine, cfg config.Config, db *gorm.DB, rdb *redis.Client, eng *engine.Engine, log *zap.Logger) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "If-None-Match"},
		ExposeHeaders:    []string{"Content-Length", "ETag"},
		AllowCredentials: true,
	}))

	authH := NewAuth(rdb, []byte(cfg.JWTSecret), log)
	profileH := NewProfiles(eng)
	endorseH := NewEndorsements(eng, rdb)
	govH := NewGovernance(eng)
	rewardH := NewRewards(eng)
	eventH := NewEvents(eng)
	adminH := NewAdmin(eng, log)

	limiter := NewRateLimiter(30, time.Minute)

	v1 := r.Group("/v1")
	{
		v1.POST("/auth/challenge", authH.Challenge)
		v1.POST("/auth/verify", authH.Verify)

		v1.GET("/profile/:address", profileH.Get)
		v1.GET("/trust-score/:address", profileH.TrustScore)
		v1.GET("/leaderboard", endorseH.Leaderboard)
		v1.GET("/endorsements/:address", endorseH.List)
		v1.GET("/proposals", govH.List)
		v1.GET("/proposals/:id", govH.Get)
		v1.GET("/proposals/:id/votes", govH.Votes)
		v1.GET("/events", eventH.List)

		secured := v1.Group("")
		secured.Use(JWTMiddleware([]byte(cfg.JWTSecret)), limiter.Middleware())
		{
			secured.POST("/profiles", profileH.Create)
			secured.PUT("/profiles", profileH.Update)
			secured.POST("/endorse", endorseH.Endorse)
			secured.POST("/revoke", endorseH.Revoke)
			secured.POST("/proposals", govH.Create)
			secured.POST("/proposals/:id/votes", govH.Vote)
			secured.POST("/proposals/:id/execute", govH.Execute)
			secured.POST("/proposals/:id/cancel", govH.Cancel)
			secured.GET("/rewards/pending", rewardH.Pending)
			secured.POST("/rewards/claim", rewardH.Claim)
		}

		admin := v1.Group("/admin")
		admin.Use(JWTMiddleware([]byte(cfg.JWTSecret)), OperatorMiddleware(db))
		{
			admin.POST("/verify", adminH.Verify)
			admin.POST("/metrics", adminH.Metrics)
			admin.POST("/metrics/trading", adminH.TradingMetrics)
			admin.POST("/metrics/governance", adminH.GovernanceMetrics)
		}
	}
}
