package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trustchain-dao/trustchain-engine/src/engine"
)

type Profiles struct {
	eng *engine.Engine
}

func NewProfiles(eng *engine.Engine) Profiles { return Profiles{eng: eng} }

func (p Profiles) Create(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := p.eng.CreateProfile(c, c.GetString("addr"), req.Username)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondData(c, http.StatusCreated, profile)
}

func (p Profiles) Update(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := p.eng.UpdateProfile(c, c.GetString("addr"), req.Username)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondData(c, http.StatusOK, profile)
}

func (p Profiles) Get(c *gin.Context) {
	profile, err := p.eng.GetProfile(c, c.Param("address"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondData(c, http.StatusOK, profile)
}

func (p Profiles) TrustScore(c *gin.Context) {
	score, err := p.eng.CalculateScore(c, c.Param("address"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"address": c.Param("address"), "trustScore": score})
}
