package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trustchain-dao/trustchain-engine/src/engine"
)

type Rewards struct {
	eng *engine.Engine
}

func NewRewards(eng *engine.Engine) Rewards { return Rewards{eng: eng} }

func (r Rewards) Pending(c *gin.Context) {
	amount, err := r.eng.PendingRewards(c, c.GetString("addr"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"pending": amount})
}

func (r Rewards) Claim(c *gin.Context) {
	amount, err := r.eng.ClaimRewards(c, c.GetString("addr"))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"claimed": amount})
}
