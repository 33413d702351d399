package webserver

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/trustchain-dao/trustchain-engine/src/engine"
)

type Events struct {
	eng *engine.Engine
}

func NewEvents(eng *engine.Engine) Events { return Events{eng: eng} }

func (e Events) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	rows, err := e.eng.ListEvents(c, limit)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondDataETag(c, rows)
}
