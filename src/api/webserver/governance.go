package webserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/trustchain-dao/trustchain-engine/src/engine"
)

type Governance struct {
	eng       *engine.Engine
	sanitizer *bluemonday.Policy
}

func NewGovernance(eng *engine.Engine) Governance {
	// Strict sanitizer with just enough markdown-ish structure for
	// proposal descriptions.
	sanitizer := bluemonday.StrictPolicy()
	sanitizer.AllowElements("p", "br", "strong", "em", "code", "pre", "blockquote")
	sanitizer.AllowElements("ul", "ol", "li")
	sanitizer.AllowAttrs("href").OnElements("a")
	sanitizer.RequireParseableURLs(true)
	sanitizer.RequireNoFollowOnLinks(true)

	return Governance{eng: eng, sanitizer: sanitizer}
}

func proposalID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad proposal id"})
		return 0, false
	}
	return id, true
}

func (g Governance) Create(c *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required,max=255"`
		Description string `json:"description" binding:"max=10000"`
		Category    string `json:"category" binding:"max=32"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	title := g.sanitizer.Sanitize(req.Title)
	description := g.sanitizer.Sanitize(req.Description)

	proposal, err := g.eng.CreateProposal(c, c.GetString("addr"), title, description, req.Category)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondData(c, http.StatusCreated, proposal)
}

func (g Governance) Vote(c *gin.Context) {
	id, ok := proposalID(c)
	if !ok {
		return
	}

	var req struct {
		Support *bool  `json:"support" binding:"required"`
		Reason  string `json:"reason" binding:"max=512"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vote, err := g.eng.Vote(c, id, c.GetString("addr"), *req.Support, g.sanitizer.Sanitize(req.Reason))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondData(c, http.StatusCreated, vote)
}

func (g Governance) Execute(c *gin.Context) {
	id, ok := proposalID(c)
	if !ok {
		return
	}

	proposal, err := g.eng.ExecuteProposal(c, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondData(c, http.StatusOK, proposal)
}

func (g Governance) Cancel(c *gin.Context) {
	id, ok := proposalID(c)
	if !ok {
		return
	}

	proposal, err := g.eng.CancelProposal(c, c.GetString("addr"), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondData(c, http.StatusOK, proposal)
}

func (g Governance) Get(c *gin.Context) {
	id, ok := proposalID(c)
	if !ok {
		return
	}

	proposal, err := g.eng.GetProposal(c, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondData(c, http.StatusOK, proposal)
}

func (g Governance) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "25"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	rows, err := g.eng.ListProposals(c, limit, offset)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondData(c, http.StatusOK, rows)
}

func (g Governance) Votes(c *gin.Context) {
	id, ok := proposalID(c)
	if !ok {
		return
	}

	rows, err := g.eng.ListVotes(c, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondData(c, http.StatusOK, rows)
}
