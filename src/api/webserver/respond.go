package webserver

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/OneOfOne/xxhash"
	"github.com/gin-gonic/gin"
	"github.com/trustchain-dao/trustchain-engine/src/engine"
)

// Success responses wrap the payload as {"data": ...}; failures as
// {"error": ...} with the engine kind mapped onto an HTTP status.
func respondData(c *gin.Context, code int, v interface{}) {
	c.JSON(code, gin.H{"data": v})
}

func respondErr(c *gin.Context, err error) {
	kind := engine.KindOf(err)
	msg := err.Error()

	var code int
	switch kind {
	case engine.InvalidInput:
		code = http.StatusBadRequest
	case engine.Unauthorized:
		code = http.StatusForbidden
	case engine.NotFound:
		code = http.StatusNotFound
	case engine.Conflict, engine.Exhausted:
		code = http.StatusConflict
	case engine.PreconditionFailed:
		code = http.StatusPreconditionFailed
	default:
		code = http.StatusInternalServerError
		msg = "internal error"
	}
	c.JSON(code, gin.H{"error": msg, "kind": kind.String()})
}

// respondDataETag serves {"data": ...} with an xxhash ETag and honours
// If-None-Match. Returns the marshalled body for callers that cache it.
func respondDataETag(c *gin.Context, v interface{}) []byte {
	body, err := json.Marshal(gin.H{"data": v})
	if err != nil {
		respondErr(c, err)
		return nil
	}
	serveETag(c, body)
	return body
}

func serveETag(c *gin.Context, body []byte) {
	etag := fmt.Sprintf(`"%x"`, xxhash.Checksum64(body))
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}
	c.Header("ETag", etag)
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}
