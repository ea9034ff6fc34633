package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lost-woods/fips140/src/fips"
)

type responder struct{ c *gin.Context }

func (r responder) wantsJSON() bool {
	accept := strings.ToLower(r.c.GetHeader("Accept"))
	return strings.Contains(accept, "application/json")
}

func (r responder) err(status int, msg string) {
	if r.wantsJSON() {
		r.c.JSON(status, gin.H{"error": msg})
		return
	}
	r.c.String(status, msg)
}

func (r responder) ok(text string, payload gin.H) {
	if r.wantsJSON() {
		r.c.JSON(http.StatusOK, payload)
		return
	}
	r.c.String(http.StatusOK, text)
}

func (r responder) report(status int, sequence string, rep *fips.Report) {
	if r.wantsJSON() {
		r.c.JSON(status, gin.H{"sequence": sequence, "report": rep})
		return
	}
	r.c.String(status, sequence+"\n"+rep.String())
}
