package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lost-woods/fips140/src/fips"
	"github.com/lost-woods/fips140/src/rng"
)

// Reference runs the battery over the fixed-seed generator. A failure here
// means the build is broken, not the hardware.
func (h *Handlers) Reference(c *gin.Context) {
	rep, err := fips.Run(c.Request.Context(), h.reference)
	if err != nil {
		h.log.Errorw("reference battery", "error", err)
		responder{c}.err(http.StatusInternalServerError, "Error running tests.")
		return
	}

	status := http.StatusOK
	if !rep.Pass {
		h.log.Errorw("reference sequence failed statistical tests", "failed", rep.Failed())
		status = http.StatusInternalServerError
	}
	responder{c}.report(status, "reference", rep)
}

// Source samples the entropy source on demand and records the verdict.
func (h *Handlers) Source(c *gin.Context) {
	if h.source == nil {
		responder{c}.err(http.StatusServiceUnavailable, "No entropy source configured.")
		return
	}

	rep, err := rng.CheckSource(c.Request.Context(), h.source, h.health)
	if err != nil {
		h.log.Error(err)
		responder{c}.err(http.StatusInternalServerError, "Error sampling entropy source.")
		return
	}

	status := http.StatusOK
	if !rep.Pass {
		status = http.StatusServiceUnavailable
	}
	responder{c}.report(status, "source", rep)
}

func (h *Handlers) Health(c *gin.Context) {
	if h.health == nil {
		responder{c}.err(http.StatusServiceUnavailable, "UNHEALTHY: missing health monitor")
		return
	}

	ok, msg, t := h.health.Snapshot()
	if ok {
		responder{c}.ok(
			fmt.Sprintf("OK (last checked %s)", t.Format(time.RFC3339)),
			gin.H{"ok": true, "last_checked": t.Format(time.RFC3339)},
		)
		return
	}

	responder{c}.err(http.StatusServiceUnavailable,
		fmt.Sprintf("UNHEALTHY: %s (last checked %s)", msg, t.Format(time.RFC3339)))
}
