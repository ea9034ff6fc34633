package api

import (
	"io"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lost-woods/fips140/src/fips"
	"github.com/lost-woods/fips140/src/rng"
)

type Handlers struct {
	source    io.Reader
	health    *rng.Health
	reference *fips.Bits
	log       *zap.SugaredLogger
}

// NewHandlers wires the API. source and h may be nil when no entropy
// source is configured; only the reference endpoint works then.
func NewHandlers(source io.Reader, h *rng.Health, log *zap.SugaredLogger) *Handlers {
	return &Handlers{source: source, health: h, reference: fips.New(), log: log}
}

func APIKeyFromEnv() string { return os.Getenv("API_KEY") }

func CheckHeader(headerName, expectedValue string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Auth disabled if not configured
		if expectedValue == "" {
			c.Next()
			return
		}

		if c.GetHeader(headerName) != expectedValue {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}
