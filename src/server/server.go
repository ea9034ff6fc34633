package server

import (
	"context"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lost-woods/fips140/src/api"
	"github.com/lost-woods/fips140/src/rng"
)

const defaultCheckInterval = 10_000 * time.Millisecond

type Server struct {
	port   string
	router *gin.Engine
}

// New builds the router. When source is non-nil the battery is re-run over
// it in the background until ctx is done.
func New(ctx context.Context, port string, source io.Reader, h *rng.Health, log *zap.SugaredLogger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	if source != nil && h != nil {
		go rng.PeriodicHealthCheck(ctx, source, h, CheckIntervalFromEnv(), log)
	}

	router.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET"},
		AllowHeaders:     []string{"X-API-KEY", "Accept"},
		AllowAllOrigins:  true,
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(api.CheckHeader("X-API-KEY", api.APIKeyFromEnv()))

	handlers := api.NewHandlers(source, h, log)
	router.GET("/reference", handlers.Reference)
	router.GET("/source", handlers.Source)
	router.GET("/health", handlers.Health)

	return &Server{port: port, router: router}
}

// CheckIntervalFromEnv reads FIPS_CHECK_INTERVAL in milliseconds, falling
// back to 10s when unset or invalid.
func CheckIntervalFromEnv() time.Duration {
	if msStr := os.Getenv("FIPS_CHECK_INTERVAL"); msStr != "" {
		if ms, err := strconv.Atoi(msStr); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultCheckInterval
}

func (s *Server) Handler() *gin.Engine { return s.router }

func (s *Server) RunOrDie() {
	if err := s.router.Run(":" + s.port); err != nil {
		panic(err)
	}
}
