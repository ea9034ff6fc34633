package main

import (
	"context"
	"errors"
	"os"

	"go.uber.org/zap"

	"github.com/lost-woods/fips140/src/fips"
	"github.com/lost-woods/fips140/src/rng"
	"github.com/lost-woods/fips140/src/server"
)

func main() {
	zapLogger, _ := zap.NewProduction()
	defer zapLogger.Sync() //nolint:errcheck
	log := zapLogger.Sugar()

	ctx := context.Background()

	// Self-test: the reference sequence must always pass.
	rep, err := fips.Run(ctx, fips.New())
	if err != nil {
		log.Fatal(err)
	}
	if !rep.Pass {
		log.Fatalw("reference sequence failed statistical tests", "failed", rep.Failed())
	}
	log.Infow("reference sequence passed", "poker_p_value", rep.PokerPValue)

	source, health, err := rng.NewSerialSourceFromEnv(ctx)
	switch {
	case errors.Is(err, rng.ErrNoSource):
		log.Info("no serial source configured, serving reference checks only")
	case err != nil:
		log.Fatal(err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "777"
	}

	server.New(ctx, port, source, health, log).RunOrDie()
}
