package rng

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lost-woods/fips140/src/fips"
)

type Health struct {
	mu            sync.RWMutex
	ok            bool
	lastErr       string
	lastCheckedAt time.Time
	lastReport    *fips.Report
}

func NewHealth() *Health { return &Health{ok: false} }

func (h *Health) Set(ok bool, errMsg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ok = ok
	h.lastErr = errMsg
	h.lastCheckedAt = time.Now()
}

// Record stores a battery verdict. A failing report marks the source
// unhealthy and names the failed tests.
func (h *Health) Record(rep *fips.Report) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ok = rep.Pass
	h.lastErr = ""
	if !rep.Pass {
		h.lastErr = "failed " + strings.Join(rep.Failed(), ", ")
	}
	h.lastReport = rep
	h.lastCheckedAt = time.Now()
}

func (h *Health) Snapshot() (ok bool, errMsg string, t time.Time) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ok, h.lastErr, h.lastCheckedAt
}

// LastReport returns the most recent battery report, or nil if none ran.
func (h *Health) LastReport() *fips.Report {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastReport
}

// CheckSource samples one sequence from r and runs the battery over it.
// It cannot prove randomness, but catches disconnection, stuck output and
// gross bias.
func CheckSource(ctx context.Context, r io.Reader, h *Health) (*fips.Report, error) {
	bits, err := readSample(r)
	if err != nil {
		err = fmt.Errorf("serial RNG read failed: %w", err)
		if h != nil {
			h.Set(false, err.Error())
		}
		return nil, err
	}

	rep, err := fips.Run(ctx, bits)
	if err != nil {
		return nil, err
	}
	if h != nil {
		h.Record(rep)
	}
	return rep, nil
}

// readSample holds a LockedReader's lock across the whole sample so
// concurrent checks never interleave bytes.
func readSample(r io.Reader) (*fips.Bits, error) {
	if lr, ok := r.(*LockedReader); ok {
		lr.mu.Lock()
		defer lr.mu.Unlock()
		r = lr.r
	}
	return fips.ReadBits(r)
}

// PeriodicHealthCheck re-runs CheckSource every interval until ctx is done.
func PeriodicHealthCheck(ctx context.Context, r io.Reader, h *Health, every time.Duration, log *zap.SugaredLogger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		rep, err := CheckSource(ctx, r, h)
		if err != nil {
			if ctx.Err() == nil {
				log.Errorw("health check failed", "error", err)
			}
			continue
		}
		if !rep.Pass {
			log.Warnw("entropy source failed statistical tests", "failed", rep.Failed())
		}
	}
}
