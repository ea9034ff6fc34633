package rng

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/tarm/serial"
)

// ErrNoSource is returned when SERIAL_DEVICE_NAME is unset.
var ErrNoSource = errors.New("SERIAL_DEVICE_NAME is not set")

// NewSerialSourceFromEnv opens the serial TRNG described by the environment
// and runs the battery once over it.
// Env vars:
// - SERIAL_DEVICE_NAME (e.g. /dev/ttyACM0 or COM3)
// - SERIAL_BAUD_RATE
// - SERIAL_READ_TIMEOUT (milliseconds)
func NewSerialSourceFromEnv(ctx context.Context) (io.Reader, *Health, error) {
	cfg, err := serialConfigFromEnv()
	if err != nil {
		return nil, nil, err
	}

	p, err := serial.OpenPort(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", cfg.Name, err)
	}

	r := NewLockedReader(p)
	h := NewHealth()
	rep, err := CheckSource(ctx, r, h)
	if err != nil {
		return nil, h, err
	}
	if !rep.Pass {
		return nil, h, fmt.Errorf("serial RNG failed initial check: %v", rep.Failed())
	}

	return r, h, nil
}

func serialConfigFromEnv() (*serial.Config, error) {
	name := os.Getenv("SERIAL_DEVICE_NAME")
	if name == "" {
		return nil, ErrNoSource
	}

	baudStr := os.Getenv("SERIAL_BAUD_RATE")
	baud, err := strconv.Atoi(baudStr)
	if err != nil || baud <= 0 {
		return nil, fmt.Errorf("invalid SERIAL_BAUD_RATE: %q", baudStr)
	}

	timeoutStr := os.Getenv("SERIAL_READ_TIMEOUT")
	timeoutMs, err := strconv.Atoi(timeoutStr)
	if err != nil || timeoutMs < 0 {
		return nil, fmt.Errorf("invalid SERIAL_READ_TIMEOUT: %q", timeoutStr)
	}

	return &serial.Config{
		Name:        name,
		Baud:        baud,
		Size:        8,
		ReadTimeout: time.Duration(timeoutMs) * time.Millisecond,
	}, nil
}
