package rng

import (
	"io"
	"sync"
)

// LockedReader wraps an io.Reader and serializes Read calls with a mutex.
// The periodic checker and on-demand checks share one serial port.
type LockedReader struct {
	r  io.Reader
	mu sync.Mutex
}

func (lr *LockedReader) Read(p []byte) (int, error) {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	return lr.r.Read(p)
}

// NewLockedReader returns a *LockedReader that is safe for concurrent use.
// If r is already a *LockedReader, it is returned as-is.
func NewLockedReader(r io.Reader) *LockedReader {
	if r == nil {
		return nil
	}
	if lr, ok := r.(*LockedReader); ok {
		return lr
	}
	return &LockedReader{r: r}
}
