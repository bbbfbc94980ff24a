package usecase

import (
	"context"
	"math/rand/v2"
	"time"
)

// Random is the source of the probability draws and jitter
type Random interface {
	Float64() float64
}

type globalRandom struct{}

func (globalRandom) Float64() float64 { return rand.Float64() }

// DefaultRandom returns the process-wide random source
func DefaultRandom() Random {
	return globalRandom{}
}

// Uniform draws a value in [lo, hi]
func Uniform(r Random, lo, hi float64) float64 {
	return lo + (hi-lo)*r.Float64()
}

// Sleeper suspends the caller for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the real Sleeper
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
