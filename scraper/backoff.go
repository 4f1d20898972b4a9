package scraper

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// BackoffPolicy decides how long to wait before retry number attempt
// (1 for the wait after the first failure).
type BackoffPolicy interface {
	Delay(base time.Duration, attempt int) time.Duration
}

// Constant waits base between every attempt.
type Constant struct{}

func (Constant) Delay(base time.Duration, _ int) time.Duration { return base }

// maxDelay caps every computed delay so large attempt counts cannot overflow
// time.Duration.
const maxDelay = time.Duration(math.MaxInt64)

// Linear waits base, 2*base, 3*base, ...
type Linear struct{}

func (Linear) Delay(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if base <= 0 {
		return 0
	}
	if time.Duration(attempt) > maxDelay/base {
		return maxDelay
	}
	return base * time.Duration(attempt)
}

// Exponential waits base, 2*base, 4*base, ... capped at Max when Max > 0.
type Exponential struct {
	Max time.Duration
}

func (e Exponential) Delay(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if base <= 0 {
		return 0
	}
	d := base
	for i := 1; i < attempt; i++ {
		if d > maxDelay/2 {
			d = maxDelay
			break
		}
		d *= 2
		if e.Max > 0 && d >= e.Max {
			return e.Max
		}
	}
	if e.Max > 0 && d > e.Max {
		return e.Max
	}
	return d
}

// ParseBackoff maps a configuration name to a policy.
func ParseBackoff(name string) (BackoffPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "constant", "fixed":
		return Constant{}, nil
	case "linear":
		return Linear{}, nil
	case "exponential", "exp":
		return Exponential{Max: time.Minute}, nil
	default:
		return nil, fmt.Errorf("unknown backoff policy %q", name)
	}
}
