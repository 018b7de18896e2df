package scraper

import (
	"math"
	"math/rand"
	"time"
)

// RateController derives crawl pacing from observed response behavior.
// Slow responses stretch the pause, and throttling or server errors stretch
// it much further.
type RateController struct {
	rng       *rand.Rand
	politeMin time.Duration
	politeMax time.Duration
}

func NewRateController(politeMin, politeMax time.Duration) *RateController {
	return &RateController{
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		politeMin: politeMin,
		politeMax: politeMax,
	}
}

// Delay returns the pause to take after a listing page load. The base scales
// with the observed load time, capped at three seconds, and the status code
// picks the penalty tier: 429 backs off hardest, 5xx hard, anything else
// gets a small jitter on top of the base.
func (rc *RateController) Delay(observed time.Duration, status int) time.Duration {
	base := math.Min(observed.Seconds()*1.5, 3.0)

	var seconds float64
	switch {
	case status >= 500:
		seconds = base*3 + rc.uniform(5, 10)
	case status >= 429:
		seconds = base*5 + rc.uniform(10, 15)
	default:
		seconds = base + rc.uniform(0, base*0.5)
	}
	return time.Duration(seconds * float64(time.Second))
}

// PoliteDelay returns the pause to take between item fetches.
func (rc *RateController) PoliteDelay() time.Duration {
	if rc.politeMax <= rc.politeMin {
		return rc.politeMin
	}
	spread := float64(rc.politeMax - rc.politeMin)
	return rc.politeMin + time.Duration(rc.rng.Float64()*spread)
}

func (rc *RateController) uniform(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + rc.rng.Float64()*(hi-lo)
}
