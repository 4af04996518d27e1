package timing

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultWatchdogPeriod is the reload deadline used when none is configured.
const DefaultWatchdogPeriod = 2 * time.Second

// Watchdog is the interface that wraps the system watchdog. Once started it
// cannot be stopped; missing a Reload within the period resets the system.
type Watchdog interface {
	Start() error
	Reload()
}

// SoftWatchdog is a host Watchdog that calls expire when a period passes
// without Reload.
type SoftWatchdog struct {
	mu     sync.Mutex
	period time.Duration
	expire func()
	timer  *time.Timer
}

func NewSoftWatchdog(period time.Duration, expire func()) *SoftWatchdog {
	if period <= 0 {
		period = DefaultWatchdogPeriod
	}
	return &SoftWatchdog{period: period, expire: expire}
}

func (w *SoftWatchdog) Period() time.Duration { return w.period }

func (w *SoftWatchdog) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		return nil
	}
	w.timer = time.AfterFunc(w.period, w.fire)
	return nil
}

func (w *SoftWatchdog) Reload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Reset(w.period)
	}
}

func (w *SoftWatchdog) fire() {
	log.Error().Dur("period", w.period).Msg("watchdog expired")
	if w.expire != nil {
		w.expire()
	}
}
