package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ystepanoff/lbmwm1110/transport"
)

// Radio counts bus activity. It implements transport.Observer.
type Radio struct {
	exchanges  *prometheus.CounterVec
	bytes      *prometheus.CounterVec
	wakePulses prometheus.Counter
	sleeps     prometheus.Counter
	resets     prometheus.Counter
}

var _ transport.Observer = (*Radio)(nil)

// NewRadio creates the radio collectors and registers them with reg.
func NewRadio(reg prometheus.Registerer) (*Radio, error) {
	m := &Radio{
		exchanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lbmwm1110",
				Subsystem: "radio",
				Name:      "exchanges_total",
				Help:      "SPI exchanges with the LR1110 by framing step.",
			},
			[]string{"kind"},
		),
		bytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lbmwm1110",
				Subsystem: "radio",
				Name:      "bytes_total",
				Help:      "Bytes clocked on the SPI bus by framing step.",
			},
			[]string{"kind"},
		),
		wakePulses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lbmwm1110",
			Subsystem: "radio",
			Name:      "wake_pulses_total",
			Help:      "Select pulses sent to wake a sleeping LR1110.",
		}),
		sleeps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lbmwm1110",
			Subsystem: "radio",
			Name:      "sleeps_total",
			Help:      "Transitions of the LR1110 into sleep.",
		}),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lbmwm1110",
			Subsystem: "radio",
			Name:      "resets_total",
			Help:      "Completed hard resets of the LR1110.",
		}),
	}

	for _, c := range []prometheus.Collector{m.exchanges, m.bytes, m.wakePulses, m.sleeps, m.resets} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Radio) ExchangeDone(kind transport.ExchangeKind, n int) {
	m.exchanges.WithLabelValues(string(kind)).Inc()
	m.bytes.WithLabelValues(string(kind)).Add(float64(n))
}

func (m *Radio) WakePulse()    { m.wakePulses.Inc() }
func (m *Radio) EnteredSleep() { m.sleeps.Inc() }
func (m *Radio) ResetDone()    { m.resets.Inc() }
