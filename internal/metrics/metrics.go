package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Reminders exposes Prometheus collectors for reminder sweeps. A nil
// *Reminders is valid and records nothing.
type Reminders struct {
	sent          *prometheus.CounterVec
	failures      prometheus.Counter
	skipped       prometheus.Counter
	sweepDuration prometheus.Histogram
	sweeps        *prometheus.CounterVec
}

var (
	defaultOnce sync.Once
	defaultSet  *Reminders
)

// Default returns the collectors registered with the global registry.
func Default() *Reminders {
	defaultOnce.Do(func() {
		defaultSet = MustNewReminders(prometheus.DefaultRegisterer)
	})
	return defaultSet
}

// MustNewReminders registers the collectors with reg, reusing collectors that
// are already registered under the same names. Other registration errors panic.
func MustNewReminders(reg prometheus.Registerer) *Reminders {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Reminders{
		sent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voucher_reminders_sent_total",
			Help: "Reminder mails handed off to the dispatch queue, by tier.",
		}, []string{"tier"}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "voucher_reminder_failures_total",
			Help: "Vouchers whose reminder could not be resolved, dispatched or recorded.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "voucher_reminder_skipped_total",
			Help: "Candidate vouchers dropped as malformed or out of window.",
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "voucher_reminder_sweep_duration_seconds",
			Help:    "Wall time of one reminder sweep.",
			Buckets: prometheus.DefBuckets,
		}),
		sweeps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voucher_reminder_sweeps_total",
			Help: "Completed reminder sweeps, by result.",
		}, []string{"result"}),
	}

	m.sent = register(reg, m.sent)
	m.failures = register(reg, m.failures)
	m.skipped = register(reg, m.skipped)
	m.sweepDuration = register(reg, m.sweepDuration)
	m.sweeps = register(reg, m.sweeps)

	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *Reminders) ReminderSent(tier string) {
	if m == nil {
		return
	}
	m.sent.WithLabelValues(tier).Inc()
}

func (m *Reminders) ReminderFailed() {
	if m == nil {
		return
	}
	m.failures.Inc()
}

func (m *Reminders) VoucherSkipped() {
	if m == nil {
		return
	}
	m.skipped.Inc()
}

// SweepFinished records one sweep; result is "ok", "partial" or "error".
func (m *Reminders) SweepFinished(result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.sweeps.WithLabelValues(result).Inc()
	m.sweepDuration.Observe(duration.Seconds())
}
