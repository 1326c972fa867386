package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRemindersReuseRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := MustNewReminders(reg)
	second := MustNewReminders(reg)

	first.ReminderSent("urgent")
	second.ReminderSent("urgent")
	second.ReminderSent("7days")

	assert.Equal(t, 2.0, testutil.ToFloat64(first.sent.WithLabelValues("urgent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(first.sent.WithLabelValues("7days")))
}

func TestRemindersCounters(t *testing.T) {
	m := MustNewReminders(prometheus.NewRegistry())

	m.ReminderFailed()
	m.VoucherSkipped()
	m.VoucherSkipped()
	m.SweepFinished("ok", 2*time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.skipped))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sweeps.WithLabelValues("ok")))
}

func TestNilRemindersIsNoop(t *testing.T) {
	var m *Reminders
	assert.NotPanics(t, func() {
		m.ReminderSent("urgent")
		m.ReminderFailed()
		m.VoucherSkipped()
		m.SweepFinished("error", time.Second)
	})
}
