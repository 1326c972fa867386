package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ds124wfegd/voucher-reminder/internal/entity"
	"github.com/ds124wfegd/voucher-reminder/internal/service"

	"github.com/sirupsen/logrus"
)

const notifyTimeout = 10 * time.Second

// Notifier posts a plain-text ops message, e.g. the Telegram bot.
type Notifier interface {
	SendMessage(ctx context.Context, chatID, text string) error
}

type ReminderWorker struct {
	reminderService service.ReminderService
	notifier        Notifier
	chatID          string

	mu          sync.Mutex
	runs        int
	lastRun     time.Time
	lastSummary *entity.SweepSummary
	lastErr     error
}

// NewReminderWorker builds the worker run on every scheduler tick. notifier may be nil.
func NewReminderWorker(reminderService service.ReminderService, notifier Notifier, chatID string) *ReminderWorker {
	return &ReminderWorker{
		reminderService: reminderService,
		notifier:        notifier,
		chatID:          chatID,
	}
}

// Run performs one reminder sweep and reports its outcome.
func (w *ReminderWorker) Run(ctx context.Context) {
	logrus.Info("Reminder worker tick")

	summary, err := w.reminderService.RunSweep(ctx)

	w.mu.Lock()
	w.runs++
	w.lastRun = time.Now()
	w.lastSummary = summary
	w.lastErr = err
	w.mu.Unlock()

	if err != nil {
		logrus.Errorf("Reminder sweep failed: %v", err)
		w.notify(ctx, fmt.Sprintf("❌ Rappels bons cadeaux : échec du balayage (%v)", err))
		return
	}

	if summary.Failed > 0 {
		logrus.Warnf("%d voucher reminders failed during sweep", summary.Failed)
	}
	if summary.Interrupted() {
		logrus.Warnf("Reminder sweep interrupted, %d vouchers left for the next run", summary.Cancelled)
	}

	w.notify(ctx, formatSummary(summary))
}

func (w *ReminderWorker) notify(ctx context.Context, text string) {
	if w.notifier == nil || w.chatID == "" {
		return
	}

	// detached: an interrupted sweep is still reported
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	if err := w.notifier.SendMessage(ctx, w.chatID, text); err != nil {
		logrus.WithError(err).Warn("Failed to send sweep summary to Telegram")
	}
}

func formatSummary(s *entity.SweepSummary) string {
	text := fmt.Sprintf(
		"✅ Rappels bons cadeaux envoyés\n- 7 jours : %d\n- 3 jours : %d\n- Urgent (≤1 jour) : %d\nTrouvés : %d, ignorés : %d, échecs : %d",
		s.SevenDays, s.ThreeDays, s.Urgent, s.Found, s.Skipped, s.Failed,
	)
	if s.Interrupted() {
		text += fmt.Sprintf("\n⚠️ Balayage interrompu : %d bons reportés au prochain passage", s.Cancelled)
	}
	return text
}

// GetStats returns the outcome of the most recent run.
func (w *ReminderWorker) GetStats() map[string]interface{} {
	w.mu.Lock()
	defer w.mu.Unlock()

	stats := map[string]interface{}{
		"worker_type": "voucher_reminder",
		"runs":        w.runs,
	}
	if w.runs == 0 {
		return stats
	}

	stats["last_run"] = w.lastRun
	if w.lastErr != nil {
		stats["last_error"] = w.lastErr.Error()
	}
	if w.lastSummary != nil {
		stats["last_summary"] = w.lastSummary
	}
	return stats
}
