package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/ds124wfegd/voucher-reminder/internal/entity"
	"github.com/ds124wfegd/voucher-reminder/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReminderService struct {
	summary *entity.SweepSummary
	err     error
}

func (s *stubReminderService) RunSweep(context.Context) (*entity.SweepSummary, error) {
	return s.summary, s.err
}

func (s *stubReminderService) Preview(context.Context, string) (*service.ReminderPreview, error) {
	return nil, errors.New("not implemented")
}

type recordingNotifier struct {
	chatID   string
	messages []string
	err      error
}

func (n *recordingNotifier) SendMessage(_ context.Context, chatID, text string) error {
	n.chatID = chatID
	n.messages = append(n.messages, text)
	return n.err
}

func TestReminderWorkerPostsSummary(t *testing.T) {
	svc := &stubReminderService{summary: &entity.SweepSummary{Found: 4, SevenDays: 1, ThreeDays: 1, Urgent: 2}}
	notifier := &recordingNotifier{}
	w := NewReminderWorker(svc, notifier, "-100123")

	w.Run(context.Background())

	require.Len(t, notifier.messages, 1)
	assert.Equal(t, "-100123", notifier.chatID)
	assert.Contains(t, notifier.messages[0], "Urgent (≤1 jour) : 2")

	stats := w.GetStats()
	assert.Equal(t, 1, stats["runs"])
	assert.Equal(t, svc.summary, stats["last_summary"])
	assert.NotContains(t, stats, "last_error")
}

func TestReminderWorkerReportsFailure(t *testing.T) {
	svc := &stubReminderService{err: errors.New("store down")}
	notifier := &recordingNotifier{err: errors.New("telegram down")}
	w := NewReminderWorker(svc, notifier, "42")

	assert.NotPanics(t, func() { w.Run(context.Background()) })

	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "store down")
	assert.Equal(t, "store down", w.GetStats()["last_error"])
}

func TestReminderWorkerWithoutNotifier(t *testing.T) {
	w := NewReminderWorker(&stubReminderService{summary: &entity.SweepSummary{}}, nil, "")
	assert.NotPanics(t, func() { w.Run(context.Background()) })
	assert.Equal(t, map[string]interface{}{"worker_type": "voucher_reminder", "runs": 0}, NewReminderWorker(nil, nil, "").GetStats())
}

type ctxCheckingNotifier struct {
	recordingNotifier
	ctxErr error
}

func (n *ctxCheckingNotifier) SendMessage(ctx context.Context, chatID, text string) error {
	n.ctxErr = ctx.Err()
	return n.recordingNotifier.SendMessage(ctx, chatID, text)
}

func TestReminderWorkerReportsInterruptedSweep(t *testing.T) {
	svc := &stubReminderService{summary: &entity.SweepSummary{Found: 10, Urgent: 3, Cancelled: 7}}
	notifier := &ctxCheckingNotifier{}
	w := NewReminderWorker(svc, notifier, "42")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Run(ctx)

	require.Len(t, notifier.messages, 1)
	assert.NoError(t, notifier.ctxErr)
	assert.Contains(t, notifier.messages[0], "Urgent (≤1 jour) : 3")
	assert.Contains(t, notifier.messages[0], "7 bons reportés")
}
