package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ds124wfegd/voucher-reminder/internal/database"
	"github.com/ds124wfegd/voucher-reminder/internal/entity"
	"github.com/ds124wfegd/voucher-reminder/internal/metrics"
	"github.com/ds124wfegd/voucher-reminder/pkg/sweep"

	"github.com/sirupsen/logrus"
)

var errNotCandidate = errors.New("voucher is not a reminder candidate")

// ReminderOptions tunes a reminder sweep. Zero values fall back to defaults.
type ReminderOptions struct {
	Concurrency  int
	QueryTimeout time.Duration
	ItemTimeout  time.Duration
	Location     *time.Location
	AppURL       string
	SupportEmail string

	Now         func() time.Time
	Metrics     *metrics.Reminders
	ErrorPolicy sweep.ErrorPolicy[*entity.Voucher]
}

func (o *ReminderOptions) setDefaults() {
	if o.Concurrency < 1 {
		o.Concurrency = 1
	}
	if o.QueryTimeout <= 0 {
		o.QueryTimeout = 30 * time.Second
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.ErrorPolicy == nil {
		o.ErrorPolicy = NewLogAndContinuePolicy(o.Metrics)
	}
}

type reminderService struct {
	vouchers       database.VoucherRepository
	users          database.UserRepository
	establishments database.EstablishmentRepository
	dispatcher     MailDispatcher
	opts           ReminderOptions
}

func NewReminderService(
	vouchers database.VoucherRepository,
	users database.UserRepository,
	establishments database.EstablishmentRepository,
	dispatcher MailDispatcher,
	opts ReminderOptions,
) ReminderService {
	opts.setDefaults()
	return &reminderService{
		vouchers:       vouchers,
		users:          users,
		establishments: establishments,
		dispatcher:     dispatcher,
		opts:           opts,
	}
}

func (s *reminderService) RunSweep(ctx context.Context) (*entity.SweepSummary, error) {
	started := time.Now()
	now := s.opts.Now()
	horizon := now.Add(ReminderHorizon)

	summary := &entity.SweepSummary{StartedAt: now}
	var mu sync.Mutex

	logrus.WithFields(logrus.Fields{
		"now":     now,
		"horizon": horizon,
	}).Info("Starting voucher expiry reminder sweep")

	pipeline := &sweep.Pipeline[*entity.Voucher]{
		Select: func(ctx context.Context) ([]*entity.Voucher, error) {
			qctx, cancel := context.WithTimeout(ctx, s.opts.QueryTimeout)
			defer cancel()
			return s.vouchers.GetExpiring(qctx, entity.VoucherStatusActive, now, horizon)
		},
		Filter: func(v *entity.Voucher) bool {
			if err := IsReminderCandidate(v, now); err != nil {
				entry := logrus.WithError(err)
				if v != nil {
					entry = entry.WithField("voucher_id", v.ID)
				}
				entry.Warn("Skipping voucher returned by candidate query")
				s.opts.Metrics.VoucherSkipped()
				return false
			}
			return true
		},
		Process: func(ctx context.Context, v *entity.Voucher) (sweep.Outcome, error) {
			tier, err := s.remind(ctx, v, now)
			if err != nil {
				return sweep.Failed, err
			}
			if tier == entity.TierNone {
				return sweep.Skipped, nil
			}

			mu.Lock()
			summary.Add(tier)
			mu.Unlock()
			s.opts.Metrics.ReminderSent(string(tier))
			return sweep.Applied, nil
		},
		Policy:      s.opts.ErrorPolicy,
		Concurrency: s.opts.Concurrency,
		ItemTimeout: s.opts.ItemTimeout,
	}

	res, err := pipeline.Run(ctx)
	summary.Duration = time.Since(started)
	if err != nil {
		s.opts.Metrics.SweepFinished("error", summary.Duration)
		logrus.WithError(err).Error("Voucher expiry reminder sweep failed")
		return nil, fmt.Errorf("reminder sweep failed: %w", err)
	}

	summary.Found = res.Selected
	summary.Skipped = res.Filtered
	summary.Failed = res.Failed
	summary.Cancelled = res.Cancelled

	fields := logrus.Fields{
		"found":      summary.Found,
		"seven_days": summary.SevenDays,
		"three_days": summary.ThreeDays,
		"urgent":     summary.Urgent,
		"skipped":    summary.Skipped,
		"failed":     summary.Failed,
		"cancelled":  summary.Cancelled,
		"duration":   summary.Duration,
	}
	if summary.Interrupted() {
		s.opts.Metrics.SweepFinished("partial", summary.Duration)
		logrus.WithFields(fields).WithError(ctx.Err()).Warn("Voucher expiry reminder sweep interrupted")
		return summary, nil
	}

	s.opts.Metrics.SweepFinished("ok", summary.Duration)
	logrus.WithFields(fields).Info("Voucher expiry reminder sweep completed")

	return summary, nil
}

// remind dispatches the reminder for v if one is due and records it. It
// returns TierNone when nothing was due.
func (s *reminderService) remind(ctx context.Context, v *entity.Voucher, now time.Time) (entity.ReminderTier, error) {
	decision := Decide(v, now)

	log := logrus.WithFields(logrus.Fields{
		"voucher_id":        v.ID,
		"tier":              decision.Tier.String(),
		"days_until_expiry": decision.DaysUntilExpiry,
	})

	if !decision.Send {
		log.Debug("No reminder due")
		return entity.TierNone, nil
	}

	buyer, err := s.resolveBuyer(ctx, v)
	if err != nil {
		return entity.TierNone, err
	}

	shop, err := s.resolveEstablishment(ctx, v)
	if err != nil {
		return entity.TierNone, err
	}

	email := NewReminderEmail(v, buyer, shop, decision)
	email.AppURL = s.opts.AppURL
	email.SupportEmail = s.opts.SupportEmail

	content, err := email.Render(s.opts.Location)
	if err != nil {
		return entity.TierNone, err
	}

	msg := NewMailMessage(buyer.Email, content, now)
	if err := s.dispatcher.Dispatch(ctx, msg); err != nil {
		return entity.TierNone, fmt.Errorf("failed to dispatch reminder: %w", err)
	}

	mark := &entity.ReminderMark{
		VoucherID:       v.ID,
		SentAt:          now,
		Tier:            decision.Tier,
		DaysUntilExpiry: decision.DaysUntilExpiry,
	}
	// the mail is already handed off; record it even if the sweep is being cancelled
	mctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.QueryTimeout)
	defer cancel()

	if err := s.vouchers.MarkReminded(mctx, mark); err != nil {
		return entity.TierNone, fmt.Errorf("reminder %s dispatched but not recorded: %w", msg.ID, err)
	}

	log.WithField("mail_id", msg.ID).Info("Reminder dispatched")
	return decision.Tier, nil
}

func (s *reminderService) resolveBuyer(ctx context.Context, v *entity.Voucher) (*entity.User, error) {
	if v.BuyerID == "" {
		return nil, entity.ErrBuyerNotFound
	}

	buyer, err := s.users.GetByID(ctx, v.BuyerID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve buyer %s: %w", v.BuyerID, err)
	}
	if strings.TrimSpace(buyer.Email) == "" {
		return nil, entity.ErrBuyerWithoutEmail
	}

	return buyer, nil
}

// resolveEstablishment prefers boutique_id and falls back to the legacy
// shop_id owner lookup. A missing establishment is not an error: the mail
// uses the default shop name.
func (s *reminderService) resolveEstablishment(ctx context.Context, v *entity.Voucher) (*entity.Establishment, error) {
	var (
		shop *entity.Establishment
		err  error
	)

	switch {
	case v.EstablishmentID != "":
		shop, err = s.establishments.GetByID(ctx, v.EstablishmentID)
	case v.LegacyShopID != "":
		shop, err = s.establishments.GetByOwner(ctx, v.LegacyShopID)
	default:
		return nil, nil
	}

	if errors.Is(err, entity.ErrEstablishmentNotFound) {
		logrus.WithField("voucher_id", v.ID).Debug("Establishment not found, using defaults")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve establishment: %w", err)
	}

	return shop, nil
}

func (s *reminderService) Preview(ctx context.Context, voucherID string) (*ReminderPreview, error) {
	if strings.TrimSpace(voucherID) == "" {
		return nil, entity.ErrInvalidInput
	}

	v, err := s.vouchers.GetByID(ctx, voucherID)
	if err != nil {
		return nil, err
	}

	now := s.opts.Now()
	preview := &ReminderPreview{VoucherID: v.ID}

	if err := IsReminderCandidate(v, now); err != nil {
		preview.Reason = err.Error()
		if !v.ExpiryDate.IsZero() {
			preview.DaysUntilExpiry = DaysUntilExpiry(now, v.ExpiryDate)
		}
		return preview, nil
	}

	d := Decide(v, now)
	preview.Candidate = true
	preview.Send = d.Send
	preview.Tier = d.Tier
	preview.DaysUntilExpiry = d.DaysUntilExpiry
	return preview, nil
}

// LogAndContinuePolicy logs a failed voucher and lets the sweep go on.
type LogAndContinuePolicy struct {
	metrics *metrics.Reminders
}

func NewLogAndContinuePolicy(m *metrics.Reminders) *LogAndContinuePolicy {
	return &LogAndContinuePolicy{metrics: m}
}

func (p *LogAndContinuePolicy) HandleItemError(_ context.Context, v *entity.Voucher, err error) error {
	p.metrics.ReminderFailed()
	logrus.WithError(err).WithFields(logrus.Fields{
		"voucher_id": v.ID,
		"code":       v.Code,
	}).Error("Failed to send voucher reminder")
	return nil
}
