package appointment

import (
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/mero-vet/vet-clinic-app-sub000/pkg/logger"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/metrics"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/validator"
)

const (
	defaultSlotGranularity = 15
	defaultSlotCacheTTL    = 5 * time.Minute
)

type Option func(*Service)

// WithWaitlist enables waitlist processing when appointments are cancelled.
func WithWaitlist(w WaitlistProcessor) Option {
	return func(s *Service) { s.waitlist = w }
}

func WithReminders(r ReminderScheduler) Option {
	return func(s *Service) { s.reminders = r }
}

func WithEvents(e EventEmitter) Option {
	return func(s *Service) { s.events = e }
}

func WithAuditor(a Auditor) Option {
	return func(s *Service) { s.auditor = a }
}

// WithNotifier hands confirmations to a delivery channel after they are
// recorded.
func WithNotifier(n ConfirmationSender) Option {
	return func(s *Service) { s.notifier = n }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithValidator(v validator.Validator) Option {
	return func(s *Service) { s.validator = v }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the clinic time zone used to anchor civil dates.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithSlotGranularity sets the slot search step in minutes.
func WithSlotGranularity(minutes int) Option {
	return func(s *Service) {
		if minutes > 0 {
			s.granularity = minutes
		}
	}
}

func WithSlotCache(c *cache.Cache) Option {
	return func(s *Service) { s.slotCache = c }
}

func WithSlotCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.slotCache = cache.New(ttl, 2*ttl)
		}
	}
}
