package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/mero-vet/vet-clinic-app-sub000/internal/catalog"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/model"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/registry"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/repository"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/service/audit"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/service/event"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/service/reminder"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/errors"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/logger"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/metrics"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/validator"
)

// Collaborators of the booking engine
type (
	WaitlistProcessor interface {
		Process(ctx context.Context, date model.Date, typeID, providerID string) ([]*model.WaitlistEntry, error)
	}

	ReminderScheduler interface {
		Schedule(typeID string, at time.Time) []model.Reminder
	}

	EventEmitter interface {
		Emit(ctx context.Context, eventType string, payload interface{}) error
	}

	Auditor interface {
		Record(ctx context.Context, action string, appt *model.Appointment, details map[string]interface{})
		RecordBlock(ctx context.Context, block *model.BlockedInterval)
	}

	ConfirmationSender interface {
		SendConfirmation(ctx context.Context, appt *model.Appointment, method model.ReminderMethod, recipient string) (*model.Notification, error)
	}
)

// Service is the booking engine. It owns no records itself: appointments
// and blocked time live in the store, and every mutation runs under the
// write lock of the dates it touches.
type Service struct {
	store    repository.AppointmentStore
	catalog  *catalog.Catalog
	registry *registry.Registry
	locks    *dateLocks

	waitlist  WaitlistProcessor
	reminders ReminderScheduler
	events    EventEmitter
	auditor   Auditor
	notifier  ConfirmationSender

	metrics   *metrics.Metrics
	logger    *logger.Logger
	validator validator.Validator

	now         func() time.Time
	loc         *time.Location
	granularity int
	slotCache   *cache.Cache
}

func NewService(store repository.AppointmentStore, cat *catalog.Catalog, reg *registry.Registry, opts ...Option) *Service {
	s := &Service{
		store:       store,
		catalog:     cat,
		registry:    reg,
		locks:       newDateLocks(),
		reminders:   reminder.NewScheduler(cat),
		metrics:     metrics.NewNop(),
		logger:      logger.Nop(),
		validator:   validator.New(),
		now:         time.Now,
		loc:         time.UTC,
		granularity: defaultSlotGranularity,
		slotCache:   cache.New(defaultSlotCacheTTL, 2*defaultSlotCacheTTL),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) CreateAppointment(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, errors.NewValidation("invalid appointment request", err)
	}

	apptType, provider, err := s.resolve(req.AppointmentTypeID, req.ProviderID, req.RoomID)
	if err != nil {
		return nil, err
	}
	start := *req.StartTime
	if err := s.checkBookingWindow(apptType, req.Date, start); err != nil {
		return nil, err
	}

	now := s.now()
	appt := &model.Appointment{
		ID:                uuid.New(),
		Date:              req.Date,
		StartTime:         start,
		EndTime:           start.Add(apptType.TotalDuration()),
		PatientID:         req.PatientID,
		ClientID:          req.ClientID,
		ProviderID:        provider.ID,
		AppointmentTypeID: apptType.ID,
		RoomID:            req.RoomID,
		Reason:            req.Reason,
		Notes:             req.Notes,
		Status:            model.AppointmentStatusScheduled,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	appt.Reminders = s.reminders.Schedule(apptType.ID, appt.StartsAt(s.loc))

	if err := s.insert(ctx, appt, apptType, provider); err != nil {
		return nil, err
	}

	s.metrics.AppointmentsBooked.WithLabelValues(apptType.ID).Inc()
	s.emit(ctx, model.EventAppointmentCreated, event.NewAppointmentPayload(appt, now))
	s.record(ctx, audit.ActionCreate, appt, nil)
	s.logger.WithContext(ctx).Info("appointment created",
		"appointment_id", appt.ID.String(),
		"provider_id", appt.ProviderID,
		"date", appt.Date.String(),
		"start_time", appt.StartTime.String(),
	)
	return appt, nil
}

// insert re-checks availability and stores appt while holding the date lock.
func (s *Service) insert(ctx context.Context, appt *model.Appointment, apptType *model.AppointmentType, provider *model.Provider) error {
	unlock := s.locks.lock(appt.Date)
	defer unlock()

	snap, err := s.loadSnapshot(ctx, appt.Date, provider.ID)
	if err != nil {
		return err
	}
	if avail := s.evaluate(snap, provider, appt.RoomID, apptType, appt.Interval(), nil); !avail.Available {
		return s.conflict(avail)
	}
	if err := s.store.Create(ctx, appt); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create appointment: %w", err))
	}
	return nil
}

// resolve looks up the type, provider and optional room and checks that
// they can be combined.
func (s *Service) resolve(typeID, providerID string, roomID *string) (*model.AppointmentType, *model.Provider, error) {
	apptType, err := s.catalog.AppointmentType(typeID)
	if err != nil {
		return nil, nil, err
	}
	provider, err := s.registry.Provider(providerID)
	if err != nil {
		return nil, nil, err
	}
	if !s.catalog.ProviderCanPerform(provider.Kind, apptType.ID) {
		return nil, nil, errors.NewValidation(
			fmt.Sprintf("provider %s (%s) cannot perform %s", provider.ID, provider.Kind, apptType.ID), nil)
	}
	if roomID != nil {
		room, err := s.registry.Room(*roomID)
		if err != nil {
			return nil, nil, err
		}
		if !room.Supports(apptType.ID) {
			return nil, nil, errors.NewValidation(
				fmt.Sprintf("room %s does not support %s", room.ID, apptType.ID), nil)
		}
	}
	return apptType, provider, nil
}

// checkBookingWindow applies the clinic's booking rules: no past starts,
// the advance booking limit and the same-day cutoff. Emergencies ignore the
// cutoff.
func (s *Service) checkBookingWindow(apptType *model.AppointmentType, date model.Date, start model.ClockTime) error {
	if start.Minutes() < 0 || start.Minutes() >= model.MinutesPerDay {
		return errors.NewValidation(fmt.Sprintf("start time %s is out of range", start), nil)
	}

	rules := s.catalog.Rules()
	now := s.now().In(s.loc)
	today := model.DateOf(now)

	if date.At(start, s.loc).Before(now) {
		return errors.NewValidation("appointment cannot be scheduled in the past", nil)
	}
	if rules.AdvanceBookingDays > 0 && today.DaysUntil(date) > rules.AdvanceBookingDays {
		return errors.NewValidation(
			fmt.Sprintf("appointments can be booked at most %d days in advance", rules.AdvanceBookingDays), nil)
	}
	if rules.SameDayCutoff > 0 && date == today && !apptType.IsEmergency() && model.ClockTimeOf(now) >= rules.SameDayCutoff {
		return errors.NewValidation(
			fmt.Sprintf("same-day bookings close at %s", rules.SameDayCutoff), nil)
	}
	return nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.store.Get(ctx, id)
}

// GetAppointments lists appointments from start through end inclusive.
func (s *Service) GetAppointments(ctx context.Context, start, end model.Date, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	if start.IsZero() || end.IsZero() {
		return nil, errors.NewValidation("start and end dates are required", nil)
	}
	if end.Before(start) {
		return nil, errors.NewValidation("end date must not precede start date", nil)
	}
	if start.DaysUntil(end) > maxRangeDays {
		return nil, errors.NewValidation(fmt.Sprintf("date range may span at most %d days", maxRangeDays), nil)
	}
	if filters == nil {
		filters = &model.AppointmentFilters{}
	}
	return s.store.ListRange(ctx, start, end, filters)
}

const maxRangeDays = 366

func (s *Service) emit(ctx context.Context, eventType string, payload interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Emit(ctx, eventType, payload); err != nil {
		s.logger.WithContext(ctx).Error(err, "failed to emit event", "event_type", eventType)
	}
}

func (s *Service) record(ctx context.Context, action string, appt *model.Appointment, details map[string]interface{}) {
	if s.auditor != nil {
		s.auditor.Record(ctx, action, appt, details)
	}
}
