package waitlist

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mero-vet/vet-clinic-app-sub000/internal/catalog"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/model"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/service/event"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/errors"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/logger"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/metrics"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/validator"
)

type (
	EventEmitter interface {
		Emit(ctx context.Context, eventType string, payload interface{}) error
	}

	Auditor interface {
		RecordWaitlist(ctx context.Context, entry *model.WaitlistEntry)
	}
)

// Manager keeps the backlog of unmet booking requests ordered by priority
// rank and then insertion order.
type Manager struct {
	mu    sync.Mutex
	items []*model.WaitlistEntry
	byID  map[uuid.UUID]*model.WaitlistEntry

	catalog   *catalog.Catalog
	validator validator.Validator
	events    EventEmitter
	auditor   Auditor
	metrics   *metrics.Metrics
	logger    *logger.Logger
	now       func() time.Time
}

type Option func(*Manager)

func WithEvents(e EventEmitter) Option { return func(m *Manager) { m.events = e } }

func WithAuditor(a Auditor) Option { return func(m *Manager) { m.auditor = a } }

func WithMetrics(mt *metrics.Metrics) Option { return func(m *Manager) { m.metrics = mt } }

func WithLogger(l *logger.Logger) Option { return func(m *Manager) { m.logger = l } }

func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

func NewManager(cat *catalog.Catalog, opts ...Option) *Manager {
	m := &Manager{
		byID:      make(map[uuid.UUID]*model.WaitlistEntry),
		catalog:   cat,
		validator: validator.New(),
		metrics:   metrics.NewNop(),
		logger:    logger.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Add validates the request and inserts a waiting entry. Without an explicit
// priority the entry inherits the appointment type's priority.
func (m *Manager) Add(ctx context.Context, req *model.AddToWaitlistRequest) (*model.WaitlistEntry, error) {
	if err := m.validator.Validate(req); err != nil {
		return nil, errors.NewValidation("invalid waitlist request", err)
	}
	apptType, err := m.catalog.AppointmentType(req.AppointmentTypeID)
	if err != nil {
		return nil, err
	}

	priority := req.Priority
	if priority == "" {
		priority = apptType.Priority
	}
	if priority == "" {
		priority = model.PriorityRoutine
	}

	entry := &model.WaitlistEntry{
		ID:                 uuid.New(),
		PatientID:          req.PatientID,
		ClientID:           req.ClientID,
		AppointmentTypeID:  req.AppointmentTypeID,
		PreferredDates:     append([]model.Date(nil), req.PreferredDates...),
		PreferredProviders: append([]string(nil), req.PreferredProviders...),
		Priority:           priority,
		Notes:              req.Notes,
		Status:             model.WaitlistStatusWaiting,
		CreatedAt:          m.now(),
	}

	m.mu.Lock()
	m.insert(entry)
	waiting := m.waitingCount()
	m.mu.Unlock()

	m.metrics.WaitlistSize.Set(float64(waiting))
	if m.auditor != nil {
		m.auditor.RecordWaitlist(ctx, entry)
	}
	m.logger.WithContext(ctx).Info("added waitlist entry",
		"entry_id", entry.ID.String(),
		"priority", string(entry.Priority),
		"appointment_type_id", entry.AppointmentTypeID,
	)
	return entry.Clone(), nil
}

// insert places entry after every item of equal or better rank. Caller
// holds mu.
func (m *Manager) insert(entry *model.WaitlistEntry) {
	rank := entry.Priority.Rank()
	i := sort.Search(len(m.items), func(i int) bool {
		return m.items[i].Priority.Rank() > rank
	})
	m.items = append(m.items, nil)
	copy(m.items[i+1:], m.items[i:])
	m.items[i] = entry
	m.byID[entry.ID] = entry
}

func (m *Manager) waitingCount() int {
	n := 0
	for _, e := range m.items {
		if e.Status == model.WaitlistStatusWaiting {
			n++
		}
	}
	return n
}

// Process notifies every waiting entry that a slot of typeID with
// providerID on date has opened. Entries are returned in backlog order.
// Nothing is booked.
func (m *Manager) Process(ctx context.Context, date model.Date, typeID, providerID string) ([]*model.WaitlistEntry, error) {
	now := m.now()

	m.mu.Lock()
	var notified []*model.WaitlistEntry
	for _, e := range m.items {
		if e.Status != model.WaitlistStatusWaiting || !e.Accepts(date, typeID, providerID) {
			continue
		}
		e.Status = model.WaitlistStatusNotified
		at := now
		e.NotifiedAt = &at
		notified = append(notified, e.Clone())
	}
	waiting := m.waitingCount()
	m.mu.Unlock()

	m.metrics.WaitlistSize.Set(float64(waiting))
	if len(notified) == 0 {
		return nil, nil
	}
	m.metrics.WaitlistNotifications.Add(float64(len(notified)))

	log := m.logger.WithContext(ctx)
	for _, e := range notified {
		if m.auditor != nil {
			m.auditor.RecordWaitlist(ctx, e)
		}
		if m.events != nil {
			payload := &event.WaitlistPayload{
				EntryID:           e.ID,
				ClientID:          e.ClientID,
				PatientID:         e.PatientID,
				AppointmentTypeID: typeID,
				Date:              date,
				ProviderID:        providerID,
				OccurredAt:        now,
			}
			if err := m.events.Emit(ctx, model.EventWaitlistNotified, payload); err != nil {
				log.Error(err, "failed to emit waitlist event", "entry_id", e.ID.String())
			}
		}
	}
	log.Info("waitlist processed",
		"date", date.String(),
		"provider_id", providerID,
		"notified", len(notified),
	)
	return notified, nil
}

// MarkBooked records that the caller turned the entry into appointmentID.
func (m *Manager) MarkBooked(ctx context.Context, id, appointmentID uuid.UUID) (*model.WaitlistEntry, error) {
	m.mu.Lock()
	e, ok := m.byID[id]
	if !ok {
		m.mu.Unlock()
		return nil, errors.NewNotFound("waitlist entry", nil)
	}
	if e.Status == model.WaitlistStatusBooked {
		m.mu.Unlock()
		return nil, errors.NewInvalidTransition(string(e.Status), string(model.WaitlistStatusBooked))
	}
	e.Status = model.WaitlistStatusBooked
	apptID := appointmentID
	e.AppointmentID = &apptID
	out := e.Clone()
	waiting := m.waitingCount()
	m.mu.Unlock()

	m.metrics.WaitlistSize.Set(float64(waiting))
	if m.auditor != nil {
		m.auditor.RecordWaitlist(ctx, out)
	}
	return out, nil
}

func (m *Manager) Remove(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[id]; !ok {
		return errors.NewNotFound("waitlist entry", nil)
	}
	delete(m.byID, id)
	for i, e := range m.items {
		if e.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			break
		}
	}
	m.metrics.WaitlistSize.Set(float64(m.waitingCount()))
	return nil
}

func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*model.WaitlistEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.byID[id]
	if !ok {
		return nil, errors.NewNotFound("waitlist entry", nil)
	}
	return e.Clone(), nil
}

// List returns entries in backlog order. An empty status returns all.
func (m *Manager) List(ctx context.Context, status model.WaitlistStatus) ([]*model.WaitlistEntry, error) {
	if status != "" {
		switch status {
		case model.WaitlistStatusWaiting, model.WaitlistStatusNotified, model.WaitlistStatusBooked:
		default:
			return nil, errors.NewValidation(fmt.Sprintf("unknown waitlist status %q", status), nil)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*model.WaitlistEntry, 0, len(m.items))
	for _, e := range m.items {
		if status == "" || e.Status == status {
			out = append(out, e.Clone())
		}
	}
	return out, nil
}
