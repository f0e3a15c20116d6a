package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/mero-vet/vet-clinic-app-sub000/internal/model"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/repository"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/errors"
)

type blockKey struct {
	providerID string
	date       model.Date
}

type appointmentStore struct {
	mu       sync.RWMutex
	byDate   map[model.Date]map[uuid.UUID]*model.Appointment
	dateOf   map[uuid.UUID]model.Date
	blocks   map[blockKey][]*model.BlockedInterval
	noShows  map[string]int
	versions map[model.Date]uint64
}

func NewAppointmentStore() repository.AppointmentStore {
	return &appointmentStore{
		byDate:   make(map[model.Date]map[uuid.UUID]*model.Appointment),
		dateOf:   make(map[uuid.UUID]model.Date),
		blocks:   make(map[blockKey][]*model.BlockedInterval),
		noShows:  make(map[string]int),
		versions: make(map[model.Date]uint64),
	}
}

func (s *appointmentStore) Create(ctx context.Context, appointment *model.Appointment) error {
	if appointment == nil {
		return fmt.Errorf("appointment cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.dateOf[appointment.ID]; exists {
		return fmt.Errorf("appointment %s already exists", appointment.ID)
	}
	s.put(appointment.Clone())
	return nil
}

func (s *appointmentStore) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	date, ok := s.dateOf[id]
	if !ok {
		return nil, errors.NewNotFound("appointment", nil)
	}
	return s.byDate[date][id].Clone(), nil
}

func (s *appointmentStore) Update(ctx context.Context, appointment *model.Appointment) error {
	if appointment == nil {
		return fmt.Errorf("appointment cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	oldDate, ok := s.dateOf[appointment.ID]
	if !ok {
		return errors.NewNotFound("appointment", nil)
	}
	if oldDate != appointment.Date {
		delete(s.byDate[oldDate], appointment.ID)
		if len(s.byDate[oldDate]) == 0 {
			delete(s.byDate, oldDate)
		}
		s.versions[oldDate]++
	}
	s.put(appointment.Clone())
	return nil
}

// put stores a record the store owns. Caller holds mu.
func (s *appointmentStore) put(a *model.Appointment) {
	bucket, ok := s.byDate[a.Date]
	if !ok {
		bucket = make(map[uuid.UUID]*model.Appointment)
		s.byDate[a.Date] = bucket
	}
	bucket[a.ID] = a
	s.dateOf[a.ID] = a.Date
	s.versions[a.Date]++
}

func (s *appointmentStore) ListByDate(ctx context.Context, date model.Date, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(date, filters), nil
}

func (s *appointmentStore) ListRange(ctx context.Context, start, end model.Date, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	if end.Before(start) {
		return nil, errors.NewValidation("end date must not precede start date", nil)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Appointment
	for d := start; !d.After(end); d = d.AddDays(1) {
		out = append(out, s.collect(d, filters)...)
	}
	return out, nil
}

// collect returns sorted copies of the matching appointments on date.
// Caller holds mu.
func (s *appointmentStore) collect(date model.Date, filters *model.AppointmentFilters) []*model.Appointment {
	bucket := s.byDate[date]
	out := make([]*model.Appointment, 0, len(bucket))
	for _, a := range bucket {
		if filters.Matches(a) {
			out = append(out, a.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *appointmentStore) CreateBlock(ctx context.Context, block *model.BlockedInterval) error {
	if block == nil {
		return fmt.Errorf("block cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := blockKey{providerID: block.ProviderID, date: block.Date}
	b := *block
	s.blocks[key] = append(s.blocks[key], &b)
	s.versions[block.Date]++
	return nil
}

func (s *appointmentStore) ListBlocks(ctx context.Context, providerID string, date model.Date) ([]*model.BlockedInterval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.blocks[blockKey{providerID: providerID, date: date}]
	out := make([]*model.BlockedInterval, 0, len(src))
	for _, b := range src {
		c := *b
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (s *appointmentStore) IncrementNoShows(ctx context.Context, clientID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.noShows[clientID]++
	return s.noShows[clientID], nil
}

func (s *appointmentStore) NoShowCount(ctx context.Context, clientID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.noShows[clientID], nil
}

func (s *appointmentStore) Version(ctx context.Context, date model.Date) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.versions[date], nil
}
