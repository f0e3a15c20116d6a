package appointment

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mero-vet/vet-clinic-app-sub000/internal/model"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/errors"
)

type SlotQuery struct {
	Date              model.Date
	ProviderID        string
	AppointmentTypeID string
	// Duration overrides the type's total duration when positive.
	Duration int
}

// SlotIterator enumerates open start times for one provider and day in
// ascending order. It is lazy: the day is read on the first call to Next
// and candidates are checked one step at a time. Reset restarts the
// sequence against fresh state.
//
// For non-emergency types the last reserve free slots of the day are never
// yielded; they stay open for emergencies.
type SlotIterator struct {
	svc      *Service
	query    SlotQuery
	provider *model.Provider
	apptType *model.AppointmentType
	duration int
	reserve  int

	snap      *daySnapshot
	next      model.ClockTime
	pending   []model.TimeSlot
	exhausted bool
}

// Slots validates the query and returns an iterator positioned before the
// first slot.
func (s *Service) Slots(ctx context.Context, q SlotQuery) (*SlotIterator, error) {
	if q.Date.IsZero() {
		return nil, errors.NewValidation("date is required", nil)
	}
	apptType, err := s.catalog.AppointmentType(q.AppointmentTypeID)
	if err != nil {
		return nil, err
	}
	provider, err := s.registry.Provider(q.ProviderID)
	if err != nil {
		return nil, err
	}
	if !s.catalog.ProviderCanPerform(provider.Kind, apptType.ID) {
		return nil, errors.NewValidation(
			fmt.Sprintf("provider %s (%s) cannot perform %s", provider.ID, provider.Kind, apptType.ID), nil)
	}
	if q.Duration < 0 {
		return nil, errors.NewValidation("duration must not be negative", nil)
	}

	duration := q.Duration
	if duration == 0 {
		duration = apptType.TotalDuration()
	}
	reserve := 0
	if !apptType.IsEmergency() {
		reserve = s.catalog.Rules().EmergencySlotReserve
	}

	return &SlotIterator{
		svc:      s,
		query:    q,
		provider: provider,
		apptType: apptType,
		duration: duration,
		reserve:  reserve,
	}, nil
}

// Next returns the next open slot, or false once the sequence is done.
func (it *SlotIterator) Next(ctx context.Context) (model.TimeSlot, bool, error) {
	if err := ctx.Err(); err != nil {
		return model.TimeSlot{}, false, err
	}
	if it.snap == nil {
		unlock := it.svc.locks.rlock(it.query.Date)
		snap, err := it.svc.loadSnapshot(ctx, it.query.Date, it.provider.ID)
		unlock()
		if err != nil {
			return model.TimeSlot{}, false, err
		}
		it.start(snap)
	}

	for len(it.pending) <= it.reserve && !it.exhausted {
		it.step()
	}
	if len(it.pending) <= it.reserve {
		return model.TimeSlot{}, false, nil
	}
	slot := it.pending[0]
	it.pending = it.pending[1:]
	return slot, true, nil
}

// Reset rewinds the iterator. The next call to Next reads the day again.
func (it *SlotIterator) Reset() {
	it.snap = nil
	it.pending = nil
	it.exhausted = false
}

func (it *SlotIterator) start(snap *daySnapshot) {
	it.snap = snap
	it.pending = nil
	it.next = snap.hours.Open
	it.exhausted = !snap.open
}

// step checks one candidate start time.
func (it *SlotIterator) step() {
	last := it.snap.hours.Close.Add(-it.duration)
	if it.next > last {
		it.exhausted = true
		return
	}
	candidate := model.NewInterval(it.next, it.duration)
	if it.svc.evaluate(it.snap, it.provider, nil, it.apptType, candidate, nil).Available {
		it.pending = append(it.pending, model.TimeSlot{Time: candidate.Start, EndTime: candidate.End})
	}
	it.next = it.next.Add(it.svc.granularity)
}

// GetAvailableSlots drains the slot sequence into a slice. Results are
// cached per date bucket version, so any write to the day invalidates them.
func (s *Service) GetAvailableSlots(ctx context.Context, q SlotQuery) ([]model.TimeSlot, error) {
	timer := prometheus.NewTimer(s.metrics.SlotSearchLatency)
	defer timer.ObserveDuration()

	it, err := s.Slots(ctx, q)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.rlock(q.Date)
	defer unlock()

	version, err := s.store.Version(ctx, q.Date)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	key := fmt.Sprintf("%s|%s|%s|%d|%d", q.Date, it.provider.ID, it.apptType.ID, it.duration, version)
	if cached, ok := s.slotCache.Get(key); ok {
		s.metrics.SlotCacheHits.WithLabelValues("hit").Inc()
		return append([]model.TimeSlot(nil), cached.([]model.TimeSlot)...), nil
	}
	s.metrics.SlotCacheHits.WithLabelValues("miss").Inc()

	snap, err := s.loadSnapshot(ctx, q.Date, it.provider.ID)
	if err != nil {
		return nil, err
	}
	it.start(snap)

	slots := []model.TimeSlot{}
	for {
		slot, ok, err := it.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		slots = append(slots, slot)
	}

	s.slotCache.SetDefault(key, slots)
	return append([]model.TimeSlot(nil), slots...), nil
}
