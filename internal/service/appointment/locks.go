package appointment

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/mero-vet/vet-clinic-app-sub000/internal/model"
)

// dateLocks serializes booking mutations per calendar day. A mutation holds
// the write lock of every day it touches across its whole
// validate-and-write sequence; reads take the read lock.
type dateLocks struct {
	mu    sync.Mutex
	locks map[model.Date]*sync.RWMutex
}

func newDateLocks() *dateLocks {
	return &dateLocks{locks: make(map[model.Date]*sync.RWMutex)}
}

func (l *dateLocks) get(d model.Date) *sync.RWMutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[d]
	if !ok {
		m = &sync.RWMutex{}
		l.locks[d] = m
	}
	return m
}

// lock write-locks the distinct dates in ascending order so two mutations
// spanning the same pair of days cannot deadlock.
func (l *dateLocks) lock(dates ...model.Date) func() {
	uniq := make([]model.Date, 0, len(dates))
	seen := make(map[model.Date]bool, len(dates))
	for _, d := range dates {
		if !seen[d] {
			seen[d] = true
			uniq = append(uniq, d)
		}
	}
	sort.Slice(uniq, func(i, j int) bool { return uniq[i].Before(uniq[j]) })

	held := make([]*sync.RWMutex, 0, len(uniq))
	for _, d := range uniq {
		m := l.get(d)
		m.Lock()
		held = append(held, m)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

func (l *dateLocks) rlock(d model.Date) func() {
	m := l.get(d)
	m.RLock()
	return m.RUnlock
}

// lockAppointment loads the appointment and write-locks its date plus any
// extra dates. If the appointment moved between the load and the lock it
// retries, so the returned record is current while the lock is held.
func (s *Service) lockAppointment(ctx context.Context, id uuid.UUID, extra ...model.Date) (*model.Appointment, func(), error) {
	for {
		appt, err := s.store.Get(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		unlock := s.locks.lock(append([]model.Date{appt.Date}, extra...)...)

		current, err := s.store.Get(ctx, id)
		if err != nil {
			unlock()
			return nil, nil, err
		}
		if current.Date == appt.Date {
			return current, unlock, nil
		}
		unlock()

		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
	}
}
