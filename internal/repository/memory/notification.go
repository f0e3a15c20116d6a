package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/mero-vet/vet-clinic-app-sub000/internal/model"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/repository"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/errors"
)

type notificationRepository struct {
	mu            sync.RWMutex
	notifications map[uuid.UUID]*model.Notification
}

func NewNotificationRepository() repository.NotificationRepository {
	return &notificationRepository{notifications: make(map[uuid.UUID]*model.Notification)}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	c := *n
	r.notifications[n.ID] = &c
	return nil
}

func (r *notificationRepository) Update(ctx context.Context, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.notifications[n.ID]; !ok {
		return errors.NewNotFound("notification", nil)
	}
	c := *n
	r.notifications[n.ID] = &c
	return nil
}

func (r *notificationRepository) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*model.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*model.Notification
	for _, n := range r.notifications {
		if n.AppointmentID == appointmentID {
			c := *n
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
