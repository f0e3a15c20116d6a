package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mero-vet/vet-clinic-app-sub000/internal/model"
)

// All repository interfaces in one file
type (
	// AppointmentStore indexes appointments by date and blocked time by
	// provider and date. Implementations return copies; callers never share
	// records with the store.
	AppointmentStore interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		// Update replaces the record, moving it between date buckets when the
		// date changed.
		Update(ctx context.Context, appointment *model.Appointment) error
		// ListByDate returns the day's appointments ordered by start time.
		ListByDate(ctx context.Context, date model.Date, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		// ListRange covers start..end inclusive, ordered by date then start.
		ListRange(ctx context.Context, start, end model.Date, filters *model.AppointmentFilters) ([]*model.Appointment, error)

		CreateBlock(ctx context.Context, block *model.BlockedInterval) error
		ListBlocks(ctx context.Context, providerID string, date model.Date) ([]*model.BlockedInterval, error)

		IncrementNoShows(ctx context.Context, clientID string) (int, error)
		NoShowCount(ctx context.Context, clientID string) (int, error)

		// Version changes whenever anything on date is written.
		Version(ctx context.Context, date model.Date) (uint64, error)
	}

	// OutboxRepository stores engine events until the relay publishes them.
	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		// ClaimPending marks up to limit due events as processing and returns
		// them. Concurrent callers never receive the same event.
		ClaimPending(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		// MarkFailed records the error and bumps the retry count. A non-nil
		// retryAt returns the event to pending; nil parks it as failed.
		MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, retryAt *time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}

	NotificationRepository interface {
		Create(ctx context.Context, notification *model.Notification) error
		Update(ctx context.Context, notification *model.Notification) error
		ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*model.Notification, error)
	}
)
