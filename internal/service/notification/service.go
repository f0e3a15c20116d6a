package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mero-vet/vet-clinic-app-sub000/internal/catalog"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/email"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/model"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/repository"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/logger"
)

const confirmationSubject = "Appointment confirmation"

type Service interface {
	SendConfirmation(ctx context.Context, appt *model.Appointment, method model.ReminderMethod, recipient string) (*model.Notification, error)
}

type service struct {
	repo     repository.NotificationRepository
	emailSvc email.Service
	catalog  *catalog.Catalog
	logger   *logger.Logger
	loc      *time.Location
	now      func() time.Time
}

// NewService records confirmations and delivers the email ones. emailSvc may
// be nil, in which case every notification stays pending for an external
// gateway, as SMS ones always do.
func NewService(repo repository.NotificationRepository, emailSvc email.Service, cat *catalog.Catalog, loc *time.Location, log *logger.Logger) Service {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logger.Nop()
	}
	return &service{
		repo:     repo,
		emailSvc: emailSvc,
		catalog:  cat,
		logger:   log,
		loc:      loc,
		now:      time.Now,
	}
}

func (s *service) SendConfirmation(ctx context.Context, appt *model.Appointment, method model.ReminderMethod, recipient string) (*model.Notification, error) {
	n := &model.Notification{
		ID:            uuid.New(),
		AppointmentID: appt.ID,
		ClientID:      appt.ClientID,
		Channel:       method,
		Recipient:     recipient,
		Subject:       confirmationSubject,
		Content:       s.confirmationContent(appt),
		Status:        model.NotificationStatusPending,
		CreatedAt:     s.now(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	if method != model.ReminderMethodEmail || s.emailSvc == nil {
		return n, nil
	}

	var sendErr error
	if recipient == "" {
		sendErr = fmt.Errorf("recipient is required for email delivery")
	} else {
		sendErr = s.emailSvc.SendCustom(ctx, recipient, n.Subject, n.Content)
	}

	if sendErr != nil {
		n.Status = model.NotificationStatusFailed
		n.LastError = sendErr.Error()
	} else {
		sentAt := s.now()
		n.Status = model.NotificationStatusSent
		n.SentAt = &sentAt
	}
	if err := s.repo.Update(ctx, n); err != nil {
		s.logger.WithContext(ctx).Error(err, "failed to update notification", "notification_id", n.ID.String())
	}
	if sendErr != nil {
		return n, fmt.Errorf("failed to deliver confirmation: %w", sendErr)
	}
	return n, nil
}

func (s *service) confirmationContent(appt *model.Appointment) string {
	typeName := appt.AppointmentTypeID
	if t, err := s.catalog.AppointmentType(appt.AppointmentTypeID); err == nil {
		typeName = t.Name
	}
	return fmt.Sprintf("Your %s appointment is confirmed for %s. Reference: %s.",
		typeName,
		appt.StartsAt(s.loc).Format("Monday, January 2 at 3:04 PM"),
		appt.ID,
	)
}
