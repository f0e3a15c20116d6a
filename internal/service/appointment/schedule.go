package appointment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mero-vet/vet-clinic-app-sub000/internal/model"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/service/audit"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/service/event"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/errors"
)

// RescheduleAppointment moves the appointment to a new date, time and
// optionally provider. The target is validated before anything is written;
// on failure the stored appointment is unchanged.
func (s *Service) RescheduleAppointment(ctx context.Context, id uuid.UUID, req *model.RescheduleRequest) (*model.Appointment, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, errors.NewValidation("invalid reschedule request", err)
	}

	appt, prev, err := s.move(ctx, id, req)
	if err != nil {
		return nil, err
	}

	s.metrics.Reschedules.Inc()
	payload := event.NewAppointmentPayload(appt, appt.UpdatedAt)
	payload.PreviousDate = &prev.Date
	payload.PreviousStartTime = &prev.StartTime
	s.emit(ctx, model.EventAppointmentRescheduled, payload)
	s.record(ctx, audit.ActionReschedule, appt, map[string]interface{}{
		"previous_date":        prev.Date.String(),
		"previous_start_time":  prev.StartTime.String(),
		"previous_provider_id": prev.ProviderID,
		"reschedule_count":     appt.RescheduleCount,
	})
	s.logger.WithContext(ctx).Info("appointment rescheduled",
		"appointment_id", appt.ID.String(),
		"date", appt.Date.String(),
		"start_time", appt.StartTime.String(),
	)
	return appt, nil
}

func (s *Service) move(ctx context.Context, id uuid.UUID, req *model.RescheduleRequest) (*model.Appointment, *model.Appointment, error) {
	current, unlock, err := s.lockAppointment(ctx, id, req.Date)
	if err != nil {
		return nil, nil, err
	}
	defer unlock()

	switch current.Status {
	case model.AppointmentStatusScheduled, model.AppointmentStatusConfirmed:
	default:
		return nil, nil, errors.NewInvalidTransition(string(current.Status), "rescheduled")
	}

	providerID := current.ProviderID
	if req.ProviderID != nil && *req.ProviderID != "" {
		providerID = *req.ProviderID
	}
	apptType, provider, err := s.resolve(current.AppointmentTypeID, providerID, current.RoomID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.checkBookingWindow(apptType, req.Date, *req.StartTime); err != nil {
		return nil, nil, err
	}

	snap, err := s.loadSnapshot(ctx, req.Date, provider.ID)
	if err != nil {
		return nil, nil, err
	}
	target := model.NewInterval(*req.StartTime, apptType.TotalDuration())
	if avail := s.evaluate(snap, provider, current.RoomID, apptType, target, &current.ID); !avail.Available {
		return nil, nil, s.conflict(avail)
	}

	moved := current.Clone()
	moved.Date = req.Date
	moved.StartTime = target.Start
	moved.EndTime = target.End
	moved.ProviderID = provider.ID
	moved.RescheduleCount++
	moved.UpdatedAt = s.now()
	moved.Reminders = s.reminders.Schedule(apptType.ID, moved.StartsAt(s.loc))

	if err := s.store.Update(ctx, moved); err != nil {
		return nil, nil, errors.NewInternal(fmt.Errorf("failed to update appointment: %w", err))
	}
	return moved, current, nil
}

// BlockTime marks provider time unavailable. Existing bookings in the
// interval are left alone.
func (s *Service) BlockTime(ctx context.Context, providerID string, req *model.BlockTimeRequest) (*model.BlockedInterval, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, errors.NewValidation("invalid block request", err)
	}
	start, end := *req.StartTime, *req.EndTime
	if end <= start {
		return nil, errors.NewValidation("end time must be after start time", nil)
	}
	if end.Minutes() > model.MinutesPerDay {
		return nil, errors.NewValidation("blocked time must end within the day", nil)
	}
	provider, err := s.registry.Provider(providerID)
	if err != nil {
		return nil, err
	}

	block := &model.BlockedInterval{
		ID:         uuid.New(),
		ProviderID: provider.ID,
		Date:       req.Date,
		StartTime:  start,
		EndTime:    end,
		Reason:     req.Reason,
		CreatedAt:  s.now(),
	}

	unlock := s.locks.lock(req.Date)
	err = s.store.CreateBlock(ctx, block)
	unlock()
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to block time: %w", err))
	}

	if s.auditor != nil {
		s.auditor.RecordBlock(ctx, block)
	}
	s.emit(ctx, model.EventProviderTimeBlocked, &event.BlockPayload{
		BlockID:    block.ID,
		ProviderID: block.ProviderID,
		Date:       block.Date,
		StartTime:  block.StartTime,
		EndTime:    block.EndTime,
		Reason:     block.Reason,
	})
	return block, nil
}

// GetProviderSchedule returns the provider's day: business hours, the
// non-cancelled appointments and blocked time.
func (s *Service) GetProviderSchedule(ctx context.Context, providerID string, date model.Date) (*model.ProviderSchedule, error) {
	if date.IsZero() {
		return nil, errors.NewValidation("date is required", nil)
	}
	provider, err := s.registry.Provider(providerID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.rlock(date)
	defer unlock()

	appts, err := s.store.ListByDate(ctx, date, &model.AppointmentFilters{ProviderID: provider.ID})
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	blocks, err := s.store.ListBlocks(ctx, provider.ID, date)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	schedule := &model.ProviderSchedule{
		ProviderID:   provider.ID,
		Date:         date,
		Appointments: appts,
		Blocked:      blocks,
	}
	if hours, open := s.catalog.HoursFor(date); open {
		schedule.Hours = &hours
	}
	return schedule, nil
}

// SendConfirmation records that a confirmation went out and hands it to the
// notifier. Delivery failures are logged and never fail the request.
func (s *Service) SendConfirmation(ctx context.Context, id uuid.UUID, req *model.ConfirmationRequest) (*model.Appointment, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, errors.NewValidation("invalid confirmation request", err)
	}

	appt, err := s.markConfirmationSent(ctx, id, req.Method)
	if err != nil {
		return nil, err
	}

	payload := event.NewAppointmentPayload(appt, appt.UpdatedAt)
	payload.Method = req.Method
	s.emit(ctx, model.EventConfirmationRequested, payload)
	s.record(ctx, audit.ActionConfirmation, appt, map[string]interface{}{"method": string(req.Method)})

	if s.notifier != nil {
		if _, err := s.notifier.SendConfirmation(ctx, appt, req.Method, req.Recipient); err != nil {
			s.logger.WithContext(ctx).Error(err, "failed to deliver confirmation",
				"appointment_id", appt.ID.String(),
				"method", string(req.Method),
			)
		}
	}
	return appt, nil
}

func (s *Service) markConfirmationSent(ctx context.Context, id uuid.UUID, method model.ReminderMethod) (*model.Appointment, error) {
	appt, unlock, err := s.lockAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if appt.Status.Terminal() {
		return nil, errors.NewInvalidTransition(string(appt.Status), "confirmation")
	}

	now := s.now()
	appt.ConfirmationSent = true
	appt.ConfirmationMethod = &method
	appt.ConfirmationSentAt = &now
	appt.UpdatedAt = now

	if err := s.store.Update(ctx, appt); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to update appointment: %w", err))
	}
	return appt, nil
}
