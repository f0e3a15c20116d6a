package appointment

import (
	"context"

	"github.com/mero-vet/vet-clinic-app-sub000/internal/model"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/errors"
)

// CreateRecurringAppointments books the template once per period starting
// on the template's date. At most Count occurrences are attempted and none
// after EndDate. Occurrences rejected by a booking conflict or a booking
// rule are reported as skipped and the series continues; any other error
// stops the series and is returned with what was created so far.
func (s *Service) CreateRecurringAppointments(ctx context.Context, req *model.RecurringAppointmentRequest) (*model.RecurrenceResult, error) {
	if err := s.validator.Validate(&req.Pattern); err != nil {
		return nil, errors.NewValidation("invalid recurrence pattern", err)
	}
	if err := s.validator.Validate(&req.Template); err != nil {
		return nil, errors.NewValidation("invalid appointment template", err)
	}
	base := req.Template.Date
	if end := req.Pattern.EndDate; end != nil && end.Before(base) {
		return nil, errors.NewValidation("end date must not precede the first occurrence", nil)
	}
	if _, _, err := s.resolve(req.Template.AppointmentTypeID, req.Template.ProviderID, req.Template.RoomID); err != nil {
		return nil, err
	}

	result := &model.RecurrenceResult{
		Created: []*model.Appointment{},
		Skipped: []model.SkippedOccurrence{},
	}
	for n := 0; n < req.Pattern.Count; n++ {
		date := req.Pattern.Frequency.Next(base, n)
		if end := req.Pattern.EndDate; end != nil && date.After(*end) {
			break
		}

		occurrence := req.Template
		occurrence.Date = date
		appt, err := s.CreateAppointment(ctx, &occurrence)
		switch {
		case err == nil:
			result.Created = append(result.Created, appt)
		case errors.IsConflict(err) || errors.IsValidation(err):
			s.metrics.RecurrenceSkipped.Inc()
			result.Skipped = append(result.Skipped, model.SkippedOccurrence{
				Date:   date,
				Time:   *occurrence.StartTime,
				Reason: skipReason(err),
			})
		default:
			return result, err
		}
	}

	s.logger.WithContext(ctx).Info("recurring series created",
		"frequency", string(req.Pattern.Frequency),
		"created", len(result.Created),
		"skipped", len(result.Skipped),
	)
	return result, nil
}

func skipReason(err error) string {
	if reason := errors.ConflictReason(err); reason != "" {
		return reason
	}
	return err.Error()
}
