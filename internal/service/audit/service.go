package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/mero-vet/vet-clinic-app-sub000/internal/model"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/logger"
)

// Actions recorded on the audit trail.
const (
	ActionCreate       = "appointment.create"
	ActionReschedule   = "appointment.reschedule"
	ActionCancel       = "appointment.cancel"
	ActionStatusChange = "appointment.status_change"
	ActionConfirmation = "appointment.confirmation"
	ActionBlockTime    = "provider.block_time"
	ActionWaitlist     = "waitlist.update"
)

// Service writes an append-only JSON trail of every booking mutation. It
// is separate from the operational log so it can be shipped and retained
// on its own schedule.
type Service struct {
	log *zap.Logger
}

func NewService(log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{log: log.Named("audit")}
}

// NewLogger builds the production JSON logger for the trail. An empty path
// writes to stdout.
func NewLogger(path string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	cfg.Sampling = nil
	if path != "" {
		cfg.OutputPaths = []string{path}
	}
	return cfg.Build()
}

func requestFields(ctx context.Context) []zap.Field {
	if id, ok := ctx.Value(logger.RequestIDKey).(string); ok && id != "" {
		return []zap.Field{zap.String("request_id", id)}
	}
	return nil
}

// Record logs a mutation of appt.
func (s *Service) Record(ctx context.Context, action string, appt *model.Appointment, details map[string]interface{}) {
	fields := append(requestFields(ctx),
		zap.String("appointment_id", appt.ID.String()),
		zap.String("provider_id", appt.ProviderID),
		zap.String("client_id", appt.ClientID),
		zap.String("patient_id", appt.PatientID),
		zap.String("date", appt.Date.String()),
		zap.String("start_time", appt.StartTime.String()),
		zap.String("status", string(appt.Status)),
	)
	if len(details) > 0 {
		fields = append(fields, zap.Any("details", details))
	}
	s.log.Info(action, fields...)
}

// RecordBlock logs a provider time block.
func (s *Service) RecordBlock(ctx context.Context, block *model.BlockedInterval) {
	s.log.Info(ActionBlockTime, append(requestFields(ctx),
		zap.String("block_id", block.ID.String()),
		zap.String("provider_id", block.ProviderID),
		zap.String("date", block.Date.String()),
		zap.String("start_time", block.StartTime.String()),
		zap.String("end_time", block.EndTime.String()),
		zap.String("reason", block.Reason),
	)...)
}

// RecordWaitlist logs a waitlist entry change.
func (s *Service) RecordWaitlist(ctx context.Context, entry *model.WaitlistEntry) {
	s.log.Info(ActionWaitlist, append(requestFields(ctx),
		zap.String("entry_id", entry.ID.String()),
		zap.String("client_id", entry.ClientID),
		zap.String("appointment_type_id", entry.AppointmentTypeID),
		zap.String("status", string(entry.Status)),
	)...)
}
