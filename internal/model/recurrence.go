package model

type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

// Next returns the occurrence date that follows base by n periods.
func (f Frequency) Next(base Date, n int) Date {
	switch f {
	case FrequencyBiweekly:
		return base.AddDays(14 * n)
	case FrequencyMonthly:
		return base.AddMonths(n)
	default:
		return base.AddDays(7 * n)
	}
}

type RecurrencePattern struct {
	Frequency Frequency `json:"frequency" validate:"required,oneof=weekly biweekly monthly"`
	Count     int       `json:"count" validate:"required,min=1,max=104"`
	EndDate   *Date     `json:"end_date,omitempty"`
}

type RecurringAppointmentRequest struct {
	Template CreateAppointmentRequest `json:"template"`
	Pattern  RecurrencePattern        `json:"pattern"`
}

// SkippedOccurrence records an occurrence the expander could not book.
type SkippedOccurrence struct {
	Date   Date      `json:"date"`
	Time   ClockTime `json:"time"`
	Reason string    `json:"reason"`
}

type RecurrenceResult struct {
	Created []*Appointment      `json:"created"`
	Skipped []SkippedOccurrence `json:"skipped"`
}
