package model

// Priority ranks both appointment types and waitlist entries.
type Priority string

const (
	PriorityEmergency   Priority = "emergency"
	PriorityUrgent      Priority = "urgent"
	PriorityRoutine     Priority = "routine"
	PriorityConvenience Priority = "convenience"
)

var priorityRank = map[Priority]int{
	PriorityEmergency:   0,
	PriorityUrgent:      1,
	PriorityRoutine:     2,
	PriorityConvenience: 3,
}

// Rank returns the sort rank of p; lower ranks are served first. Unknown
// priorities sort with routine.
func (p Priority) Rank() int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return priorityRank[PriorityRoutine]
}

func (p Priority) Valid() bool {
	_, ok := priorityRank[p]
	return ok
}

type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// AppointmentType is immutable catalog data.
type AppointmentType struct {
	ID                 string         `json:"id"`
	Name               string         `json:"name"`
	Duration           int            `json:"duration"`
	Buffer             int            `json:"buffer"`
	RequiredResources  []ResourceKind `json:"required_resources"`
	Color              string         `json:"color,omitempty"`
	Price              PriceRange     `json:"price"`
	RequiresPreAuth    bool           `json:"requires_pre_auth,omitempty"`
	RequiresPrivacy    bool           `json:"requires_privacy,omitempty"`
	Priority           Priority       `json:"priority,omitempty"`
	AllowDoubleBooking bool           `json:"allow_double_booking,omitempty"`
}

// TotalDuration is the occupied time: visit plus turnover buffer.
func (t *AppointmentType) TotalDuration() int {
	return t.Duration + t.Buffer
}

func (t *AppointmentType) IsEmergency() bool {
	return t.Priority == PriorityEmergency
}

// Requires reports whether kind is among the type's required resources.
func (t *AppointmentType) Requires(kind ResourceKind) bool {
	for _, k := range t.RequiredResources {
		if k == kind {
			return true
		}
	}
	return false
}

// RequiredProviderKinds returns the provider kinds that may perform the type.
// An empty result means any provider kind qualifies.
func (t *AppointmentType) RequiredProviderKinds() []ResourceKind {
	var kinds []ResourceKind
	for _, k := range t.RequiredResources {
		if k.IsProvider() {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// RequiredRoomKinds returns the room kinds the type can run in.
func (t *AppointmentType) RequiredRoomKinds() []ResourceKind {
	var kinds []ResourceKind
	for _, k := range t.RequiredResources {
		if k.IsRoom() {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

type BusinessHours struct {
	Open   ClockTime `json:"open"`
	Close  ClockTime `json:"close"`
	Closed bool      `json:"closed"`
}

func (h BusinessHours) Interval() Interval {
	return Interval{Start: h.Open, End: h.Close}
}

type LunchBreak struct {
	Start     ClockTime      `json:"start"`
	End       ClockTime      `json:"end"`
	AppliesTo []ResourceKind `json:"applies_to"`
}

func (l LunchBreak) Enabled() bool {
	return l.End > l.Start
}

func (l LunchBreak) AppliesToKind(kind ResourceKind) bool {
	for _, k := range l.AppliesTo {
		if k == kind {
			return true
		}
	}
	return false
}

func (l LunchBreak) Interval() Interval {
	return Interval{Start: l.Start, End: l.End}
}

type SchedulingRules struct {
	LunchBreak              LunchBreak `json:"lunch_break"`
	AdvanceBookingDays      int        `json:"advance_booking_days"`
	SameDayCutoff           ClockTime  `json:"same_day_cutoff"`
	CancellationWindowHours int        `json:"cancellation_window_hours"`
	NoShowLimit             int        `json:"no_show_limit"`
	EmergencySlotReserve    int        `json:"emergency_slot_reserve"`
}

type ReminderRule struct {
	DaysBefore int            `json:"days_before"`
	Method     ReminderMethod `json:"method"`
	Message    string         `json:"message,omitempty"`
}
