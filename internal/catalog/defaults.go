package catalog

import (
	"time"

	"github.com/mero-vet/vet-clinic-app-sub000/internal/model"
)

func hm(h, m int) model.ClockTime { return model.NewClockTime(h, m) }

// DefaultSource is a small-animal practice: weekday hours 08:00-18:00,
// Saturday mornings, closed Sunday.
func DefaultSource() Source {
	weekday := model.BusinessHours{Open: hm(8, 0), Close: hm(18, 0)}

	return Source{
		Types: []model.AppointmentType{
			{
				ID: "wellness", Name: "Wellness Exam", Duration: 30, Buffer: 10,
				RequiredResources: []model.ResourceKind{model.KindVeterinarian, model.KindExamRoom},
				Color:             "#4caf50", Price: model.PriceRange{Min: 55, Max: 85},
				Priority: model.PriorityRoutine,
			},
			{
				ID: "vaccination", Name: "Vaccination", Duration: 15, Buffer: 5,
				RequiredResources: []model.ResourceKind{model.KindVeterinarian, model.KindTechnician, model.KindExamRoom},
				Color:             "#2196f3", Price: model.PriceRange{Min: 25, Max: 60},
				Priority: model.PriorityRoutine, AllowDoubleBooking: true,
			},
			{
				ID: "follow_up", Name: "Follow-up Visit", Duration: 20, Buffer: 5,
				RequiredResources: []model.ResourceKind{model.KindVeterinarian, model.KindExamRoom},
				Color:             "#9c27b0", Price: model.PriceRange{Min: 35, Max: 55},
				Priority: model.PriorityRoutine, AllowDoubleBooking: true,
			},
			{
				ID: "sick_visit", Name: "Sick Visit", Duration: 30, Buffer: 10,
				RequiredResources: []model.ResourceKind{model.KindVeterinarian, model.KindExamRoom},
				Color:             "#ff9800", Price: model.PriceRange{Min: 65, Max: 120},
				Priority: model.PriorityUrgent,
			},
			{
				ID: "emergency", Name: "Emergency", Duration: 60, Buffer: 15,
				RequiredResources: []model.ResourceKind{model.KindVeterinarian, model.KindExamRoom},
				Color:             "#f44336", Price: model.PriceRange{Min: 150, Max: 600},
				Priority: model.PriorityEmergency,
			},
			{
				ID: "surgery", Name: "Surgery", Duration: 120, Buffer: 30,
				RequiredResources: []model.ResourceKind{model.KindVeterinarian, model.KindSurgerySuite},
				Color:             "#795548", Price: model.PriceRange{Min: 400, Max: 2500},
				RequiresPreAuth: true, Priority: model.PriorityRoutine,
			},
			{
				ID: "dental", Name: "Dental Cleaning", Duration: 90, Buffer: 30,
				RequiredResources: []model.ResourceKind{model.KindVeterinarian, model.KindDentalSuite},
				Color:             "#00bcd4", Price: model.PriceRange{Min: 300, Max: 900},
				RequiresPreAuth: true, Priority: model.PriorityRoutine,
			},
			{
				ID: "imaging", Name: "X-Ray / Ultrasound", Duration: 45, Buffer: 15,
				RequiredResources: []model.ResourceKind{model.KindVeterinarian, model.KindTechnician, model.KindImagingRoom},
				Color:             "#607d8b", Price: model.PriceRange{Min: 150, Max: 450},
				Priority: model.PriorityRoutine,
			},
			{
				ID: "grooming", Name: "Grooming", Duration: 60, Buffer: 15,
				RequiredResources: []model.ResourceKind{model.KindGroomer, model.KindGroomingStation},
				Color:             "#e91e63", Price: model.PriceRange{Min: 40, Max: 120},
				Priority: model.PriorityConvenience,
			},
			{
				ID: "euthanasia", Name: "Euthanasia Consultation", Duration: 45, Buffer: 15,
				RequiredResources: []model.ResourceKind{model.KindVeterinarian, model.KindExamRoom},
				Color:             "#9e9e9e", Price: model.PriceRange{Min: 100, Max: 300},
				RequiresPrivacy: true, Priority: model.PriorityUrgent,
			},
		},
		Hours: map[time.Weekday]model.BusinessHours{
			time.Monday:    weekday,
			time.Tuesday:   weekday,
			time.Wednesday: weekday,
			time.Thursday:  weekday,
			time.Friday:    weekday,
			time.Saturday:  {Open: hm(9, 0), Close: hm(14, 0)},
			time.Sunday:    {Closed: true},
		},
		Rules: model.SchedulingRules{
			LunchBreak: model.LunchBreak{
				Start:     hm(12, 0),
				End:       hm(13, 0),
				AppliesTo: []model.ResourceKind{model.KindVeterinarian},
			},
			AdvanceBookingDays:      90,
			SameDayCutoff:           hm(16, 0),
			CancellationWindowHours: 24,
			NoShowLimit:             3,
			EmergencySlotReserve:    2,
		},
		Reminders: map[string][]model.ReminderRule{
			"surgery": {
				{DaysBefore: 7, Method: model.ReminderMethodEmail, Message: "Pre-surgical instructions: bloodwork must be completed before {date}."},
				{DaysBefore: 1, Method: model.ReminderMethodSMS, Message: "No food after midnight before surgery on {date} at {time}."},
			},
			"dental": {
				{DaysBefore: 3, Method: model.ReminderMethodEmail},
				{DaysBefore: 1, Method: model.ReminderMethodSMS, Message: "No food after midnight before the dental cleaning at {time}."},
			},
			"vaccination": {
				{DaysBefore: 1, Method: model.ReminderMethodSMS},
			},
		},
		DefaultReminders: []model.ReminderRule{
			{DaysBefore: 2, Method: model.ReminderMethodEmail},
			{DaysBefore: 1, Method: model.ReminderMethodSMS},
		},
	}
}

// Default returns the built-in veterinary catalog.
func Default() *Catalog {
	c, err := New(DefaultSource())
	if err != nil {
		panic(err)
	}
	return c
}
