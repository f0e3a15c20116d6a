package model

// ResourceKind is the closed set of bookable resource kinds.
type ResourceKind string

const (
	KindVeterinarian ResourceKind = "veterinarian"
	KindTechnician   ResourceKind = "technician"
	KindGroomer      ResourceKind = "groomer"

	KindExamRoom        ResourceKind = "exam_room"
	KindSurgerySuite    ResourceKind = "surgery_suite"
	KindDentalSuite     ResourceKind = "dental_suite"
	KindGroomingStation ResourceKind = "grooming_station"
	KindImagingRoom     ResourceKind = "imaging_room"
)

func (k ResourceKind) IsProvider() bool {
	switch k {
	case KindVeterinarian, KindTechnician, KindGroomer:
		return true
	}
	return false
}

func (k ResourceKind) IsRoom() bool {
	switch k {
	case KindExamRoom, KindSurgerySuite, KindDentalSuite, KindGroomingStation, KindImagingRoom:
		return true
	}
	return false
}

func (k ResourceKind) Valid() bool {
	return k.IsProvider() || k.IsRoom()
}

type Provider struct {
	ID   string       `json:"id"`
	Name string       `json:"name"`
	Kind ResourceKind `json:"kind"`
}

type Room struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Kind           ResourceKind `json:"kind"`
	SupportedTypes []string     `json:"supported_types"`
	Equipment      []string     `json:"equipment,omitempty"`
	Floor          int          `json:"floor"`
}

// Supports reports whether the room is set up for the appointment type.
func (r *Room) Supports(typeID string) bool {
	for _, t := range r.SupportedTypes {
		if t == typeID {
			return true
		}
	}
	return false
}

// HasEquipment reports whether the room carries every listed tag.
func (r *Room) HasEquipment(tags ...string) bool {
	for _, want := range tags {
		found := false
		for _, have := range r.Equipment {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
