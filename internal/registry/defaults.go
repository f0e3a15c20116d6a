package registry

import "github.com/mero-vet/vet-clinic-app-sub000/internal/model"

// DefaultResources is the roster used when no resources are configured.
func DefaultResources() ([]model.Provider, []model.Room) {
	providers := []model.Provider{
		{ID: "vet-1", Name: "Dr. Sarah Chen", Kind: model.KindVeterinarian},
		{ID: "vet-2", Name: "Dr. Marcus Webb", Kind: model.KindVeterinarian},
		{ID: "tech-1", Name: "Jamie Ortiz", Kind: model.KindTechnician},
		{ID: "groomer-1", Name: "Priya Nair", Kind: model.KindGroomer},
	}

	general := []string{"wellness", "vaccination", "follow_up", "sick_visit", "emergency", "euthanasia"}
	rooms := []model.Room{
		{ID: "exam-1", Name: "Exam Room 1", Kind: model.KindExamRoom, SupportedTypes: general, Equipment: []string{"exam_table", "scale"}, Floor: 1},
		{ID: "exam-2", Name: "Exam Room 2", Kind: model.KindExamRoom, SupportedTypes: general, Equipment: []string{"exam_table"}, Floor: 1},
		{ID: "comfort-1", Name: "Comfort Room", Kind: model.KindExamRoom, SupportedTypes: []string{"euthanasia", "wellness"}, Equipment: []string{"sofa", "private_exit"}, Floor: 1},
		{ID: "surgery-1", Name: "Surgery Suite", Kind: model.KindSurgerySuite, SupportedTypes: []string{"surgery"}, Equipment: []string{"anesthesia", "monitor"}, Floor: 2},
		{ID: "dental-1", Name: "Dental Suite", Kind: model.KindDentalSuite, SupportedTypes: []string{"dental"}, Equipment: []string{"anesthesia", "dental_xray"}, Floor: 2},
		{ID: "imaging-1", Name: "Imaging Room", Kind: model.KindImagingRoom, SupportedTypes: []string{"imaging"}, Equipment: []string{"xray", "ultrasound"}, Floor: 2},
		{ID: "grooming-1", Name: "Grooming Station", Kind: model.KindGroomingStation, SupportedTypes: []string{"grooming"}, Equipment: []string{"tub", "dryer"}, Floor: 1},
	}
	return providers, rooms
}
