package registry

import (
	"fmt"
	"sort"

	"github.com/mero-vet/vet-clinic-app-sub000/config"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/catalog"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/model"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/errors"
)

// Registry holds the clinic's providers and rooms. It is built once at
// startup and read-only afterwards.
type Registry struct {
	catalog   *catalog.Catalog
	providers map[string]model.Provider
	rooms     map[string]model.Room
}

func New(cat *catalog.Catalog, providers []model.Provider, rooms []model.Room) (*Registry, error) {
	r := &Registry{
		catalog:   cat,
		providers: make(map[string]model.Provider, len(providers)),
		rooms:     make(map[string]model.Room, len(rooms)),
	}

	for _, p := range providers {
		if p.ID == "" {
			return nil, fmt.Errorf("provider id is required")
		}
		if !p.Kind.IsProvider() {
			return nil, fmt.Errorf("provider %q: %q is not a provider kind", p.ID, p.Kind)
		}
		if _, dup := r.providers[p.ID]; dup {
			return nil, fmt.Errorf("duplicate provider %q", p.ID)
		}
		r.providers[p.ID] = p
	}

	for _, room := range rooms {
		if room.ID == "" {
			return nil, fmt.Errorf("room id is required")
		}
		if !room.Kind.IsRoom() {
			return nil, fmt.Errorf("room %q: %q is not a room kind", room.ID, room.Kind)
		}
		if _, dup := r.rooms[room.ID]; dup {
			return nil, fmt.Errorf("duplicate room %q", room.ID)
		}
		for _, typeID := range room.SupportedTypes {
			if _, err := cat.AppointmentType(typeID); err != nil {
				return nil, fmt.Errorf("room %q supports unknown appointment type %q", room.ID, typeID)
			}
		}
		room.SupportedTypes = append([]string(nil), room.SupportedTypes...)
		room.Equipment = append([]string(nil), room.Equipment...)
		r.rooms[room.ID] = room
	}

	return r, nil
}

// FromConfig builds the registry from the resources section, falling back
// to the default roster when none is configured.
func FromConfig(cat *catalog.Catalog, cfg config.ResourcesConfig) (*Registry, error) {
	if len(cfg.Providers) == 0 && len(cfg.Rooms) == 0 {
		providers, rooms := DefaultResources()
		return New(cat, providers, rooms)
	}

	providers := make([]model.Provider, 0, len(cfg.Providers))
	for _, pc := range cfg.Providers {
		providers = append(providers, model.Provider{ID: pc.ID, Name: pc.Name, Kind: model.ResourceKind(pc.Kind)})
	}
	rooms := make([]model.Room, 0, len(cfg.Rooms))
	for _, rc := range cfg.Rooms {
		rooms = append(rooms, model.Room{
			ID:             rc.ID,
			Name:           rc.Name,
			Kind:           model.ResourceKind(rc.Kind),
			SupportedTypes: rc.SupportedTypes,
			Equipment:      rc.Equipment,
			Floor:          rc.Floor,
		})
	}
	return New(cat, providers, rooms)
}

func (r *Registry) Provider(id string) (*model.Provider, error) {
	p, ok := r.providers[id]
	if !ok {
		return nil, errors.NewNotFound(fmt.Sprintf("provider %q", id), nil)
	}
	return &p, nil
}

func (r *Registry) Room(id string) (*model.Room, error) {
	room, ok := r.rooms[id]
	if !ok {
		return nil, errors.NewNotFound(fmt.Sprintf("room %q", id), nil)
	}
	room.SupportedTypes = append([]string(nil), room.SupportedTypes...)
	room.Equipment = append([]string(nil), room.Equipment...)
	return &room, nil
}

func (r *Registry) Providers() []model.Provider {
	out := make([]model.Provider, 0, len(r.providers))
	for _, p := range r.providers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) Rooms() []model.Room {
	out := make([]model.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		out = append(out, room)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CanPerform reports whether the provider's kind may perform the type.
func (r *Registry) CanPerform(providerID, typeID string) (bool, error) {
	p, err := r.Provider(providerID)
	if err != nil {
		return false, err
	}
	return r.catalog.ProviderCanPerform(p.Kind, typeID), nil
}

// RoomSupports reports whether the room is set up for the type.
func (r *Registry) RoomSupports(roomID, typeID string) (bool, error) {
	room, err := r.Room(roomID)
	if err != nil {
		return false, err
	}
	return room.Supports(typeID), nil
}

// ProvidersFor lists providers able to perform the type, ordered by id.
func (r *Registry) ProvidersFor(typeID string) []model.Provider {
	var out []model.Provider
	for _, p := range r.Providers() {
		if r.catalog.ProviderCanPerform(p.Kind, typeID) {
			out = append(out, p)
		}
	}
	return out
}

// RoomsFor lists rooms supporting the type, ordered by id.
func (r *Registry) RoomsFor(typeID string) []model.Room {
	var out []model.Room
	for _, room := range r.Rooms() {
		if room.Supports(typeID) {
			out = append(out, room)
		}
	}
	return out
}
