package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mero-vet/vet-clinic-app-sub000/config"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/catalog"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/model"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/errors"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	providers, rooms := DefaultResources()
	r, err := New(catalog.Default(), providers, rooms)
	require.NoError(t, err)
	return r
}

func TestRegistry_Lookup(t *testing.T) {
	r := newTestRegistry(t)

	p, err := r.Provider("vet-1")
	require.NoError(t, err)
	assert.Equal(t, model.KindVeterinarian, p.Kind)

	_, err = r.Provider("vet-99")
	assert.True(t, errors.IsNotFound(err))

	room, err := r.Room("surgery-1")
	require.NoError(t, err)
	assert.True(t, room.HasEquipment("anesthesia"))
	room.SupportedTypes[0] = "grooming"

	again, err := r.Room("surgery-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"surgery"}, again.SupportedTypes)

	_, err = r.Room("closet")
	assert.True(t, errors.IsNotFound(err))
}

func TestRegistry_Capabilities(t *testing.T) {
	r := newTestRegistry(t)

	ok, err := r.CanPerform("tech-1", "surgery")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = r.CanPerform("tech-1", "vaccination")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = r.CanPerform("nobody", "vaccination")
	assert.True(t, errors.IsNotFound(err))

	ok, err = r.RoomSupports("exam-1", "surgery")
	require.NoError(t, err)
	assert.False(t, ok)

	groomers := r.ProvidersFor("grooming")
	require.Len(t, groomers, 1)
	assert.Equal(t, "groomer-1", groomers[0].ID)

	rooms := r.RoomsFor("euthanasia")
	ids := make([]string, 0, len(rooms))
	for _, room := range rooms {
		ids = append(ids, room.ID)
	}
	assert.Equal(t, []string{"comfort-1", "exam-1", "exam-2"}, ids)
}

func TestNew_Rejects(t *testing.T) {
	cat := catalog.Default()

	_, err := New(cat, []model.Provider{{ID: "x", Kind: model.KindExamRoom}}, nil)
	assert.Error(t, err)

	_, err = New(cat, []model.Provider{{ID: "x", Kind: model.KindVeterinarian}, {ID: "x", Kind: model.KindVeterinarian}}, nil)
	assert.Error(t, err)

	_, err = New(cat, nil, []model.Room{{ID: "r", Kind: model.KindVeterinarian}})
	assert.Error(t, err)

	_, err = New(cat, nil, []model.Room{{ID: "r", Kind: model.KindExamRoom, SupportedTypes: []string{"boarding"}}})
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	cat := catalog.Default()

	r, err := FromConfig(cat, config.ResourcesConfig{})
	require.NoError(t, err)
	assert.Len(t, r.Providers(), 4)

	r, err = FromConfig(cat, config.ResourcesConfig{
		Providers: []config.ProviderConfig{{ID: "vet-a", Name: "Dr. A", Kind: "veterinarian"}},
		Rooms:     []config.RoomConfig{{ID: "room-a", Name: "A", Kind: "exam_room", SupportedTypes: []string{"wellness"}}},
	})
	require.NoError(t, err)
	assert.Len(t, r.Providers(), 1)
	assert.Len(t, r.Rooms(), 1)
}
