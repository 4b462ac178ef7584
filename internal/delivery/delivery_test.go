package delivery

import (
	"context"
	"fmt"
	"testing"

	"currycrave/internal/structs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupPincode(t *testing.T) {
	f := newFixture(t, structs.DefaultDeliverySettings())
	f.directory.Upsert(located("500001", 0, "Abids"))

	rec, err := f.svc.LookupPincode(context.Background(), " 500001 ")
	require.NoError(t, err)
	assert.Equal(t, "Abids", rec.Area)

	_, err = f.svc.LookupPincode(context.Background(), "500002")
	assert.ErrorIs(t, err, structs.ErrNotFound)
	assert.Equal(t, 0, f.upstream.callsFor("500002"))

	_, err = f.svc.LookupPincode(context.Background(), "abc")
	assert.ErrorIs(t, err, structs.ErrInvalidInput)
}

func TestAddServicablePincode(t *testing.T) {
	f := newFixture(t, structs.DefaultDeliverySettings())
	f.directory.Upsert(located("500034", 0.07, "Banjara Hills"))
	ctx := context.Background()

	saved, err := f.svc.AddServicablePincode(ctx, structs.AddServicablePincodeRequest{Pincode: "500034"})
	require.NoError(t, err)
	require.Len(t, saved.ServicablePincodes, 1)
	assert.Equal(t, "Banjara Hills", saved.ServicablePincodes[0].Area)
	assert.True(t, saved.ServicablePincodes[0].IsActive)
	assert.Equal(t, int64(2), saved.Version)

	saved, err = f.svc.AddServicablePincode(ctx, structs.AddServicablePincodeRequest{Pincode: "500500", Area: "Far Town"})
	require.NoError(t, err)

	// re-adding updates in place
	saved, err = f.svc.AddServicablePincode(ctx, structs.AddServicablePincodeRequest{Pincode: "500034", Area: "Road No. 12"})
	require.NoError(t, err)
	require.Len(t, saved.ServicablePincodes, 2)
	assert.Equal(t, "500034", saved.ServicablePincodes[0].Pincode)
	assert.Equal(t, "Road No. 12", saved.ServicablePincodes[0].Area)
}

func TestRemoveServicablePincode(t *testing.T) {
	settings := structs.DefaultDeliverySettings()
	settings.ServicablePincodes = []structs.ServicablePincode{
		{Pincode: "500034", Area: "Banjara Hills", IsActive: true},
		{Pincode: "500500", Area: "Far Town", IsActive: true},
	}
	f := newFixture(t, settings)
	ctx := context.Background()

	saved, err := f.svc.RemoveServicablePincode(ctx, "500034", 0)
	require.NoError(t, err)
	require.Len(t, saved.ServicablePincodes, 1)
	assert.Equal(t, "500500", saved.ServicablePincodes[0].Pincode)

	_, err = f.svc.RemoveServicablePincode(ctx, "500034", 0)
	assert.ErrorIs(t, err, structs.ErrNotFound)
	assert.Equal(t, 1, f.repo.writes)
}

func TestSetRestaurantLocations(t *testing.T) {
	f := newFixture(t, structs.DefaultDeliverySettings())
	f.directory.Upsert(located("500001", 0, "Abids"))
	f.upstream.add(located("500034", 0.07, "Banjara Hills"))
	off := false

	saved, err := f.svc.SetRestaurantLocations(context.Background(), structs.SetRestaurantLocationsRequest{
		Locations: []structs.RestaurantLocationInput{
			{Pincode: "500034"},
			{Pincode: "500001", Name: "Abids Kitchen", IsActive: &off},
			{Pincode: "500034", Name: "Banjara Kitchen"},
			{Pincode: "400001"},
		},
	})
	require.NoError(t, err)

	require.Len(t, saved.RestaurantLocations, 3)
	assert.Equal(t, "500034", saved.RestaurantPincode)

	first := saved.RestaurantLocations[0]
	assert.Equal(t, "500034", first.Pincode)
	assert.Equal(t, "Banjara Kitchen", first.Name)
	assert.Equal(t, "Banjara Hills", first.Area)
	assert.True(t, first.IsActive)

	assert.Equal(t, "Abids Kitchen", saved.RestaurantLocations[1].Name)
	assert.False(t, saved.RestaurantLocations[1].IsActive)

	unknown := saved.RestaurantLocations[2]
	assert.Equal(t, "Location 3", unknown.Name)
	assert.Equal(t, structs.UnknownLabel, unknown.Area)
	assert.Equal(t, structs.UnknownLabel, unknown.City)
}

func TestSetRestaurantLocations_Rejects(t *testing.T) {
	f := newFixture(t, structs.DefaultDeliverySettings())

	_, err := f.svc.SetRestaurantLocations(context.Background(), structs.SetRestaurantLocationsRequest{
		Locations: []structs.RestaurantLocationInput{{Pincode: "500001"}, {Pincode: "50001"}},
	})
	assert.ErrorIs(t, err, structs.ErrInvalidInput)

	many := make([]structs.RestaurantLocationInput, 0, 21)
	for i := 0; i < 21; i++ {
		many = append(many, structs.RestaurantLocationInput{Pincode: fmt.Sprintf("5000%02d", i)})
	}
	_, err = f.svc.SetRestaurantLocations(context.Background(), structs.SetRestaurantLocationsRequest{Locations: many})
	assert.ErrorIs(t, err, structs.ErrTooManyLocations)

	assert.Equal(t, 0, f.repo.reads)
	assert.Equal(t, 0, f.repo.writes)
}

func TestAddRestaurantLocation(t *testing.T) {
	f := newFixture(t, structs.DefaultDeliverySettings())
	f.directory.Upsert(located("500001", 0, "Abids"))
	f.directory.Upsert(located("500034", 0.07, "Banjara Hills"))
	ctx := context.Background()

	saved, err := f.svc.AddRestaurantLocation(ctx, structs.AddRestaurantLocationRequest{Pincode: "500001"})
	require.NoError(t, err)
	require.Len(t, saved.RestaurantLocations, 1)
	assert.Equal(t, "Location 1", saved.RestaurantLocations[0].Name)
	assert.Equal(t, "Abids", saved.RestaurantLocations[0].Area)
	assert.Equal(t, "500001", saved.RestaurantPincode)

	saved, err = f.svc.AddRestaurantLocation(ctx, structs.AddRestaurantLocationRequest{Pincode: "500034", Name: "Banjara Kitchen"})
	require.NoError(t, err)
	require.Len(t, saved.RestaurantLocations, 2)

	// duplicate replaces in place and keeps the legacy pincode on the first entry
	saved, err = f.svc.AddRestaurantLocation(ctx, structs.AddRestaurantLocationRequest{Pincode: "500001", Name: "Abids Kitchen"})
	require.NoError(t, err)
	require.Len(t, saved.RestaurantLocations, 2)
	assert.Equal(t, "500001", saved.RestaurantLocations[0].Pincode)
	assert.Equal(t, "Abids Kitchen", saved.RestaurantLocations[0].Name)
	assert.Equal(t, "500001", saved.RestaurantPincode)
}

func TestAddRestaurantLocation_Limit(t *testing.T) {
	locations := make([]structs.RestaurantLocation, 0, structs.MaxRestaurantLocations)
	for i := 0; i < structs.MaxRestaurantLocations; i++ {
		locations = append(locations, activeLocation(fmt.Sprintf("5000%02d", i), fmt.Sprintf("Kitchen %d", i)))
	}
	f := newFixture(t, settingsWith(10, locations...))
	ctx := context.Background()

	_, err := f.svc.AddRestaurantLocation(ctx, structs.AddRestaurantLocationRequest{Pincode: "500099"})
	assert.ErrorIs(t, err, structs.ErrTooManyLocations)
	assert.Equal(t, 0, f.repo.writes)

	saved, err := f.svc.AddRestaurantLocation(ctx, structs.AddRestaurantLocationRequest{Pincode: "500005", Name: "Renamed"})
	require.NoError(t, err)
	assert.Len(t, saved.RestaurantLocations, structs.MaxRestaurantLocations)
	assert.Equal(t, "Renamed", saved.RestaurantLocations[5].Name)
}

func TestRemoveRestaurantLocation_SyncsLegacyPincode(t *testing.T) {
	f := newFixture(t, settingsWith(10,
		activeLocation("500001", "Abids Kitchen"),
		activeLocation("500034", "Banjara Kitchen"),
	))
	ctx := context.Background()

	saved, err := f.svc.RemoveRestaurantLocation(ctx, "500001", 0)
	require.NoError(t, err)
	require.Len(t, saved.RestaurantLocations, 1)
	assert.Equal(t, "500034", saved.RestaurantPincode)

	// the last removal leaves the legacy pincode in place
	saved, err = f.svc.RemoveRestaurantLocation(ctx, "500034", 0)
	require.NoError(t, err)
	assert.Empty(t, saved.RestaurantLocations)
	assert.Equal(t, "500034", saved.RestaurantPincode)

	_, err = f.svc.RemoveRestaurantLocation(ctx, "500034", 0)
	assert.ErrorIs(t, err, structs.ErrNotFound)
}

func TestToggleRestaurantLocation(t *testing.T) {
	f := newFixture(t, settingsWith(10, activeLocation("500001", "Abids Kitchen")))
	ctx := context.Background()

	saved, err := f.svc.ToggleRestaurantLocation(ctx, "500001", 0)
	require.NoError(t, err)
	assert.False(t, saved.RestaurantLocations[0].IsActive)

	saved, err = f.svc.ToggleRestaurantLocation(ctx, "500001", saved.Version)
	require.NoError(t, err)
	assert.True(t, saved.RestaurantLocations[0].IsActive)

	_, err = f.svc.ToggleRestaurantLocation(ctx, "500002", 0)
	assert.ErrorIs(t, err, structs.ErrNotFound)
}

func TestToggleRestaurantLocation_SyncsLegacyPincode(t *testing.T) {
	f := newFixture(t, settingsWith(10,
		activeLocation("500001", "Abids Kitchen"),
		activeLocation("500002", "Nampally Kitchen"),
	))
	f.directory.Upsert(located("500050", 0.01, "Somajiguda"))
	ctx := context.Background()

	code := "500050"
	_, err := f.svc.UpdateAreaSettings(ctx, structs.UpdateAreaSettingsRequest{RestaurantPincode: &code})
	require.NoError(t, err)
	require.Equal(t, "500050", f.repo.current().RestaurantPincode)

	saved, err := f.svc.ToggleRestaurantLocation(ctx, "500002", 0)
	require.NoError(t, err)
	assert.False(t, saved.RestaurantLocations[1].IsActive)
	assert.Equal(t, "500001", saved.RestaurantPincode)
	assert.Equal(t, "500001", f.repo.current().RestaurantPincode)
}

func TestMutations_StaleVersionConflicts(t *testing.T) {
	f := newFixture(t, settingsWith(10, activeLocation("500001", "Abids Kitchen")))
	ctx := context.Background()

	first, err := f.svc.ToggleRestaurantLocation(ctx, "500001", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), first.Version)

	_, err = f.svc.AddServicablePincode(ctx, structs.AddServicablePincodeRequest{Pincode: "500034", Version: 1})
	assert.ErrorIs(t, err, structs.ErrConflict)

	current := f.repo.current()
	assert.Empty(t, current.ServicablePincodes)
	assert.Equal(t, int64(2), current.Version)
}

func TestUpdateAreaSettings_Radius(t *testing.T) {
	f := newFixture(t, settingsWith(10, activeLocation("500001", "Abids Kitchen")))
	f.directory.Upsert(located("500001", 0, "Abids"))
	ctx := context.Background()

	for _, r := range []float64{0, 0.5, 100.5, 101, -3} {
		radius := r
		_, err := f.svc.UpdateAreaSettings(ctx, structs.UpdateAreaSettingsRequest{DeliveryRadius: &radius})
		assert.ErrorIs(t, err, structs.ErrInvalidRadius, r)
	}
	assert.Equal(t, 0, f.repo.writes)
	assert.Equal(t, float64(10), f.repo.current().DeliveryRadius)

	radius := 15.0
	res, err := f.svc.UpdateAreaSettings(ctx, structs.UpdateAreaSettingsRequest{DeliveryRadius: &radius})
	require.NoError(t, err)
	assert.Equal(t, 15.0, res.DeliveryRadius)
	assert.Equal(t, "500001", res.RestaurantPincode)
	assert.Equal(t, "Abids", res.RestaurantArea)
	assert.True(t, res.HasCoordinates)
	assert.Empty(t, res.Note)
}

func TestUpdateAreaSettings_UnresolvablePincodeSavesPlaceholder(t *testing.T) {
	f := newFixture(t, structs.DefaultDeliverySettings())
	code := "400001"

	res, err := f.svc.UpdateAreaSettings(context.Background(), structs.UpdateAreaSettingsRequest{RestaurantPincode: &code})
	require.NoError(t, err)

	assert.Equal(t, "400001", res.RestaurantPincode)
	assert.Equal(t, "Custom Location", res.RestaurantArea)
	assert.False(t, res.HasCoordinates)
	assert.NotEmpty(t, res.Note)
	assert.Equal(t, "400001", f.repo.current().RestaurantPincode)

	rec, ok := f.directory.Lookup("400001")
	require.True(t, ok)
	assert.False(t, rec.Located())
}

func TestUpdateAreaSettings_ConflictLeavesDirectoryUntouched(t *testing.T) {
	f := newFixture(t, settingsWith(10, activeLocation("500001", "Abids Kitchen")))
	code := "400001"

	_, err := f.svc.UpdateAreaSettings(context.Background(), structs.UpdateAreaSettingsRequest{
		RestaurantPincode: &code,
		Version:           7,
	})
	assert.ErrorIs(t, err, structs.ErrConflict)
	assert.Equal(t, 0, f.repo.writes)

	_, ok := f.directory.Lookup("400001")
	assert.False(t, ok)
}

func TestUpdateAreaSettings_ResolvesPincodeThroughGateway(t *testing.T) {
	f := newFixture(t, structs.DefaultDeliverySettings())
	f.upstream.add(located("500034", 0.07, "Banjara Hills"))
	code := "500034"

	res, err := f.svc.UpdateAreaSettings(context.Background(), structs.UpdateAreaSettingsRequest{RestaurantPincode: &code})
	require.NoError(t, err)

	assert.Equal(t, "Banjara Hills", res.RestaurantArea)
	assert.Equal(t, "Hyderabad", res.RestaurantCity)
	assert.True(t, res.HasCoordinates)
}

func TestPincodesInRadius(t *testing.T) {
	f := newFixture(t, settingsWith(5, activeLocation("500001", "Abids Kitchen")))
	f.directory.Upsert(located("500001", 0, "Abids"))
	f.directory.Upsert(located("500002", 0.02, "Near"))
	f.directory.Upsert(located("500003", 0.3, "Far"))
	f.directory.Upsert(structs.PincodeRecord{Pincode: "500004", Area: "No Coordinates"})

	res, err := f.svc.PincodesInRadius(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "500001", res.RestaurantPincode)
	assert.Equal(t, "Abids", res.RestaurantArea)
	assert.Equal(t, 2, res.TotalPincodes)
	require.Len(t, res.Pincodes, 2)
	assert.Equal(t, "500001", res.Pincodes[0].Pincode)
	assert.Equal(t, "500002", res.Pincodes[1].Pincode)
	assert.Equal(t, 0, f.upstream.callsFor("500001"))
}

func TestPincodesInRadius_NotConfigured(t *testing.T) {
	f := newFixture(t, settingsWith(5, activeLocation("500001", "Abids Kitchen")))

	_, err := f.svc.PincodesInRadius(context.Background())
	assert.ErrorIs(t, err, structs.ErrConfiguration)

	empty := newFixture(t, structs.DefaultDeliverySettings())
	_, err = empty.svc.PincodesInRadius(context.Background())
	assert.ErrorIs(t, err, structs.ErrNoLocationsConfigured)
}
