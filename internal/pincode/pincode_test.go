package pincode

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"currycrave/internal/structs"
	"currycrave/pkg/config"
	"currycrave/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func located(code string, lat, lng float64) structs.PincodeRecord {
	return structs.PincodeRecord{
		Pincode:        code,
		Lat:            lat,
		Lng:            lng,
		Area:           "Area " + code,
		City:           "Hyderabad",
		State:          "Telangana",
		HasCoordinates: true,
	}
}

func TestDirectory_LookupMiss(t *testing.T) {
	d := NewDirectory()

	_, ok := d.Lookup("500001")
	assert.False(t, ok)
	assert.Equal(t, 0, d.Len())
}

func TestDirectory_UpsertAndLookup(t *testing.T) {
	d := NewDirectory()
	d.Upsert(located("500001", 17.385, 78.4867))

	rec, ok := d.Lookup("500001")
	require.True(t, ok)
	assert.Equal(t, 17.385, rec.Lat)
	assert.True(t, rec.Located())
}

func TestDirectory_UpsertUpgradesPlaceholder(t *testing.T) {
	d := NewDirectory()
	d.Upsert(structs.PincodeRecord{Pincode: "500001", Area: "Custom Location", City: structs.UnknownLabel, State: structs.UnknownLabel})
	d.Upsert(located("500001", 17.385, 78.4867))

	rec, _ := d.Lookup("500001")
	assert.True(t, rec.HasCoordinates)
	assert.Equal(t, "Area 500001", rec.Area)
}

func TestDirectory_UpsertNeverDowngrades(t *testing.T) {
	d := NewDirectory()
	d.Upsert(located("500001", 17.385, 78.4867))
	d.Upsert(structs.PincodeRecord{Pincode: "500001", Area: "Custom Location"})

	rec, _ := d.Lookup("500001")
	assert.True(t, rec.HasCoordinates)
	assert.Equal(t, "Area 500001", rec.Area)
}

func TestDirectory_ConcurrentUpserts(t *testing.T) {
	d := NewDirectory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			code := fmt.Sprintf("5000%02d", i%10)
			d.Upsert(located(code, 17+float64(i%10)/100, 78.4))
			_, _ = d.Lookup(code)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, d.Len())
	for i := 0; i < 10; i++ {
		rec, ok := d.Lookup(fmt.Sprintf("5000%02d", i))
		require.True(t, ok)
		assert.Equal(t, 17+float64(i)/100, rec.Lat)
	}
}

func TestDirectory_Within(t *testing.T) {
	d := NewDirectory()
	d.Seed(map[string]structs.PincodeRecord{
		"500001": located("500001", 17.385, 78.4867),
		"500002": located("500002", 17.394, 78.4867),
		"500003": located("500003", 17.412, 78.4867),
		"500004": located("500004", 18.385, 78.4867),
		"500005": {Pincode: "500005", Area: "No coords"},
	})

	got := d.Within(structs.Coordinates{Lat: 17.385, Lng: 78.4867}, 5)
	require.Len(t, got, 3)
	assert.Equal(t, "500001", got[0].Pincode)
	assert.Equal(t, 0.0, got[0].Distance)
	assert.Equal(t, "500002", got[1].Pincode)
	assert.Equal(t, 1.0, got[1].Distance)
	assert.Equal(t, "500003", got[2].Pincode)
}

func TestDirectory_Within_KeepsRoundedBoundary(t *testing.T) {
	d := NewDirectory()
	// 5.04 km north rounds to 5.0 and stays inside a 5 km radius
	d.Upsert(located("500010", 17.385+0.045326, 78.4867))

	got := d.Within(structs.Coordinates{Lat: 17.385, Lng: 78.4867}, 5)
	require.Len(t, got, 1)
	assert.Equal(t, 5.0, got[0].Distance)
}

func TestSortByDistance_TiesByPincode(t *testing.T) {
	list := []structs.NearbyPincode{
		{Pincode: "500009", Distance: 2},
		{Pincode: "500003", Distance: 2},
		{Pincode: "500001", Distance: 1},
	}
	SortByDistance(list)

	assert.Equal(t, []string{"500001", "500003", "500009"}, []string{list[0].Pincode, list[1].Pincode, list[2].Pincode})
}

func TestParseSeed(t *testing.T) {
	records, err := ParseSeed([]byte(`{"pincodes": {
		"500001": {"lat": 17.385, "lng": 78.4867, "area": "Hyderabad GPO", "city": "Hyderabad", "state": "Telangana"},
		"500099": {"lat": 0, "lng": 0},
		"5000": {"lat": 1, "lng": 1}
	}}`))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.True(t, records["500001"].HasCoordinates)
	assert.Equal(t, "Hyderabad GPO", records["500001"].Area)
	assert.False(t, records["500099"].HasCoordinates)
	assert.Equal(t, structs.UnknownLabel, records["500099"].City)

	_, err = ParseSeed([]byte(`not json`))
	assert.Error(t, err)
}

func TestNew_SeedsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pincodes.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"pincodes": {"500001": {"lat": 17.385, "lng": 78.4867, "area": "GPO"}}}`), 0o600))

	d := New(Params{
		Config: config.NewFromMap(map[string]interface{}{"pincode.seed_path": path}),
		Logger: logger.NewNop(),
	})

	assert.Equal(t, 1, d.Len())
}

func TestNew_MissingSeedIsNotFatal(t *testing.T) {
	d := New(Params{
		Config: config.NewFromMap(map[string]interface{}{"pincode.seed_path": filepath.Join(t.TempDir(), "missing.json")}),
		Logger: logger.NewNop(),
	})

	assert.Equal(t, 0, d.Len())
}

func TestBundledSeedLoads(t *testing.T) {
	records, err := LoadSeedFile(filepath.Join("..", "..", "data", "pincodes.json"))
	require.NoError(t, err)
	assert.NotEmpty(t, records)
	assert.True(t, records["500001"].HasCoordinates)
}
