package delivery

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"currycrave/internal/geocoding"
	"currycrave/internal/pincode"
	"currycrave/internal/structs"
	"currycrave/pkg/config"
	"currycrave/pkg/logger"
)

// restaurant sits at the same point as 500001 in the bundled seed.
var restaurant = structs.Coordinates{Lat: 17.3850, Lng: 78.4867}

func located(code string, latOffset float64, area string) structs.PincodeRecord {
	return structs.PincodeRecord{
		Pincode:        code,
		Lat:            restaurant.Lat + latOffset,
		Lng:            restaurant.Lng,
		Area:           area,
		City:           "Hyderabad",
		State:          "Telangana",
		HasCoordinates: true,
	}
}

// fakeUpstream serves both external lookups from fixed tables and tracks how
// many calls are in flight at once.
type fakeUpstream struct {
	mu     sync.Mutex
	areas  map[string]structs.PincodeArea
	points map[string]structs.Coordinates
	calls  map[string]int

	latency     time.Duration
	onLookup    func(code string)
	inflight    int32
	maxInflight int32
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{
		areas:  map[string]structs.PincodeArea{},
		points: map[string]structs.Coordinates{},
		calls:  map[string]int{},
	}
}

func (f *fakeUpstream) add(rec structs.PincodeRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.areas[rec.Pincode] = structs.PincodeArea{Area: rec.Area, City: rec.City, State: rec.State}
	if rec.HasCoordinates {
		f.points[rec.Pincode] = rec.Coordinates()
	}
}

func (f *fakeUpstream) enter(code string) func() {
	n := atomic.AddInt32(&f.inflight, 1)
	for {
		peak := atomic.LoadInt32(&f.maxInflight)
		if n <= peak || atomic.CompareAndSwapInt32(&f.maxInflight, peak, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls[code]++
	f.mu.Unlock()

	if f.onLookup != nil {
		f.onLookup(code)
	}
	if f.latency > 0 {
		time.Sleep(f.latency)
	}
	return func() { atomic.AddInt32(&f.inflight, -1) }
}

func (f *fakeUpstream) LookupArea(_ context.Context, code string) (structs.PincodeArea, error) {
	defer f.enter(code)()

	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.areas[code]; ok {
		return a, nil
	}
	return structs.PincodeArea{}, fmt.Errorf("%w: %s", structs.ErrUnresolvable, code)
}

func (f *fakeUpstream) LookupCoordinates(_ context.Context, code string) (structs.Coordinates, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.points[code]; ok {
		return p, nil
	}
	return structs.Coordinates{}, fmt.Errorf("%w: %s", structs.ErrUnresolvable, code)
}

func (f *fakeUpstream) callsFor(code string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[code]
}

// memRepo keeps the settings document in memory with the same optimistic
// version check as the postgres repo.
type memRepo struct {
	mu       sync.Mutex
	settings structs.DeliverySettings
	reads    int
	writes   int
}

func newMemRepo(settings structs.DeliverySettings) *memRepo {
	settings.Version = 1
	return &memRepo{settings: settings}
}

func (m *memRepo) Read(_ context.Context) (structs.DeliverySettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	return clone(m.settings), nil
}

func (m *memRepo) Write(_ context.Context, settings structs.DeliverySettings) (structs.DeliverySettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if settings.Version != m.settings.Version {
		return structs.DeliverySettings{}, structs.ErrConflict
	}
	m.writes++
	settings = clone(settings)
	settings.Version++
	settings.UpdatedAt = time.Now()
	m.settings = settings
	return clone(settings), nil
}

func (m *memRepo) current() structs.DeliverySettings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.settings)
}

func clone(s structs.DeliverySettings) structs.DeliverySettings {
	s.RestaurantLocations = append([]structs.RestaurantLocation{}, s.RestaurantLocations...)
	s.ServicablePincodes = append([]structs.ServicablePincode{}, s.ServicablePincodes...)
	return s
}

type fixture struct {
	svc       *service
	repo      *memRepo
	directory pincode.Directory
	upstream  *fakeUpstream
}

func newFixture(t *testing.T, settings structs.DeliverySettings) *fixture {
	t.Helper()

	cfg := config.NewFromMap(map[string]interface{}{
		"delivery.scan.range":       3,
		"delivery.scan.batch_size":  3,
		"delivery.scan.batch_delay": "0s",
	})
	log := logger.NewNop()
	dir := pincode.NewDirectory()
	up := newFakeUpstream()
	repo := newMemRepo(settings)

	gw := geocoding.New(geocoding.Params{
		Config:      cfg,
		Logger:      log,
		Directory:   dir,
		Areas:       up,
		Coordinates: up,
	})

	svc := New(Params{
		Config:       cfg,
		Logger:       log,
		Directory:    dir,
		Gateway:      gw,
		SettingsRepo: repo,
	}).(*service)

	return &fixture{svc: svc, repo: repo, directory: dir, upstream: up}
}

func settingsWith(radius float64, locations ...structs.RestaurantLocation) structs.DeliverySettings {
	s := structs.DefaultDeliverySettings()
	s.DeliveryRadius = radius
	s.RestaurantLocations = append(s.RestaurantLocations, locations...)
	s.SyncLegacyPincode()
	return s
}

func activeLocation(code, name string) structs.RestaurantLocation {
	return structs.RestaurantLocation{Pincode: code, Name: name, IsActive: true}
}
