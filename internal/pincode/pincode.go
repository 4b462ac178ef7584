package pincode

import (
	"context"
	"sync"

	"currycrave/internal/structs"
	"currycrave/pkg/config"
	"currycrave/pkg/logger"
	"currycrave/pkg/utils"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

var (
	Module = fx.Provide(New)
)

type (
	Params struct {
		fx.In
		Config config.IConfig
		Logger logger.Logger
	}

	// Directory is the process-wide pincode cache. Lookups never do I/O.
	Directory interface {
		Lookup(code string) (structs.PincodeRecord, bool)
		Upsert(record structs.PincodeRecord)
		Seed(records map[string]structs.PincodeRecord) int
		Within(center structs.Coordinates, radiusKm float64) []structs.NearbyPincode
		Len() int
	}

	directory struct {
		mu      sync.RWMutex
		records map[string]structs.PincodeRecord
	}
)

// New builds the directory and seeds it from pincode.seed_path. A missing or
// broken seed file leaves the directory empty.
func New(p Params) Directory {
	d := NewDirectory()

	ctx := context.Background()
	path := p.Config.GetString("pincode.seed_path")
	records, err := LoadSeedFile(path)
	if err != nil {
		p.Logger.Error(ctx, "failed to load pincode seed, starting with empty directory", zap.String("path", path), zap.Error(err))
		return d
	}

	n := d.Seed(records)
	p.Logger.Info(ctx, "pincode directory seeded", zap.String("path", path), zap.Int("count", n))
	return d
}

func NewDirectory() Directory {
	return &directory{
		records: map[string]structs.PincodeRecord{},
	}
}

func (d *directory) Lookup(code string) (structs.PincodeRecord, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	rec, ok := d.records[code]
	return rec, ok
}

// Upsert stores record under record.Pincode. A record with coordinates is
// never replaced by one without them.
func (d *directory) Upsert(record structs.PincodeRecord) {
	if record.Pincode == "" {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if existing, ok := d.records[record.Pincode]; ok && existing.Located() && !record.Located() {
		return
	}
	d.records[record.Pincode] = record
}

func (d *directory) Seed(records map[string]structs.PincodeRecord) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	for code, rec := range records {
		rec.Pincode = code
		d.records[code] = rec
	}
	return len(records)
}

// Within lists located records no further than radiusKm from center, nearest
// first. A padded bounding box drops far records before the haversine check.
func (d *directory) Within(center structs.Coordinates, radiusKm float64) []structs.NearbyPincode {
	bound := geo.NewBoundAroundPoint(orb.Point{center.Lng, center.Lat}, boundPadding(radiusKm))

	d.mu.RLock()
	defer d.mu.RUnlock()

	out := []structs.NearbyPincode{}
	for code, rec := range d.records {
		if !rec.Located() || !bound.Contains(orb.Point{rec.Lng, rec.Lat}) {
			continue
		}
		distance := utils.DistanceKm(center.Lat, center.Lng, rec.Lat, rec.Lng)
		if distance > radiusKm {
			continue
		}
		out = append(out, structs.NearbyPincode{
			Pincode:  code,
			Area:     rec.Area,
			City:     rec.City,
			State:    rec.State,
			Distance: distance,
		})
	}

	SortByDistance(out)
	return out
}

// boundPadding widens the box in meters: orb measures on a slightly larger
// earth radius and distances are rounded to 0.1 km afterwards.
func boundPadding(radiusKm float64) float64 {
	return (radiusKm*1.01 + 0.1) * 1000
}

func (d *directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.records)
}

// SortByDistance orders ascending by distance, ties broken by pincode.
func SortByDistance(list []structs.NearbyPincode) {
	slices.SortStableFunc(list, func(a, b structs.NearbyPincode) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		case a.Pincode < b.Pincode:
			return -1
		case a.Pincode > b.Pincode:
			return 1
		}
		return 0
	})
}
