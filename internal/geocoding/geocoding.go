package geocoding

import (
	"context"
	"errors"
	"time"

	"currycrave/internal/pincode"
	"currycrave/internal/structs"
	"currycrave/pkg/config"
	"currycrave/pkg/logger"
	"currycrave/pkg/redis"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	Module = fx.Options(
		fx.Provide(NewIndiaPost),
		fx.Provide(NewNominatim),
		fx.Provide(New),
	)
)

const sharedCachePrefix = "pincode."

type (
	Params struct {
		fx.In
		Config      config.IConfig
		Logger      logger.Logger
		Directory   pincode.Directory
		Areas       AreaLookup
		Coordinates CoordinateLookup
		Redis       redis.Client `optional:"true"`
	}

	// Gateway resolves pincodes through the external lookups. Every record it
	// produces is written into the pincode directory before it is returned,
	// so a later directory lookup for the same code is a cache hit.
	Gateway interface {
		Resolve(ctx context.Context, code string) (structs.PincodeRecord, bool)
	}

	gateway struct {
		logger    logger.Logger
		directory pincode.Directory
		areas     AreaLookup
		coords    CoordinateLookup
		shared    redis.Client
		sharedTTL time.Duration
	}
)

func New(p Params) Gateway {
	return &gateway{
		logger:    p.Logger,
		directory: p.Directory,
		areas:     p.Areas,
		coords:    p.Coordinates,
		shared:    p.Redis,
		sharedTTL: p.Config.GetDuration("geocoding.cache_ttl"),
	}
}

// Resolve combines the area and coordinate lookups. Upstream failures are
// logged and swallowed: the result is absent only when both lookups fail.
func (g *gateway) Resolve(ctx context.Context, code string) (structs.PincodeRecord, bool) {
	if rec, ok := g.fromShared(ctx, code); ok {
		g.directory.Upsert(rec)
		return rec, true
	}

	area, areaErr := g.areas.LookupArea(ctx, code)
	if areaErr != nil {
		g.logLookupFailure(ctx, "->areas.LookupArea", code, areaErr)
	}

	coords, coordErr := g.coords.LookupCoordinates(ctx, code)
	if coordErr != nil {
		g.logLookupFailure(ctx, "->coords.LookupCoordinates", code, coordErr)
	}

	if areaErr != nil && coordErr != nil {
		return structs.PincodeRecord{}, false
	}

	rec := structs.PincodeRecord{
		Pincode: code,
		Area:    structs.UnknownLabel,
		City:    structs.UnknownLabel,
		State:   structs.UnknownLabel,
		Region:  structs.UnknownLabel,
	}
	if areaErr == nil {
		rec.Area, rec.City, rec.State, rec.Region = area.Area, area.City, area.State, area.Region
	}
	if coordErr == nil && !coords.IsZero() {
		rec.Lat, rec.Lng = coords.Lat, coords.Lng
		rec.HasCoordinates = true
	}

	g.directory.Upsert(rec)
	g.toShared(ctx, rec)

	g.logger.Info(ctx, "resolved pincode",
		zap.String("pincode", code),
		zap.String("area", rec.Area),
		zap.String("city", rec.City),
		zap.Bool("hasCoordinates", rec.HasCoordinates),
	)

	// the directory keeps a located record over a weaker one
	if stored, ok := g.directory.Lookup(code); ok {
		return stored, true
	}
	return rec, true
}

func (g *gateway) fromShared(ctx context.Context, code string) (structs.PincodeRecord, bool) {
	if g.shared == nil {
		return structs.PincodeRecord{}, false
	}

	var rec structs.PincodeRecord
	if err := g.shared.FindObj(ctx, sharedCachePrefix+code, &rec); err != nil {
		if !errors.Is(err, redis.ErrNotFound) {
			g.logger.Warn(ctx, "->shared.FindObj", zap.String("pincode", code), zap.Error(err))
		}
		return structs.PincodeRecord{}, false
	}
	if !rec.Located() {
		return structs.PincodeRecord{}, false
	}
	rec.Pincode = code
	return rec, true
}

func (g *gateway) toShared(ctx context.Context, rec structs.PincodeRecord) {
	if g.shared == nil || !rec.Located() {
		return
	}
	if err := g.shared.SaveObj(ctx, sharedCachePrefix+rec.Pincode, rec, g.sharedTTL); err != nil {
		g.logger.Warn(ctx, "->shared.SaveObj", zap.String("pincode", rec.Pincode), zap.Error(err))
	}
}

func (g *gateway) logLookupFailure(ctx context.Context, op, code string, err error) {
	if errors.Is(err, structs.ErrUnresolvable) {
		g.logger.Info(ctx, op, zap.String("pincode", code), zap.Error(err))
		return
	}
	g.logger.Warn(ctx, op, zap.String("pincode", code), zap.Error(err))
}
