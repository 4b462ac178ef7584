package delivery

import (
	"context"
	"sync"
	"time"

	"currycrave/internal/pincode"
	"currycrave/internal/structs"
	"currycrave/pkg/logger"
	"currycrave/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const noCenterCoordinatesNote = "Geocoding service could not find coordinates for this pincode."

type ScanOptions struct {
	Range      int
	BatchSize  int
	BatchDelay time.Duration
}

// Scanner discovers deliverable pincodes numerically adjacent to a center.
// Every candidate it resolves ends up in the directory.
type Scanner struct {
	locator locator
	logger  logger.Logger
	opts    ScanOptions
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewScanner(loc locator, log logger.Logger, opts ScanOptions) *Scanner {
	if opts.Range <= 0 {
		opts.Range = 30
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 5
	}
	if opts.BatchDelay < 0 {
		opts.BatchDelay = 0
	}
	return &Scanner{
		locator: loc,
		logger:  log,
		opts:    opts,
		sleep:   sleepCtx,
	}
}

func (s *Scanner) Scan(ctx context.Context, center string, radiusKm float64) (structs.ScanResult, error) {
	ctx, capture := s.logger.ContextWithCapture(ctx, "scan")

	result := structs.ScanResult{
		RestaurantPincode: center,
		RestaurantArea:    structs.UnknownLabel,
		DeliveryRadius:    radiusKm,
		NearbyPincodes:    []structs.NearbyPincode{},
	}

	origin, ok := s.locator.locate(ctx, center, true)
	if ok {
		result.RestaurantArea = utils.FirstNonEmpty(origin.Area, structs.UnknownLabel)
		result.RestaurantCity = origin.City
		result.RestaurantState = origin.State
	}
	if !ok || !origin.Located() {
		s.logger.Warn(ctx, "scan center has no coordinates", zap.String("pincode", center))
		result.Note = noCenterCoordinatesNote
		return result, nil
	}

	candidates := s.candidates(center)
	result.ScannedCount = len(candidates)

	var (
		mu    sync.Mutex
		found []structs.NearbyPincode
	)
	for start := 0; start < len(candidates); start += s.opts.BatchSize {
		if err := ctx.Err(); err != nil {
			return structs.ScanResult{}, err
		}

		end := start + s.opts.BatchSize
		if end > len(candidates) {
			end = len(candidates)
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, code := range candidates[start:end] {
			code := code
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}

				rec, ok := s.locator.locate(gctx, code, true)
				if !ok || !rec.Located() || code == center {
					return nil
				}

				d := utils.DistanceKm(origin.Lat, origin.Lng, rec.Lat, rec.Lng)
				if d > radiusKm {
					return nil
				}

				mu.Lock()
				found = append(found, structs.NearbyPincode{
					Pincode:  rec.Pincode,
					Area:     rec.Area,
					City:     rec.City,
					State:    rec.State,
					Distance: d,
				})
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return structs.ScanResult{}, err
		}

		if end < len(candidates) {
			if err := s.sleep(ctx, s.opts.BatchDelay); err != nil {
				return structs.ScanResult{}, err
			}
		}
	}

	if found != nil {
		pincode.SortByDistance(found)
		result.NearbyPincodes = found
	}

	capture(
		zap.String("center", center),
		zap.Int("scanned", result.ScannedCount),
		zap.Int("found", len(result.NearbyPincodes)),
	)
	return result, nil
}

// candidates lists the numeric neighbours of center, center included, clamped
// to the valid pincode range.
func (s *Scanner) candidates(center string) []string {
	base, err := utils.PincodeToInt(center)
	if err != nil {
		return nil
	}

	lo, hi := base-s.opts.Range, base+s.opts.Range
	if lo < 0 {
		lo = 0
	}
	if hi > utils.MaxPincode {
		hi = utils.MaxPincode
	}

	seen := make(map[string]struct{}, hi-lo+1)
	out := make([]string, 0, hi-lo+1)
	for n := lo; n <= hi; n++ {
		code := utils.FormatPincode(n)
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
