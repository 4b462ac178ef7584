package delivery

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"currycrave/internal/structs"
	"currycrave/pkg/logger"
	"currycrave/pkg/utils"

	"go.uber.org/zap"
)

const (
	legacyLocationName  = "Main Location"
	defaultManualArea   = "Your area"
	defaultLocationName = "Restaurant"
)

// Engine decides whether a pincode is deliverable under a settings snapshot.
type Engine struct {
	locator locator
	logger  logger.Logger
}

func NewEngine(loc locator, log logger.Logger) *Engine {
	return &Engine{locator: loc, logger: log}
}

type candidateLocation struct {
	location structs.RestaurantLocation
	distance float64
}

// Check never reports an unresolvable pincode as "not deliverable": it yields
// an unknown status instead. Errors are returned only for configuration
// problems (wrapping structs.ErrConfiguration).
func (e *Engine) Check(ctx context.Context, code string, settings structs.DeliverySettings) (structs.EligibilityResult, error) {
	for _, p := range settings.ServicablePincodes {
		if p.Pincode == code && p.IsActive {
			area := utils.FirstNonEmpty(p.Area, defaultManualArea)
			return structs.EligibilityResult{
				Deliverable: true,
				Status:      structs.EligibilityDeliverable,
				Source:      structs.SourceManual,
				Area:        area,
				Message:     fmt.Sprintf("We deliver to %s!", utils.FirstNonEmpty(p.Area, code)),
			}, nil
		}
	}

	customer, ok := e.locator.locate(ctx, code, false)
	if !ok || !customer.Located() {
		e.logger.Info(ctx, "pincode could not be verified", zap.String("pincode", code))
		return structs.EligibilityResult{
			Status:  structs.EligibilityUnknown,
			Source:  structs.SourceUnknown,
			Message: "Sorry, we could not verify this pincode. Please contact us for delivery options.",
		}, nil
	}

	locations := e.activeLocations(settings)
	if len(locations) == 0 {
		return structs.EligibilityResult{}, structs.ErrNoLocationsConfigured
	}

	nearest, found := e.nearest(ctx, customer, locations)
	if !found {
		e.logger.Error(ctx, "no restaurant location could be resolved", zap.Int("locations", len(locations)))
		return structs.EligibilityResult{}, structs.ErrLocationsUnresolvable
	}

	distance := nearest.distance
	deliverable := distance <= settings.DeliveryRadius
	label := utils.FirstNonEmpty(nearest.location.Name, nearest.location.Area, nearest.location.Pincode, defaultLocationName)

	result := structs.EligibilityResult{
		Deliverable:     deliverable,
		Status:          structs.EligibilityNotDeliverable,
		Source:          structs.SourceCalculated,
		Area:            customer.Area,
		City:            customer.City,
		Distance:        &distance,
		NearestLocation: label,
		DeliveryRadius:  settings.DeliveryRadius,
		Message: fmt.Sprintf("Sorry, %s is %s KM away from %s. We deliver within %s KM only.",
			customer.Area, formatKm(distance), label, formatKm(settings.DeliveryRadius)),
	}
	if deliverable {
		result.Status = structs.EligibilityDeliverable
		result.Message = fmt.Sprintf("Great! We deliver to %s (%s KM from %s)", customer.Area, formatKm(distance), label)
	}
	return result, nil
}

// activeLocations falls back to the legacy single pincode when no location
// in the list is active.
func (e *Engine) activeLocations(settings structs.DeliverySettings) []structs.RestaurantLocation {
	active := make([]structs.RestaurantLocation, 0, len(settings.RestaurantLocations))
	for _, loc := range settings.RestaurantLocations {
		if loc.IsActive {
			active = append(active, loc)
		}
	}

	if len(active) == 0 && settings.RestaurantPincode != "" {
		area := defaultLocationName
		if rec, ok := e.locator.directory.Lookup(settings.RestaurantPincode); ok && rec.Area != "" {
			area = rec.Area
		}
		active = append(active, structs.RestaurantLocation{
			Pincode:  settings.RestaurantPincode,
			Name:     legacyLocationName,
			Area:     area,
			IsActive: true,
		})
	}
	return active
}

// nearest skips locations without coordinates. The first location at the
// minimum distance wins.
func (e *Engine) nearest(ctx context.Context, customer structs.PincodeRecord, locations []structs.RestaurantLocation) (candidateLocation, bool) {
	var (
		best  candidateLocation
		found bool
	)
	best.distance = math.Inf(1)

	for _, loc := range locations {
		rec, ok := e.locator.locate(ctx, loc.Pincode, true)
		if !ok || !rec.Located() {
			e.logger.Warn(ctx, "skipping restaurant location without coordinates", zap.String("pincode", loc.Pincode))
			continue
		}

		d := utils.DistanceKm(rec.Lat, rec.Lng, customer.Lat, customer.Lng)
		if d < best.distance {
			best = candidateLocation{location: loc, distance: d}
			found = true
		}
	}
	return best, found
}

func formatKm(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
