package delivery

import (
	"context"
	"fmt"

	"currycrave/internal/geocoding"
	"currycrave/internal/pincode"
	"currycrave/internal/structs"
	"currycrave/pkg/config"
	"currycrave/pkg/logger"
	settingsRepo "currycrave/pkg/repository/postgres/settings_repo"
	"currycrave/pkg/utils"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	Module = fx.Provide(New)
)

const (
	customLocationArea = "Custom Location"
	noCoordinatesNote  = "Automatic radius calculation not available for this pincode. Please manually add servicable pincodes."
)

type (
	Params struct {
		fx.In
		Config       config.IConfig
		Logger       logger.Logger
		Directory    pincode.Directory
		Gateway      geocoding.Gateway
		SettingsRepo settingsRepo.Repo
	}

	Service interface {
		CheckEligibility(ctx context.Context, code string) (structs.EligibilityResult, error)
		LookupPincode(ctx context.Context, code string) (structs.PincodeRecord, error)
		GetSettings(ctx context.Context) (structs.DeliverySettings, error)

		AddServicablePincode(ctx context.Context, req structs.AddServicablePincodeRequest) (structs.DeliverySettings, error)
		RemoveServicablePincode(ctx context.Context, code string, version int64) (structs.DeliverySettings, error)

		SetRestaurantLocations(ctx context.Context, req structs.SetRestaurantLocationsRequest) (structs.DeliverySettings, error)
		AddRestaurantLocation(ctx context.Context, req structs.AddRestaurantLocationRequest) (structs.DeliverySettings, error)
		RemoveRestaurantLocation(ctx context.Context, code string, version int64) (structs.DeliverySettings, error)
		ToggleRestaurantLocation(ctx context.Context, code string, version int64) (structs.DeliverySettings, error)

		UpdateAreaSettings(ctx context.Context, req structs.UpdateAreaSettingsRequest) (structs.AreaSettingsResult, error)
		ScanNearby(ctx context.Context, code string) (structs.ScanResult, error)
		PincodesInRadius(ctx context.Context) (structs.RadiusListing, error)
	}

	service struct {
		logger       logger.Logger
		directory    pincode.Directory
		locator      locator
		engine       *Engine
		scanner      *Scanner
		settingsRepo settingsRepo.Repo
	}
)

func New(p Params) Service {
	loc := locator{directory: p.Directory, gateway: p.Gateway}
	opts := ScanOptions{
		Range:      p.Config.GetInt("delivery.scan.range"),
		BatchSize:  p.Config.GetInt("delivery.scan.batch_size"),
		BatchDelay: p.Config.GetDuration("delivery.scan.batch_delay"),
	}

	return &service{
		logger:       p.Logger,
		directory:    p.Directory,
		locator:      loc,
		engine:       NewEngine(loc, p.Logger),
		scanner:      NewScanner(loc, p.Logger, opts),
		settingsRepo: p.SettingsRepo,
	}
}

func (s *service) CheckEligibility(ctx context.Context, code string) (structs.EligibilityResult, error) {
	code, err := validPincode(code)
	if err != nil {
		return structs.EligibilityResult{}, err
	}

	settings, err := s.readSettings(ctx)
	if err != nil {
		return structs.EligibilityResult{}, err
	}

	result, err := s.engine.Check(ctx, code, settings)
	if err != nil {
		s.logger.Error(ctx, "->engine.Check", zap.String("pincode", code), zap.Error(err))
		return structs.EligibilityResult{}, err
	}
	return result, nil
}

func (s *service) LookupPincode(ctx context.Context, code string) (structs.PincodeRecord, error) {
	code, err := validPincode(code)
	if err != nil {
		return structs.PincodeRecord{}, err
	}

	rec, ok := s.directory.Lookup(code)
	if !ok {
		return structs.PincodeRecord{}, structs.ErrNotFound
	}
	return rec, nil
}

func (s *service) GetSettings(ctx context.Context) (structs.DeliverySettings, error) {
	return s.readSettings(ctx)
}

func (s *service) AddServicablePincode(ctx context.Context, req structs.AddServicablePincodeRequest) (structs.DeliverySettings, error) {
	code, err := validPincode(req.Pincode)
	if err != nil {
		return structs.DeliverySettings{}, err
	}

	return s.mutate(ctx, req.Version, func(settings *structs.DeliverySettings) error {
		for i := range settings.ServicablePincodes {
			if settings.ServicablePincodes[i].Pincode == code {
				settings.ServicablePincodes[i].Area = utils.FirstNonEmpty(req.Area, settings.ServicablePincodes[i].Area)
				settings.ServicablePincodes[i].IsActive = true
				return nil
			}
		}

		area := req.Area
		if area == "" {
			if rec, ok := s.directory.Lookup(code); ok {
				area = rec.Area
			}
		}
		settings.ServicablePincodes = append(settings.ServicablePincodes, structs.ServicablePincode{
			Pincode:  code,
			Area:     area,
			IsActive: true,
		})
		return nil
	})
}

func (s *service) RemoveServicablePincode(ctx context.Context, code string, version int64) (structs.DeliverySettings, error) {
	code, err := validPincode(code)
	if err != nil {
		return structs.DeliverySettings{}, err
	}

	return s.mutate(ctx, version, func(settings *structs.DeliverySettings) error {
		for i, p := range settings.ServicablePincodes {
			if p.Pincode == code {
				settings.ServicablePincodes = append(settings.ServicablePincodes[:i], settings.ServicablePincodes[i+1:]...)
				return nil
			}
		}
		return structs.ErrNotFound
	})
}

func (s *service) SetRestaurantLocations(ctx context.Context, req structs.SetRestaurantLocationsRequest) (structs.DeliverySettings, error) {
	inputs := make([]structs.RestaurantLocationInput, 0, len(req.Locations))
	index := map[string]int{}
	for _, in := range req.Locations {
		code, err := validPincode(in.Pincode)
		if err != nil {
			return structs.DeliverySettings{}, err
		}
		in.Pincode = code

		if i, dup := index[code]; dup {
			inputs[i] = in
			continue
		}
		index[code] = len(inputs)
		inputs = append(inputs, in)
	}
	if len(inputs) > structs.MaxRestaurantLocations {
		return structs.DeliverySettings{}, structs.ErrTooManyLocations
	}

	return s.mutate(ctx, req.Version, func(settings *structs.DeliverySettings) error {
		locations := make([]structs.RestaurantLocation, 0, len(inputs))
		for i, in := range inputs {
			active := true
			if in.IsActive != nil {
				active = *in.IsActive
			}
			loc := s.describeLocation(ctx, in.Pincode)
			loc.Name = utils.FirstNonEmpty(in.Name, fmt.Sprintf("Location %d", i+1))
			loc.IsActive = active
			locations = append(locations, loc)
		}

		settings.RestaurantLocations = locations
		settings.SyncLegacyPincode()
		return nil
	})
}

func (s *service) AddRestaurantLocation(ctx context.Context, req structs.AddRestaurantLocationRequest) (structs.DeliverySettings, error) {
	code, err := validPincode(req.Pincode)
	if err != nil {
		return structs.DeliverySettings{}, err
	}

	return s.mutate(ctx, req.Version, func(settings *structs.DeliverySettings) error {
		existing := indexOfLocation(settings.RestaurantLocations, code)
		if existing == -1 && len(settings.RestaurantLocations) >= structs.MaxRestaurantLocations {
			return structs.ErrTooManyLocations
		}

		loc := s.describeLocation(ctx, code)
		loc.IsActive = true
		if existing == -1 {
			loc.Name = utils.FirstNonEmpty(req.Name, fmt.Sprintf("Location %d", len(settings.RestaurantLocations)+1))
			settings.RestaurantLocations = append(settings.RestaurantLocations, loc)
		} else {
			loc.Name = utils.FirstNonEmpty(req.Name, settings.RestaurantLocations[existing].Name, fmt.Sprintf("Location %d", existing+1))
			settings.RestaurantLocations[existing] = loc
		}

		settings.SyncLegacyPincode()
		return nil
	})
}

func (s *service) RemoveRestaurantLocation(ctx context.Context, code string, version int64) (structs.DeliverySettings, error) {
	code, err := validPincode(code)
	if err != nil {
		return structs.DeliverySettings{}, err
	}

	return s.mutate(ctx, version, func(settings *structs.DeliverySettings) error {
		i := indexOfLocation(settings.RestaurantLocations, code)
		if i == -1 {
			return structs.ErrNotFound
		}
		settings.RestaurantLocations = append(settings.RestaurantLocations[:i], settings.RestaurantLocations[i+1:]...)
		settings.SyncLegacyPincode()
		return nil
	})
}

func (s *service) ToggleRestaurantLocation(ctx context.Context, code string, version int64) (structs.DeliverySettings, error) {
	code, err := validPincode(code)
	if err != nil {
		return structs.DeliverySettings{}, err
	}

	return s.mutate(ctx, version, func(settings *structs.DeliverySettings) error {
		i := indexOfLocation(settings.RestaurantLocations, code)
		if i == -1 {
			return structs.ErrNotFound
		}
		settings.RestaurantLocations[i].IsActive = !settings.RestaurantLocations[i].IsActive
		settings.SyncLegacyPincode()
		return nil
	})
}

func (s *service) UpdateAreaSettings(ctx context.Context, req structs.UpdateAreaSettingsRequest) (structs.AreaSettingsResult, error) {
	if req.DeliveryRadius != nil && !validRadius(*req.DeliveryRadius) {
		return structs.AreaSettingsResult{}, structs.ErrInvalidRadius
	}

	var code string
	if req.RestaurantPincode != nil {
		var err error
		if code, err = validPincode(*req.RestaurantPincode); err != nil {
			return structs.AreaSettingsResult{}, err
		}
	}

	var placeholder bool
	if code != "" {
		_, found := s.locator.locate(ctx, code, false)
		placeholder = !found
	}

	saved, err := s.mutate(ctx, req.Version, func(settings *structs.DeliverySettings) error {
		if code != "" {
			settings.RestaurantPincode = code
		}
		if req.DeliveryRadius != nil {
			settings.DeliveryRadius = *req.DeliveryRadius
		}
		return nil
	})
	if err != nil {
		return structs.AreaSettingsResult{}, err
	}

	if placeholder {
		s.logger.Warn(ctx, "restaurant pincode not found anywhere, saving placeholder", zap.String("pincode", code))
		s.directory.Upsert(structs.PincodeRecord{
			Pincode: code,
			Area:    customLocationArea,
			City:    structs.UnknownLabel,
			State:   structs.UnknownLabel,
		})
	}

	result := structs.AreaSettingsResult{
		RestaurantPincode: saved.RestaurantPincode,
		DeliveryRadius:    saved.DeliveryRadius,
		RestaurantArea:    customLocationArea,
		RestaurantCity:    structs.UnknownLabel,
		RestaurantState:   structs.UnknownLabel,
		Version:           saved.Version,
	}
	if rec, ok := s.directory.Lookup(saved.RestaurantPincode); ok {
		result.RestaurantArea = utils.FirstNonEmpty(rec.Area, customLocationArea)
		result.RestaurantCity = utils.FirstNonEmpty(rec.City, structs.UnknownLabel)
		result.RestaurantState = utils.FirstNonEmpty(rec.State, structs.UnknownLabel)
		result.HasCoordinates = rec.Located()
	}
	if !result.HasCoordinates {
		result.Note = noCoordinatesNote
	}
	return result, nil
}

func (s *service) ScanNearby(ctx context.Context, code string) (structs.ScanResult, error) {
	if code != "" {
		var err error
		if code, err = validPincode(code); err != nil {
			return structs.ScanResult{}, err
		}
	}

	settings, err := s.readSettings(ctx)
	if err != nil {
		return structs.ScanResult{}, err
	}

	center := utils.FirstNonEmpty(code, restaurantPincode(settings))
	if center == "" {
		return structs.ScanResult{}, structs.ErrNoLocationsConfigured
	}

	result, err := s.scanner.Scan(ctx, center, settings.DeliveryRadius)
	if err != nil {
		s.logger.Warn(ctx, "->scanner.Scan", zap.String("center", center), zap.Error(err))
		return structs.ScanResult{}, err
	}
	return result, nil
}

func (s *service) PincodesInRadius(ctx context.Context) (structs.RadiusListing, error) {
	settings, err := s.readSettings(ctx)
	if err != nil {
		return structs.RadiusListing{}, err
	}

	center := restaurantPincode(settings)
	if center == "" {
		return structs.RadiusListing{}, structs.ErrNoLocationsConfigured
	}

	rec, ok := s.directory.Lookup(center)
	if !ok || !rec.Located() {
		return structs.RadiusListing{}, structs.ErrLocationsUnresolvable
	}

	pincodes := s.directory.Within(rec.Coordinates(), settings.DeliveryRadius)
	return structs.RadiusListing{
		RestaurantPincode: center,
		RestaurantArea:    rec.Area,
		DeliveryRadius:    settings.DeliveryRadius,
		TotalPincodes:     len(pincodes),
		Pincodes:          pincodes,
	}, nil
}

func (s *service) readSettings(ctx context.Context) (structs.DeliverySettings, error) {
	settings, err := s.settingsRepo.Read(ctx)
	if err != nil {
		s.logger.Error(ctx, "->settingsRepo.Read", zap.Error(err))
		return structs.DeliverySettings{}, err
	}
	return settings, nil
}

// mutate applies fn to the current settings and writes them back. A non-zero
// version must match the stored one.
func (s *service) mutate(ctx context.Context, version int64, fn func(*structs.DeliverySettings) error) (structs.DeliverySettings, error) {
	settings, err := s.readSettings(ctx)
	if err != nil {
		return structs.DeliverySettings{}, err
	}
	if version != 0 && version != settings.Version {
		return structs.DeliverySettings{}, structs.ErrConflict
	}

	if err = fn(&settings); err != nil {
		return structs.DeliverySettings{}, err
	}

	saved, err := s.settingsRepo.Write(ctx, settings)
	if err != nil {
		s.logger.Error(ctx, "->settingsRepo.Write", zap.Int64("version", settings.Version), zap.Error(err))
		return structs.DeliverySettings{}, err
	}
	return saved, nil
}

func (s *service) describeLocation(ctx context.Context, code string) structs.RestaurantLocation {
	loc := structs.RestaurantLocation{
		Pincode: code,
		Area:    structs.UnknownLabel,
		City:    structs.UnknownLabel,
		State:   structs.UnknownLabel,
	}
	if rec, ok := s.locator.locate(ctx, code, false); ok {
		loc.Area = utils.FirstNonEmpty(rec.Area, structs.UnknownLabel)
		loc.City = utils.FirstNonEmpty(rec.City, structs.UnknownLabel)
		loc.State = utils.FirstNonEmpty(rec.State, structs.UnknownLabel)
	}
	return loc
}

// restaurantPincode is the legacy single pincode, or the first configured
// location when the legacy field was never set.
func restaurantPincode(settings structs.DeliverySettings) string {
	if settings.RestaurantPincode != "" {
		return settings.RestaurantPincode
	}
	if len(settings.RestaurantLocations) > 0 {
		return settings.RestaurantLocations[0].Pincode
	}
	return ""
}

func indexOfLocation(locations []structs.RestaurantLocation, code string) int {
	for i, loc := range locations {
		if loc.Pincode == code {
			return i
		}
	}
	return -1
}

func validPincode(code string) (string, error) {
	code = utils.NormalizePincode(code)
	if !utils.IsValidPincode(code) {
		return "", structs.ErrInvalidPincode
	}
	return code, nil
}

func validRadius(r float64) bool {
	return r >= structs.MinDeliveryRadius && r <= structs.MaxDeliveryRadius
}
