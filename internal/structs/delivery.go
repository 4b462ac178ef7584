package structs

import "time"

const (
	MaxRestaurantLocations = 20
	MinDeliveryRadius      = 1.0
	MaxDeliveryRadius      = 100.0
	DefaultDeliveryRadius  = 10.0

	UnknownLabel = "Unknown"
)

const (
	EligibilityDeliverable    = "deliverable"
	EligibilityNotDeliverable = "not_deliverable"
	EligibilityUnknown        = "unknown"

	SourceManual     = "manual"
	SourceCalculated = "calculated"
	SourceUnknown    = "unknown"
)

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsZero reports whether c is the (0,0) "coordinates unknown" sentinel.
func (c Coordinates) IsZero() bool {
	return c.Lat == 0 || c.Lng == 0
}

type PincodeArea struct {
	Area   string `json:"area"`
	City   string `json:"city"`
	State  string `json:"state"`
	Region string `json:"region"`
}

type PincodeRecord struct {
	Pincode        string  `json:"pincode"`
	Lat            float64 `json:"lat"`
	Lng            float64 `json:"lng"`
	Area           string  `json:"area"`
	City           string  `json:"city"`
	State          string  `json:"state"`
	Region         string  `json:"region,omitempty"`
	HasCoordinates bool    `json:"hasCoordinates"`
}

func (r PincodeRecord) Coordinates() Coordinates {
	return Coordinates{Lat: r.Lat, Lng: r.Lng}
}

// Located reports whether the record carries usable coordinates.
func (r PincodeRecord) Located() bool {
	return r.HasCoordinates && !r.Coordinates().IsZero()
}

type RestaurantLocation struct {
	Pincode  string `json:"pincode"`
	Name     string `json:"name"`
	Area     string `json:"area"`
	City     string `json:"city"`
	State    string `json:"state"`
	IsActive bool   `json:"isActive"`
}

type ServicablePincode struct {
	Pincode  string `json:"pincode"`
	Area     string `json:"area"`
	IsActive bool   `json:"isActive"`
}

type DeliverySettings struct {
	RestaurantLocations []RestaurantLocation `json:"restaurantLocations"`
	RestaurantPincode   string               `json:"restaurantPincode"`
	DeliveryRadius      float64              `json:"deliveryRadius"`
	ServicablePincodes  []ServicablePincode  `json:"servicablePincodes"`
	Version             int64                `json:"version"`
	UpdatedAt           time.Time            `json:"updatedAt"`
}

// DefaultDeliverySettings is the document stored on first read.
func DefaultDeliverySettings() DeliverySettings {
	return DeliverySettings{
		RestaurantLocations: []RestaurantLocation{},
		DeliveryRadius:      DefaultDeliveryRadius,
		ServicablePincodes:  []ServicablePincode{},
	}
}

// SyncLegacyPincode points RestaurantPincode at the first location. An empty
// list leaves the legacy field untouched.
func (s *DeliverySettings) SyncLegacyPincode() {
	if len(s.RestaurantLocations) > 0 {
		s.RestaurantPincode = s.RestaurantLocations[0].Pincode
	}
}

func (s DeliverySettings) ActiveServicablePincodes() []ServicablePincode {
	active := make([]ServicablePincode, 0, len(s.ServicablePincodes))
	for _, p := range s.ServicablePincodes {
		if p.IsActive {
			active = append(active, p)
		}
	}
	return active
}

type EligibilityResult struct {
	Deliverable     bool     `json:"deliverable"`
	Status          string   `json:"status"`
	Source          string   `json:"source"`
	Message         string   `json:"message"`
	Area            string   `json:"area,omitempty"`
	City            string   `json:"city,omitempty"`
	Distance        *float64 `json:"distance"`
	NearestLocation string   `json:"nearestLocation,omitempty"`
	DeliveryRadius  float64  `json:"deliveryRadius,omitempty"`
}

type NearbyPincode struct {
	Pincode  string  `json:"pincode"`
	Area     string  `json:"area"`
	City     string  `json:"city"`
	State    string  `json:"state"`
	Distance float64 `json:"distance"`
}

type ScanResult struct {
	RestaurantPincode string          `json:"restaurantPincode"`
	RestaurantArea    string          `json:"restaurantArea"`
	RestaurantCity    string          `json:"restaurantCity,omitempty"`
	RestaurantState   string          `json:"restaurantState,omitempty"`
	DeliveryRadius    float64         `json:"deliveryRadius"`
	ScannedCount      int             `json:"scannedCount"`
	NearbyPincodes    []NearbyPincode `json:"nearbyPincodes"`
	Note              string          `json:"note,omitempty"`
}

type RadiusListing struct {
	RestaurantPincode string          `json:"restaurantPincode"`
	RestaurantArea    string          `json:"restaurantArea"`
	DeliveryRadius    float64         `json:"deliveryRadius"`
	TotalPincodes     int             `json:"totalPincodes"`
	Pincodes          []NearbyPincode `json:"pincodes"`
}

type AreaSettingsResult struct {
	RestaurantPincode string  `json:"restaurantPincode"`
	DeliveryRadius    float64 `json:"deliveryRadius"`
	RestaurantArea    string  `json:"restaurantArea"`
	RestaurantCity    string  `json:"restaurantCity"`
	RestaurantState   string  `json:"restaurantState"`
	HasCoordinates    bool    `json:"hasCoordinates"`
	Note              string  `json:"note,omitempty"`
	Version           int64   `json:"version"`
}

type ValidatePincodeRequest struct {
	Pincode string `json:"pincode"`
}

type AddServicablePincodeRequest struct {
	Pincode string `json:"pincode"`
	Area    string `json:"area"`
	Version int64  `json:"version"`
}

type AddRestaurantLocationRequest struct {
	Pincode string `json:"pincode"`
	Name    string `json:"name"`
	Version int64  `json:"version"`
}

type SetRestaurantLocationsRequest struct {
	Locations []RestaurantLocationInput `json:"locations"`
	Version   int64                     `json:"version"`
}

type RestaurantLocationInput struct {
	Pincode  string `json:"pincode"`
	Name     string `json:"name"`
	IsActive *bool  `json:"isActive"`
}

type UpdateAreaSettingsRequest struct {
	RestaurantPincode *string  `json:"restaurantPincode"`
	DeliveryRadius    *float64 `json:"deliveryRadius"`
	Version           int64    `json:"version"`
}
