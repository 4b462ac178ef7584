package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"currycrave/internal/structs"
	"currycrave/pkg/logger"

	"github.com/spf13/cast"
	"go.uber.org/zap"
)

type (
	// CoordinateLookup resolves a pincode to a point.
	CoordinateLookup interface {
		LookupCoordinates(ctx context.Context, code string) (structs.Coordinates, error)
	}

	nominatim struct {
		baseURL   string
		country   string
		userAgent string
		client    *http.Client
		logger    logger.Logger
	}

	nominatimPlace struct {
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
		DisplayName string `json:"display_name"`
	}
)

func NewNominatim(p ClientParams) CoordinateLookup {
	return &nominatim{
		baseURL:   strings.TrimRight(p.Config.GetString("geocoding.nominatim_url"), "/"),
		country:   p.Config.GetString("geocoding.country"),
		userAgent: p.Config.GetString("geocoding.user_agent"),
		client:    &http.Client{Timeout: p.Config.GetDuration("geocoding.timeout")},
		logger:    p.Logger,
	}
}

func (c *nominatim) LookupCoordinates(ctx context.Context, code string) (structs.Coordinates, error) {
	q := url.Values{}
	q.Set("postalcode", code)
	q.Set("country", c.country)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return structs.Coordinates{}, err
	}
	// nominatim usage policy rejects requests without an identifying agent
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return structs.Coordinates{}, fmt.Errorf("%w: nominatim: %v", structs.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := readBody(resp.Body)
	if err != nil {
		return structs.Coordinates{}, fmt.Errorf("nominatim: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn(ctx, "nominatim returned non-2xx", zap.Int("status", resp.StatusCode), zap.ByteString("body", body))
		return structs.Coordinates{}, fmt.Errorf("%w: nominatim returned %d", structs.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var places []nominatimPlace
	if err := json.Unmarshal(body, &places); err != nil {
		return structs.Coordinates{}, fmt.Errorf("%w: nominatim body: %v", structs.ErrUpstreamUnavailable, err)
	}
	if len(places) == 0 {
		return structs.Coordinates{}, fmt.Errorf("%w: nominatim has no place for %s", structs.ErrUnresolvable, code)
	}

	lat, latErr := cast.ToFloat64E(places[0].Lat)
	lng, lngErr := cast.ToFloat64E(places[0].Lon)
	coords := structs.Coordinates{Lat: lat, Lng: lng}
	if latErr != nil || lngErr != nil || coords.IsZero() {
		return structs.Coordinates{}, fmt.Errorf("%w: nominatim returned unusable point %q,%q", structs.ErrUnresolvable, places[0].Lat, places[0].Lon)
	}

	return coords, nil
}
