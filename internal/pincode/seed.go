package pincode

import (
	"encoding/json"
	"fmt"
	"os"

	"currycrave/internal/structs"
	"currycrave/pkg/utils"
)

type seedFile struct {
	Pincodes map[string]seedEntry `json:"pincodes"`
}

type seedEntry struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Area  string  `json:"area"`
	City  string  `json:"city"`
	State string  `json:"state"`
}

func LoadSeedFile(path string) (map[string]structs.PincodeRecord, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pincode seed %q: %w", path, err)
	}
	return ParseSeed(b)
}

// ParseSeed decodes the bundled dataset. Entries with malformed codes are
// dropped; labels default to "Unknown".
func ParseSeed(b []byte) (map[string]structs.PincodeRecord, error) {
	var f seedFile
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("invalid pincode seed: %w", err)
	}

	records := make(map[string]structs.PincodeRecord, len(f.Pincodes))
	for code, e := range f.Pincodes {
		if !utils.IsValidPincode(code) {
			continue
		}
		coords := structs.Coordinates{Lat: e.Lat, Lng: e.Lng}
		records[code] = structs.PincodeRecord{
			Pincode:        code,
			Lat:            e.Lat,
			Lng:            e.Lng,
			Area:           orUnknown(e.Area),
			City:           orUnknown(e.City),
			State:          orUnknown(e.State),
			HasCoordinates: !coords.IsZero(),
		}
	}
	return records, nil
}

func orUnknown(s string) string {
	if utils.StrEmpty(s) {
		return structs.UnknownLabel
	}
	return s
}
