package utils

import (
	"math"
)

const earthRadiusKm = 6371.0

func HaversineDistance[T float64](lat1, lon1, lat2, lon2 T) T {
	// Convert latitude and longitude from degrees to radians
	lat1, lon1, lat2, lon2 = degToRad(lat1), degToRad(lon1), degToRad(lat2), degToRad(lon2)

	dlat := lat2 - lat1
	dlon := lon2 - lon1

	a := math.Sin(float64(dlat/2))*math.Sin(float64(dlat/2)) + math.Cos(float64(lat1))*math.Cos(float64(lat2))*math.Sin(float64(dlon/2))*math.Sin(float64(dlon/2))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return T(earthRadiusKm * c)
}

// DistanceKm is the great-circle distance in kilometres rounded to one
// decimal place. All delivery decisions compare against this rounded value.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	return RoundTenth(HaversineDistance(lat1, lng1, lat2, lng2))
}

func RoundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

func degToRad[T float64](deg T) T {
	return deg * (math.Pi / 180)
}
