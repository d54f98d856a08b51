package helper

import "math"

const earthRadiusMeters = 6371000

// Geolocation calcula la distancia de círculo máximo en metros entre dos
// coordenadas (fórmula de haversine).
func Geolocation(lat1, lon1, lat2, lon2 float64) float64 {
	latRad1 := lat1 * math.Pi / 180
	lonRad1 := lon1 * math.Pi / 180
	latRad2 := lat2 * math.Pi / 180
	lonRad2 := lon2 * math.Pi / 180

	diffLat := latRad2 - latRad1
	diffLon := lonRad2 - lonRad1

	a := math.Sin(diffLat/2)*math.Sin(diffLat/2) +
		math.Cos(latRad1)*math.Cos(latRad2)*
			math.Sin(diffLon/2)*math.Sin(diffLon/2)

	// El error de coma flotante puede dejar a apenas fuera de [0,1] en
	// puntos antípodas o idénticos.
	if a < 0 {
		a = 0
	} else if a > 1 {
		a = 1
	}
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// WithinRange decide si la distancia queda dentro del radio permitido.
// La comparación es estricta: distance > max queda fuera.
func WithinRange(distanceMeters, maxMeters float64) bool {
	return distanceMeters <= maxMeters
}
