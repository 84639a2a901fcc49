package matrix

import (
	"hash/fnv"

	"tripnav/internal/geo"
	"tripnav/internal/model"
)

// referenceDistances holds curated real-world road distances (km) for
// well-known city pairs, so demos and tests degrade to plausible numbers
// instead of hash noise. Symmetric; stored in one direction.
var referenceDistances = map[string]float64{
	model.MatrixKey("Gyeongbokgung Palace", "N Seoul Tower"):   4.6,
	model.MatrixKey("Gyeongbokgung Palace", "Myeongdong"):      2.8,
	model.MatrixKey("Gyeongbokgung Palace", "Hongdae"):         6.5,
	model.MatrixKey("N Seoul Tower", "Myeongdong"):             2.5,
	model.MatrixKey("N Seoul Tower", "Hongdae"):                8.0,
	model.MatrixKey("Myeongdong", "Hongdae"):                   7.2,
	model.MatrixKey("Incheon International Airport", "Seoul Station"): 58.0,
	model.MatrixKey("Gimpo International Airport", "Seoul Station"):   18.0,
	model.MatrixKey("Seoul Station", "Busan Station"):          395.0,
	model.MatrixKey("Seoul Station", "Gangnam"):                9.0,
	model.MatrixKey("Gangnam", "Jamsil"):                       7.5,
	model.MatrixKey("Busan Station", "Haeundae Beach"):         13.0,
}

// Bounds for the hash-derived pseudo-distance when nothing better exists.
const (
	pseudoMinKm  = 50.0
	pseudoSpanKm = 200.0 // max 250
)

// SyntheticPair estimates a single directed pair without any network call.
// Preference order: real coordinates, curated reference table, then a
// deterministic hash-derived distance so repeated runs agree.
func SyntheticPair(from, to model.NamedPoint) model.DistanceInfo {
	if from.Name == to.Name {
		return model.DistanceInfo{}
	}
	if from.Lat != nil && from.Lng != nil && to.Lat != nil && to.Lng != nil {
		km := geo.RoadKm(geo.HaversineKm(*from.Lat, *from.Lng, *to.Lat, *to.Lng))
		return model.DistanceInfo{DistanceKm: km, DurationMinutes: geo.ETAMinutes(km, model.ModeCar)}
	}
	if km, ok := referenceLookup(from.Name, to.Name); ok {
		return model.DistanceInfo{DistanceKm: km, DurationMinutes: geo.ETAMinutes(km, model.ModeCar)}
	}
	km := pseudoDistanceKm(from.Name, to.Name)
	return model.DistanceInfo{DistanceKm: km, DurationMinutes: geo.ETAMinutes(km, model.ModeCar)}
}

func referenceLookup(a, b string) (float64, bool) {
	if km, ok := referenceDistances[model.MatrixKey(a, b)]; ok {
		return km, true
	}
	if km, ok := referenceDistances[model.MatrixKey(b, a)]; ok {
		return km, true
	}
	return 0, false
}

// pseudoDistanceKm derives a stable distance in [50,250) km from the pair
// names. The key is direction-insensitive so A->B and B->A agree.
func pseudoDistanceKm(a, b string) float64 {
	if b < a {
		a, b = b, a
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(a))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(b))
	return pseudoMinKm + float64(h.Sum64()%uint64(pseudoSpanKm))
}
