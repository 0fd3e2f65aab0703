package heatmap

// DefaultFloor keeps any nonzero value visibly apart from empty cells
const DefaultFloor = 0.15

// Scale maps aggregated values onto a color intensity in [Floor, 1].
type Scale struct {
	Floor float64
	Min   float64 // subtracted from value and normalizer
	Max   float64 // fixed normalizer, 0 means use the dataset maximum
}

// DefaultScale normalizes against the dataset maximum.
func DefaultScale() Scale {
	return Scale{Floor: DefaultFloor}
}

// Normalizer picks the divisor for a dataset maximum. It is never below 1.
func (s Scale) Normalizer(datasetMax float64) float64 {
	m := datasetMax
	if s.Max > 0 {
		m = s.Max
	}
	if m < 1 {
		m = 1
	}
	return m
}

// Intensity returns the clamped intensity of v against datasetMax.
func (s Scale) Intensity(v, datasetMax float64) float64 {
	norm := s.Normalizer(datasetMax)
	floor := s.Floor
	if floor <= 0 || floor > 1 {
		floor = DefaultFloor
	}

	span := norm - s.Min
	var ratio float64
	if span <= 0 {
		ratio = 1
	} else {
		ratio = (v - s.Min) / span
	}

	switch {
	case ratio < floor:
		return floor
	case ratio > 1:
		return 1
	}
	return ratio
}
