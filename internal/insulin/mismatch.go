package insulin

import "math"

// Band is one tier of the mismatch classifier: when both doses are at most
// UpperBound units, a difference above Tolerance is a mismatch.
type Band struct {
	UpperBound float64
	Tolerance  float64
}

// DefaultBands are evaluated top-down. A pair that fits no band is always a
// mismatch, including pairs that straddle two bands such as (19, 22).
var DefaultBands = []Band{
	{UpperBound: 6, Tolerance: 1},
	{UpperBound: 13, Tolerance: 2},
	{UpperBound: 20, Tolerance: 3},
}

// alwaysCloseEnough is the difference at or below which no pair is flagged.
const alwaysCloseEnough = 1

// Classifier flags estimated/actual dose pairs whose difference is too large
// for their magnitude.
type Classifier struct {
	Bands []Band
}

// NewClassifier returns a Classifier using DefaultBands.
func NewClassifier() *Classifier {
	return &Classifier{Bands: DefaultBands}
}

// IsMismatch reports whether estimated and actual are too far apart.
func (c *Classifier) IsMismatch(estimated, actual float64) bool {
	diff := math.Abs(estimated - actual)
	if diff <= alwaysCloseEnough {
		return false
	}

	for _, b := range c.Bands {
		if estimated <= b.UpperBound && actual <= b.UpperBound {
			return diff > b.Tolerance
		}
	}
	return true
}

// IsMismatch classifies with DefaultBands.
func IsMismatch(estimated, actual float64) bool {
	return NewClassifier().IsMismatch(estimated, actual)
}
