package availability

// ServiceFeePercent is the marketplace service fee applied on top of the
// nightly subtotal.
const ServiceFeePercent = 10

// Total is a price breakdown in whole currency units.
type Total struct {
	Nights     int   `json:"nights"`
	Subtotal   int64 `json:"subtotal"`
	ServiceFee int64 `json:"serviceFee"`
	Total      int64 `json:"total"`
}

// ComputeTotal prices a stay. The fee is rounded half up; the subtotal and
// total are exact.
func ComputeTotal(nights int, pricePerNight int64) Total {
	subtotal := int64(nights) * pricePerNight
	fee := roundHalfUpDiv(subtotal*ServiceFeePercent, 100)
	return Total{
		Nights:     nights,
		Subtotal:   subtotal,
		ServiceFee: fee,
		Total:      subtotal + fee,
	}
}

// roundHalfUpDiv returns n/d rounded half towards positive infinity, d > 0.
func roundHalfUpDiv(n, d int64) int64 {
	return floorDiv(2*n+d, 2*d)
}

func floorDiv(n, d int64) int64 {
	q := n / d
	if (n%d != 0) && ((n < 0) != (d < 0)) {
		q--
	}
	return q
}
