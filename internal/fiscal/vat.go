package fiscal

import "math"

// StandardVATRate is the Serbian standard VAT rate applied to textiles.
const StandardVATRate = 20.0

// CalculateVAT computes the tax portion embedded in a tax-inclusive gross
// amount: tax = gross * rate / (100 + rate).
//
// The result is rounded half-up to 2 decimals; this single rounding policy
// applies everywhere a VAT amount is produced. A rate of 0 yields 0.
// Negative or non-finite inputs are a caller error.
func CalculateVAT(grossAmount, ratePercent float64) (float64, error) {
	if grossAmount < 0 || math.IsNaN(grossAmount) || math.IsInf(grossAmount, 0) {
		return 0, ErrInvalidAmount
	}
	if ratePercent < 0 || math.IsNaN(ratePercent) || math.IsInf(ratePercent, 0) {
		return 0, ErrInvalidRate
	}
	if ratePercent == 0 {
		return 0, nil
	}

	tax := grossAmount * ratePercent / (100 + ratePercent)
	return roundHalfUp(tax), nil
}

// roundHalfUp rounds to 2 decimals, ties away from zero on the positive
// axis (966.665 -> 966.67). All amounts here are non-negative.
func roundHalfUp(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
