package value

// ConfidenceInterval bounds a predicted price, in cents. Low is clamped
// at zero: a negative house price is never a useful answer.
type ConfidenceInterval struct {
	LowCents  int64 `json:"low_cents"`
	HighCents int64 `json:"high_cents"`
}

func NewConfidenceInterval(lowCents, highCents int64) ConfidenceInterval {
	if lowCents < 0 {
		lowCents = 0
	}
	if highCents < lowCents {
		highCents = lowCents
	}

	return ConfidenceInterval{LowCents: lowCents, HighCents: highCents}
}
