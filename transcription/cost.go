package transcription

import "math"

// DefaultRatePerMinute is the per-minute transcription price in USD.
const DefaultRatePerMinute = 0.006

// Cost computes the transcription cost in USD for the given audio duration,
// rounded up to four decimal places. A tiny epsilon is shaved off before the
// ceiling: float noise can land an exact boundary (90s at the default rate is
// exactly 90 ten-thousandths) a hair above the next integer, and that must
// not round up a phantom ten-thousandth.
func Cost(durationSeconds int, ratePerMinute float64) float64 {
	minutes := float64(durationSeconds) / 60.0
	tenThousandths := minutes * ratePerMinute * 10000
	return math.Ceil(tenThousandths-1e-9) / 10000
}
