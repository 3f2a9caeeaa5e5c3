package ranging

import "time"

// SpeedOfSound in air, in centimetres per second.
const SpeedOfSound = 34029.0

// ToDistance converts a round trip echo time in seconds to the one way
// distance in centimetres. NaN and negative inputs are passed through.
func ToDistance(seconds float64) float64 {
	return seconds * (SpeedOfSound / 2)
}

// EchoDuration is the inverse of ToDistance: the echo pulse width a target at
// cm centimetres produces.
func EchoDuration(cm float64) time.Duration {
	return time.Duration(cm / (SpeedOfSound / 2) * float64(time.Second))
}
