package export

import "fmt"

// mpsToMinPerKm converts meters/second to minutes/kilometer: 1000/60.
const mpsToMinPerKm = 16.6667

// KmhFromMps converts a speed from m/s to km/h.
func KmhFromMps(mps float64) float64 {
	return mps * 3.6
}

// PaceFromKmh returns pace in min/km for a speed in km/h, or 0 when the
// speed is not positive.
func PaceFromKmh(kmh float64) float64 {
	if kmh <= 0 {
		return 0
	}
	return 60 / kmh
}

// PaceFromMps returns pace in min/km for a speed in m/s, or 0 when the
// speed is not positive.
func PaceFromMps(mps float64) float64 {
	if mps <= 0 {
		return 0
	}
	return mpsToMinPerKm / mps
}

// FormatPace renders a min/km pace as "M:SS" with zero-padded seconds.
// Non-positive paces render as "0:00".
func FormatPace(pace float64) string {
	if pace <= 0 {
		return "0:00"
	}
	min := int(pace)
	sec := int((pace - float64(min)) * 60)
	return fmt.Sprintf("%d:%02d", min, sec)
}

// FormatDuration renders seconds as "H:MM:SS", e.g. 1500 -> "0:25:00".
func FormatDuration(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}
