package export

import (
	"math"
	"testing"
)

func TestPaceFromKmh(t *testing.T) {
	tests := []struct {
		name string
		kmh  float64
		want float64
	}{
		{"12 km/h is 5 min/km", 12, 5},
		{"10 km/h is 6 min/km", 10, 6},
		{"zero speed is zero pace", 0, 0},
		{"negative speed is zero pace", -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PaceFromKmh(tt.kmh); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("PaceFromKmh(%v) = %v, want %v", tt.kmh, got, tt.want)
			}
		})
	}
}

func TestPaceConversionsAgree(t *testing.T) {
	// For any positive speed, 16.6667/mps and 60/(mps*3.6) must agree to
	// within the rounding of the 16.6667 constant.
	for _, mps := range []float64{0.5, 1, 2.5, 3.333, 5, 8} {
		fromMps := PaceFromMps(mps)
		fromKmh := PaceFromKmh(KmhFromMps(mps))
		if math.Abs(fromMps-fromKmh) > 0.001 {
			t.Errorf("mps=%v: PaceFromMps=%v, PaceFromKmh=%v", mps, fromMps, fromKmh)
		}
	}
}

func TestFormatPace(t *testing.T) {
	tests := []struct {
		name string
		pace float64
		want string
	}{
		{"exact minutes", 5.0, "5:00"},
		{"half minute", 4.5, "4:30"},
		{"seconds zero-padded", 6.1, "6:06"},
		{"zero pace", 0, "0:00"},
		{"negative pace", -2, "0:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatPace(tt.pace); got != tt.want {
				t.Errorf("FormatPace(%v) = %q, want %q", tt.pace, got, tt.want)
			}
		})
	}
}

func TestFormatPaceFromSpeed(t *testing.T) {
	// 3.333 m/s is 12 km/h, which must render as 5:00.
	if got := FormatPace(PaceFromMps(3.333)); got != "5:00" {
		t.Errorf("FormatPace(PaceFromMps(3.333)) = %q, want %q", got, "5:00")
	}
	if got := FormatPace(PaceFromMps(0)); got != "0:00" {
		t.Errorf("FormatPace(PaceFromMps(0)) = %q, want %q", got, "0:00")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{1500, "0:25:00"},
		{59, "0:00:59"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
		{0, "0:00:00"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.seconds); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
