package service

import (
	"math"
	"testing"
	"time"

	"strava-runlog/internal/strava"
)

func floatPtr(f float64) *float64 { return &f }

func streamsOf(times []int, rates []float64) *strava.Streams {
	return &strava.Streams{
		Time:      &strava.StreamData[int]{Data: times},
		Heartrate: &strava.StreamData[float64]{Data: rates},
	}
}

func TestBuildLapsFromStream(t *testing.T) {
	start := time.Date(2024, 3, 5, 7, 0, 0, 0, time.UTC)
	activity := &strava.Activity{
		StartDate:        start,
		AverageHeartrate: 140,
		MaxHeartrate:     180,
		Laps: []strava.Lap{{
			Name:         "Lap 1",
			Distance:     1000,
			ElapsedTime:  300,
			AverageSpeed: 3.333,
			StartDate:    start,
			// Lap fields that must lose to stream-derived values.
			AverageHeartrate: floatPtr(100),
			MaxHeartrate:     floatPtr(110),
		}},
	}

	// Samples at 0s, 100s, 200s are inside [0, 300]; 400s is not.
	streams := streamsOf([]int{0, 100, 200, 400}, []float64{150, 160, 170, 200})

	laps := BuildLaps(activity, streams)
	if len(laps) != 1 {
		t.Fatalf("got %d laps, want 1", len(laps))
	}

	lap := laps[0]
	if math.Abs(lap.AverageHeartrate-160) > 1e-9 {
		t.Errorf("AverageHeartrate = %v, want 160 (stream-derived)", lap.AverageHeartrate)
	}
	if lap.MaxHeartrate != 170 {
		t.Errorf("MaxHeartrate = %v, want 170 (stream-derived)", lap.MaxHeartrate)
	}
	if got := lap.Pace; math.Abs(got-5.0) > 0.01 {
		t.Errorf("Pace = %v, want ~5.0", got)
	}
}

func TestBuildLapsStreamWindowBoundaries(t *testing.T) {
	start := time.Date(2024, 3, 5, 7, 0, 0, 0, time.UTC)
	lap := strava.Lap{
		Name:        "Lap 1",
		ElapsedTime: 100,
		StartDate:   start.Add(50 * time.Second),
	}
	activity := &strava.Activity{StartDate: start, Laps: []strava.Lap{lap}, AverageHeartrate: 133, MaxHeartrate: 144}

	tests := []struct {
		name    string
		streams *strava.Streams
		wantAvg float64
		wantMax float64
	}{
		{
			// Window is [50, 150]; the single sample at 150 is inclusive.
			name:    "one sample on the inclusive bound",
			streams: streamsOf([]int{150}, []float64{155}),
			wantAvg: 155,
			wantMax: 155,
		},
		{
			// Sample at 151 is outside; falls through to activity HR.
			name:    "no samples in window",
			streams: streamsOf([]int{151}, []float64{155}),
			wantAvg: 133,
			wantMax: 144,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			laps := BuildLaps(activity, tt.streams)
			if len(laps) != 1 {
				t.Fatalf("got %d laps", len(laps))
			}
			if laps[0].AverageHeartrate != tt.wantAvg {
				t.Errorf("AverageHeartrate = %v, want %v", laps[0].AverageHeartrate, tt.wantAvg)
			}
			if laps[0].MaxHeartrate != tt.wantMax {
				t.Errorf("MaxHeartrate = %v, want %v", laps[0].MaxHeartrate, tt.wantMax)
			}
		})
	}
}

func TestBuildLapsFieldCascade(t *testing.T) {
	tests := []struct {
		name     string
		lap      strava.Lap
		activity strava.Activity
		wantAvg  float64
		wantMax  float64
	}{
		{
			name:    "primary field name",
			lap:     strava.Lap{AverageHeartrate: floatPtr(150), MaxHeartrate: floatPtr(170)},
			wantAvg: 150,
			wantMax: 170,
		},
		{
			name:    "alternate field names",
			lap:     strava.Lap{AvgHeartRate: floatPtr(152), MaximumHeartRate: floatPtr(171)},
			wantAvg: 152,
			wantMax: 171,
		},
		{
			name:    "first non-null wins",
			lap:     strava.Lap{AvgHeartrate: floatPtr(140), AvgHeartRate: floatPtr(999)},
			wantAvg: 140,
			wantMax: 0,
		},
		{
			name:     "activity-level fallback",
			lap:      strava.Lap{},
			activity: strava.Activity{AverageHeartrate: 145, MaxHeartrate: 178},
			wantAvg:  145,
			wantMax:  178,
		},
		{
			name:    "nothing available defaults to zero",
			lap:     strava.Lap{},
			wantAvg: 0,
			wantMax: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			activity := tt.activity
			activity.Laps = []strava.Lap{tt.lap}

			laps := BuildLaps(&activity, nil)
			if len(laps) != 1 {
				t.Fatalf("got %d laps", len(laps))
			}
			if laps[0].AverageHeartrate != tt.wantAvg {
				t.Errorf("AverageHeartrate = %v, want %v", laps[0].AverageHeartrate, tt.wantAvg)
			}
			if laps[0].MaxHeartrate != tt.wantMax {
				t.Errorf("MaxHeartrate = %v, want %v", laps[0].MaxHeartrate, tt.wantMax)
			}
		})
	}
}

func TestBuildLapsFromSplits(t *testing.T) {
	activity := &strava.Activity{
		SplitsMetric: []strava.Split{
			{Distance: 1000, ElapsedTime: 300, MovingTime: 295, AverageSpeed: 3.333, AverageHeartrate: floatPtr(148), ElevationDifference: 5},
			{Distance: 1000, ElapsedTime: 290, MovingTime: 288, AverageSpeed: 3.45},
		},
	}

	laps := BuildLaps(activity, nil)
	if len(laps) != 2 {
		t.Fatalf("got %d laps, want 2", len(laps))
	}

	if laps[0].Name != "Split 1" || laps[1].Name != "Split 2" {
		t.Errorf("names = %q, %q", laps[0].Name, laps[1].Name)
	}
	if laps[0].LapNumber != 1 || laps[1].LapNumber != 2 {
		t.Errorf("lap numbers = %d, %d", laps[0].LapNumber, laps[1].LapNumber)
	}
	if laps[0].AverageHeartrate != 148 {
		t.Errorf("AverageHeartrate = %v, want 148", laps[0].AverageHeartrate)
	}
	// Not derivable from splits.
	if laps[0].MaxHeartrate != 0 || laps[0].StartDate != "" {
		t.Errorf("split-derived lap should have zero max HR and empty start date, got %v / %q", laps[0].MaxHeartrate, laps[0].StartDate)
	}
}

func TestBuildLapsEmpty(t *testing.T) {
	if laps := BuildLaps(&strava.Activity{}, nil); laps != nil {
		t.Errorf("got %v, want nil", laps)
	}
}
