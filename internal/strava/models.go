package strava

import "time"

// Activity represents a Strava activity from the API. List responses fill
// the summary fields; GetActivity additionally fills SegmentEfforts,
// SplitsMetric, Laps and Calories.
type Activity struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Type               string    `json:"type"`
	SportType          string    `json:"sport_type"`
	StartDate          time.Time `json:"start_date"`
	StartDateLocal     time.Time `json:"start_date_local"`
	Timezone           string    `json:"timezone"`
	Distance           float64   `json:"distance"`             // meters
	MovingTime         int       `json:"moving_time"`          // seconds
	ElapsedTime        int       `json:"elapsed_time"`         // seconds
	TotalElevationGain float64   `json:"total_elevation_gain"` // meters
	AverageSpeed       float64   `json:"average_speed"`        // m/s
	MaxSpeed           float64   `json:"max_speed"`            // m/s
	AverageHeartrate   float64   `json:"average_heartrate"`    // bpm
	MaxHeartrate       float64   `json:"max_heartrate"`        // bpm
	Calories           float64   `json:"calories"`

	SegmentEfforts []SegmentEffort `json:"segment_efforts,omitempty"`
	SplitsMetric   []Split         `json:"splits_metric,omitempty"`
	Laps           []Lap           `json:"laps,omitempty"`
}

// SegmentEffort is one attempt at a named segment within an activity.
type SegmentEffort struct {
	Name             string   `json:"name"`
	Distance         float64  `json:"distance"`
	ElapsedTime      float64  `json:"elapsed_time"`
	MovingTime       float64  `json:"moving_time"`
	AverageHeartrate *float64 `json:"average_heartrate"`
	MaxHeartrate     *float64 `json:"max_heartrate"`
	Segment          *Segment `json:"segment"`
}

// Segment holds the course data nested inside a segment effort.
type Segment struct {
	AverageGrade  float64 `json:"average_grade"`
	MaximumGrade  float64 `json:"maximum_grade"`
	ElevationHigh float64 `json:"elevation_high"`
	ElevationLow  float64 `json:"elevation_low"`
}

// Split is a per-kilometer split from splits_metric.
type Split struct {
	Distance            float64  `json:"distance"`
	ElapsedTime         float64  `json:"elapsed_time"`
	MovingTime          float64  `json:"moving_time"`
	AverageSpeed        float64  `json:"average_speed"`
	AverageHeartrate    *float64 `json:"average_heartrate"`
	ElevationDifference float64  `json:"elevation_difference"`
	Split               int      `json:"split"`
}

// Lap is a device- or user-defined lap. Strava has shipped lap heartrate
// under several field names over time, so every known spelling is decoded
// and consulted in a fixed order by AvgHR/MaxHR.
type Lap struct {
	Name               string    `json:"name"`
	Distance           float64   `json:"distance"`
	ElapsedTime        float64   `json:"elapsed_time"`
	MovingTime         float64   `json:"moving_time"`
	AverageSpeed       float64   `json:"average_speed"`
	TotalElevationGain float64   `json:"total_elevation_gain"`
	StartDate          time.Time `json:"start_date"`
	StartDateLocal     time.Time `json:"start_date_local"`

	AverageHeartrate *float64 `json:"average_heartrate"`
	AvgHeartrate     *float64 `json:"avg_heartrate"`
	AverageHeartRate *float64 `json:"average_heart_rate"`
	AvgHeartRate     *float64 `json:"avg_heart_rate"`
	MaxHeartrate     *float64 `json:"max_heartrate"`
	MaximumHeartrate *float64 `json:"maximum_heartrate"`
	MaxHeartRate     *float64 `json:"max_heart_rate"`
	MaximumHeartRate *float64 `json:"maximum_heart_rate"`
}

// AvgHR returns the lap's average heartrate from the first populated field,
// or 0 if none is set.
func (l *Lap) AvgHR() float64 {
	for _, v := range []*float64{l.AverageHeartrate, l.AvgHeartrate, l.AverageHeartRate, l.AvgHeartRate} {
		if v != nil {
			return *v
		}
	}
	return 0
}

// MaxHR returns the lap's max heartrate from the first populated field,
// or 0 if none is set.
func (l *Lap) MaxHR() float64 {
	for _, v := range []*float64{l.MaxHeartrate, l.MaximumHeartrate, l.MaxHeartRate, l.MaximumHeartRate} {
		if v != nil {
			return *v
		}
	}
	return 0
}

// Streams represents activity stream data from the API.
// Strava returns streams keyed by type when key_by_type=true.
type Streams struct {
	Time           *StreamData[int]     `json:"time"`
	Heartrate      *StreamData[float64] `json:"heartrate"`
	VelocitySmooth *StreamData[float64] `json:"velocity_smooth"`
	Altitude       *StreamData[float64] `json:"altitude"`
	Cadence        *StreamData[float64] `json:"cadence"`
}

// StreamData represents a single stream type.
type StreamData[T any] struct {
	Data         []T    `json:"data"`
	SeriesType   string `json:"series_type"`
	OriginalSize int    `json:"original_size"`
	Resolution   string `json:"resolution"`
}

// Len returns the number of samples, or 0 if the time stream is absent.
func (s *Streams) Len() int {
	if s == nil || s.Time == nil {
		return 0
	}
	return len(s.Time.Data)
}

// HasHeartrate reports whether time-aligned heartrate data exists.
func (s *Streams) HasHeartrate() bool {
	return s != nil && s.Time != nil && s.Heartrate != nil && len(s.Heartrate.Data) > 0
}
