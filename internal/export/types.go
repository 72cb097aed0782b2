package export

// Processed enrichment data as it is serialized into the record's metadata
// block. The json keys are consumed by the site templates and must not change.

// Segment is a processed segment effort.
type Segment struct {
	Name                string  `json:"name"`
	Distance            float64 `json:"distance"`
	ElapsedTime         float64 `json:"elapsed_time"`
	MovingTime          float64 `json:"moving_time"`
	AverageHeartrate    float64 `json:"average_heartrate"`
	MaxHeartrate        float64 `json:"max_heartrate"`
	AverageGrade        float64 `json:"average_grade"`
	MaximumGrade        float64 `json:"maximum_grade"`
	ElevationDifference float64 `json:"elevation_difference"`
}

// Split is a processed per-kilometer split.
type Split struct {
	SplitNumber         int     `json:"split_number"`
	Distance            float64 `json:"distance"`
	ElapsedTime         float64 `json:"elapsed_time"`
	MovingTime          float64 `json:"moving_time"`
	AverageSpeed        float64 `json:"average_speed"`
	Pace                float64 `json:"pace"`
	AverageHeartrate    float64 `json:"average_heartrate"`
	ElevationDifference float64 `json:"elevation_difference"`
}

// Lap is a processed lap, either native or synthesized from splits.
type Lap struct {
	LapNumber           int     `json:"lap_number"`
	Name                string  `json:"name"`
	Distance            float64 `json:"distance"`
	ElapsedTime         float64 `json:"elapsed_time"`
	MovingTime          float64 `json:"moving_time"`
	AverageSpeed        float64 `json:"average_speed"`
	Pace                float64 `json:"pace"`
	AverageHeartrate    float64 `json:"average_heartrate"`
	MaxHeartrate        float64 `json:"max_heartrate"`
	StartDate           string  `json:"start_date"`
	ElevationDifference float64 `json:"elevation_difference"`
}

// ChartPoint is one sample of a downsampled stream series.
type ChartPoint struct {
	X int     `json:"x"` // seconds since activity start
	Y float64 `json:"y"`
}

// StreamSeries holds the downsampled chart series derived from sensor
// streams.
type StreamSeries struct {
	Heartrate []ChartPoint
	Pace      []ChartPoint
	Elevation []ChartPoint
}

// Empty reports whether no series has any points.
func (s *StreamSeries) Empty() bool {
	return s == nil || (len(s.Heartrate) == 0 && len(s.Pace) == 0 && len(s.Elevation) == 0)
}
