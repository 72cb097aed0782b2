package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"strava-runlog/internal/export"
	"strava-runlog/internal/strava"
)

const (
	enrichMaxRetries = 3
	enrichRetryDelay = 5 * time.Second

	// streamSampleStep decimates streams for charting: every 10th sample.
	streamSampleStep = 10
)

// Options selects which enrichments are fetched and exported.
type Options struct {
	Segments bool
	Splits   bool
	Laps     bool
	Streams  bool
}

// NeedsDetail reports whether the detail endpoint must be called at all.
func (o Options) NeedsDetail() bool {
	return o.Segments || o.Splits || o.Laps
}

// Enricher fetches per-activity detail and streams. The two sub-fetches
// are isolated: a failing one never aborts the other.
type Enricher struct {
	// RetryDelay separates retry attempts.
	RetryDelay time.Duration

	client *strava.Client
}

// NewEnricher creates an Enricher over the given API client.
func NewEnricher(client *strava.Client) *Enricher {
	return &Enricher{RetryDelay: enrichRetryDelay, client: client}
}

// FetchDetail retrieves the detailed activity (segments, splits, laps),
// retrying transient failures. On exhaustion the error propagates and the
// caller skips this enrichment only.
func (e *Enricher) FetchDetail(ctx context.Context, activityID int64, includeAllEfforts bool) (*strava.Activity, error) {
	var lastErr error
	for attempt := 1; attempt <= enrichMaxRetries; attempt++ {
		detail, err := e.client.GetActivity(ctx, activityID, includeAllEfforts)
		if err == nil {
			return detail, nil
		}
		lastErr = err
		if attempt < enrichMaxRetries {
			select {
			case <-time.After(e.RetryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, fmt.Errorf("fetching detail for activity %d: %w", activityID, lastErr)
}

// FetchStreams retrieves sensor streams. Streams are non-essential, so
// exhausted retries return nil instead of an error.
func (e *Enricher) FetchStreams(ctx context.Context, activityID int64) *strava.Streams {
	for attempt := 1; attempt <= enrichMaxRetries; attempt++ {
		streams, err := e.client.GetStreams(ctx, activityID)
		if err == nil {
			return streams
		}
		if attempt < enrichMaxRetries {
			select {
			case <-time.After(e.RetryDelay):
			case <-ctx.Done():
				return nil
			}
			continue
		}
		log.Printf("no streams for activity %d: %v", activityID, err)
	}
	return nil
}

// ProcessSegments maps raw segment efforts to export records. Missing
// numeric fields default to 0.
func ProcessSegments(efforts []strava.SegmentEffort) []export.Segment {
	if len(efforts) == 0 {
		return nil
	}
	segments := make([]export.Segment, 0, len(efforts))
	for _, effort := range efforts {
		seg := export.Segment{
			Name:        effort.Name,
			Distance:    effort.Distance,
			ElapsedTime: effort.ElapsedTime,
			MovingTime:  effort.MovingTime,
		}
		if effort.AverageHeartrate != nil {
			seg.AverageHeartrate = *effort.AverageHeartrate
		}
		if effort.MaxHeartrate != nil {
			seg.MaxHeartrate = *effort.MaxHeartrate
		}
		if effort.Segment != nil {
			seg.AverageGrade = effort.Segment.AverageGrade
			seg.MaximumGrade = effort.Segment.MaximumGrade
			seg.ElevationDifference = effort.Segment.ElevationHigh - effort.Segment.ElevationLow
		}
		segments = append(segments, seg)
	}
	return segments
}

// ProcessSplits maps raw per-kilometer splits to export records with a
// 1-based split number.
func ProcessSplits(splits []strava.Split) []export.Split {
	if len(splits) == 0 {
		return nil
	}
	out := make([]export.Split, 0, len(splits))
	for i, split := range splits {
		s := export.Split{
			SplitNumber:         i + 1,
			Distance:            split.Distance,
			ElapsedTime:         split.ElapsedTime,
			MovingTime:          split.MovingTime,
			AverageSpeed:        split.AverageSpeed,
			Pace:                export.PaceFromMps(split.AverageSpeed),
			ElevationDifference: split.ElevationDifference,
		}
		if split.AverageHeartrate != nil {
			s.AverageHeartrate = *split.AverageHeartrate
		}
		out = append(out, s)
	}
	return out
}

// DownsampleStreams decimates the heartrate, velocity and altitude streams
// into chart series, pairing each kept sample with its time value. The
// pace series is derived from velocity; samples at or below zero velocity
// are omitted.
func DownsampleStreams(s *strava.Streams) *export.StreamSeries {
	if s.Len() == 0 {
		return nil
	}

	times := s.Time.Data
	series := &export.StreamSeries{}

	if s.Heartrate != nil {
		for i := 0; i < len(times) && i < len(s.Heartrate.Data); i += streamSampleStep {
			series.Heartrate = append(series.Heartrate, export.ChartPoint{X: times[i], Y: s.Heartrate.Data[i]})
		}
	}

	if s.VelocitySmooth != nil {
		for i := 0; i < len(times) && i < len(s.VelocitySmooth.Data); i += streamSampleStep {
			v := s.VelocitySmooth.Data[i]
			if v <= 0 {
				continue
			}
			series.Pace = append(series.Pace, export.ChartPoint{X: times[i], Y: export.PaceFromMps(v)})
		}
	}

	if s.Altitude != nil {
		for i := 0; i < len(times) && i < len(s.Altitude.Data); i += streamSampleStep {
			series.Elevation = append(series.Elevation, export.ChartPoint{X: times[i], Y: s.Altitude.Data[i]})
		}
	}

	return series
}
