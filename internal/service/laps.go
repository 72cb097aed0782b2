package service

import (
	"fmt"

	"strava-runlog/internal/export"
	"strava-runlog/internal/strava"
)

// BuildLaps derives the lap records for one activity. Native laps are the
// preferred source; otherwise laps are synthesized from per-kilometer
// splits; otherwise there are none.
//
// Heartrate per lap follows a cascade: samples from the heartrate stream
// inside the lap's time window, then the lap's own fields, then the
// activity-level values, then 0.
func BuildLaps(activity *strava.Activity, streams *strava.Streams) []export.Lap {
	if len(activity.Laps) > 0 {
		return lapsFromNative(activity, streams)
	}
	if len(activity.SplitsMetric) > 0 {
		return lapsFromSplits(activity)
	}
	return nil
}

func lapsFromNative(activity *strava.Activity, streams *strava.Streams) []export.Lap {
	laps := make([]export.Lap, 0, len(activity.Laps))
	for i, lap := range activity.Laps {
		out := export.Lap{
			LapNumber:           i + 1,
			Name:                lap.Name,
			Distance:            lap.Distance,
			ElapsedTime:         lap.ElapsedTime,
			MovingTime:          lap.MovingTime,
			AverageSpeed:        lap.AverageSpeed,
			Pace:                export.PaceFromMps(lap.AverageSpeed),
			ElevationDifference: lap.TotalElevationGain,
		}
		if out.Name == "" {
			out.Name = fmt.Sprintf("Lap %d", i+1)
		}
		if !lap.StartDateLocal.IsZero() {
			out.StartDate = lap.StartDateLocal.Format("2006-01-02 15:04:05")
		}

		out.AverageHeartrate, out.MaxHeartrate = lapHeartrate(activity, &lap, streams)
		laps = append(laps, out)
	}
	return laps
}

// lapsFromSplits synthesizes laps from per-kilometer splits. Splits carry
// no max heartrate or start time, so those default to zero/empty.
func lapsFromSplits(activity *strava.Activity) []export.Lap {
	laps := make([]export.Lap, 0, len(activity.SplitsMetric))
	for i, split := range activity.SplitsMetric {
		out := export.Lap{
			LapNumber:           i + 1,
			Name:                fmt.Sprintf("Split %d", i+1),
			Distance:            split.Distance,
			ElapsedTime:         split.ElapsedTime,
			MovingTime:          split.MovingTime,
			AverageSpeed:        split.AverageSpeed,
			Pace:                export.PaceFromMps(split.AverageSpeed),
			ElevationDifference: split.ElevationDifference,
		}
		if split.AverageHeartrate != nil {
			out.AverageHeartrate = *split.AverageHeartrate
		}
		laps = append(laps, out)
	}
	return laps
}

// lapHeartrate resolves the avg/max heartrate for one native lap.
func lapHeartrate(activity *strava.Activity, lap *strava.Lap, streams *strava.Streams) (avg, max float64) {
	if streams.HasHeartrate() && !lap.StartDate.IsZero() && !activity.StartDate.IsZero() {
		startOffset := lap.StartDate.Sub(activity.StartDate).Seconds()
		endOffset := startOffset + lap.ElapsedTime
		if a, m, ok := streamWindowHR(streams, startOffset, endOffset); ok {
			return a, m
		}
	}

	avg = lap.AvgHR()
	max = lap.MaxHR()
	if avg == 0 && activity.AverageHeartrate > 0 {
		avg = activity.AverageHeartrate
	}
	if max == 0 && activity.MaxHeartrate > 0 {
		max = activity.MaxHeartrate
	}
	return avg, max
}

// streamWindowHR averages heartrate samples whose time offset lies inside
// [start, end], bounds inclusive. ok is false when no sample falls in the
// window.
func streamWindowHR(streams *strava.Streams, start, end float64) (avg, max float64, ok bool) {
	times := streams.Time.Data
	rates := streams.Heartrate.Data

	var sum float64
	var count int
	for i := 0; i < len(times) && i < len(rates); i++ {
		t := float64(times[i])
		if t < start || t > end {
			continue
		}
		sum += rates[i]
		if rates[i] > max {
			max = rates[i]
		}
		count++
	}

	if count == 0 {
		return 0, 0, false
	}
	return sum / float64(count), max, true
}
