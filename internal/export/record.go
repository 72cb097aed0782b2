package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"strava-runlog/internal/strava"
)

// ErrNoStartTime aborts a single activity's export; every other missing
// field degrades to a zero value instead.
var ErrNoStartTime = errors.New("activity start time is missing")

// Render produces the full record text for one activity: a parseable
// metadata block followed by the human-readable report. It is a pure
// function of its arguments.
func Render(a *strava.Activity, segments []Segment, splits []Split, laps []Lap, streams *StreamSeries) (string, error) {
	if a.StartDateLocal.IsZero() {
		return "", ErrNoStartTime
	}

	start := a.StartDateLocal
	avgSpeed := KmhFromMps(a.AverageSpeed)
	maxSpeed := KmhFromMps(a.MaxSpeed)
	avgPace := PaceFromKmh(avgSpeed)
	maxPace := PaceFromKmh(maxSpeed)

	var b strings.Builder

	b.WriteString("---\n")
	fmt.Fprintf(&b, "date: %s\n", start.Format("2006-01-02"))
	fmt.Fprintf(&b, "strava_id: %d\n", a.ID)
	fmt.Fprintf(&b, "distance: %.2f\n", a.Distance)
	fmt.Fprintf(&b, "duration: %d\n", a.MovingTime)
	fmt.Fprintf(&b, "elevation: %.1f\n", a.TotalElevationGain)
	fmt.Fprintf(&b, "avg_speed: %.2f\n", avgSpeed)
	fmt.Fprintf(&b, "max_speed: %.2f\n", maxSpeed)
	fmt.Fprintf(&b, "avg_pace: %.2f\n", avgPace)
	fmt.Fprintf(&b, "max_pace: %.2f\n", maxPace)
	fmt.Fprintf(&b, "avg_heartrate: %.1f\n", a.AverageHeartrate)
	fmt.Fprintf(&b, "max_heartrate: %.1f\n", a.MaxHeartrate)
	fmt.Fprintf(&b, "calories: %.1f\n", a.Calories)
	writeJSONField(&b, "segments", segments, len(segments) > 0)
	writeJSONField(&b, "splits", splits, len(splits) > 0)
	writeJSONField(&b, "laps", laps, len(laps) > 0)
	if !streams.Empty() {
		writeJSONField(&b, "heartrate_data", streams.Heartrate, len(streams.Heartrate) > 0)
		writeJSONField(&b, "pace_data", streams.Pace, len(streams.Pace) > 0)
		writeJSONField(&b, "elevation_data", streams.Elevation, len(streams.Elevation) > 0)
	}
	b.WriteString("---\n\n")

	fmt.Fprintf(&b, "# %s 跑步数据\n\n", start.Format("2006年01月02日"))
	fmt.Fprintf(&b, "- 距离：%.2f公里\n", a.Distance/1000)
	fmt.Fprintf(&b, "- 时长：%s\n", FormatDuration(a.MovingTime))
	fmt.Fprintf(&b, "- 海拔：%.1f米\n", a.TotalElevationGain)
	fmt.Fprintf(&b, "- 平均配速：%s/公里\n", FormatPace(avgPace))
	fmt.Fprintf(&b, "- 最快配速：%s/公里\n", FormatPace(maxPace))
	fmt.Fprintf(&b, "- 平均心率：%.1f次/分钟\n", a.AverageHeartrate)
	fmt.Fprintf(&b, "- 最大心率：%.1f次/分钟\n", a.MaxHeartrate)
	fmt.Fprintf(&b, "- 卡路里消耗：%.1f千卡\n", a.Calories)
	fmt.Fprintf(&b, "- 活动链接：https://www.strava.com/activities/%d\n", a.ID)

	if len(splits) > 0 {
		b.WriteString("\n## 每公里配速\n\n")
		for _, s := range splits {
			fmt.Fprintf(&b, "- 第%d公里：%s/公里", s.SplitNumber, FormatPace(s.Pace))
			if s.AverageHeartrate > 0 {
				fmt.Fprintf(&b, "，平均心率%.1f次/分钟", s.AverageHeartrate)
			}
			b.WriteString("\n")
		}
	}

	if len(laps) > 0 {
		b.WriteString("\n## 分圈数据\n\n")
		for _, l := range laps {
			fmt.Fprintf(&b, "- %s：%.2f公里，用时%s，配速%s/公里", l.Name, l.Distance/1000, FormatDuration(int(l.ElapsedTime)), FormatPace(l.Pace))
			if l.AverageHeartrate > 0 {
				fmt.Fprintf(&b, "，平均心率%.1f次/分钟", l.AverageHeartrate)
			}
			if l.MaxHeartrate > 0 {
				fmt.Fprintf(&b, "，最大心率%.1f次/分钟", l.MaxHeartrate)
			}
			b.WriteString("\n")
		}
	}

	if len(segments) > 0 {
		b.WriteString("\n## 分段数据\n\n")
		for i, seg := range segments {
			fmt.Fprintf(&b, "### %d. %s\n\n", i+1, seg.Name)
			fmt.Fprintf(&b, "- 距离：%.2f公里\n", seg.Distance/1000)
			fmt.Fprintf(&b, "- 用时：%s\n", FormatDuration(int(seg.ElapsedTime)))
			if seg.AverageGrade != 0 {
				fmt.Fprintf(&b, "- 平均坡度：%.1f%%\n", seg.AverageGrade)
			}
			if seg.MaximumGrade != 0 {
				fmt.Fprintf(&b, "- 最大坡度：%.1f%%\n", seg.MaximumGrade)
			}
			if seg.AverageHeartrate > 0 {
				fmt.Fprintf(&b, "- 平均心率：%.1f次/分钟\n", seg.AverageHeartrate)
			}
			if seg.MaxHeartrate > 0 {
				fmt.Fprintf(&b, "- 最大心率：%.1f次/分钟\n", seg.MaxHeartrate)
			}
			b.WriteString("\n")
		}
	}

	return b.String(), nil
}

// writeJSONField emits a metadata line holding a compact JSON array.
// Fields with no data are omitted entirely rather than written empty.
func writeJSONField(b *strings.Builder, key string, value any, present bool) {
	if !present {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		// Only numeric and string fields reach here; marshal cannot fail.
		return
	}
	fmt.Fprintf(b, "%s: %s\n", key, data)
}
