package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/oauth2"

	"strava-runlog/internal/auth"
	"strava-runlog/internal/export"
	"strava-runlog/internal/strava"
)

// Params configures one run of the export pipeline.
type Params struct {
	ClientID     string
	ClientSecret string
	RefreshToken string

	RunsDir string

	// FetchAll forces full history. StartDate/EndDate select an explicit
	// range and take precedence. When neither is set, the cutoff is the
	// latest start time parsed from existing exports.
	FetchAll  bool
	StartDate time.Time
	EndDate   time.Time

	Options Options
}

// Service runs the whole pipeline: token refresh, windowed fetch,
// per-activity enrichment and record writing.
type Service struct {
	// Test seams. Zero values mean production endpoints and time.Now.
	TokenURL   string
	APIBaseURL string
	Now        func() time.Time

	params Params
}

// New creates a Service for the given parameters.
func New(params Params) *Service {
	return &Service{Now: time.Now, params: params}
}

// Result summarizes a run. Errors holds per-activity failures that did not
// abort the run.
type Result struct {
	Fetched int // qualifying runs seen
	Written int
	Skipped int // already exported

	// NewRefreshToken is the possibly rotated token returned by the
	// refresh grant. Persisting it is the caller's responsibility.
	NewRefreshToken string

	Errors []error
}

// Run executes the pipeline. It returns an error only for unrecovered
// refresh or fetch failures; per-activity problems land in Result.Errors.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	result := &Result{}

	refresher := auth.NewRefresher(s.params.ClientID, s.params.ClientSecret)
	refresher.TokenURL = s.TokenURL
	accessToken, newRefreshToken, err := refresher.Refresh(ctx, s.params.RefreshToken)
	if err != nil {
		return result, err
	}
	result.NewRefreshToken = newRefreshToken

	client := strava.NewClient(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}))
	if s.APIBaseURL != "" {
		client.BaseURL = s.APIBaseURL
	}

	fetcher := NewFetcher(client)
	fetcher.Now = s.Now

	activities, err := fetcher.Fetch(ctx, s.resolveMode())
	if err != nil {
		return result, err
	}

	enricher := NewEnricher(client)
	for i := range activities {
		activity := &activities[i]
		if activity.Type != "Run" {
			continue
		}
		result.Fetched++

		if err := s.exportActivity(ctx, enricher, activity, result); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("activity %d: %w", activity.ID, err))
			log.Printf("exporting activity %d failed: %v", activity.ID, err)
		}
	}

	return result, nil
}

// exportActivity enriches and writes one activity. Enrichment sub-fetch
// failures only drop the corresponding field; a missing start time or a
// write failure aborts this activity alone.
func (s *Service) exportActivity(ctx context.Context, enricher *Enricher, summary *strava.Activity, result *Result) error {
	if summary.StartDateLocal.IsZero() {
		return export.ErrNoStartTime
	}

	if export.Exists(s.params.RunsDir, summary.ID) {
		result.Skipped++
		return nil
	}

	opts := s.params.Options

	activity := summary
	if opts.NeedsDetail() {
		detail, err := enricher.FetchDetail(ctx, summary.ID, opts.Segments)
		if err != nil {
			// Export continues from the summary; segments, splits and
			// laps are simply absent.
			result.Errors = append(result.Errors, err)
			log.Printf("detail enrichment for activity %d skipped: %v", summary.ID, err)
		} else {
			detail.StartDateLocal = summary.StartDateLocal
			activity = detail
		}
	}

	var streams *strava.Streams
	if opts.Streams {
		streams = enricher.FetchStreams(ctx, summary.ID)
	}

	var segments []export.Segment
	var splits []export.Split
	var laps []export.Lap
	if opts.Segments {
		segments = ProcessSegments(activity.SegmentEfforts)
	}
	if opts.Splits {
		splits = ProcessSplits(activity.SplitsMetric)
	}
	if opts.Laps {
		laps = BuildLaps(activity, streams)
	}

	var series *export.StreamSeries
	if streams != nil {
		series = DownsampleStreams(streams)
	}

	content, err := export.Render(activity, segments, splits, laps, series)
	if err != nil {
		return err
	}

	name, err := export.Write(s.params.RunsDir, summary.ID, summary.StartDateLocal, content)
	if err != nil {
		return err
	}

	result.Written++
	fmt.Printf("saved %s\n", name)
	return nil
}

// resolveMode decides the fetch strategy from params and the state of the
// export directory.
func (s *Service) resolveMode() FetchMode {
	p := s.params
	if !p.StartDate.IsZero() {
		return FetchMode{Kind: FetchRange, Start: p.StartDate, End: p.EndDate}
	}
	if p.FetchAll {
		return FetchMode{Kind: FetchFullHistory}
	}

	latest, err := export.LatestStartTime(p.RunsDir)
	if errors.Is(err, export.ErrNoExports) {
		fmt.Println("no existing exports, fetching full history")
		return FetchMode{Kind: FetchFullHistory}
	}
	if err != nil {
		log.Printf("scanning existing exports failed (%v), fetching full history", err)
		return FetchMode{Kind: FetchFullHistory}
	}

	fmt.Printf("fetching activities after %s\n", latest.Format(time.RFC3339))
	return FetchMode{Kind: FetchSince, After: latest}
}
