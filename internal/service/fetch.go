package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"strava-runlog/internal/strava"
)

const (
	// windowSize is the span of one list-activities call.
	windowSize = 30 * 24 * time.Hour
	// listPageSize is the max page size Strava allows.
	listPageSize = 100

	fetchMaxRetries = 3
	fetchRetryDelay = 5 * time.Second

	// historyCapYears bounds the backward search in full-history mode.
	historyCapYears = 10
)

// FetchKind selects how the fetch window is anchored.
type FetchKind int

const (
	// FetchFullHistory walks backward from a year ago until activities
	// are found, capped at historyCapYears.
	FetchFullHistory FetchKind = iota
	// FetchSince fetches activities after a known cutoff and stops at
	// the first empty window.
	FetchSince
	// FetchRange fetches an explicit caller-supplied interval.
	FetchRange
)

// FetchMode describes what to fetch. After is the FetchSince cutoff;
// Start/End bound a FetchRange.
type FetchMode struct {
	Kind  FetchKind
	After time.Time
	Start time.Time
	End   time.Time
}

// Fetcher pages through the activity list in fixed 30-day windows.
type Fetcher struct {
	// Now is a test seam; defaults to time.Now.
	Now func() time.Time
	// RetryDelay separates whole-loop retries.
	RetryDelay time.Duration

	client *strava.Client
}

// NewFetcher creates a Fetcher over the given API client.
func NewFetcher(client *strava.Client) *Fetcher {
	return &Fetcher{Now: time.Now, RetryDelay: fetchRetryDelay, client: client}
}

// Fetch retrieves activity summaries for the mode, retrying the whole
// windowed loop on unexpected failure. Results are in window order, not
// necessarily start-time order.
func (f *Fetcher) Fetch(ctx context.Context, mode FetchMode) ([]strava.Activity, error) {
	var lastErr error
	for attempt := 1; attempt <= fetchMaxRetries; attempt++ {
		activities, err := f.fetchWindows(ctx, mode)
		if err == nil {
			return activities, nil
		}
		lastErr = err
		if attempt < fetchMaxRetries {
			log.Printf("fetch attempt %d failed (%v), retrying in %s", attempt, err, f.RetryDelay)
			select {
			case <-time.After(f.RetryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, fmt.Errorf("fetching activities after %d attempts: %w", fetchMaxRetries, lastErr)
}

func (f *Fetcher) fetchWindows(ctx context.Context, mode FetchMode) ([]strava.Activity, error) {
	now := f.Now()

	switch mode.Kind {
	case FetchRange:
		end := mode.End
		if end.After(now) {
			end = now
		}
		return f.scanWindows(ctx, mode.Start, end, false)
	case FetchSince:
		return f.scanWindows(ctx, mode.After, now, true)
	}

	// Full history: start a year back and widen the cutoff a year at a
	// time while the scan finds nothing, so sparse accounts are still
	// bounded.
	earliest := now.AddDate(-historyCapYears, 0, 0)
	for start := now.AddDate(-1, 0, 0); !start.Before(earliest); start = start.AddDate(-1, 0, 0) {
		activities, err := f.scanWindows(ctx, start, now, false)
		if err != nil {
			return nil, err
		}
		if len(activities) > 0 {
			return activities, nil
		}
	}
	return nil, nil
}

// scanWindows walks [start, end) in 30-day windows. With stopOnEmpty set,
// the first empty window ends the scan (incremental mode).
func (f *Fetcher) scanWindows(ctx context.Context, start, end time.Time, stopOnEmpty bool) ([]strava.Activity, error) {
	var all []strava.Activity
	for start.Before(end) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		windowEnd := start.Add(windowSize)
		if windowEnd.After(end) {
			windowEnd = end
		}

		activities, err := f.listWindow(ctx, start, windowEnd)
		if err != nil {
			return nil, err
		}

		if len(activities) == 0 && stopOnEmpty {
			return all, nil
		}
		if len(activities) > 0 {
			all = append(all, activities...)
			fmt.Printf("fetched %s to %s, %d activities so far\n",
				start.Format("2006-01-02"), windowEnd.Format("2006-01-02"), len(all))
		}

		start = windowEnd
	}
	return all, nil
}

// listWindow drains all pages of one time window.
func (f *Fetcher) listWindow(ctx context.Context, after, before time.Time) ([]strava.Activity, error) {
	var all []strava.Activity
	page := 1
	for {
		activities, err := f.client.ListActivities(ctx, after, before, page, listPageSize)
		if err != nil {
			return nil, fmt.Errorf("listing activities page %d: %w", page, err)
		}
		all = append(all, activities...)
		if len(activities) < listPageSize {
			return all, nil
		}
		page++
	}
}
