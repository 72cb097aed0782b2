package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"
)

// DefaultBaseURL is the production Strava API root.
const DefaultBaseURL = "https://www.strava.com/api/v3"

// StreamKeys are the stream types requested for every activity.
const StreamKeys = "time,heartrate,velocity_smooth,altitude,cadence"

// Client is a Strava API client.
type Client struct {
	// BaseURL may be overridden before the first request (tests point it
	// at a local server).
	BaseURL string
	// Limiter spaces requests out; see RateLimiter.
	Limiter *RateLimiter

	httpClient *http.Client
}

// NewClient creates a new Strava API client authenticated by tokenSource.
func NewClient(tokenSource oauth2.TokenSource) *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		Limiter:    NewRateLimiter(),
		httpClient: oauth2.NewClient(context.Background(), tokenSource),
	}
}

// ListActivities fetches one page of the athlete's activities started
// within (after, before). A zero after or before omits that bound.
func (c *Client) ListActivities(ctx context.Context, after, before time.Time, page, perPage int) ([]Activity, error) {
	params := url.Values{}
	if !after.IsZero() {
		params.Set("after", strconv.FormatInt(after.Unix(), 10))
	}
	if !before.IsZero() {
		params.Set("before", strconv.FormatInt(before.Unix(), 10))
	}
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))

	resp, err := c.get(ctx, "/athlete/activities", params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var activities []Activity
	if err := json.NewDecoder(resp.Body).Decode(&activities); err != nil {
		return nil, fmt.Errorf("decoding activities: %w", err)
	}

	return activities, nil
}

// GetActivity fetches the detailed view of a single activity, including
// splits and laps. Segment efforts are included when includeAllEfforts is set.
func (c *Client) GetActivity(ctx context.Context, activityID int64, includeAllEfforts bool) (*Activity, error) {
	params := url.Values{}
	if includeAllEfforts {
		params.Set("include_all_efforts", "true")
	}

	path := fmt.Sprintf("/activities/%d", activityID)
	resp, err := c.get(ctx, path, params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var activity Activity
	if err := json.NewDecoder(resp.Body).Decode(&activity); err != nil {
		return nil, fmt.Errorf("decoding activity %d: %w", activityID, err)
	}

	return &activity, nil
}

// GetStreams fetches sensor streams for an activity, keyed by type.
func (c *Client) GetStreams(ctx context.Context, activityID int64) (*Streams, error) {
	params := url.Values{}
	params.Set("keys", StreamKeys)
	params.Set("key_by_type", "true")

	path := fmt.Sprintf("/activities/%d/streams", activityID)
	resp, err := c.get(ctx, path, params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var streams Streams
	if err := json.NewDecoder(resp.Body).Decode(&streams); err != nil {
		return nil, fmt.Errorf("decoding streams for %d: %w", activityID, err)
	}

	return &streams, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := c.BaseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	c.Limiter.UpdateFromHeaders(resp.Header)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	return resp, nil
}
