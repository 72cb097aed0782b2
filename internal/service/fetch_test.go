package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"strava-runlog/internal/strava"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func apiClient(baseURL string) *strava.Client {
	c := strava.NewClient(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"}))
	c.BaseURL = baseURL
	c.Limiter.MinInterval = 0
	return c
}

func testFetcher(baseURL string) *Fetcher {
	f := NewFetcher(apiClient(baseURL))
	f.Now = func() time.Time { return testNow }
	f.RetryDelay = time.Millisecond
	return f
}

func runAt(id int64, start time.Time) strava.Activity {
	return strava.Activity{ID: id, Type: "Run", StartDate: start, StartDateLocal: start}
}

type listCall struct {
	after, before time.Time
	page          int
}

// listServer serves /athlete/activities from a fixed set, filtering on the
// after/before window, and records every call.
func listServer(t *testing.T, activities []strava.Activity) (*httptest.Server, func() []listCall) {
	t.Helper()
	var mu sync.Mutex
	var calls []listCall
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/athlete/activities" {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		after, _ := strconv.ParseInt(q.Get("after"), 10, 64)
		before, _ := strconv.ParseInt(q.Get("before"), 10, 64)
		page, _ := strconv.Atoi(q.Get("page"))

		mu.Lock()
		calls = append(calls, listCall{after: time.Unix(after, 0).UTC(), before: time.Unix(before, 0).UTC(), page: page})
		mu.Unlock()

		matched := []strava.Activity{}
		if page == 1 {
			for _, a := range activities {
				ts := a.StartDate.Unix()
				if ts >= after && ts < before {
					matched = append(matched, a)
				}
			}
		}
		json.NewEncoder(w).Encode(matched)
	}))
	t.Cleanup(srv.Close)

	return srv, func() []listCall {
		mu.Lock()
		defer mu.Unlock()
		return append([]listCall(nil), calls...)
	}
}

func TestFetchSinceStopsAtFirstEmptyWindow(t *testing.T) {
	cutoff := testNow.AddDate(0, 0, -100)
	srv, calls := listServer(t, []strava.Activity{runAt(1, cutoff.AddDate(0, 0, 5))})

	f := testFetcher(srv.URL)
	got, err := f.Fetch(context.Background(), FetchMode{Kind: FetchSince, After: cutoff})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("got %d activities, want the single run", len(got))
	}

	// The first window holds the run, the second is empty and ends the scan
	// even though the cutoff is 100 days back.
	if n := len(calls()); n != 2 {
		t.Errorf("made %d list calls, want 2", n)
	}
}

func TestFetchRangeWalksAllWindows(t *testing.T) {
	start := testNow.AddDate(0, 0, -65)
	srv, calls := listServer(t, []strava.Activity{
		runAt(1, start.AddDate(0, 0, 2)),
		runAt(2, start.AddDate(0, 0, 62)),
	})

	f := testFetcher(srv.URL)
	got, err := f.Fetch(context.Background(), FetchMode{
		Kind:  FetchRange,
		Start: start,
		End:   testNow.AddDate(0, 0, 10), // in the future, must be clamped
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d activities, want 2", len(got))
	}

	// An empty middle window must not end a range scan.
	cs := calls()
	if len(cs) != 3 {
		t.Fatalf("made %d list calls, want 3 windows", len(cs))
	}
	if last := cs[len(cs)-1]; last.before.After(testNow) {
		t.Errorf("final window ends at %v, want clamped to now", last.before)
	}
}

func TestFetchFullHistoryWidensCutoff(t *testing.T) {
	old := testNow.AddDate(0, -13, 0)
	srv, calls := listServer(t, []strava.Activity{runAt(7, old)})

	f := testFetcher(srv.URL)
	got, err := f.Fetch(context.Background(), FetchMode{Kind: FetchFullHistory})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 1 || got[0].ID != 7 {
		t.Fatalf("got %d activities, want the 13-month-old run", len(got))
	}

	// The first scan covers only the last year and finds nothing; the
	// second starts two years back and reaches the activity.
	first := calls()[0]
	if !first.after.Equal(testNow.AddDate(-1, 0, 0)) {
		t.Errorf("first scan starts at %v, want one year back", first.after)
	}
}

func TestFetchDrainsPages(t *testing.T) {
	var mu sync.Mutex
	var pages []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		mu.Lock()
		pages = append(pages, page)
		mu.Unlock()

		n := 0
		switch page {
		case 1:
			n = listPageSize
		case 2:
			n = 3
		}
		batch := make([]strava.Activity, n)
		for i := range batch {
			batch[i] = runAt(int64(page*1000+i), testNow.AddDate(0, 0, -20))
		}
		json.NewEncoder(w).Encode(batch)
	}))
	t.Cleanup(srv.Close)

	f := testFetcher(srv.URL)
	got, err := f.Fetch(context.Background(), FetchMode{
		Kind:  FetchRange,
		Start: testNow.AddDate(0, 0, -25),
		End:   testNow.AddDate(0, 0, -10),
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != listPageSize+3 {
		t.Errorf("got %d activities, want %d", len(got), listPageSize+3)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(pages) != 2 || pages[0] != 1 || pages[1] != 2 {
		t.Errorf("pages requested = %v, want [1 2]", pages)
	}
}

func TestFetchRetriesWholeScan(t *testing.T) {
	var mu sync.Mutex
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests++
		n := requests
		mu.Unlock()
		if n == 1 {
			http.Error(w, `{"message":"server error"}`, http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode([]strava.Activity{runAt(1, testNow.AddDate(0, 0, -10))})
	}))
	t.Cleanup(srv.Close)

	f := testFetcher(srv.URL)
	got, err := f.Fetch(context.Background(), FetchMode{Kind: FetchSince, After: testNow.AddDate(0, 0, -20)})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d activities, want 1", len(got))
	}

	mu.Lock()
	defer mu.Unlock()
	if requests != 2 {
		t.Errorf("made %d requests, want a retry after the failure", requests)
	}
}

func TestFetchGivesUpAfterRetries(t *testing.T) {
	var mu sync.Mutex
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests++
		mu.Unlock()
		http.Error(w, `{"message":"down"}`, http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	f := testFetcher(srv.URL)
	_, err := f.Fetch(context.Background(), FetchMode{Kind: FetchSince, After: testNow.AddDate(0, 0, -20)})
	if err == nil {
		t.Fatal("want error after exhausted retries")
	}
	if !strings.Contains(err.Error(), "after 3 attempts") {
		t.Errorf("error = %v, want attempt count", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if requests != fetchMaxRetries {
		t.Errorf("made %d requests, want %d", requests, fetchMaxRetries)
	}
}
