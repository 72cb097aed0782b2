package config

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DateLayout is the format accepted by -start-date and -end-date.
const DateLayout = "2006-01-02"

// Config holds everything a run of the exporter needs. Values come from
// flags first, then the environment (a .env file is loaded if present).
type Config struct {
	ClientID     string
	ClientSecret string
	RefreshToken string

	RunsDir string

	Authorize bool
	FetchAll  bool
	StartDate time.Time
	EndDate   time.Time

	SkipSegments bool
	SkipSplits   bool
	SkipLaps     bool
	SkipStreams  bool
}

// env mirrors the variables the original CI setup provides.
type env struct {
	ClientID     string `envconfig:"STRAVA_CLIENT_ID"`
	ClientSecret string `envconfig:"STRAVA_CLIENT_SECRET"`
	RefreshToken string `envconfig:"STRAVA_REFRESH_TOKEN"`
	RunsDir      string `envconfig:"RUNS_DIR" default:"content/runs"`
}

// Load parses args and merges them over the environment.
func Load(args []string) (*Config, error) {
	// A missing .env is fine; credentials may come from flags or the
	// ambient environment.
	_ = godotenv.Load()

	var e env
	if err := envconfig.Process("", &e); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	fs := flag.NewFlagSet("strava-runlog", flag.ContinueOnError)
	clientID := fs.String("client-id", "", "Strava API client ID (default $STRAVA_CLIENT_ID)")
	clientSecret := fs.String("client-secret", "", "Strava API client secret (default $STRAVA_CLIENT_SECRET)")
	refreshToken := fs.String("refresh-token", "", "Strava API refresh token (default $STRAVA_REFRESH_TOKEN)")
	runsDir := fs.String("runs-dir", "", "directory for exported run files (default $RUNS_DIR or content/runs)")
	authorize := fs.Bool("authorize", false, "run the one-time browser OAuth flow and print tokens")
	fetchAll := fs.Bool("fetch-all", false, "fetch full history instead of only activities newer than the latest export")
	startDate := fs.String("start-date", "", "fetch activities from this date (YYYY-MM-DD, requires -end-date)")
	endDate := fs.String("end-date", "", "fetch activities up to this date (YYYY-MM-DD, requires -start-date)")
	skipSegments := fs.Bool("skip-segments", false, "do not export segment efforts")
	skipSplits := fs.Bool("skip-splits", false, "do not export per-kilometer splits")
	skipLaps := fs.Bool("skip-laps", false, "do not export laps")
	skipStreams := fs.Bool("skip-streams", false, "do not fetch sensor streams")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := &Config{
		ClientID:     firstNonEmpty(*clientID, e.ClientID),
		ClientSecret: firstNonEmpty(*clientSecret, e.ClientSecret),
		RefreshToken: firstNonEmpty(*refreshToken, e.RefreshToken),
		RunsDir:      firstNonEmpty(*runsDir, e.RunsDir),
		Authorize:    *authorize,
		FetchAll:     *fetchAll,
		SkipSegments: *skipSegments,
		SkipSplits:   *skipSplits,
		SkipLaps:     *skipLaps,
		SkipStreams:  *skipStreams,
	}

	if *startDate != "" {
		t, err := time.Parse(DateLayout, *startDate)
		if err != nil {
			return nil, fmt.Errorf("parsing -start-date: %w", err)
		}
		cfg.StartDate = t
	}
	if *endDate != "" {
		t, err := time.Parse(DateLayout, *endDate)
		if err != nil {
			return nil, fmt.Errorf("parsing -end-date: %w", err)
		}
		cfg.EndDate = t
	}

	return cfg, nil
}

// Validate checks required fields before any network call is made.
func (c *Config) Validate() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return errors.New("client id and client secret are required (flags or STRAVA_CLIENT_ID / STRAVA_CLIENT_SECRET)")
	}
	if c.Authorize {
		// The OAuth flow produces the refresh token, so it isn't needed yet.
		return nil
	}
	if c.RefreshToken == "" {
		return errors.New("refresh token is required (flag -refresh-token or STRAVA_REFRESH_TOKEN); run with -authorize to obtain one")
	}
	if c.StartDate.IsZero() != c.EndDate.IsZero() {
		return errors.New("-start-date and -end-date must be given together")
	}
	if !c.StartDate.IsZero() && c.StartDate.After(c.EndDate) {
		return fmt.Errorf("start date %s is after end date %s", c.StartDate.Format(DateLayout), c.EndDate.Format(DateLayout))
	}
	return nil
}

// HasDateRange reports whether an explicit date range was requested.
func (c *Config) HasDateRange() bool {
	return !c.StartDate.IsZero() && !c.EndDate.IsZero()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
