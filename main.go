package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"strava-runlog/internal/auth"
	"strava-runlog/internal/config"
	"strava-runlog/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()

	if cfg.Authorize {
		return authorize(ctx, cfg)
	}

	svc := service.New(service.Params{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RefreshToken: cfg.RefreshToken,
		RunsDir:      cfg.RunsDir,
		FetchAll:     cfg.FetchAll,
		StartDate:    cfg.StartDate,
		EndDate:      cfg.EndDate,
		Options: service.Options{
			Segments: !cfg.SkipSegments,
			Splits:   !cfg.SkipSplits,
			Laps:     !cfg.SkipLaps,
			Streams:  !cfg.SkipStreams,
		},
	})

	result, err := svc.Run(ctx)

	if result != nil && result.NewRefreshToken != "" && result.NewRefreshToken != cfg.RefreshToken {
		fmt.Println()
		fmt.Println("The refresh token was rotated. Update STRAVA_REFRESH_TOKEN to:")
		fmt.Printf("  %s\n", result.NewRefreshToken)
	}

	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("sync complete: %d runs fetched, %d written, %d already exported\n",
		result.Fetched, result.Written, result.Skipped)
	for _, e := range result.Errors {
		log.Printf("warning: %v", e)
	}

	return nil
}

// authorize runs the one-time browser OAuth flow and prints the resulting
// tokens for the user to store.
func authorize(ctx context.Context, cfg *config.Config) error {
	token, err := auth.Authorize(ctx, cfg.ClientID, cfg.ClientSecret)
	if err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}

	fmt.Println()
	fmt.Println("Authorization successful. Add these to your .env file:")
	fmt.Println()
	fmt.Printf("  STRAVA_REFRESH_TOKEN=%s\n", token.RefreshToken)
	fmt.Printf("  STRAVA_ACCESS_TOKEN=%s\n", token.AccessToken)
	return nil
}
