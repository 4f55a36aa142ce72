package loadcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/mergington/pkg/logger"
)

// Report is written to Config.OutputFile.
type Report struct {
	Activity   string    `json:"activity"`
	Signups    []Attempt `json:"signups"`
	Unregister []Attempt `json:"unregister"`
}

// Run executes the complete load check.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	log := logger.Get().Named("loadcheck")
	stats := &Stats{StartTime: time.Now()}
	client := newHTTPClient(config.BaseURL, config.Timeout)
	if config.Workers < 1 {
		config.Workers = 1
	}

	log.Info(ctx, "starting signup load check",
		logger.String("baseURL", config.BaseURL),
		logger.String("activity", config.Activity),
		logger.Int("students", config.Students),
		logger.Int("duplicates", config.Duplicates),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout))

	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	before, err := client.GetActivity(ctx, config.Activity)
	if err != nil {
		return stats, fmt.Errorf("initial snapshot failed: %w", err)
	}
	if err := verifyRoster(before); err != nil {
		return stats, fmt.Errorf("initial roster invalid: %w", err)
	}

	emails := generateStudents(ctx, config.Students, config.Duplicates)
	signups := fanOut(ctx, config, "signup", emails, func(ctx context.Context, email string) Result {
		return client.Signup(ctx, config.Activity, email)
	})
	countSignups(stats, signups)

	mid, err := client.GetActivity(ctx, config.Activity)
	if err != nil {
		return stats, fmt.Errorf("post-signup snapshot failed: %w", err)
	}
	if err := verifySignups(before, mid, signups); err != nil {
		return stats, fmt.Errorf("signup verification failed: %w", err)
	}
	log.Info(ctx, "signup phase verified",
		logger.Int("signedUp", stats.SignedUp),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("full", stats.Full),
		logger.Int("failed", stats.SignupFailures))

	var accepted []string
	for _, a := range signups {
		if a.Result == ResultSignedUp {
			accepted = append(accepted, a.Email)
		}
	}
	removals := fanOut(ctx, config, "unregister", accepted, func(ctx context.Context, email string) Result {
		return client.Unregister(ctx, config.Activity, email)
	})
	for _, a := range removals {
		if a.Result == ResultUnregistered {
			stats.Unregistered++
		} else {
			stats.UnregisterFailures++
		}
	}

	after, err := client.GetActivity(ctx, config.Activity)
	if err != nil {
		return stats, fmt.Errorf("final snapshot failed: %w", err)
	}
	if err := verifyRestored(before, after); err != nil {
		return stats, fmt.Errorf("restore verification failed: %w", err)
	}

	if config.OutputFile != "" {
		if err := saveReport(config, Report{Activity: config.Activity, Signups: signups, Unregister: removals}); err != nil {
			log.Warn(ctx, "failed to save report", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	log.Info(ctx, "load check passed")
	return stats, nil
}

func countSignups(stats *Stats, attempts []Attempt) {
	stats.SignupsSent = len(attempts)
	for _, a := range attempts {
		switch a.Result {
		case ResultSignedUp:
			stats.SignedUp++
		case ResultDuplicate:
			stats.Duplicates++
		case ResultFull:
			stats.Full++
		default:
			stats.SignupFailures++
		}
	}
}

// saveReport writes every attempt as indented JSON.
func saveReport(config *Config, report Report) error {
	dir := filepath.Dir(config.OutputFile)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(config.OutputFile, data, reportFilePermission); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var acceptRate, requestsPerSecond float64
	if stats.SignupsSent > 0 {
		acceptRate = float64(stats.SignedUp) / float64(stats.SignupsSent) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		requestsPerSecond = float64(stats.SignupsSent+stats.Unregistered+stats.UnregisterFailures) / stats.Duration.Seconds()
	}

	log.Info(ctx, "final statistics",
		logger.Int("signupsSent", stats.SignupsSent),
		logger.Int("signedUp", stats.SignedUp),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("full", stats.Full),
		logger.Int("signupFailures", stats.SignupFailures),
		logger.Int("unregistered", stats.Unregistered),
		logger.Int("unregisterFailures", stats.UnregisterFailures),
		logger.Duration("duration", stats.Duration),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("requestsPerSecond", requestsPerSecond))
}
