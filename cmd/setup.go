package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/kozaktomas/clinic-kiosk/internal/capture"
	"github.com/kozaktomas/clinic-kiosk/internal/clinic"
	"github.com/kozaktomas/clinic-kiosk/internal/config"
	"github.com/kozaktomas/clinic-kiosk/internal/kiosk"
	"github.com/kozaktomas/clinic-kiosk/internal/logging"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
)

// loadConfig reads the configuration and builds the logger. Logs go to
// stderr so command output on stdout stays clean.
func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	return cfg, logging.New(level, os.Stderr), nil
}

func newClinicClient(cfg *config.Config, log zerolog.Logger) (*clinic.Client, error) {
	client, err := clinic.New(cfg.Clinic.URL,
		clinic.WithTimeout(cfg.Clinic.Timeout),
		clinic.WithLogger(log),
		clinic.WithCaptureDir(captureDir),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create clinic client: %w", err)
	}
	return client, nil
}

// newAdminClient returns a client logged in to the admin area.
func newAdminClient(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*clinic.Client, error) {
	if cfg.Clinic.AdminPassword == "" {
		return nil, errors.New("CLINIC_ADMIN_PASSWORD environment variable is required")
	}
	client, err := newClinicClient(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := client.Login(ctx, cfg.Clinic.AdminUsername, cfg.Clinic.AdminPassword); err != nil {
		return nil, fmt.Errorf("failed to log in to clinic admin: %w", err)
	}
	return client, nil
}

func newCamera(cfg *config.Config) capture.Camera {
	if cfg.Camera.Source == "snapshot" {
		return capture.SnapshotCamera{URL: cfg.Camera.SnapshotURL, Client: &http.Client{Timeout: cfg.Clinic.Timeout}}
	}
	return capture.DirCamera{Dir: cfg.Camera.Dir}
}

func captureProfile(p config.CaptureProfile, maxSize int) capture.Profile {
	return capture.Profile{
		Total:   p.Total,
		Gap:     p.Gap(),
		Quality: p.Quality,
		Label:   p.Label,
		MaxSize: maxSize,
	}
}

func newKioskController(cfg *config.Config, client *clinic.Client, log zerolog.Logger) *kiosk.Controller {
	return kiosk.NewController(client, newCamera(cfg), kiosk.Options{
		Departments:  cfg.Kiosk.Departments,
		Registration: captureProfile(cfg.Kiosk.Capture.Registration, cfg.Camera.MaxSize),
		Verification: captureProfile(cfg.Kiosk.Capture.Verification, cfg.Camera.MaxSize),
	}, log)
}

// attachProgressBar draws the loading modal of the kiosk as a terminal
// progress bar.
func attachProgressBar(ctrl *kiosk.Controller) func() {
	var bar *progressbar.ProgressBar
	var text string

	unsubscribe := ctrl.Subscribe(func(v kiosk.View) {
		if v.Loading == nil {
			if bar != nil {
				_ = bar.Finish()
				fmt.Fprintln(os.Stderr)
				bar = nil
			}
			return
		}
		if bar == nil {
			bar = progressbar.NewOptions(100,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionSetDescription(v.Loading.Text),
				progressbar.OptionSetWidth(30),
				progressbar.OptionShowElapsedTimeOnFinish(),
			)
			text = v.Loading.Text
		}
		if v.Loading.Text != text {
			bar.Describe(v.Loading.Text)
			text = v.Loading.Text
		}
		_ = bar.Set(v.Loading.Percent)
	})
	return unsubscribe
}
