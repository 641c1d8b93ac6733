package config

import (
	_ "embed"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

//go:embed kiosk.yaml
var kioskYAML []byte

type Config struct {
	Clinic ClinicConfig
	Camera CameraConfig
	Web    WebConfig
	Log    LogConfig
	Kiosk  KioskConfig
}

type ClinicConfig struct {
	URL           string        `envconfig:"CLINIC_URL" default:"http://localhost:5000"`
	AdminUsername string        `envconfig:"CLINIC_ADMIN_USERNAME" default:"admin"`
	AdminPassword string        `envconfig:"CLINIC_ADMIN_PASSWORD"`
	Timeout       time.Duration `envconfig:"CLINIC_TIMEOUT" default:"60s"`
}

// CameraConfig selects where kiosk frames come from.
type CameraConfig struct {
	Source      string `envconfig:"CAMERA_SOURCE" default:"dir"` // dir or snapshot
	Dir         string `envconfig:"CAMERA_DIR" default:"./frames"`
	SnapshotURL string `envconfig:"CAMERA_SNAPSHOT_URL"`
	MaxSize     int    `envconfig:"CAMERA_MAX_SIZE" default:"0"` // 0 keeps the native frame size
}

type WebConfig struct {
	Host           string   `envconfig:"WEB_HOST" default:"0.0.0.0"`
	Port           int      `envconfig:"WEB_PORT" default:"8080"`
	AllowedOrigins []string `envconfig:"WEB_ALLOWED_ORIGINS"`
	AdminUsername  string   `envconfig:"WEB_ADMIN_USERNAME" default:"admin"`
	AdminPassword  string   `envconfig:"WEB_ADMIN_PASSWORD"` // empty leaves the admin routes open
}

type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

// KioskConfig is read from the embedded kiosk.yaml.
type KioskConfig struct {
	Departments []string        `yaml:"departments"`
	Capture     CaptureProfiles `yaml:"capture"`
}

type CaptureProfiles struct {
	Registration CaptureProfile `yaml:"registration"`
	Verification CaptureProfile `yaml:"verification"`
}

type CaptureProfile struct {
	Total   int    `yaml:"total"`
	GapMS   int    `yaml:"gap_ms"`
	Quality int    `yaml:"quality"`
	Label   string `yaml:"label"`
}

// Gap returns the delay between two frames.
func (p CaptureProfile) Gap() time.Duration {
	return time.Duration(p.GapMS) * time.Millisecond
}

// HasDepartment reports whether poli is one of the configured departments.
func (k KioskConfig) HasDepartment(poli string) bool {
	for _, d := range k.Departments {
		if d == poli {
			return true
		}
	}
	return false
}

// Load reads the configuration from the environment and the embedded kiosk.yaml.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("could not process environment: %w", err)
	}
	if err := yaml.Unmarshal(kioskYAML, &cfg.Kiosk); err != nil {
		// Embedded file, only a broken build gets here.
		panic("failed to unmarshal embedded kiosk.yaml: " + err.Error())
	}
	if cfg.Camera.Source != "dir" && cfg.Camera.Source != "snapshot" {
		return nil, fmt.Errorf("unknown CAMERA_SOURCE %q (expected dir or snapshot)", cfg.Camera.Source)
	}
	return &cfg, nil
}
