package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears variables for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	unsetEnv(t, "CLINIC_URL", "CLINIC_TIMEOUT", "CAMERA_SOURCE", "WEB_PORT", "LOG_LEVEL")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", cfg.Clinic.URL)
	assert.Equal(t, 60*time.Second, cfg.Clinic.Timeout)
	assert.Equal(t, "dir", cfg.Camera.Source)
	assert.Equal(t, 8080, cfg.Web.Port)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("CLINIC_URL", "http://clinic.local:5000")
	t.Setenv("CLINIC_TIMEOUT", "5s")
	t.Setenv("CAMERA_SOURCE", "snapshot")
	t.Setenv("CAMERA_SNAPSHOT_URL", "http://cam.local/snapshot.jpg")
	t.Setenv("WEB_PORT", "9090")
	t.Setenv("WEB_ALLOWED_ORIGINS", "https://kiosk.local,https://admin.local")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://clinic.local:5000", cfg.Clinic.URL)
	assert.Equal(t, 5*time.Second, cfg.Clinic.Timeout)
	assert.Equal(t, "snapshot", cfg.Camera.Source)
	assert.Equal(t, "http://cam.local/snapshot.jpg", cfg.Camera.SnapshotURL)
	assert.Equal(t, 9090, cfg.Web.Port)
	assert.Equal(t, []string{"https://kiosk.local", "https://admin.local"}, cfg.Web.AllowedOrigins)
}

func TestLoad_UnknownCameraSource(t *testing.T) {
	t.Setenv("CAMERA_SOURCE", "usb")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_KioskProfiles(t *testing.T) {
	unsetEnv(t, "CAMERA_SOURCE")

	cfg, err := Load()
	require.NoError(t, err)

	reg := cfg.Kiosk.Capture.Registration
	assert.Equal(t, 20, reg.Total)
	assert.Equal(t, 120*time.Millisecond, reg.Gap())
	assert.Equal(t, 85, reg.Quality)

	ver := cfg.Kiosk.Capture.Verification
	assert.Equal(t, 20, ver.Total)
	assert.Equal(t, 100*time.Millisecond, ver.Gap())
	assert.Equal(t, 80, ver.Quality)

	assert.Equal(t, []string{"Poli Umum", "Poli Gigi", "IGD"}, cfg.Kiosk.Departments)
	assert.True(t, cfg.Kiosk.HasDepartment("IGD"))
	assert.False(t, cfg.Kiosk.HasDepartment("Poli Mata"))
}
