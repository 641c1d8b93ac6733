package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	captureDir string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "clinic-kiosk",
	Short: "Patient kiosk and admin console for the clinic face registration service",
	Long: `Clinic Kiosk drives the patient-facing kiosk of a clinic: face registration,
face verification with a manual NIK fallback and queue number assignment.
It also provides the admin console for browsing, editing and deleting
patient records. All data lives in the clinic service (CLINIC_URL).`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&captureDir, "capture", "", "Directory to save API responses for testing")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides LOG_LEVEL)")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
