package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kozaktomas/clinic-kiosk/internal/admin"
	"github.com/kozaktomas/clinic-kiosk/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the kiosk web server",
	Long: `Start the kiosk web server.
It serves the kiosk screen, the kiosk and admin JSON APIs with live state
over server-sent events, and prometheus metrics on /metrics.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides WEB_PORT)")
	serveCmd.Flags().String("host", "", "Host to bind to (overrides WEB_HOST)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if port := mustGetInt(cmd, "port"); port != 0 {
		cfg.Web.Port = port
	}
	if host := mustGetString(cmd, "host"); host != "" {
		cfg.Web.Host = host
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	kioskClient, err := newClinicClient(cfg, log)
	if err != nil {
		return err
	}
	kioskCtrl := newKioskController(cfg, kioskClient, log)
	defer kioskCtrl.Close()

	// The admin table uses its own client so its session cookie stays
	// separate from the kiosk.
	adminClient, err := newClinicClient(cfg, log)
	if err != nil {
		return err
	}
	if cfg.Clinic.AdminPassword != "" {
		if err := adminClient.Login(ctx, cfg.Clinic.AdminUsername, cfg.Clinic.AdminPassword); err != nil {
			log.Warn().Err(err).Msg("admin login failed, admin table will report session errors")
		} else {
			defer adminClient.Logout(context.Background())
		}
	} else {
		log.Warn().Msg("CLINIC_ADMIN_PASSWORD not set, admin table is unavailable")
	}
	adminCtrl := admin.NewController(adminClient, nil, log)
	if err := adminCtrl.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("could not load patient table, retrying on first request")
	}

	server := web.NewServer(cfg, kioskCtrl, adminCtrl, log)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Clinic Kiosk on http://%s:%d\n", cfg.Web.Host, cfg.Web.Port)
	fmt.Printf("Kiosk session %s\n", kioskCtrl.Session())
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
