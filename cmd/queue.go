package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Manage department queues",
}

var queueSetCmd = &cobra.Command{
	Use:   "set <poli> <nomor>",
	Short: "Set the last issued queue number of a department",
	Long: `Set the last issued queue number of a department. The next patient gets
nomor+1. Use 0 to reset the queue. Requires an admin login.`,
	Example: `  clinic-kiosk queue set "Poli Umum" 0`,
	Args:    cobra.ExactArgs(2),
	RunE:    runQueueSet,
}

func init() {
	rootCmd.AddCommand(queueCmd)
	queueCmd.AddCommand(queueSetCmd)
}

func runQueueSet(cmd *cobra.Command, args []string) error {
	poli := args[0]
	nomor, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid queue number %q", args[1])
	}

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Kiosk.HasDepartment(poli) {
		return fmt.Errorf("unknown department %q (known: %v)", poli, cfg.Kiosk.Departments)
	}

	ctx := cmd.Context()
	client, err := newAdminClient(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer client.Logout(ctx)

	msg, err := client.SetQueue(ctx, poli, nomor)
	if err != nil {
		return fmt.Errorf("failed to set queue: %w", err)
	}
	if msg == "" {
		msg = fmt.Sprintf("Antrian %s diset ke %d", poli, nomor)
	}
	fmt.Println(msg)
	return nil
}
