package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var retrainCmd = &cobra.Command{
	Use:   "retrain",
	Short: "Rebuild the face model from all stored samples",
	Long: `Ask the clinic service to rebuild its face recognition model from every
stored patient sample. Requires an admin login.`,
	Args: cobra.NoArgs,
	RunE: runRetrain,
}

func init() {
	rootCmd.AddCommand(retrainCmd)
}

func runRetrain(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	client, err := newAdminClient(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer client.Logout(ctx)

	fmt.Println("Retraining face model...")
	if err := client.Retrain(ctx); err != nil {
		return fmt.Errorf("failed to retrain: %w", err)
	}
	fmt.Println("Done.")
	return nil
}
