package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var engineCmd = &cobra.Command{
	Use:   "engine",
	Short: "Show the face engine status of the clinic service",
	Args:  cobra.NoArgs,
	RunE:  runEngine,
}

func init() {
	rootCmd.AddCommand(engineCmd)
}

func runEngine(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := newClinicClient(cfg, log)
	if err != nil {
		return err
	}

	status, err := client.EngineStatus(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get engine status: %w", err)
	}

	fmt.Printf("Engine:       %s\n", status.Engine)
	fmt.Printf("Model loaded: %v\n", status.ModelLoaded)
	if status.TotalEmbeddings > 0 {
		fmt.Printf("Embeddings:   %d\n", status.TotalEmbeddings)
	}
	if status.Error != "" {
		fmt.Printf("Error:        %s\n", status.Error)
	}
	return nil
}
