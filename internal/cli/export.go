package cli

import (
	"fmt"
	"os"

	"cyberquiz-service/internal/bank"
	"cyberquiz-service/internal/config"
	"github.com/spf13/cobra"
)

// NewExportCmd writes the current question bank as a seed-file artifact.
func NewExportCmd(configPath *string) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the question bank as questions.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			store, err := buildStore(cfg)
			if err != nil {
				return err
			}
			seed, cleanup, err := buildSeedLoader(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if cleanup != nil {
				defer cleanup()
			}

			artifact, err := bank.New(store, seed).ExportSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			if err := os.WriteFile(outPath, artifact, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported question bank to %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "questions.json", "output file path")
	return cmd
}
