package main

import (
	"fmt"

	"github.com/aretw0/talkweave/internal/validator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the dataset for broken references",
	Long:  `Reports dangling dialogue links, talk units pointing at missing dialogue or talks, and voice files of unknown lines.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ds, err := readDataset(cmd.Context(), cfg.Data)
		if err != nil {
			return err
		}
		if err := validator.ValidateDataset(ds); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Dataset is valid: %d dialogue lines, %d talks.\n", len(ds.Dialogues), len(ds.Talks))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
