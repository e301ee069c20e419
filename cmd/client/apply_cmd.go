package main

import (
	"github.com/spf13/cobra"

	"github.com/stopperw/modsync/internal/client/config"
	"github.com/stopperw/modsync/internal/client/download"
)

var applyCmd = &cobra.Command{
	Use:   "apply [target_directory]",
	Short: "Download the modpack into the target directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := targetDir(args)

		cfg, err := config.Load(target)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		client, err := sdkFor(cfg)
		if err != nil {
			return err
		}

		cmd.SilenceUsage = true

		forceCheck, _ := cmd.Flags().GetBool("force-check")

		d := download.New(target, cfg, client)
		return d.Run(cmd.Context(), download.Options{ForceCheck: forceCheck})
	},
}

func init() {
	applyCmd.Flags().SortFlags = false
	applyCmd.Flags().BoolP("force-check", "f", false, "Check all mods for mismatches")
}
