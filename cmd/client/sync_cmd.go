package main

import (
	"github.com/spf13/cobra"

	"github.com/stopperw/modsync/internal/client/config"
	"github.com/stopperw/modsync/internal/client/sync"
)

var syncCmd = &cobra.Command{
	Use:   "sync [target_directory]",
	Short: "Upload local mod changes to the server",
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

		forceSync, _ := cmd.Flags().GetBool("force-sync")
		forceUpload, _ := cmd.Flags().GetBool("force-upload")
		downloadState, _ := cmd.Flags().GetBool("download-state")

		engine := sync.NewEngine(target, cfg, client)
		return engine.Run(cmd.Context(), sync.Options{
			ForceSync:      forceSync,
			ForceUpload:    forceUpload,
			SeedFromServer: downloadState,
		})
	},
}

func init() {
	syncCmd.Flags().SortFlags = false
	syncCmd.Flags().BoolP("force-sync", "f", false, "Push all entries, not just changes")
	syncCmd.Flags().BoolP("force-upload", "u", false, "Re-upload all mod files")
	syncCmd.Flags().BoolP("download-state", "d", false, "Replace local state with the server's listing")
}
