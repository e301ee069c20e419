package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/stopperw/modsync/internal/api"
	"github.com/stopperw/modsync/internal/client/config"
	"github.com/stopperw/modsync/internal/modsyncsdk"
)

var modpackCmd = &cobra.Command{
	Use:   "modpack",
	Short: "Manage modpacks on the server",
}

var modpackCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new modpack",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := sdkFromFlags(cmd)
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true

		game, _ := cmd.Flags().GetString("game")
		gameVersion, _ := cmd.Flags().GetString("game-version")
		modloader, _ := cmd.Flags().GetString("modloader")
		modloaderVersion, _ := cmd.Flags().GetString("modloader-version")

		resp, err := client.CreateModpack(cmd.Context(), &api.ModpackCreateRequest{
			Name:             args[0],
			Game:             game,
			GameVersion:      gameVersion,
			Modloader:        modloader,
			ModloaderVersion: modloaderVersion,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Modpack %s created: %s\n", args[0], color.GreenString(resp.ModpackID))
		fmt.Printf("Put the id into %s as %q\n", config.FileName, "modpack_id")
		return nil
	},
}

var modpackDeleteCmd = &cobra.Command{
	Use:   "delete <modpack_id>",
	Short: "Delete a modpack and all of its file records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := sdkFromFlags(cmd)
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true

		if err := client.DeleteModpack(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Modpack %s deleted\n", color.RedString(args[0]))
		return nil
	},
}

// sdkFromFlags builds a client from --server/--api-key, falling back to
// the modsync.json in the current directory when the flags are not set.
func sdkFromFlags(cmd *cobra.Command) (*modsyncsdk.Client, error) {
	serverURL, _ := cmd.Flags().GetString("server")
	apiKey, _ := cmd.Flags().GetString("api-key")

	if serverURL == "" || apiKey == "" {
		cfg, err := config.Load(".")
		if err != nil {
			return nil, errors.New("pass --server and --api-key, or run from a directory with a " + config.FileName)
		}
		if serverURL == "" {
			serverURL = cfg.ServerURL
		}
		if apiKey == "" {
			apiKey = cfg.APIKey
		}
	}

	return modsyncsdk.New(&modsyncsdk.Config{ServerURL: serverURL, APIKey: apiKey})
}

func init() {
	for _, cmd := range []*cobra.Command{modpackCreateCmd, modpackDeleteCmd} {
		cmd.Flags().SortFlags = false
		cmd.Flags().StringP("server", "s", "", "Modsync server URL")
		cmd.Flags().StringP("api-key", "k", "", "Modsync API key")
	}

	modpackCreateCmd.Flags().String("game", "", "Game the modpack targets")
	modpackCreateCmd.Flags().String("game-version", "", "Game version")
	modpackCreateCmd.Flags().String("modloader", "", "Modloader name")
	modpackCreateCmd.Flags().String("modloader-version", "", "Modloader version")

	modpackCmd.AddCommand(modpackCreateCmd)
	modpackCmd.AddCommand(modpackDeleteCmd)
}
