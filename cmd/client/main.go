package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/stopperw/modsync/internal/version"
)

var red = color.New(color.FgHiRed, color.Bold).SprintFunc()

var rootCmd = &cobra.Command{
	Use:     "modsync",
	Short:   "Modsync CLI",
	Version: version.Detailed(),
}

func init() {
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(modpackCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	handler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
		NoColor:    !isatty.IsTerminal(os.Stdout.Fd()),
	})
	slog.SetDefault(slog.New(handler))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error(red("Error:") + " " + err.Error())
		os.Exit(1)
	}
}
