package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stopperw/modsync/internal/server"
	"github.com/stopperw/modsync/internal/version"
)

var rootCmd = &cobra.Command{
	Use:     "modsync-server",
	Short:   "Modsync Server",
	Version: version.Detailed(),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		config := &server.Config{
			HTTP: server.HTTPConfig{
				Addr:     viper.GetString("addr"),
				CertFile: viper.GetString("cert_file"),
				KeyFile:  viper.GetString("key_file"),
			},
			Auth: server.AuthConfig{
				MasterKey: viper.GetString("master_key"),
			},
			DBPath:         viper.GetString("db_path"),
			MaxBodySize:    viper.GetInt64("max_body_size"),
			RequestTimeout: viper.GetDuration("request_timeout"),
		}
		config.Blob.Dir = viper.GetString("uploads_dir")
		if err := config.Validate(); err != nil {
			return err
		}

		cmd.SilenceUsage = true

		s, err := server.New(config)
		if err != nil {
			return err
		}
		defer slog.Info("Bye!")
		return s.Start(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().SortFlags = false
	rootCmd.Flags().StringP("bind", "b", server.DefaultAddr, "Address to bind the server")
	rootCmd.Flags().String("cert", "", "Path to the TLS certificate file")
	rootCmd.Flags().String("key", "", "Path to the TLS key file")
	rootCmd.Flags().String("db", server.DefaultDBPath, "Path to the sqlite database")
	rootCmd.Flags().String("uploads-dir", server.DefaultUploadsDir, "Directory for uploaded blobs")
	rootCmd.Flags().String("master-key", "", "Shared API key clients must present")
	rootCmd.Flags().Int64("max-body-size", server.DefaultMaxBodySize, "Max request body size in bytes")
	rootCmd.Flags().Duration("request-timeout", server.DefaultRequestTimeout, "Per-request timeout")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a config file")
}

func loadConfig(cmd *cobra.Command) error {
	if cmd.Flag("config").Changed {
		configFilePath, _ := cmd.Flags().GetString("config")
		viper.SetConfigFile(configFilePath)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("config read '%s': %w", viper.ConfigFileUsed(), err)
		}
	} else {
		viper.SetConfigName("modsync-server")
		viper.SetConfigType("json")
		viper.AddConfigPath(".")
		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("config read '%s': %w", viper.ConfigFileUsed(), err)
			}
		}
	}

	viper.SetEnvPrefix("MODSYNC")
	viper.AutomaticEnv()

	viper.BindPFlag("addr", cmd.Flags().Lookup("bind"))
	viper.BindPFlag("cert_file", cmd.Flags().Lookup("cert"))
	viper.BindPFlag("key_file", cmd.Flags().Lookup("key"))
	viper.BindPFlag("db_path", cmd.Flags().Lookup("db"))
	viper.BindPFlag("uploads_dir", cmd.Flags().Lookup("uploads-dir"))
	viper.BindPFlag("master_key", cmd.Flags().Lookup("master-key"))
	viper.BindPFlag("max_body_size", cmd.Flags().Lookup("max-body-size"))
	viper.BindPFlag("request_timeout", cmd.Flags().Lookup("request-timeout"))
	return nil
}

func main() {
	handler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: time.RFC3339,
		NoColor:    !isatty.IsTerminal(os.Stdout.Fd()),
	})
	slog.SetDefault(slog.New(handler))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
