// Command iskra runs the dating bot.
package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/m3rciful/iskra/core/buildinfo"
	corecmd "github.com/m3rciful/iskra/core/cmd"
	"github.com/m3rciful/iskra/core/logger"
	"github.com/m3rciful/iskra/internal/app"
	"github.com/m3rciful/iskra/internal/config"
)

const configEnv = "ISKRA_CONFIG"

var (
	configPath string

	rootCmd = &cobra.Command{
		Use:           "iskra",
		Short:         "Telegram dating bot",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the bot until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return corecmd.Run(cmd.Context(), corecmd.Options{
				ConfigEnvVar:      configEnv,
				DefaultConfigPath: configPath,
				LoadConfig:        app.LoadConfig,
				Bootstrap:         app.Bootstrap,
			})
		},
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE:  runMigrate,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "iskra %s (%s) %s\n", buildinfo.Version, buildinfo.Commit, buildinfo.Date)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "config file; "+configEnv+" takes precedence")
	rootCmd.AddCommand(serveCmd, migrateCmd, versionCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(corecmd.ConfigPath(configEnv, configPath))
	if err != nil {
		return err
	}
	if err := logger.InitLogger(&cfg.Core); err != nil {
		return err
	}
	defer func() { _ = logger.Shutdown() }()

	st, err := app.Migrate(cfg)
	if err != nil {
		return err
	}
	applied := "none"
	if len(st.Applied) > 0 {
		applied = strings.Join(st.Applied, ", ")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d -> %d, applied: %s\n", st.From, st.To, applied)
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatalf("iskra: %v", err)
	}
}
