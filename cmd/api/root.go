package main

import (
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-growth-tracker/internal/config"
)

const Version = "0.1.0"

var (
	configPath string
	cfg        config.Application
)

var rootCmd = &cobra.Command{
	Use:           "kanso",
	Short:         "Kanso growth tracker",
	Long:          "Kanso tracks daily goals across academic, physical, character and mindset and compares recent periods.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			log.Warnf("could not load .env: %v", err)
		}

		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		level, err := log.ParseLevel(cfg.Log.Level)
		if err != nil {
			log.Warnf("unknown log level %q, using info", cfg.Log.Level)
			level = log.InfoLevel
		}
		log.SetLevel(level)
		return nil
	},
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the YAML config file")

	rootCmd.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newReportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
