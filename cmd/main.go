package main

import (
	"fmt"
	"os"

	"github.com/Abraxas-365/hojavida/pkg/config"
	"github.com/Abraxas-365/hojavida/pkg/logx"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

var (
	configPath string
	appConfig  *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "hojavida",
	Short:         "Hoja de Vida intake API and résumé renderer",
	Long:          "Collects applicant résumés, renders them to PDF with headless Chrome and publishes them to object storage.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logx.Init(cfg.Log)
		_, _ = maxprocs.Set(maxprocs.Logger(logx.Debugf))
		appConfig = cfg
		return nil
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return runServer(appConfig)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server (default)",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runServer(appConfig)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (defaults to $CONFIG_PATH)")
	rootCmd.AddCommand(serveCmd)
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFrom(configPath)
	}
	return config.Load()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
