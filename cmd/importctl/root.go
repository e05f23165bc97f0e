package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vfg2006/traffic-insights-import/internal/app"
	"github.com/vfg2006/traffic-insights-import/internal/config"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "importctl",
		Short:         "Importação de planilhas de marketing pela linha de comando",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newSchemasCmd())
	cmd.AddCommand(newTokenCmd())
	return cmd
}

// loadConfig carrega a configuração e ajusta os logs para stderr,
// deixando stdout livre para a saída do comando
func loadConfig() (*config.Config, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, err
	}
	app.ConfigureLogger(cfg.App.LogLevel)
	logrus.SetOutput(os.Stderr)
	return cfg, nil
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
