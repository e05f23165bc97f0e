package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vfg2006/traffic-insights-import/internal/app"
	"github.com/vfg2006/traffic-insights-import/internal/usecases/importing"
)

type runOptions struct {
	ClientID string
	DataType string
}

func newRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run --client-id <id|all> --data-type <tipo> <arquivo>",
		Short: "Importa um arquivo e escreve os eventos de progresso em NDJSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(opts.DataType) == "" {
				return errors.New("--data-type é obrigatório")
			}
			if strings.TrimSpace(opts.ClientID) == "" {
				return errors.New("--client-id é obrigatório")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			conn, err := app.Connect(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer conn.Close()

			service, err := app.NewImportService(cfg, conn, app.NewRegistry(cfg))
			if err != nil {
				return err
			}

			summary, err := service.Import(cmd.Context(), importing.Request{
				SourceType: opts.DataType,
				Scope:      opts.ClientID,
				FilePath:   args[0],
			}, importing.NewStreamReporter(cmd.OutOrStdout()))
			if err != nil {
				var validationErr *importing.ValidationError
				if errors.As(err, &validationErr) {
					for _, v := range validationErr.Violations {
						fmt.Fprintln(cmd.ErrOrStderr(), "-", v)
					}
				}
				return err
			}

			logrus.WithFields(logrus.Fields{
				"processed": summary.TotalProcessed,
				"added":     summary.Added,
				"updated":   summary.Updated,
				"skipped":   summary.Skipped,
				"errors":    summary.Errors,
			}).Info("Importação concluída")
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.ClientID, "client-id", "", "ID da conta ou all")
	cmd.Flags().StringVar(&opts.DataType, "data-type", "", "Tipo de dado (veja o comando schemas)")
	return cmd
}
