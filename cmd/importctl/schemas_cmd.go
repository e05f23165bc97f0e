package main

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"github.com/vfg2006/traffic-insights-import/internal/app"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type schemaOutput struct {
	SourceType      string   `json:"sourceType"`
	Tables          []string `json:"tables"`
	RequiredColumns []string `json:"requiredColumns"`
	MaturityDays    int      `json:"maturityDays"`
}

func newSchemasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schemas",
		Short: "Lista os tipos de dado aceitos e as colunas obrigatórias",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var out []schemaOutput
			for _, def := range app.NewRegistry(cfg).List() {
				out = append(out, schemaOutput{
					SourceType:      def.SourceType,
					Tables:          def.Tables,
					RequiredColumns: def.RequiredColumns(),
					MaturityDays:    def.Quality.MaturityDays,
				})
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}
