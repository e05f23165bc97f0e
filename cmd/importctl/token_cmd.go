package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/vfg2006/traffic-insights-import/internal/domain"
	"github.com/vfg2006/traffic-insights-import/internal/usecases/authenticating"
	"github.com/vfg2006/traffic-insights-import/pkg/middleware"
)

type tokenOptions struct {
	UserID int
	Name   string
	Role   int
	TTL    time.Duration
}

func newTokenCmd() *cobra.Command {
	var opts tokenOptions

	cmd := &cobra.Command{
		Use:   "token --user-id <id> --role <1|2|3>",
		Short: "Emite um token de acesso assinado com a SECRET_KEY configurada",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.UserID <= 0 {
				return fmt.Errorf("--user-id deve ser positivo")
			}
			if opts.Role < middleware.RoleAdmin || opts.Role > middleware.RoleClient {
				return fmt.Errorf("--role inválido: %d", opts.Role)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			token, err := authenticating.NewService(cfg.SecretKey).IssueToken(domain.Claims{
				UserID:     opts.UserID,
				UserName:   opts.Name,
				UserRoleID: opts.Role,
			}, opts.TTL)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.UserID, "user-id", 0, "ID do usuário")
	cmd.Flags().StringVar(&opts.Name, "name", "importctl", "Nome do usuário")
	cmd.Flags().IntVar(&opts.Role, "role", middleware.RoleAdmin, "Role do usuário (1 admin, 2 supervisor, 3 cliente)")
	cmd.Flags().DurationVar(&opts.TTL, "ttl", time.Hour, "Validade do token")
	return cmd
}
