package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jhoicas/Cobranzas-api/pkg/config"
	"github.com/jhoicas/Cobranzas-api/pkg/jwt"
)

var (
	tokenUser string
	tokenRole string
)

// tokenCmd emite un JWT firmado con JWT_SECRET. No hay login: los usuarios viven en el proveedor de identidad.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Emite un JWT para el API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if !jwt.ValidRole(tokenRole) {
			return fmt.Errorf("rol desconocido %q (admin, operador, auditor)", tokenRole)
		}
		if tokenUser == "" {
			tokenUser = uuid.NewString()
		}
		tok, err := jwt.Generate(cfg.JWT.Secret, tokenUser, tokenRole, cfg.JWT.Issuer, cfg.JWT.Expiration)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "ID del usuario (vacío = UUID nuevo)")
	tokenCmd.Flags().StringVar(&tokenRole, "role", jwt.RoleOperador, "rol: admin, operador o auditor")
}
