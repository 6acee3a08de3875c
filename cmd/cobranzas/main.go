// Command cobranzas procesa planillas de cobranza sin levantar el servidor HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	logLevel string
	env      string
)

var rootCmd = &cobra.Command{
	Use:   "cobranzas",
	Short: "Agrupa cobranzas por cliente y consolida sus documentos",
	Long: `Herramienta de línea de comandos del API de cobranzas.

Subcomandos:
  run   - procesa una planilla y escribe Output_WABA.xlsx, los PDFs unificados y el reporte
  token - emite un JWT para probar el API`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "nivel de log (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "development = consola legible; production = JSON")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
