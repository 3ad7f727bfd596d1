// seed_hsn carga la tabla de tarifas CGST/SGST por código HSN desde un CSV (hsn,cgst,sgst).
//
// Uso:
//
//	go run ./cmd/seed_hsn --input hsn_rates.csv --output seed_hsn.sql
//	go run ./cmd/seed_hsn --input hsn_rates.csv --encoding iso-8859-1 --apply
//
// Con --apply usa la configuración de la API (DATABASE_URL, DB_HOST...) y aplica migraciones antes de cargar.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/gst-billing-api/internal/infrastructure/hsnseed"
	"github.com/jhoicas/gst-billing-api/internal/infrastructure/postgres"
	"github.com/jhoicas/gst-billing-api/pkg/config"
	"github.com/jhoicas/gst-billing-api/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "seed_hsn",
	Short: "Carga tarifas GST por código HSN",
	Long: `Lee un CSV con columnas hsn,cgst,sgst (porcentajes) y genera un script SQL
idempotente o lo aplica directamente sobre PostgreSQL.`,
	Example: `  seed_hsn --input hsn_rates.csv --output seed_hsn.sql
  seed_hsn --input hsn_rates.csv --apply`,
	RunE:         run,
	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().StringP("input", "i", "hsn_rates.csv", "CSV de entrada (hsn,cgst,sgst)")
	rootCmd.Flags().String("encoding", hsnseed.EncodingUTF8, "codificación del CSV: utf-8 | iso-8859-1 | windows-1252")
	rootCmd.Flags().StringP("output", "o", "-", "script SQL de salida (- = stdout)")
	rootCmd.Flags().Bool("apply", false, "aplicar directamente en la base de datos configurada")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "seed_hsn: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	input, _ := cmd.Flags().GetString("input")
	encoding, _ := cmd.Flags().GetString("encoding")
	output, _ := cmd.Flags().GetString("output")
	apply, _ := cmd.Flags().GetBool("apply")

	f, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("abrir CSV: %w", err)
	}
	defer f.Close()

	rates, err := hsnseed.Parse(f, encoding)
	if err != nil {
		return err
	}

	if !apply {
		out := os.Stdout
		if output != "-" {
			file, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("crear archivo: %w", err)
			}
			defer file.Close()
			out = file
		}
		if err := hsnseed.WriteSQL(out, rates); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Generadas %d tarifas HSN\n", len(rates))
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Component("seed_hsn")

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	defer pool.Close()
	if err := postgres.Migrate(pool); err != nil {
		return err
	}

	n, err := postgres.NewHSNRateRepository(pool).UpsertMany(ctx, rates)
	if err != nil {
		return err
	}
	log.Info().Int("leidas", len(rates)).Int64("afectadas", n).Msg("tarifas HSN cargadas")
	return nil
}
