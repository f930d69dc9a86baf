package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/FredHutch/docker-eggnog-mapper/config"
)

var rootCmd = &cobra.Command{
	Use:          "eggnog-mapper",
	Short:        "eggNOG-Annotationspipeline mit KEGG-Metadaten-ETL",
	Long:         "Führt eggNOG-mapper-Annotationsläufe gegen Referenzdaten aus Objektspeicher aus und baut aus den Annotationen eine SQLite-Datenbank mit KEGG-Metadaten.",
	SilenceUsage: true,
}

// Execute startet das CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup initialisiert Logger und Konfiguration für einen Subcommand.
func setup() (*config.Config, *zap.Logger, error) {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Error("Config load error", zap.Error(err))
		return nil, nil, err
	}
	return cfg, logging, nil
}
