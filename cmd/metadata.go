package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/FredHutch/docker-eggnog-mapper/kegg"
	"github.com/FredHutch/docker-eggnog-mapper/services"
)

var (
	metadataInput   string
	metadataOutput  string
	metadataThreads int
)

func init() {
	metadataCmd.Flags().StringVar(&metadataInput, "input-tsv", "", "Annotationsdatei des Mappers (.emapper.annotations, optional .gz)")
	metadataCmd.Flags().StringVar(&metadataOutput, "output-db", "", "Zielpfad der SQLite-Datenbank")
	metadataCmd.Flags().IntVar(&metadataThreads, "threads", 0, "Parallele KEGG-Abfragen (Default aus KEGG_THREADS)")
	metadataCmd.MarkFlagRequired("input-tsv")
	metadataCmd.MarkFlagRequired("output-db")
	rootCmd.AddCommand(metadataCmd)
}

var metadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "KEGG-Metadaten aus einer Annotationsdatei in SQLite schreiben",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logging, err := setup()
		if err != nil {
			return err
		}
		defer logging.Sync()

		if metadataThreads > 0 {
			cfg.KeggThreads = metadataThreads
		}

		client := kegg.NewClient(cfg, logging)
		service := services.NewMetadataService(cfg, logging, client)

		summary, err := service.Run(cmd.Context(), metadataInput, metadataOutput)
		if err != nil {
			logging.Error("Metadata ETL failed", zap.Error(err))
			return err
		}

		logging.Info("Metadata ETL completed",
			zap.Int("orthologs", summary.Orthologs),
			zap.Int("reactions", summary.Reactions),
			zap.Int("compounds", summary.Compounds),
			zap.Int("pathways", summary.Pathways),
			zap.Int("failed", len(summary.Failed)))
		if len(summary.Failed) > 0 {
			logging.Warn("Some ortholog codes could not be resolved", zap.Strings("codes", summary.Failed))
		}
		return nil
	},
}
