package cmd

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/FredHutch/docker-eggnog-mapper/services"
)

var pipelineRunsCounter prometheus.Counter
var pipelineFailuresCounter prometheus.Counter

func init() {
	pipelineRunsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "annotation_runs_total",
			Help: "Total number of completed annotation pipeline runs.",
		},
	)
	pipelineFailuresCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "annotation_run_failures_total",
			Help: "Total number of failed annotation pipeline runs.",
		},
	)
	prometheus.MustRegister(pipelineRunsCounter, pipelineFailuresCounter)

	runCmd.Flags().StringVar(&runInput, "input", "", "Eingabesequenzdatei (lokal oder s3://)")
	runCmd.Flags().StringVar(&runReference, "db", "", "eggNOG-Referenzdaten (lokal oder s3://, tar.gz wird entpackt)")
	runCmd.Flags().StringVar(&runDestination, "output", "", "Ziel für die Ergebnisdateien (lokal oder s3://)")
	runCmd.Flags().StringVar(&runOutputPrefix, "output-prefix", "", "Dateinamens-Präfix der emapper-Ausgabe (Default: Eingabename)")
	runCmd.Flags().IntVar(&runCPUs, "cpu", 2, "Anzahl der emapper-Threads")
	runCmd.Flags().StringVar(&runMode, "mode", "", "emapper-Suchmodus (Default aus EMAPPER_MODE)")
	runCmd.Flags().StringVar(&runTempFolder, "temp-folder", "", "Basisverzeichnis für Scratch (Default aus TEMP_FOLDER)")
	runCmd.Flags().BoolVar(&runKeepScratch, "keep-scratch", false, "Scratch-Verzeichnis nach dem Lauf behalten")
	runCmd.Flags().StringVar(&runSchedule, "schedule", "", "Cron-Ausdruck: Lauf wiederholen und /metrics ausliefern (\"env\" nimmt CRON_SCHEDULE)")
	runCmd.MarkFlagRequired("input")
	runCmd.MarkFlagRequired("db")
	runCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(runCmd)
}

var (
	runInput        string
	runReference    string
	runDestination  string
	runOutputPrefix string
	runCPUs         int
	runMode         string
	runTempFolder   string
	runKeepScratch  bool
	runSchedule     string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Einen Annotationslauf ausführen",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logging, err := setup()
		if err != nil {
			return err
		}
		defer logging.Sync()

		if runTempFolder != "" {
			cfg.TempFolder = runTempFolder
		}

		pipeline := services.NewPipeline(cfg, logging)
		opts := services.PipelineOptions{
			Input:        runInput,
			Reference:    runReference,
			Destination:  runDestination,
			OutputPrefix: runOutputPrefix,
			CPUs:         runCPUs,
			Mode:         runMode,
			KeepScratch:  runKeepScratch,
		}

		if runSchedule == "" {
			if err := pipeline.Run(cmd.Context(), opts); err != nil {
				logging.Error("Annotation run failed", zap.Error(err))
				return err
			}
			return nil
		}

		schedule := runSchedule
		if schedule == "env" {
			schedule = cfg.CronSchedule
		}
		return serveScheduled(schedule, cfg.HTTPPort, logging, pipeline, opts)
	},
}

// serveScheduled wiederholt den Lauf nach dem Cron-Zeitplan und liefert
// /metrics und /healthz aus, bis der Prozess beendet wird.
func serveScheduled(schedule, port string, logging *zap.Logger, pipeline *services.Pipeline, opts services.PipelineOptions) error {
	cronScheduler := cron.New()
	cronScheduler.AddFunc(schedule, func() {
		logging.Info("Running scheduled annotation job...")
		if err := pipeline.Run(context.Background(), opts); err != nil {
			logging.Error("Cron job failed", zap.Error(err))
			pipelineFailuresCounter.Inc()
		} else {
			logging.Info("Cron job completed")
			pipelineRunsCounter.Inc()
		}
	})
	cronScheduler.Start()

	router := gin.Default()
	router.Use(gin.Recovery())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	logging.Info("Starting server", zap.String("port", port))
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Error("Failed to run server", zap.Error(err))
		return err
	}
	return nil
}
