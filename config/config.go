package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
// Operative Parameter (Input, Output, CPU etc.) kommen pro Aufruf über
// CLI-Flags, hier liegen Credentials, Endpunkte und Defaults.
type Config struct {
	// S3-Zugang ist optional: rein lokale Läufe brauchen keinen.
	S3Key      string `envconfig:"S3_KEY"`
	S3Secret   string `envconfig:"S3_SECRET"`
	S3Endpoint string `envconfig:"S3_ENDPOINT"`
	S3Region   string `envconfig:"S3_REGION" default:"us-west-2"`

	// Externes Annotations-Binary
	EmapperBin  string `envconfig:"EMAPPER_BIN" default:"emapper.py"`
	EmapperMode string `envconfig:"EMAPPER_MODE" default:"diamond"`

	// KEGG REST API
	KeggBaseURL    string `envconfig:"KEGG_BASE_URL" default:"http://rest.kegg.jp"`
	KeggMaxRetries int    `envconfig:"KEGG_MAX_RETRIES" default:"3"`
	KeggThreads    int    `envconfig:"KEGG_THREADS" default:"4"`

	TempFolder string `envconfig:"TEMP_FOLDER" default:"/scratch"`

	// Nur im Schedule-Modus relevant
	HTTPPort     string `envconfig:"HTTP_PORT" default:"4242"`
	CronSchedule string `envconfig:"CRON_SCHEDULE" default:"0 0 * * *"`
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
