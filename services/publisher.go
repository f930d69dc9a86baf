package services

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/FredHutch/docker-eggnog-mapper/config"
	"github.com/FredHutch/docker-eggnog-mapper/storage"
)

// ResultPublisher kopiert die Ausgabedateien eines Laufs an ihr Ziel —
// ein S3-Prefix oder ein lokales Verzeichnis. Die Dateinamen bleiben
// erhalten.
type ResultPublisher struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewResultPublisher erstellt einen neuen ResultPublisher.
func NewResultPublisher(cfg *config.Config, logger *zap.Logger) *ResultPublisher {
	return &ResultPublisher{Config: cfg, Logger: logger}
}

// Publish überträgt alle Dateien. Bricht ein Transfer ab, bleibt am Ziel
// keine halbe Datei zurück (Temp-Datei + Rename bzw. atomarer S3-Put).
func (p *ResultPublisher) Publish(ctx context.Context, files []string, destination string) error {
	store, err := storage.ForLocation(p.Config, p.Logger, destination)
	if err != nil {
		return &PublishError{Destination: destination, Err: err}
	}

	for _, file := range files {
		target := storage.Join(destination, filepath.Base(file))

		f, err := os.Open(file)
		if err != nil {
			return &PublishError{Destination: target, Err: err}
		}
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return &PublishError{Destination: target, Err: err}
		}

		p.Logger.Info("Veröffentliche Ergebnisdatei",
			zap.String("file", file), zap.String("target", target), zap.Int64("size", info.Size()))

		if err := store.Put(ctx, target, f, info.Size()); err != nil {
			f.Close()
			return &PublishError{Destination: target, Err: err}
		}
		f.Close()
	}
	return nil
}
