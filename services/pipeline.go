package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/FredHutch/docker-eggnog-mapper/config"
	"github.com/FredHutch/docker-eggnog-mapper/storage"
)

// PipelineOptions beschreibt einen einzelnen Annotationslauf.
type PipelineOptions struct {
	// Input ist die Eingabesequenzdatei (FASTA), lokal oder s3://.
	Input string
	// Reference ist der Speicherort der eggNOG-Referenzdaten.
	Reference string
	// Destination ist das Ziel für die Ergebnisdateien.
	Destination string
	// OutputPrefix ist der Dateinamens-Präfix der emapper-Ausgabe.
	OutputPrefix string
	// CPUs ist die Anzahl der Threads für emapper.
	CPUs int
	// Mode ist der Suchmodus (z.B. diamond).
	Mode string
	// KeepScratch verhindert das Aufräumen des Scratch-Verzeichnisses,
	// nützlich bei der Fehlersuche.
	KeepScratch bool
}

// Pipeline verkettet die drei Annotationsstufen: Referenzdaten holen,
// emapper ausführen, Ergebnisse veröffentlichen.
type Pipeline struct {
	Config    *config.Config
	Logger    *zap.Logger
	Fetcher   *ReferenceFetcher
	Runner    *AnnotationRunner
	Publisher *ResultPublisher
}

// NewPipeline erstellt eine neue Pipeline mit allen drei Stufen.
func NewPipeline(cfg *config.Config, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		Config:    cfg,
		Logger:    logger,
		Fetcher:   NewReferenceFetcher(cfg, logger),
		Runner:    NewAnnotationRunner(cfg, logger),
		Publisher: NewResultPublisher(cfg, logger),
	}
}

// Run führt einen kompletten Annotationslauf aus. Das Scratch-Verzeichnis
// wird pro Lauf frisch angelegt und am Ende entfernt, außer KeepScratch
// ist gesetzt.
func (p *Pipeline) Run(ctx context.Context, opts PipelineOptions) error {
	scratch, err := os.MkdirTemp(p.Config.TempFolder, "emapper-")
	if err != nil {
		return fmt.Errorf("scratch-verzeichnis anlegen: %w", err)
	}
	if opts.KeepScratch {
		p.Logger.Info("Scratch-Verzeichnis bleibt erhalten", zap.String("dir", scratch))
	} else {
		defer os.RemoveAll(scratch)
	}

	dataDir := filepath.Join(scratch, "db")
	if err := p.Fetcher.EnsureReference(ctx, opts.Reference, dataDir); err != nil {
		return err
	}

	input, err := p.stageInput(ctx, opts.Input, scratch)
	if err != nil {
		return err
	}

	prefix := opts.OutputPrefix
	if prefix == "" {
		prefix = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}
	outputs, err := p.Runner.Run(ctx, RunOptions{
		Input:        input,
		DataDir:      dataDir,
		OutputPrefix: filepath.Join(scratch, prefix),
		CPUs:         opts.CPUs,
		Mode:         opts.Mode,
		ScratchDir:   scratch,
	})
	if err != nil {
		return err
	}

	if err := p.Publisher.Publish(ctx, outputs, opts.Destination); err != nil {
		return err
	}

	p.Logger.Info("Annotationslauf abgeschlossen",
		zap.String("input", opts.Input),
		zap.String("destination", opts.Destination),
		zap.Int("files", len(outputs)))
	return nil
}

// stageInput sorgt dafür, dass die Eingabedatei lokal unter scratch
// liegt. s3://-Pfade werden heruntergeladen, lokale Pfade unverändert
// durchgereicht.
func (p *Pipeline) stageInput(ctx context.Context, location, scratch string) (string, error) {
	if !storage.IsS3(location) {
		if _, err := os.Stat(location); err != nil {
			return "", &FetchError{Location: location, Err: err}
		}
		return location, nil
	}

	store, err := storage.ForLocation(p.Config, p.Logger, location)
	if err != nil {
		return "", &FetchError{Location: location, Err: err}
	}

	rc, size, err := store.Get(ctx, location)
	if err != nil {
		return "", &FetchError{Location: location, Err: err}
	}
	defer rc.Close()

	local := filepath.Join(scratch, filepath.Base(location))
	f, err := os.Create(local)
	if err != nil {
		return "", &FetchError{Location: location, Err: err}
	}
	written, err := io.Copy(f, rc)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", &FetchError{Location: location, Err: err}
	}
	if size >= 0 && written != size {
		return "", &FetchError{Location: location, Err: fmt.Errorf("unvollständiger download: %d von %d bytes", written, size)}
	}

	p.Logger.Info("Eingabedatei lokal bereitgestellt", zap.String("location", location), zap.String("local", local))
	return local, nil
}
