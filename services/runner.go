package services

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/FredHutch/docker-eggnog-mapper/config"
)

// Die Suffixe der Ausgabedateien des eggNOG mappers.
const (
	AnnotationsSuffix   = ".emapper.annotations"
	SeedOrthologsSuffix = ".emapper.seed_orthologs"
)

// RunOptions sind die Parameter für einen einzelnen Annotationslauf.
type RunOptions struct {
	Input        string // lokale FASTA-Datei
	DataDir      string // lokales Verzeichnis der Referenzdatenbank
	OutputPrefix string // Präfix für die Ausgabedateien
	CPUs         int
	Mode         string // Such-Modus, z.B. "diamond"
	ScratchDir   string
}

// AnnotationRunner ruft das externe Annotations-Binary (emapper.py)
// synchron auf und blockt bis zum Ende des Prozesses.
type AnnotationRunner struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewAnnotationRunner erstellt einen neuen AnnotationRunner.
func NewAnnotationRunner(cfg *config.Config, logger *zap.Logger) *AnnotationRunner {
	return &AnnotationRunner{Config: cfg, Logger: logger}
}

// Run startet den Annotationslauf und gibt die erzeugten Ausgabedateien
// zurück. Ein Exit-Code != 0 führt zu einem AnnotationError mit der
// Stderr-Ausgabe des Prozesses.
func (r *AnnotationRunner) Run(ctx context.Context, opts RunOptions) ([]string, error) {
	mode := opts.Mode
	if mode == "" {
		mode = r.Config.EmapperMode
	}

	args := []string{
		"-i", opts.Input,
		"--output", opts.OutputPrefix,
		"-m", mode,
		"--cpu", strconv.Itoa(opts.CPUs),
		"--data_dir", opts.DataDir,
		"--scratch_dir", opts.ScratchDir,
	}
	log := r.Logger.With(zap.String("bin", r.Config.EmapperBin))
	log.Info("Starte Annotationslauf", zap.Strings("args", args))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Config.EmapperBin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return nil, &AnnotationError{
			ExitCode: exitCode,
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
	}
	if out := strings.TrimSpace(stdout.String()); out != "" {
		log.Debug("Ausgabe des Annotationsprozesses", zap.String("stdout", out))
	}

	// Die Annotationsdatei muss existieren, sonst war der Lauf kein Erfolg.
	annotations := opts.OutputPrefix + AnnotationsSuffix
	if _, err := os.Stat(annotations); err != nil {
		return nil, &AnnotationError{
			ExitCode: 0,
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
	}

	outputs := []string{annotations}
	seed := opts.OutputPrefix + SeedOrthologsSuffix
	if _, err := os.Stat(seed); err == nil {
		outputs = append(outputs, seed)
	}

	log.Info("Annotationslauf abgeschlossen", zap.Strings("outputs", outputs))
	return outputs, nil
}
