package services

import (
	"archive/tar"
	"compress/gzip"
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

// ReferenceFetcher holt die Referenzdatenbank des eggNOG mappers aus S3
// oder vom lokalen Dateisystem in ein Scratch-Verzeichnis.
type ReferenceFetcher struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewReferenceFetcher erstellt einen neuen ReferenceFetcher.
func NewReferenceFetcher(cfg *config.Config, logger *zap.Logger) *ReferenceFetcher {
	return &ReferenceFetcher{Config: cfg, Logger: logger}
}

// EnsureReference stellt sicher, dass die Referenz unter destDir liegt.
// Tar.gz-Archive werden dorthin entpackt, einzelne Dateien kopiert.
// Liegt unter destDir bereits Inhalt, wird nichts erneut geladen.
func (f *ReferenceFetcher) EnsureReference(ctx context.Context, location, destDir string) error {
	log := f.Logger.With(zap.String("location", location), zap.String("dest", destDir))

	if entries, err := os.ReadDir(destDir); err == nil && len(entries) > 0 {
		log.Info("Referenz bereits vorhanden, überspringe Download.")
		return nil
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return &FetchError{Location: location, Err: err}
	}

	store, err := storage.ForLocation(f.Config, f.Logger, location)
	if err != nil {
		return &FetchError{Location: location, Err: err}
	}

	exists, err := store.Exists(ctx, location)
	if err != nil {
		return &FetchError{Location: location, Err: err}
	}
	if !exists {
		return &FetchError{Location: location, Err: storage.ErrNotExist}
	}

	log.Info("Starte Download der Referenzdatenbank.")
	body, size, err := store.Get(ctx, location)
	if err != nil {
		return &FetchError{Location: location, Err: err}
	}
	defer body.Close()

	// Über den Zähler erkennen wir abgeschnittene Downloads.
	counter := &countingReader{r: body}

	if strings.HasSuffix(location, ".tar.gz") || strings.HasSuffix(location, ".tgz") {
		err = extractTarGz(counter, destDir)
	} else {
		local := &storage.LocalStore{Logger: f.Logger}
		err = local.Put(ctx, filepath.Join(destDir, filepath.Base(location)), counter, -1)
	}
	if err != nil {
		return &FetchError{Location: location, Err: err}
	}

	if size >= 0 && counter.n != size {
		return &FetchError{
			Location: location,
			Err:      fmt.Errorf("truncated download: got %d of %d bytes", counter.n, size),
		}
	}

	log.Info("Referenzdatenbank bereit.", zap.Int64("bytes", counter.n))
	return nil
}

// extractTarGz entpackt alle regulären Dateien eines tar.gz-Archivs nach
// destDir. Pfade mit ".." werden abgelehnt.
func extractTarGz(r io.Reader, destDir string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}

		name := filepath.Clean(header.Name)
		if strings.HasPrefix(name, "..") || filepath.IsAbs(name) {
			return fmt.Errorf("archiv enthält unzulässigen Pfad: %s", header.Name)
		}

		target := filepath.Join(destDir, name)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		out, err := os.Create(target)
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, tr); err != nil {
			out.Close()
			return err
		}
		if err := out.Close(); err != nil {
			return err
		}
	}
	return nil
}

// countingReader zählt die gelesenen Bytes mit.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
