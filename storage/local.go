package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// LocalStore implementiert Store für lokale Pfade.
type LocalStore struct {
	Logger *zap.Logger
}

// Get öffnet die lokale Datei.
func (s *LocalStore) Get(ctx context.Context, location string) (io.ReadCloser, int64, error) {
	f, err := os.Open(location)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, ErrNotExist
		}
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

// Put schreibt die Datei über eine Temp-Datei im Zielverzeichnis und
// benennt sie erst nach vollständigem Schreiben um. Bricht der Transfer
// ab, bleibt am Zielpfad nichts zurück.
func (s *LocalStore) Put(ctx context.Context, location string, r io.Reader, size int64) error {
	dir := filepath.Dir(location)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(location)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if size >= 0 && written != size {
		return fmt.Errorf("unvollständiger Transfer: %d von %d Bytes geschrieben", written, size)
	}

	s.Logger.Debug("Datei lokal geschrieben",
		zap.String("path", location), zap.Int64("bytes", written))
	return os.Rename(tmp.Name(), location)
}

// Exists prüft, ob die lokale Datei existiert.
func (s *LocalStore) Exists(ctx context.Context, location string) (bool, error) {
	_, err := os.Stat(location)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
