package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/FredHutch/docker-eggnog-mapper/config"
)

// ErrNotExist signalisiert, dass ein Objekt an der angegebenen Location
// nicht existiert.
var ErrNotExist = errors.New("object does not exist")

// Store abstrahiert die Quelle bzw. das Ziel für Dateien, damit Fetcher
// und Publisher nicht wissen müssen, ob sie mit S3 oder dem lokalen
// Dateisystem reden.
type Store interface {
	// Get öffnet das Objekt an der Location. size ist die erwartete
	// Objektgröße in Bytes, oder -1 wenn unbekannt.
	Get(ctx context.Context, location string) (r io.ReadCloser, size int64, err error)

	// Put schreibt das Objekt vollständig oder gar nicht: lokale Ziele
	// gehen über eine Temp-Datei mit Rename, S3-Puts sind serverseitig
	// atomar.
	Put(ctx context.Context, location string, r io.Reader, size int64) error

	// Exists prüft, ob das Objekt existiert.
	Exists(ctx context.Context, location string) (bool, error)
}

// ForLocation gibt den passenden Store für eine Location zurück:
// "s3://bucket/key" für S3, alles andere ist ein lokaler Pfad.
func ForLocation(cfg *config.Config, logger *zap.Logger, location string) (Store, error) {
	if IsS3(location) {
		client, err := NewS3Client(cfg)
		if err != nil {
			return nil, fmt.Errorf("s3 client creation failed: %w", err)
		}
		return &S3Store{Client: client, Logger: logger}, nil
	}
	return &LocalStore{Logger: logger}, nil
}

// IsS3 meldet, ob die Location auf ein S3-Objekt zeigt.
func IsS3(location string) bool {
	return strings.HasPrefix(location, "s3://")
}

// Join hängt einen Dateinamen an eine Ziel-Location an.
func Join(location, name string) string {
	if IsS3(location) {
		return strings.TrimRight(location, "/") + "/" + name
	}
	return filepath.Join(location, name)
}

// splitS3Location zerlegt "s3://bucket/key/with/prefix" in Bucket und Key.
func splitS3Location(location string) (bucket, key string, err error) {
	trimmed := strings.TrimPrefix(location, "s3://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("ungültige S3-Location: %s", location)
	}
	return parts[0], parts[1], nil
}
