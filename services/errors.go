package services

import "fmt"

// Die Fehlertypen der einzelnen Pipeline-Stufen. Fetch-, Annotation-,
// Publish- und Persistence-Fehler sind fatal und brechen den Lauf ab;
// Resolution-Fehler betreffen einzelne Orthologe und werden gesammelt.

// FetchError: das Referenzobjekt fehlt oder der Download war unvollständig.
type FetchError struct {
	Location string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed for %s: %v", e.Location, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// AnnotationError: das externe Annotations-Binary ist mit einem Fehler
// beendet worden. Stderr enthält die Ausgabe des Prozesses.
type AnnotationError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *AnnotationError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("annotation run failed (exit %d): %s", e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("annotation run failed (exit %d): %v", e.ExitCode, e.Err)
}

func (e *AnnotationError) Unwrap() error { return e.Err }

// PublishError: das Ziel ist nicht erreichbar oder ein Transfer blieb
// unvollständig. Am Zielpfad bleibt keine halbe Datei zurück.
type PublishError struct {
	Destination string
	Err         error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish to %s failed: %v", e.Destination, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// ResolutionError: die KEGG-Auflösung eines einzelnen Orthologs ist
// fehlgeschlagen. Nicht fatal — das Ortholog wird übersprungen.
type ResolutionError struct {
	OrthologID string
	Err        error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolution failed for %s: %v", e.OrthologID, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// PersistenceError: die Ausgabedatenbank konnte nicht geschrieben werden.
// Fatal — eine halb geschriebene Datenbank wäre schlimmer als keine,
// deshalb wird der finale Pfad nur nach vollem Erfolg ersetzt.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("writing database %s failed: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
