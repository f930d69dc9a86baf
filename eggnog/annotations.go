package eggnog

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Die Spalten, die wir aus dem Annotations-TSV brauchen.
const (
	queryColumn = "#query_name"
	koColumn    = "KEGG_KOs"
)

// ReadOrthologSet liest die Annotations-Datei des eggNOG mappers und gibt
// die Menge der eindeutigen KEGG-Ortholog-Codes zurück, sortiert.
// Gzip-komprimierte Dateien (.gz) werden transparent entpackt.
// Eine Datei ohne KO-Zuweisungen ist kein Fehler und liefert eine leere
// Menge.
func ReadOrthologSet(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	}

	return parseOrthologSet(reader)
}

// parseOrthologSet extrahiert die KO-Codes aus dem TSV-Strom. Der mapper
// schreibt führende Kommentarzeilen, dann eine Headerzeile (beginnt
// ebenfalls mit '#'), dann eine Zeile pro Query-Sequenz.
func parseOrthologSet(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var header []string
	koIndex := -1
	seen := make(map[string]bool)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		if header == nil {
			if !strings.HasPrefix(line, "#") {
				return nil, fmt.Errorf("keine Headerzeile vor der ersten Datenzeile gefunden")
			}
			fields := strings.Split(line, "\t")
			// Kommentarzeilen bestehen aus einer einzigen Spalte,
			// die Headerzeile nennt die Spalten.
			if len(fields) < 2 || fields[0] != queryColumn {
				continue
			}
			header = fields
			for i, name := range header {
				if name == koColumn {
					koIndex = i
				}
			}
			if koIndex < 0 {
				return nil, fmt.Errorf("spalte %q fehlt im Header", koColumn)
			}
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) <= koIndex {
			continue
		}
		for _, ko := range strings.Split(fields[koIndex], ",") {
			ko = strings.TrimSpace(ko)
			if ko != "" {
				seen[ko] = true
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(seen))
	for ko := range seen {
		ids = append(ids, ko)
	}
	sort.Strings(ids)
	return ids, nil
}
