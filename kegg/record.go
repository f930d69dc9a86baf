package kegg

import (
	"bufio"
	"io"
	"regexp"
	"sort"
	"strings"
)

// Die KEGG-Flat-Files haben eine 12 Zeichen breite Labelspalte;
// Fortsetzungszeilen lassen sie leer.
const labelWidth = 12

// compoundRegex findet Compound- und Glykan-IDs in einem Gleichungsstring,
// optional mit vorangestellter Stöchiometrie ("2 C00031").
var compoundRegex = regexp.MustCompile(`(?:^|\s)(?:\d+\s+)?([CG]\d+)`)

// Record ist ein geparster KEGG-Flat-File-Eintrag: Label (z.B. NAME,
// DEFINITION, EQUATION) auf die zugehörigen Wertezeilen.
type Record map[string][]string

// ParseRecord liest einen einzelnen Flat-File-Eintrag bis zum
// Terminator "///" bzw. EOF.
func ParseRecord(r io.Reader) (Record, error) {
	rec := Record{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var label string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "///") {
			break
		}
		if line == "" {
			continue
		}

		head := line
		value := ""
		if len(line) > labelWidth {
			head = line[:labelWidth]
			value = line[labelWidth:]
		}
		if trimmed := strings.TrimSpace(head); trimmed != "" && !strings.HasPrefix(line, " ") {
			label = trimmed
		}
		if label == "" {
			continue
		}
		rec[label] = append(rec[label], value)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rec, nil
}

// First gibt die erste Wertezeile eines Labels zurück, oder "".
func (r Record) First(label string) string {
	values := r[label]
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

// All gibt alle Wertezeilen eines Labels zurück.
func (r Record) All(label string) []string {
	return r[label]
}

// ReactionIDs extrahiert die verknüpften Reaktions-IDs aus dem
// DBLINKS-Block eines ko-Eintrags ("RN: R00299 R01786").
func (r Record) ReactionIDs() []string {
	var ids []string
	for _, link := range r["DBLINKS"] {
		link = strings.TrimSpace(link)
		if !strings.HasPrefix(link, "RN: ") {
			continue
		}
		for _, id := range strings.Fields(strings.TrimPrefix(link, "RN: ")) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// PathwayIDs extrahiert die Pathway-IDs aus den PATHWAY-Zeilen eines
// rn-Eintrags ("rn00010  Glycolysis / Gluconeogenesis").
func (r Record) PathwayIDs() []string {
	var ids []string
	for _, line := range r["PATHWAY"] {
		fields := strings.Fields(line)
		if len(fields) > 0 {
			ids = append(ids, fields[0])
		}
	}
	sort.Strings(ids)
	return ids
}

// EquationCompounds gibt die in einer Reaktionsgleichung referenzierten
// Compound-IDs zurück, dedupliziert und sortiert.
func EquationCompounds(equation string) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, match := range compoundRegex.FindAllStringSubmatch(equation, -1) {
		id := match[1]
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
