package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/FredHutch/docker-eggnog-mapper/config"
	"github.com/FredHutch/docker-eggnog-mapper/eggnog"
	"github.com/FredHutch/docker-eggnog-mapper/kegg"
	"github.com/FredHutch/docker-eggnog-mapper/models"
)

// KeggGetter ist das Interface, über das der ETL-Schritt KEGG-Einträge
// lädt. Implementiert von kegg.Client.
type KeggGetter interface {
	Get(ctx context.Context, database, id string) (kegg.Record, error)
}

// Summary fasst einen ETL-Lauf zusammen. Failed enthält die KO-Codes,
// deren Auflösung endgültig fehlgeschlagen ist.
type Summary struct {
	Orthologs int
	Reactions int
	Compounds int
	Pathways  int
	Failed    []string
}

// MetadataService baut aus der Annotationsausgabe des eggNOG mappers die
// SQLite-Datenbank mit Ortholog-, Reaktions-, Compound- und
// Pathway-Metadaten aus KEGG.
type MetadataService struct {
	Config *config.Config
	Logger *zap.Logger
	Kegg   KeggGetter
}

// NewMetadataService erstellt einen neuen MetadataService.
func NewMetadataService(cfg *config.Config, logger *zap.Logger, kg KeggGetter) *MetadataService {
	return &MetadataService{Config: cfg, Logger: logger, Kegg: kg}
}

// rowSets sind die vier Zeilenmengen vor dem Schreiben, sortiert und
// dedupliziert.
type rowSets struct {
	orthologs []models.Ortholog
	reactions []models.Reaction
	compounds []models.Compound
	pathways  []models.Pathway
}

// Run führt den kompletten ETL-Schritt aus: Annotations-TSV lesen,
// Metadaten über KEGG auflösen, vier Tabellen nach outputDB schreiben.
// Einzelne nicht auflösbare Orthologe brechen den Lauf nicht ab, sie
// landen in Summary.Failed.
func (s *MetadataService) Run(ctx context.Context, inputTSV, outputDB string) (*Summary, error) {
	ids, err := eggnog.ReadOrthologSet(inputTSV)
	if err != nil {
		return nil, fmt.Errorf("annotationsdatei lesen: %w", err)
	}
	s.Logger.Info("Ortholog-Codes aus Annotationsausgabe extrahiert", zap.Int("count", len(ids)))

	rows, failed := s.resolve(ctx, ids)

	if err := s.persist(outputDB, rows); err != nil {
		return nil, err
	}

	return &Summary{
		Orthologs: len(rows.orthologs),
		Reactions: len(rows.reactions),
		Compounds: len(rows.compounds),
		Pathways:  len(rows.pathways),
		Failed:    failed,
	}, nil
}

// resolve löst alle Orthologe gegen KEGG auf und flacht die verschachtelten
// Ergebnisse in die vier Zeilenmengen ab. Die Reihenfolge der
// Netzwerkantworten ist nicht deterministisch, deshalb wird alles vor der
// Rückgabe sortiert.
func (s *MetadataService) resolve(ctx context.Context, ids []string) (*rowSets, []string) {
	rows := &rowSets{}

	// Schritt 1: ko-Einträge laden. Name, Definition und die
	// katalysierten Reaktionen kommen aus demselben Eintrag.
	type koDetail struct {
		ortholog  models.Ortholog
		reactions []string
	}
	koRecords, failed := s.fetchRecords(ctx, kegg.DBOrtholog, ids)
	details := make(map[string]koDetail, len(koRecords))
	for id, rec := range koRecords {
		details[id] = koDetail{
			ortholog: models.Ortholog{
				OrthologID: scrub(id),
				Name:       scrub(rec.First("NAME")),
				Definition: scrub(rec.First("DEFINITION")),
			},
			reactions: rec.ReactionIDs(),
		}
	}

	// Schritt 2: Reaktions-Besitzer bestimmen. Teilen sich zwei Orthologe
	// eine Reaktion, gewinnt deterministisch das erste in sortierter
	// KO-Reihenfolge (reaction_id ist eindeutig).
	owner := make(map[string]string)
	for _, id := range ids {
		detail, ok := details[id]
		if !ok {
			continue
		}
		rows.orthologs = append(rows.orthologs, detail.ortholog)
		for _, rxn := range detail.reactions {
			if _, taken := owner[rxn]; !taken {
				owner[rxn] = id
			}
		}
	}

	reactionIDs := make([]string, 0, len(owner))
	for rxn := range owner {
		reactionIDs = append(reactionIDs, rxn)
	}
	sort.Strings(reactionIDs)

	// Schritt 3: rn-Einträge laden. Fehlgeschlagene Reaktionen werden
	// übersprungen (und fehlen dann auch in pathway).
	rxnRecords, _ := s.fetchRecords(ctx, kegg.DBReaction, reactionIDs)

	pathwaySet := make(map[string]bool)
	compoundSet := make(map[string]bool)
	rxnPathways := make(map[string][]string)
	for _, rxn := range reactionIDs {
		rec, ok := rxnRecords[rxn]
		if !ok {
			continue
		}
		equation := scrub(rec.First("EQUATION"))
		rows.reactions = append(rows.reactions, models.Reaction{
			ReactionID: scrub(rxn),
			OrthologID: scrub(owner[rxn]),
			Definition: scrub(rec.First("DEFINITION")),
			Equation:   equation,
			Enzyme:     scrub(rec.First("ENZYME")),
		})
		rxnPathways[rxn] = rec.PathwayIDs()
		for _, p := range rxnPathways[rxn] {
			pathwaySet[p] = true
		}
		for _, c := range kegg.EquationCompounds(equation) {
			compoundSet[c] = true
		}
	}

	// Schritt 4: path-Einträge für Name und Klasse laden, dann eine
	// Pathway-Zeile pro (Reaktion, Pathway)-Paar. Pathway-IDs sind
	// bewusst nicht global dedupliziert.
	pathRecords, _ := s.fetchRecords(ctx, kegg.DBPathway, sortedKeys(pathwaySet))
	for _, rxn := range reactionIDs {
		for _, p := range rxnPathways[rxn] {
			rec, ok := pathRecords[p]
			if !ok {
				continue
			}
			rows.pathways = append(rows.pathways, models.Pathway{
				PathwayID:  scrub(p),
				ReactionID: scrub(rxn),
				Name:       scrub(rec.First("NAME")),
				Class:      scrub(rec.First("CLASS")),
			})
		}
	}

	// Schritt 5: Compounds aus den Gleichungen. C-IDs sind Compounds,
	// G-IDs Glykane — letztere führen ihre Zusammensetzung statt einer
	// Summenformel.
	var compoundIDs, glycanIDs []string
	for _, c := range sortedKeys(compoundSet) {
		if strings.HasPrefix(c, "G") {
			glycanIDs = append(glycanIDs, c)
		} else {
			compoundIDs = append(compoundIDs, c)
		}
	}
	cpdRecords, _ := s.fetchRecords(ctx, kegg.DBCompound, compoundIDs)
	for _, id := range compoundIDs {
		if rec, ok := cpdRecords[id]; ok {
			rows.compounds = append(rows.compounds, models.Compound{
				CompoundID: scrub(id),
				Name:       scrub(rec.First("NAME")),
				Formula:    scrub(rec.First("FORMULA")),
			})
		}
	}
	glRecords, _ := s.fetchRecords(ctx, kegg.DBGlycan, glycanIDs)
	for _, id := range glycanIDs {
		if rec, ok := glRecords[id]; ok {
			rows.compounds = append(rows.compounds, models.Compound{
				CompoundID: scrub(id),
				Name:       scrub(rec.First("NAME")),
				Formula:    scrub(rec.First("COMPOSITION")),
			})
		}
	}

	rows.sortAll()
	return rows, failed
}

// fetchRecords lädt mehrere Einträge derselben KEGG-Datenbank parallel,
// limitiert auf KeggThreads gleichzeitige Abfragen. IDs, die nicht
// geladen werden konnten, fehlen im Ergebnis und werden zurückgemeldet.
func (s *MetadataService) fetchRecords(ctx context.Context, database string, ids []string) (map[string]kegg.Record, []string) {
	records := make(map[string]kegg.Record, len(ids))
	var failed []string
	var mu sync.Mutex
	var wg sync.WaitGroup

	threads := s.Config.KeggThreads
	if threads < 1 {
		threads = 1
	}
	semaphore := make(chan struct{}, threads)

	for _, id := range ids {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(id string) {
			defer wg.Done()
			defer func() { <-semaphore }()

			rec, err := s.Kegg.Get(ctx, database, id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				resErr := &ResolutionError{OrthologID: id, Err: err}
				s.Logger.Warn("KEGG-Eintrag konnte nicht aufgelöst werden",
					zap.String("database", database), zap.String("id", id), zap.Error(resErr))
				failed = append(failed, id)
				return
			}
			records[id] = rec
		}(id)
	}

	wg.Wait()
	sort.Strings(failed)
	return records, failed
}

// persist schreibt die vier Tabellen in eine Temp-Datei neben dem
// Zielpfad und ersetzt diesen erst nach vollem Erfolg. Jeder Fehler ist
// ein PersistenceError, der finale Pfad bleibt dann unangetastet.
func (s *MetadataService) persist(path string, rows *rowSets) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &PersistenceError{Path: path, Err: err}
	}

	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d", filepath.Base(path), os.Getpid()))
	defer os.Remove(tmpPath)

	db, err := gorm.Open(sqlite.Open(tmpPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return &PersistenceError{Path: path, Err: err}
	}

	if err := writeTables(db, rows); err != nil {
		return &PersistenceError{Path: path, Err: err}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	if err := sqlDB.Close(); err != nil {
		return &PersistenceError{Path: path, Err: err}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return &PersistenceError{Path: path, Err: err}
	}

	s.Logger.Info("Metadaten-Datenbank geschrieben", zap.String("path", path))
	return nil
}

// writeTables legt genau die vier Tabellen an und füllt sie. Leere
// Zeilenmengen ergeben leere Tabellen.
func writeTables(db *gorm.DB, rows *rowSets) error {
	if err := db.AutoMigrate(&models.Ortholog{}, &models.Reaction{}, &models.Compound{}, &models.Pathway{}); err != nil {
		return err
	}
	if len(rows.orthologs) > 0 {
		if err := db.CreateInBatches(rows.orthologs, 500).Error; err != nil {
			return err
		}
	}
	if len(rows.reactions) > 0 {
		if err := db.CreateInBatches(rows.reactions, 500).Error; err != nil {
			return err
		}
	}
	if len(rows.compounds) > 0 {
		if err := db.CreateInBatches(rows.compounds, 500).Error; err != nil {
			return err
		}
	}
	if len(rows.pathways) > 0 {
		if err := db.CreateInBatches(rows.pathways, 500).Error; err != nil {
			return err
		}
	}
	return nil
}

// sortAll stabilisiert die Zeilenreihenfolge vor dem Schreiben, damit
// wiederholte Läufe identischen Tabelleninhalt erzeugen.
func (r *rowSets) sortAll() {
	sort.Slice(r.orthologs, func(i, j int) bool { return r.orthologs[i].OrthologID < r.orthologs[j].OrthologID })
	sort.Slice(r.reactions, func(i, j int) bool { return r.reactions[i].ReactionID < r.reactions[j].ReactionID })
	sort.Slice(r.compounds, func(i, j int) bool { return r.compounds[i].CompoundID < r.compounds[j].CompoundID })
	sort.Slice(r.pathways, func(i, j int) bool {
		if r.pathways[i].ReactionID != r.pathways[j].ReactionID {
			return r.pathways[i].ReactionID < r.pathways[j].ReactionID
		}
		return r.pathways[i].PathwayID < r.pathways[j].PathwayID
	})
}

// scrub entfernt Zeichen aus KEGG-Werten, die das Substring-Matching
// zwischen Gleichung und Compound-IDs und nachgelagerte Auswertungen
// stören würden.
var scrubReplacer = strings.NewReplacer("[", "", "]", "", ":", "", ";", "", ",", "", "'", "", `"`, "")

func scrub(s string) string {
	return strings.TrimSpace(scrubReplacer.Replace(s))
}

// sortedKeys gibt die Schlüssel einer Menge sortiert zurück.
func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
