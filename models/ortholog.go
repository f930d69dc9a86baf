package models

// Ortholog repräsentiert eine KEGG-Orthologie (KO), die der eggNOG mapper
// einer Query-Sequenz zugewiesen hat. Einmal geschrieben, wird die Zeile
// nicht mehr verändert.
type Ortholog struct {
	OrthologID string `json:"ortholog_id" gorm:"column:ortholog_id;uniqueIndex;not null"`
	Name       string `json:"name"`
	Definition string `json:"definition" gorm:"type:text"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (Ortholog) TableName() string {
	return "ortholog"
}
