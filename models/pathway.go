package models

// Pathway repräsentiert die Zugehörigkeit einer Reaktion zu einem
// KEGG-Pathway. Die PathwayID ist bewusst NICHT eindeutig: pro
// Reaktion-in-Pathway-Paar gibt es eine Zeile, derselbe Pathway kann
// also mehrfach vorkommen.
type Pathway struct {
	PathwayID  string `json:"pathway_id" gorm:"column:pathway_id;index;not null"`
	ReactionID string `json:"reaction_id" gorm:"column:reaction_id;index;not null"`
	Name       string `json:"name"`
	Class      string `json:"class"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (Pathway) TableName() string {
	return "pathway"
}
