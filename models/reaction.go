package models

// Reaction repräsentiert eine biochemische Reaktion, die von einer
// Orthologie katalysiert wird. Die Equation enthält Compound-IDs (z.B.
// C00031) als Substrings — das ist die dokumentierte Verknüpfung zur
// compound-Tabelle, es gibt keine formale Fremdschlüssel-Spalte.
type Reaction struct {
	ReactionID string `json:"reaction_id" gorm:"column:reaction_id;uniqueIndex;not null"`
	OrthologID string `json:"ortholog_id" gorm:"column:ortholog_id;index;not null"`
	Definition string `json:"definition" gorm:"type:text"`
	Equation   string `json:"equation" gorm:"type:text"`
	Enzyme     string `json:"enzyme"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (Reaction) TableName() string {
	return "reaction"
}
