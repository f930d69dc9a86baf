package models

// Compound repräsentiert eine chemische Verbindung aus einer
// Reaktionsgleichung. Glykane (G-IDs) werden wie Compounds behandelt,
// ihre Composition landet im Formula-Feld.
type Compound struct {
	CompoundID string `json:"compound_id" gorm:"column:compound_id;uniqueIndex;not null"`
	Name       string `json:"name"`
	Formula    string `json:"formula"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (Compound) TableName() string {
	return "compound"
}
