package model

const UsageTypeCell = "Cell"

// UsageHeader is the CSV header of the usage log.
var UsageHeader = []string{
	"Timestamp", "User", "Date", "Sheet", "Material", "Lot", "Passage",
	"Used Tube No", "Used Quantity", "Experiment", "Type",
}

// UsageEntry is one consumption event. Index is 1-based and assigned by
// the store: the CSV row position or the database id.
type UsageEntry struct {
	Index        int64    `csv:"-" json:"index"`
	Timestamp    DateTime `csv:"Timestamp" json:"timestamp"`
	User         string   `csv:"User" json:"user"`
	Date         Date     `csv:"Date" json:"date"`
	Sheet        string   `csv:"Sheet" json:"sheet"`
	Material     string   `csv:"Material" json:"material"`
	Lot          string   `csv:"Lot" json:"lot"`
	Passage      OptInt   `csv:"Passage" json:"passage"`
	UsedTubeNo   OptInt   `csv:"Used Tube No" json:"used_tube_no"`
	UsedQuantity float64  `csv:"Used Quantity" json:"used_quantity"`
	Experiment   string   `csv:"Experiment" json:"experiment"`
	Type         string   `csv:"Type" json:"type"`
}

// Matches reports whether the entry consumed from tube row t.
func (u *UsageEntry) Matches(t *Tube) bool {
	return u.Material == t.CellName &&
		SameKey(u.Lot, t.Lot) &&
		u.Passage.Valid && t.Passage.Valid && u.Passage.V == t.Passage.V
}
