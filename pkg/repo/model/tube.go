package model

import (
	"fmt"
	"strings"
	"time"
)

const (
	ColTray              = "Tray"
	ColBox               = "Box"
	ColLot               = "Lot"
	ColCellName          = "Cell name"
	ColTubeCount         = "N. of tube"
	ColDate              = "Date"
	ColPassage           = "Passage"
	ColRemainVials       = "Remain vials"
	ColScore             = "Score"
	ColName              = "Name"
	ColSource            = "Source"
	ColMyco              = "Info (Myco)"
	ColFreezingCondition = "freezing condition"
	ColThaw              = "Thaw (date/name)"
	ColAdditionalInfo    = "additional info"
	ColOncotreeCode      = "OncotreeCode"
	ColOncotreeSubtype   = "OncotreeSubtype"
	ColOncotreeDisease   = "OncotreePrimaryDisease"
	ColOncotreeLineage   = "OncotreeLineage"
	ColSpecies           = "Species"
	ColStatus            = "Status"
	ColParentTube        = "Parent Tube"
)

// TubeColumns is the column order used when a sheet is created.
var TubeColumns = []string{
	ColTray, ColBox, ColLot, ColCellName, ColTubeCount, ColDate, ColPassage,
	ColRemainVials, ColScore, ColName, ColSource, ColMyco, ColFreezingCondition,
	ColThaw, ColAdditionalInfo, ColOncotreeCode, ColOncotreeSubtype,
	ColOncotreeDisease, ColOncotreeLineage, ColSpecies, ColStatus, ColParentTube,
}

type Status string

const (
	StatusStored   Status = ""
	StatusInuse    Status = "Inuse"
	StatusDepleted Status = "Depleted"
)

func ParseStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inuse", "in use", "in-use":
		return StatusInuse
	case "depleted":
		return StatusDepleted
	}
	return StatusStored
}

// StatusAfterConsume is the status a row takes once remain vials are left.
func StatusAfterConsume(remain int) Status {
	if remain > 0 {
		return StatusInuse
	}
	return StatusDepleted
}

func (s Status) Title() string {
	if s == StatusStored {
		return "Stored"
	}
	return string(s)
}

// Tube is one workbook row: a frozen lot of N tubes at one passage.
type Tube struct {
	Sheet string `json:"sheet"`
	// Row is the 1-based data row within the sheet, header excluded.
	Row int `json:"row"`

	Tray        string     `json:"tray"`
	Box         string     `json:"box"`
	Lot         string     `json:"lot"`
	CellName    string     `json:"cell_name"`
	TubeCount   OptInt     `json:"tube_count"`
	FreezeDate  *time.Time `json:"freeze_date,omitempty"`
	Passage     OptInt     `json:"passage"`
	RemainVials OptInt     `json:"remain_vials"`
	Score       *float64   `json:"score,omitempty"`
	Name        string     `json:"name"`
	Source      string     `json:"source"`
	Myco        string     `json:"myco"`
	Status      Status     `json:"status"`
	ParentTube  string     `json:"parent_tube"`

	FreezingCondition string `json:"freezing_condition,omitempty"`
	Thaw              string `json:"thaw,omitempty"`
	AdditionalInfo    string `json:"additional_info,omitempty"`
	OncotreeCode      string `json:"oncotree_code,omitempty"`
	OncotreeSubtype   string `json:"oncotree_subtype,omitempty"`
	OncotreeDisease   string `json:"oncotree_primary_disease,omitempty"`
	OncotreeLineage   string `json:"oncotree_lineage,omitempty"`
	Species           string `json:"species,omitempty"`
}

// TubeLabel is the lineage label of tube i at passage p.
func TubeLabel(passage, i int) string {
	return fmt.Sprintf("P%d_%d", passage, i)
}

// ParseTubeLabel splits "P2_3" into passage 2 and tube 3.
func ParseTubeLabel(label string) (passage, tube int, ok bool) {
	label = strings.TrimSpace(label)
	if len(label) < 4 || (label[0] != 'P' && label[0] != 'p') {
		return 0, 0, false
	}
	parts := strings.SplitN(label[1:], "_", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	p, ok1 := ParseInt(parts[0])
	t, ok2 := ParseInt(parts[1])
	return p, t, ok1 && ok2
}

// Tubes returns N. of tube, 1 when the cell is blank.
func (t *Tube) Tubes() int {
	if !t.TubeCount.Valid {
		return 1
	}
	return t.TubeCount.V
}

func (t *Tube) Labels() []string {
	if !t.Passage.Valid {
		return nil
	}
	n := t.Tubes()
	out := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, TubeLabel(t.Passage.V, i))
	}
	return out
}

// TubeFromRow reads data row idx (0-based) of s.
func TubeFromRow(s *Sheet, idx int) *Tube {
	get := func(col string) string { return s.Get(idx, col) }
	t := &Tube{
		Sheet:             s.Name,
		Row:               idx + 1,
		Tray:              get(ColTray),
		Box:               get(ColBox),
		Lot:               get(ColLot),
		CellName:          get(s.NameColumn()),
		Name:              get(ColName),
		Source:            get(ColSource),
		Myco:              get(ColMyco),
		Status:            ParseStatus(get(ColStatus)),
		ParentTube:        cleanText(get(ColParentTube)),
		FreezingCondition: get(ColFreezingCondition),
		Thaw:              get(ColThaw),
		AdditionalInfo:    get(ColAdditionalInfo),
		OncotreeCode:      get(ColOncotreeCode),
		OncotreeSubtype:   get(ColOncotreeSubtype),
		OncotreeDisease:   get(ColOncotreeDisease),
		OncotreeLineage:   get(ColOncotreeLineage),
		Species:           get(ColSpecies),
	}
	t.TubeCount.V, t.TubeCount.Valid = ParseInt(get(ColTubeCount))
	t.Passage.V, t.Passage.Valid = ParseInt(get(ColPassage))
	t.RemainVials.V, t.RemainVials.Valid = ParseInt(get(ColRemainVials))
	if f, ok := ParseFloat(get(ColScore)); ok {
		t.Score = &f
	}
	if d, ok := ParseDate(get(ColDate)); ok {
		t.FreezeDate = &d
	}
	return t
}

// Record is the row as column values for writing.
func (t *Tube) Record() map[string]string {
	rec := map[string]string{
		ColTray:              t.Tray,
		ColBox:               t.Box,
		ColLot:               t.Lot,
		ColCellName:          t.CellName,
		ColTubeCount:         t.TubeCount.String(),
		ColPassage:           t.Passage.String(),
		ColRemainVials:       t.RemainVials.String(),
		ColName:              t.Name,
		ColSource:            t.Source,
		ColMyco:              t.Myco,
		ColFreezingCondition: t.FreezingCondition,
		ColThaw:              t.Thaw,
		ColAdditionalInfo:    t.AdditionalInfo,
		ColOncotreeCode:      t.OncotreeCode,
		ColOncotreeSubtype:   t.OncotreeSubtype,
		ColOncotreeDisease:   t.OncotreeDisease,
		ColOncotreeLineage:   t.OncotreeLineage,
		ColSpecies:           t.Species,
		ColStatus:            string(t.Status),
		ColParentTube:        t.ParentTube,
	}
	if t.FreezeDate != nil {
		rec[ColDate] = t.FreezeDate.Format(DateLayout)
	}
	if t.Score != nil {
		rec[ColScore] = FormatFloat(*t.Score)
	}
	return rec
}

func cleanText(s string) string {
	s = strings.TrimSpace(s)
	if isNull(s) {
		return ""
	}
	return s
}
