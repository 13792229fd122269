package repo

import "context"

// CellLineInfo is the public reference data of a cell line.
type CellLineInfo struct {
	Accession string   `json:"accession"`
	Name      string   `json:"name"`
	Category  string   `json:"category"`
	Species   []string `json:"species"`
	Diseases  []string `json:"diseases"`
	Sex       string   `json:"sex"`
}

// CellosaurusRepo looks cell lines up in the Cellosaurus knowledge base.
type CellosaurusRepo interface {
	GetCellLine(ctx context.Context, name string) (*CellLineInfo, error)
}
