package model

import "strings"

// Sheet is one worksheet as a header plus string rows aligned to it.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]string
}

func NewSheet(name string, header []string) *Sheet {
	return &Sheet{Name: name, Header: append([]string(nil), header...)}
}

// ColumnIndex finds a column by exact header, then case-insensitively.
func (s *Sheet) ColumnIndex(name string) int {
	name = strings.TrimSpace(name)
	for i, h := range s.Header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	for i, h := range s.Header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

// NameColumn is the first header mentioning "cell name", else the first column.
func (s *Sheet) NameColumn() string {
	for _, h := range s.Header {
		if strings.Contains(strings.ToLower(h), "cell name") {
			return h
		}
	}
	if len(s.Header) > 0 {
		return s.Header[0]
	}
	return ColCellName
}

func (s *Sheet) Get(row int, col string) string {
	idx := s.ColumnIndex(col)
	if idx < 0 || row < 0 || row >= len(s.Rows) || idx >= len(s.Rows[row]) {
		return ""
	}
	return strings.TrimSpace(s.Rows[row][idx])
}

func (s *Sheet) Set(row int, col, value string) {
	if row < 0 || row >= len(s.Rows) {
		return
	}
	idx := s.ensureColumn(col)
	for len(s.Rows[row]) <= idx {
		s.Rows[row] = append(s.Rows[row], "")
	}
	s.Rows[row][idx] = value
}

// Append adds a row from column values, creating missing columns.
func (s *Sheet) Append(values map[string]string, order []string) int {
	for _, col := range order {
		s.ensureColumn(col)
	}
	row := make([]string, len(s.Header))
	for col, v := range values {
		idx := s.ensureColumn(col)
		for len(row) <= idx {
			row = append(row, "")
		}
		row[idx] = v
	}
	s.Rows = append(s.Rows, row)
	return len(s.Rows) - 1
}

func (s *Sheet) ensureColumn(col string) int {
	if idx := s.ColumnIndex(col); idx >= 0 {
		return idx
	}
	s.Header = append(s.Header, col)
	return len(s.Header) - 1
}

// IsBlank reports whether row has an empty first column.
func (s *Sheet) IsBlank(row int) bool {
	if row < 0 || row >= len(s.Rows) || len(s.Rows[row]) == 0 {
		return true
	}
	v := strings.TrimSpace(s.Rows[row][0])
	return v == "" || isNull(v)
}

func (s *Sheet) Clone() *Sheet {
	c := &Sheet{Name: s.Name, Header: append([]string(nil), s.Header...)}
	c.Rows = make([][]string, len(s.Rows))
	for i, r := range s.Rows {
		c.Rows[i] = append([]string(nil), r...)
	}
	return c
}
