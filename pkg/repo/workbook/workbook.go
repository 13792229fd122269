package workbook

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/alphadose/haxmap"
	"github.com/scienceol/cellbank/pkg/common/code"
	"github.com/scienceol/cellbank/pkg/middleware/logger"
	"github.com/scienceol/cellbank/pkg/repo"
	"github.com/scienceol/cellbank/pkg/repo/model"
	"github.com/xuri/excelize/v2"
)

var numericColumns = map[string]bool{
	model.ColTubeCount:   true,
	model.ColPassage:     true,
	model.ColRemainVials: true,
	model.ColScore:       true,
}

type workbookImpl struct {
	path string

	mu      sync.Mutex
	sheets  *haxmap.Map[string, *model.Sheet]
	order   []string
	modTime time.Time
	loaded  bool
}

func New(path string) repo.WorkbookRepo {
	return &workbookImpl{
		path:   path,
		sheets: haxmap.New[string, *model.Sheet](),
	}
}

func (w *workbookImpl) Path() string {
	return w.path
}

func (w *workbookImpl) Exists() bool {
	_, err := os.Stat(w.path)
	return err == nil
}

func (w *workbookImpl) LoadAll(ctx context.Context) ([]*model.Sheet, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.refresh(ctx); err != nil {
		return nil, err
	}
	out := make([]*model.Sheet, 0, len(w.order))
	for _, name := range w.order {
		if s, ok := w.sheets.Get(name); ok {
			out = append(out, s.Clone())
		}
	}
	return out, nil
}

func (w *workbookImpl) LoadSheet(ctx context.Context, name string) (*model.Sheet, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.refresh(ctx); err != nil {
		return nil, err
	}
	s, ok := w.sheets.Get(name)
	if !ok {
		return nil, code.SheetNotFound.WithMsg(name)
	}
	return s.Clone(), nil
}

func (w *workbookImpl) SaveSheet(ctx context.Context, sheet *model.Sheet) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.save(ctx, sheet)
}

func (w *workbookImpl) AppendRecord(ctx context.Context, sheetName string, rec map[string]string, order []string) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var sheet *model.Sheet
	err := w.refresh(ctx)
	switch {
	case err == nil:
		if s, ok := w.sheets.Get(sheetName); ok {
			sheet = s.Clone()
		}
	case errors.Is(err, code.WorkbookNotFound):
	default:
		return 0, err
	}
	if sheet == nil {
		sheet = model.NewSheet(sheetName, order)
	}

	idx := sheet.Append(rec, order)
	if err := w.save(ctx, sheet); err != nil {
		return 0, err
	}
	return idx + 1, nil
}

// refresh reloads the cache when the file changed on disk. Caller holds mu.
func (w *workbookImpl) refresh(ctx context.Context) error {
	info, err := os.Stat(w.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			w.invalidate()
			return code.WorkbookNotFound.WithMsg(w.path)
		}
		return code.WorkbookReadErr.WithErr(err)
	}
	if w.loaded && info.ModTime().Equal(w.modTime) {
		return nil
	}

	f, err := excelize.OpenFile(w.path)
	if err != nil {
		logger.Errorf(ctx, "open workbook %s err: %+v", w.path, err)
		return code.WorkbookReadErr.WithErr(err)
	}
	defer f.Close()

	w.invalidate()
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			logger.Errorf(ctx, "read sheet %s err: %+v", name, err)
			return code.WorkbookReadErr.WithErr(err)
		}
		s := &model.Sheet{Name: name}
		if len(rows) > 0 {
			s.Header = rows[0]
			s.Rows = rows[1:]
		}
		w.sheets.Set(name, s)
		w.order = append(w.order, name)
	}
	w.modTime = info.ModTime()
	w.loaded = true
	logger.Debugf(ctx, "workbook %s loaded sheets: %v", w.path, w.order)
	return nil
}

func (w *workbookImpl) invalidate() {
	for _, name := range w.order {
		w.sheets.Del(name)
	}
	w.order = nil
	w.loaded = false
}

// save writes sheet into the workbook through a temp file. Caller holds mu.
func (w *workbookImpl) save(ctx context.Context, sheet *model.Sheet) error {
	var f *excelize.File
	created := false
	if _, err := os.Stat(w.path); err == nil {
		f, err = excelize.OpenFile(w.path)
		if err != nil {
			return code.WorkbookReadErr.WithErr(err)
		}
	} else {
		f = excelize.NewFile()
		created = true
	}
	defer f.Close()

	oldRows := 0
	oldWidth := 0
	idx, err := f.GetSheetIndex(sheet.Name)
	if err != nil {
		return code.WorkbookWriteErr.WithErr(err)
	}
	if idx < 0 {
		if _, err := f.NewSheet(sheet.Name); err != nil {
			return code.WorkbookWriteErr.WithErr(err)
		}
	} else {
		rows, err := f.GetRows(sheet.Name)
		if err != nil {
			return code.WorkbookReadErr.WithErr(err)
		}
		oldRows = len(rows)
		for _, r := range rows {
			oldWidth = max(oldWidth, len(r))
		}
	}
	if created && sheet.Name != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return code.WorkbookWriteErr.WithErr(err)
		}
	}

	width := max(oldWidth, len(sheet.Header))
	total := max(oldRows, len(sheet.Rows)+1)
	for r := 0; r < total; r++ {
		values := make([]any, width)
		switch {
		case r == 0:
			for c, h := range sheet.Header {
				values[c] = h
			}
		case r-1 < len(sheet.Rows):
			for c, v := range sheet.Rows[r-1] {
				if c < len(sheet.Header) {
					values[c] = cellValue(sheet.Header[c], v)
				} else {
					values[c] = v
				}
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return code.WorkbookWriteErr.WithErr(err)
		}
		if err := f.SetSheetRow(sheet.Name, cell, &values); err != nil {
			return code.WorkbookWriteErr.WithErr(err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return code.WorkbookWriteErr.WithErr(err)
	}
	// excelize picks the format from the extension, so the temp file keeps it
	tmp := fmt.Sprintf("%s.%d.tmp%s", w.path, time.Now().UnixNano(), tmpExt(w.path))
	if err := f.SaveAs(tmp); err != nil {
		_ = os.Remove(tmp)
		logger.Errorf(ctx, "save workbook %s err: %+v", w.path, err)
		return code.WorkbookWriteErr.WithErr(err)
	}
	if err := os.Rename(tmp, w.path); err != nil {
		_ = os.Remove(tmp)
		return code.WorkbookWriteErr.WithErr(err)
	}

	w.invalidate()
	logger.Infof(ctx, "workbook %s sheet %s saved rows: %d", w.path, sheet.Name, len(sheet.Rows))
	return nil
}

// cellValue types numeric columns as numbers and normalises dates.
func cellValue(col, v string) any {
	if v == "" {
		return nil
	}
	if numericColumns[col] {
		if n, err := parseWhole(v); err == nil {
			return n
		}
		if f, ok := model.ParseFloat(v); ok {
			return f
		}
		return v
	}
	if col == model.ColDate {
		if t, ok := model.ParseDate(v); ok {
			return t.Format(model.DateLayout)
		}
	}
	return v
}

func parseWhole(v string) (int, error) {
	n, ok := model.ParseInt(v)
	if !ok {
		return 0, fmt.Errorf("not an integer: %s", v)
	}
	if f, _ := model.ParseFloat(v); f != float64(n) {
		return 0, fmt.Errorf("not whole: %s", v)
	}
	return n, nil
}

func tmpExt(path string) string {
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".xlsm" || ext == ".xltm" || ext == ".xltx" {
		return ext
	}
	return ".xlsx"
}
