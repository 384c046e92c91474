// Package export produces downloadable artifacts: an XLSX workbook of the
// generated datasets and object-store snapshots of every chart.
package export

import (
	"context"

	"github.com/xuri/excelize/v2"

	"github.com/turtacn/mhtech-dashboard/internal/domain/dataset"
	"github.com/turtacn/mhtech-dashboard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/mhtech-dashboard/pkg/errors"
)

// WorkbookContentType is the MIME type of the exported workbook.
const WorkbookContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet names, in workbook order.
const (
	SheetCountries   = "Negara"
	SheetAges        = "Usia"
	SheetTreatment   = "Usia_Pengobatan"
	SheetGender      = "Jenis_Kelamin"
	SheetCorrelation = "Korelasi"
)

// Sheets returns the sheet names in workbook order.
func Sheets() []string {
	return []string{SheetCountries, SheetAges, SheetTreatment, SheetGender, SheetCorrelation}
}

// WorkbookExporter writes the provider's datasets into one workbook.
type WorkbookExporter struct {
	provider *dataset.Provider
	logger   logging.Logger
}

func NewWorkbookExporter(provider *dataset.Provider, logger logging.Logger) *WorkbookExporter {
	if provider == nil {
		provider = dataset.NewProvider(dataset.DefaultSeed)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &WorkbookExporter{provider: provider, logger: logger}
}

type sheetWriter struct {
	f      *excelize.File
	header int
	number int
}

func (w *sheetWriter) row(sheet string, r int, values ...interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, r)
	if err != nil {
		return err
	}
	return w.f.SetSheetRow(sheet, cell, &values)
}

func (w *sheetWriter) headerRow(sheet string, titles ...interface{}) error {
	if err := w.row(sheet, 1, titles...); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(titles), 1)
	if err != nil {
		return err
	}
	if err := w.f.SetCellStyle(sheet, "A1", last, w.header); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(titles))
	return w.f.SetColWidth(sheet, "A", lastCol, 18)
}

// Build returns the encoded workbook.
func (e *WorkbookExporter) Build(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTimeout, "workbook export cancelled")
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			e.logger.Warn("failed to close workbook", logging.Err(err))
		}
	}()

	if err := e.fill(f); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExportFailed, "failed to build workbook")
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExportFailed, "failed to encode workbook")
	}
	e.logger.Debug("workbook built", logging.Int("bytes", buf.Len()), logging.Int64("seed", e.provider.Seed()))
	return buf.Bytes(), nil
}

func (e *WorkbookExporter) fill(f *excelize.File) error {
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#26A69A"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	number, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return err
	}
	w := &sheetWriter{f: f, header: header, number: number}

	if err := f.SetSheetName("Sheet1", SheetCountries); err != nil {
		return err
	}
	for _, name := range Sheets()[1:] {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   "Mental Health in Tech Survey",
		Creator: "mhdash",
	}); err != nil {
		return err
	}

	steps := []func(*sheetWriter) error{
		e.writeCountries,
		e.writeAges,
		e.writeTreatment,
		e.writeGender,
		e.writeCorrelation,
	}
	for _, step := range steps {
		if err := step(w); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)
	return nil
}

func (e *WorkbookExporter) writeCountries(w *sheetWriter) error {
	if err := w.headerRow(SheetCountries, "Negara", "Jumlah"); err != nil {
		return err
	}
	for i, c := range e.provider.CountryCounts() {
		if err := w.row(SheetCountries, i+2, c.Country, c.Count); err != nil {
			return err
		}
	}
	return nil
}

func (e *WorkbookExporter) writeAges(w *sheetWriter) error {
	if err := w.headerRow(SheetAges, "No", "Usia"); err != nil {
		return err
	}
	for i, age := range e.provider.AgeSample() {
		if err := w.row(SheetAges, i+2, i+1, age); err != nil {
			return err
		}
	}
	return nil
}

func (e *WorkbookExporter) writeTreatment(w *sheetWriter) error {
	if err := w.headerRow(SheetTreatment, "Usia", "Pengobatan"); err != nil {
		return err
	}
	for i, p := range e.provider.AgeTreatmentPairs() {
		if err := w.row(SheetTreatment, i+2, p.Age, p.SoughtTreatment); err != nil {
			return err
		}
	}
	return nil
}

func (e *WorkbookExporter) writeGender(w *sheetWriter) error {
	if err := w.headerRow(SheetGender, "Jenis Kelamin", "Persentase"); err != nil {
		return err
	}
	shares := e.provider.GenderShares()
	for i, g := range shares {
		if err := w.row(SheetGender, i+2, g.Label, g.Percent); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(2, len(shares)+1)
	return w.f.SetCellStyle(SheetGender, "B2", last, w.number)
}

func (e *WorkbookExporter) writeCorrelation(w *sheetWriter) error {
	corr, err := dataset.TreatmentCorrelation(e.provider.AgeTreatmentPairs())
	if err != nil {
		return err
	}
	names := []string{"Usia", "Pengobatan"}
	if err := w.headerRow(SheetCorrelation, "", names[0], names[1]); err != nil {
		return err
	}
	for i, row := range corr {
		values := []interface{}{names[i]}
		for _, v := range row {
			values = append(values, v)
		}
		if err := w.row(SheetCorrelation, i+2, values...); err != nil {
			return err
		}
	}
	return w.f.SetCellStyle(SheetCorrelation, "B2", "C3", w.number)
}
