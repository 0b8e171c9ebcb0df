package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/gnezdo/gnezdo/internal/booking"
)

// Occupancy is the input for one property's report.
type Occupancy struct {
	PropertyName   string
	Horizon        booking.Horizon
	Bookings       []booking.Interval
	Gaps           []booking.Gap
	NightsOccupied int
}

// writer wraps excelize with a cursor so sheets fill top to bottom.
type writer struct {
	file         *excelize.File
	currentSheet string
	currentRow   int
}

func newWriter() *writer {
	return &writer{file: excelize.NewFile()}
}

func (w *writer) addSheet(name string) error {
	// Excel caps sheet names at 31 chars
	if len(name) > 31 {
		name = name[:31]
	}

	if w.currentSheet == "" {
		w.file.SetSheetName("Sheet1", name)
	} else {
		if _, err := w.file.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	w.currentSheet = name
	w.currentRow = 1
	return nil
}

func (w *writer) writeHeader(columns []string) error {
	if err := w.writeCells(columns); err != nil {
		return err
	}

	style, err := w.file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, w.currentRow)
		endCell, _ := excelize.CoordinatesToCellName(len(columns), w.currentRow)
		_ = w.file.SetCellStyle(w.currentSheet, startCell, endCell, style)
	}

	w.currentRow++
	return nil
}

func (w *writer) writeRow(row ...interface{}) error {
	if err := w.writeCells(row); err != nil {
		return err
	}
	w.currentRow++
	return nil
}

func (w *writer) writeCells(row interface{}) error {
	if w.currentSheet == "" {
		return fmt.Errorf("no active sheet")
	}

	var vals []interface{}
	switch v := row.(type) {
	case []string:
		vals = make([]interface{}, len(v))
		for i, s := range v {
			vals[i] = s
		}
	case []interface{}:
		vals = v
	}

	for i, val := range vals {
		cell, err := excelize.CoordinatesToCellName(i+1, w.currentRow)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.currentSheet, cell, val); err != nil {
			return err
		}
	}
	return nil
}

// WriteOccupancy renders a two-sheet workbook for one property: the bookings
// inside the horizon and the open gaps between them, with a summary line.
func WriteOccupancy(wr io.Writer, occ Occupancy) error {
	w := newWriter()
	defer func() { _ = w.file.Close() }()

	if err := writeBookingsSheet(w, occ); err != nil {
		return err
	}
	if err := writeGapsSheet(w, occ); err != nil {
		return err
	}

	if err := w.file.Write(wr); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeBookingsSheet(w *writer, occ Occupancy) error {
	if err := w.addSheet("Bookings"); err != nil {
		return err
	}
	if err := w.writeHeader([]string{"Property", "Check-in", "Check-out", "Nights", "Source"}); err != nil {
		return err
	}
	for _, iv := range occ.Bookings {
		err := w.writeRow(occ.PropertyName, iv.Start.String(), iv.End.String(), iv.Nights(), string(iv.Source))
		if err != nil {
			return err
		}
	}
	return nil
}

func writeGapsSheet(w *writer, occ Occupancy) error {
	if err := w.addSheet("Gaps"); err != nil {
		return err
	}
	if err := w.writeHeader([]string{"From", "To", "Open nights"}); err != nil {
		return err
	}
	for _, g := range occ.Gaps {
		if err := w.writeRow(g.Start.String(), g.End.String(), g.Nights); err != nil {
			return err
		}
	}

	if err := w.writeRow(); err != nil {
		return err
	}
	summary := fmt.Sprintf("%d of %d nights occupied between %s and %s",
		occ.NightsOccupied, occ.Horizon.Nights(), occ.Horizon.Start, occ.Horizon.End)
	return w.writeRow(summary)
}
