// Package export writes the startup table as XLSX or CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"impactdash/domain/startup"
)

const (
	sheetName = "Startups"
	utf8BOM   = "\xef\xbb\xbf"
)

// Columns are the exported headers
var Columns = []string{
	"Startup", "Website", "Batch", "Sektor", "SDGs", "Primary Contact",
	"Standort", "Programmphase", "Aktualität (Tage)", "Vollständigkeit (%)", "Abweichung", "Zuletzt geprüft",
}

// Rows renders one row per startup in the given order
func Rows(startups []startup.Startup, sdgs []startup.SDG) [][]string {
	rows := make([][]string, 0, len(startups))
	for _, s := range startups {
		names := make([]string, 0, len(s.SDGs))
		for _, id := range s.SDGs {
			names = append(names, startup.SDGName(sdgs, id))
		}

		location := s.City
		if s.State != "" {
			if location != "" {
				location += ", "
			}
			location += s.State
		}

		rows = append(rows, []string{
			s.Name,
			s.Website,
			s.Batch,
			s.Sector,
			strings.Join(names, "; "),
			s.ContactName(),
			location,
			s.ProgramPhase,
			formatNumber(s.Quality.FreshnessDays),
			formatNumber(s.Quality.CompletenessPct),
			formatNumber(s.Quality.DiscrepancyScore),
			s.Quality.LastCheckedAt,
		})
	}
	return rows
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteCSV writes a semicolon separated file with a UTF-8 byte order mark,
// the form spreadsheet tools with German locale open without an import dialog.
func WriteCSV(w io.Writer, startups []startup.Startup, sdgs []startup.SDG) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(Rows(startups, sdgs)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteXLSX writes a single-sheet workbook. Numeric quality columns are
// stored as numbers.
func WriteXLSX(w io.Writer, startups []startup.Startup, sdgs []startup.SDG) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	for col, header := range Columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return err
		}
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(Columns), 1)
		_ = f.SetCellStyle(sheetName, "A1", last, style)
	}

	for i, s := range startups {
		row := Rows([]startup.Startup{s}, sdgs)[0]
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		values[8] = s.Quality.FreshnessDays
		values[9] = s.Quality.CompletenessPct
		values[10] = s.Quality.DiscrepancyScore

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}
