package app

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hyperifyio/fleetcat/internal/doc"
)

const (
	platformsSheet = "Platforms"
	radarsSheet    = "Radars"
)

// writeXLSX writes the records as a workbook with one row per platform name
// and a second sheet with one row per radar fit. A record without names
// still gets a row so its class is visible.
func writeXLSX(path string, records []doc.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", platformsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(radarsSheet); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	prow := 1
	if err := setRow(f, platformsSheet, prow, []any{"Country", "Platform Type", "Platform Class", "Platform Name", "Images"}); err != nil {
		return err
	}
	rrow := 1
	if err := setRow(f, radarsSheet, rrow, []any{"Country", "Platform Type", "Platform Class", "Radar Type", "Radar Name", "Band"}); err != nil {
		return err
	}

	for _, r := range records {
		names := r.PlatformNames
		if len(names) == 0 {
			names = []string{""}
		}
		images := strings.Join(r.Images, "; ")
		for _, n := range names {
			prow++
			if err := setRow(f, platformsSheet, prow, []any{r.Country, r.PlatformType, r.PlatformClass, n, images}); err != nil {
				return err
			}
		}
		for _, rd := range r.Radars {
			rrow++
			if err := setRow(f, radarsSheet, rrow, []any{r.Country, r.PlatformType, r.PlatformClass, rd.Type, rd.Name, rd.Band}); err != nil {
				return err
			}
		}
	}

	for _, sheet := range []string{platformsSheet, radarsSheet} {
		if err := f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("freeze header %s: %w", sheet, err)
		}
	}
	return f.SaveAs(path)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("%s row %d: %w", sheet, row, err)
	}
	return nil
}
