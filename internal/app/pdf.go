package app

import (
    "strings"

    "github.com/jung-kurt/gofpdf"

    "github.com/hyperifyio/fleetcat/internal/doc"
)

// writeCatalogPDF renders a plain reading copy of the records: a heading
// per country, a sub-heading per class and short name/radar/image lines.
// This is intentionally simple and does not attempt the source layout.
func writeCatalogPDF(outPath, title string, records []doc.Record) error {
    pdf := gofpdf.New("P", "mm", "A4", "")
    // core fonts are cp1252; translate UTF-8 input
    tr := pdf.UnicodeTranslatorFromDescriptor("")
    pdf.SetTitle(title, true)
    pdf.SetFont("Helvetica", "", 10)
    pdf.AddPage()

    pdf.SetFont("Helvetica", "B", 16)
    pdf.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")
    pdf.Ln(2)

    country, first := "", true
    for _, r := range records {
        if first || r.Country != country {
            country, first = r.Country, false
            pdf.Ln(3)
            pdf.SetFont("Helvetica", "B", 14)
            pdf.CellFormat(0, 8, tr(orDash(r.Country)), "", 1, "L", false, 0, "")
        }
        pdf.SetFont("Helvetica", "B", 11)
        heading := orDash(r.PlatformClass)
        if r.PlatformType != "" {
            heading += "  [" + r.PlatformType + "]"
        }
        pdf.CellFormat(0, 7, tr(heading), "", 1, "L", false, 0, "")

        pdf.SetFont("Helvetica", "", 10)
        if len(r.PlatformNames) > 0 {
            pdf.MultiCell(0, 5, tr("Names: "+strings.Join(r.PlatformNames, ", ")), "", "L", false)
        }
        for _, rd := range r.Radars {
            line := "Radar: " + rd.Type + ": " + rd.Name
            if rd.Band != "" {
                line += " (" + rd.Band + ")"
            }
            pdf.MultiCell(0, 5, tr(line), "", "L", false)
        }
        if len(r.Images) > 0 {
            pdf.MultiCell(0, 5, tr("Images: "+strings.Join(r.Images, ", ")), "", "L", false)
        }
        pdf.Ln(2)
    }

    return pdf.OutputFileAndClose(outPath)
}

func orDash(s string) string {
    if strings.TrimSpace(s) == "" {
        return "-"
    }
    return s
}
