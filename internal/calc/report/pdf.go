package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/phpdave11/gofpdf"

	"Vsa/internal/calc/vsa"
)

// The core fonts are cp1252; these letters have no glyph there.
var latin = strings.NewReplacer("ğ", "g", "Ğ", "G", "ı", "i", "İ", "I", "ş", "s", "Ş", "S")

const rowH = 6.0

func fmtNum(v float64, prec int) string {
	if v == 0 {
		return "-"
	}
	return fmt.Sprintf("%.*f", prec, v)
}

// WritePDF renders the report on A4 pages.
func WritePDF(w io.Writer, rep Report) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(s string) string { return tr(latin.Replace(s)) }

	pdf.SetTitle(text("Geotechnical Report"), false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	title := "Geotechnical Report"
	if rep.Metadata.Preset != "" {
		title += ": " + rep.Metadata.Preset
	}
	pdf.Cell(0, 10, text(title))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	meta := [][2]string{
		{"Report ID", rep.Metadata.ID},
		{"Date", rep.Metadata.Timestamp.Format("2006-01-02 15:04 MST")},
		{"Project", rep.Metadata.Project},
		{"Author", rep.Metadata.Author},
		{"Depth mode", rep.Metadata.DepthMode},
		{"Target depth", rep.Metadata.TargetDepth},
		{"Depth used (M1, M2, M4, M5)", rep.Metadata.UsedDepthM12},
		{"Depth used (M3, M6, M7, Exact)", rep.Metadata.UsedDepthM3},
		{"Default density", fmt.Sprintf("%.0f kg/m3", rep.Input.DefaultRho)},
	}
	for _, kv := range meta {
		if kv[1] == "" {
			continue
		}
		pdf.CellFormat(70, rowH, text(kv[0]), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, rowH, text(kv[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	section := func(name string) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, text(name))
		pdf.Ln(9)
	}
	header := func(widths []float64, cols ...string) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for i, c := range cols {
			pdf.CellFormat(widths[i], rowH+1, text(c), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 10)
	}
	row := func(widths []float64, cells ...string) {
		for i, c := range cells {
			pdf.CellFormat(widths[i], rowH, text(c), "1", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	}

	section("Soil profile")
	lw := []float64{15, 35, 35, 40}
	header(lw, "No", "d (m)", "Vs (m/s)", "rho")
	for i, l := range rep.Input.Layers {
		rho := "-"
		if v, ok := l.Rho.Float(); ok {
			rho = fmt.Sprintf("%g", v)
		}
		row(lw, fmt.Sprint(i+1), fmtNum(l.D.Or(0), 2), fmtNum(l.Vs.Or(0), 1), rho)
	}
	pdf.Ln(4)

	section("Results")
	rw := []float64{25, 35, 30, 35, 30}
	cols := []string{"Method", "Vsa (m/s)", "T (s)", "Expected", "Deviation"}
	if rep.Results.Periods == nil {
		rw = []float64{25, 35, 35, 30}
		cols = []string{"Method", "Vsa (m/s)", "Expected", "Deviation"}
	}
	header(rw, cols...)
	for _, m := range vsa.Methods {
		cells := []string{string(m), fmtNum(rep.Results.Vsa[m], 2)}
		if rep.Results.Periods != nil {
			cells = append(cells, fmtNum(rep.Results.Periods[m], 4))
		}
		exp := rep.Expected[m]
		dev := "-"
		if d, ok := rep.Analysis.Deviations[m]; ok {
			dev = fmt.Sprintf("%.1f%%", d)
		}
		cells = append(cells, fmtNum(exp, 2), dev)
		row(rw, cells...)
	}
	pdf.Ln(4)

	if sc := rep.SiteClass; sc != nil {
		section("Site class")
		note := ""
		if sc.Extrapolated {
			note = " (profile extended to 30 m)"
		}
		pdf.MultiCell(0, rowH, text(fmt.Sprintf("%s: %s, Vs30 = %.1f m/s%s. %s",
			sc.Code, sc.Class, sc.Vs30, note, sc.Description)), "", "L", false)
		pdf.Ln(4)
	}

	section("Assessment")
	msg := rep.Analysis.Recommendation
	if len(rep.Analysis.HighDeviations) > 0 {
		msg = "High deviations: " + strings.Join(rep.Analysis.HighDeviations, ", ") + ". " + msg
	}
	pdf.MultiCell(0, rowH, text(msg), "", "L", false)

	return pdf.Output(w)
}
