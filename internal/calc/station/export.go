package station

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"Vsa/internal/calc/vsa"
)

const (
	SummarySheet = "VSA Summary"
	CitySheet    = "City Summary"

	maxSheetName = 31
	missing      = "-"
)

var resultMethods = []vsa.Method{vsa.M1, vsa.M2, vsa.M3, vsa.M4, vsa.M5, vsa.M6, vsa.M7, vsa.Exact}
var periodMethods = []vsa.Method{vsa.M1, vsa.M2, vsa.M3, vsa.Exact}

// location splits the measurement into city, district and station,
// falling back to the "city - district - station" name.
func (m Measurement) location() (string, string, string) {
	if m.City != "" || m.Station != "" {
		return orDefault(m.City, unknown), orDefault(m.District, unknown), orDefault(m.Station, unknown)
	}
	parts := strings.Split(m.Name, " - ")
	at := func(i int) string {
		if i < len(parts) {
			return orDefault(strings.TrimSpace(parts[i]), unknown)
		}
		return unknown
	}
	return at(0), at(1), at(2)
}

// Export writes the results workbook: the summary sheet, the per-city
// statistics and a detail sheet per computed measurement. results is
// aligned with wb.Measurements; nil marks a measurement that failed.
func Export(w io.Writer, wb Workbook, results []*vsa.Result) error {
	if len(results) != len(wb.Measurements) {
		return fmt.Errorf("station: %d results for %d measurements", len(results), len(wb.Measurements))
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return err
	}
	if err := writeSummary(f, wb, results); err != nil {
		return fmt.Errorf("station: summary sheet: %w", err)
	}
	if err := writeCities(f, wb, results); err != nil {
		return fmt.Errorf("station: city sheet: %w", err)
	}
	used := map[string]bool{strings.ToLower(SummarySheet): true, strings.ToLower(CitySheet): true}
	for i, m := range wb.Measurements {
		if results[i] == nil {
			continue
		}
		city, district, code := m.location()
		name := uniqueSheetName(safeSheetName(city+"_"+district+"_"+code), used)
		if err := writeDetail(f, name, m, *results[i], wb.DefaultRho); err != nil {
			return fmt.Errorf("station: detail sheet %q: %w", name, err)
		}
	}
	_, err := f.WriteTo(w)
	return err
}

// sheet appends rows to one worksheet and keeps the first error.
type sheet struct {
	f    *excelize.File
	name string
	row  int
	err  error
}

func newSheet(f *excelize.File, name string) (*sheet, error) {
	if idx, _ := f.GetSheetIndex(name); idx < 0 {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}
	return &sheet{f: f, name: name}, nil
}

func (s *sheet) add(cells ...any) {
	s.row++
	if s.err != nil || len(cells) == 0 {
		return
	}
	addr, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		s.err = err
		return
	}
	s.err = s.f.SetSheetRow(s.name, addr, &cells)
}

func (s *sheet) widths(ws ...float64) {
	for i, w := range ws {
		if s.err != nil {
			return
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			s.err = err
			return
		}
		s.err = s.f.SetColWidth(s.name, col, col, w)
	}
}

func round(x float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(x*p) / p
}

func writeSummary(f *excelize.File, wb Workbook, results []*vsa.Result) error {
	s, err := newSheet(f, SummarySheet)
	if err != nil {
		return err
	}
	s.add("VSA Results - Multiple Measurements")
	s.add()
	s.add("Input Parameters")
	s.add("Default density (kg/m3)", wb.DefaultRho)
	s.add("Target depth (m)", wb.TargetDepth)
	s.add("Depth mode", string(wb.DepthPreset))
	s.add("Measurements", len(wb.Measurements))
	s.add()
	s.add("Summary")

	header := []any{"City", "District", "Station", "Layers", "Total depth (m)", "H (M1/M2) (m)", "H (M3) (m)"}
	for _, m := range resultMethods {
		header = append(header, fmt.Sprintf("Vsa %s (m/s)", m))
	}
	s.add(header...)
	for i, m := range wb.Measurements {
		city, district, code := m.location()
		row := []any{city, district, code, len(m.Layers), round(vsa.ComputeH(m.Layers), 2)}
		r := results[i]
		if r == nil {
			row = append(row, missing, missing)
			for range resultMethods {
				row = append(row, missing)
			}
		} else {
			row = append(row, round(r.HM12, 2), round(r.HUsed, 2))
			for _, method := range resultMethods {
				v, _ := r.Vsa(method)
				row = append(row, round(v, 1))
			}
		}
		s.add(row...)
	}

	s.add()
	s.add("Period Summary")
	header = []any{"City", "District", "Station"}
	for _, m := range periodMethods {
		header = append(header, fmt.Sprintf("T %s (s)", m))
	}
	s.add(header...)
	for i, m := range wb.Measurements {
		city, district, code := m.location()
		row := []any{city, district, code}
		for _, method := range periodMethods {
			if results[i] == nil {
				row = append(row, missing)
				continue
			}
			t, _ := results[i].Period(method)
			row = append(row, round(t, 3))
		}
		s.add(row...)
	}

	s.widths(15, 15, 25, 12, 15, 12, 12, 12, 12, 12, 12, 12, 12, 12, 12)
	return s.err
}

type cityGroup struct {
	name                string
	layers, depths      []float64
	vsaM1, vsaM2, vsaM3 []float64
}

func writeCities(f *excelize.File, wb Workbook, results []*vsa.Result) error {
	var groups []*cityGroup
	index := map[string]*cityGroup{}
	for i, m := range wb.Measurements {
		r := results[i]
		if r == nil {
			continue
		}
		city, _, _ := m.location()
		g, ok := index[city]
		if !ok {
			g = &cityGroup{name: city}
			index[city] = g
			groups = append(groups, g)
		}
		g.layers = append(g.layers, float64(len(m.Layers)))
		g.depths = append(g.depths, vsa.ComputeH(m.Layers))
		g.vsaM1 = append(g.vsaM1, r.VsaM1)
		g.vsaM2 = append(g.vsaM2, r.VsaM2)
		g.vsaM3 = append(g.vsaM3, r.VsaM3)
	}

	s, err := newSheet(f, CitySheet)
	if err != nil {
		return err
	}
	s.add("City Statistics")
	s.add()
	s.add("City", "Measurements", "Mean layers", "Mean depth (m)", "Mean Vsa M1", "Mean Vsa M2", "Mean Vsa M3", "Min Vsa M1", "Max Vsa M1")
	for _, g := range groups {
		s.add(
			g.name,
			len(g.vsaM1),
			round(stat.Mean(g.layers, nil), 1),
			round(stat.Mean(g.depths, nil), 2),
			round(stat.Mean(g.vsaM1, nil), 1),
			round(stat.Mean(g.vsaM2, nil), 1),
			round(stat.Mean(g.vsaM3, nil), 1),
			round(floats.Min(g.vsaM1), 1),
			round(floats.Max(g.vsaM1), 1),
		)
	}
	s.widths(20, 12, 18, 18, 15, 15, 15, 12, 12)
	return s.err
}

func writeDetail(f *excelize.File, name string, m Measurement, r vsa.Result, defaultRho float64) error {
	s, err := newSheet(f, name)
	if err != nil {
		return err
	}
	city, district, code := m.location()
	vs := make([]float64, len(m.Layers))
	for i, l := range m.Layers {
		vs[i] = l.Vs.Or(0)
	}

	s.add(fmt.Sprintf("%s - %s - %s - Detailed Results", city, district, code))
	s.add()
	s.add("Location")
	s.add("City", city)
	s.add("District", district)
	s.add("Station", code)
	s.add()
	s.add("Input Summary")
	s.add("Layers", len(m.Layers))
	s.add("Total depth (m)", round(vsa.ComputeH(m.Layers), 2))
	if len(vs) > 0 {
		s.add("Min Vs (m/s)", round(floats.Min(vs), 1))
		s.add("Max Vs (m/s)", round(floats.Max(vs), 1))
		s.add("Mean Vs (m/s)", round(stat.Mean(vs, nil), 1))
	}
	s.add()
	s.add("Soil Layers")
	s.add("Layer", "Thickness (m)", "Vs (m/s)", "ρ (kg/m3)", "Cumulative depth (m)")
	depth := 0.0
	for i, l := range m.Layers {
		d := l.D.Or(0)
		depth += d
		id := l.ID
		if id == "" {
			id = strconv.Itoa(i + 1)
		}
		s.add(id, round(d, 2), l.Vs.Or(0), l.Density(defaultRho), round(depth, 2))
	}
	s.add()
	s.add("Results")
	s.add("Parameter", "Value", "Unit")
	s.add("H (M1/M2)", round(r.HM12, 2), "m")
	s.add("H (M3)", round(r.HUsed, 2), "m")
	for _, method := range resultMethods {
		v, _ := r.Vsa(method)
		s.add("Vsa "+string(method), round(v, 1), "m/s")
	}
	s.add()
	s.add("Periods")
	s.add("Parameter", "Value", "Unit")
	for _, method := range periodMethods {
		t, _ := r.Period(method)
		s.add("T "+string(method), round(t, 3), "s")
	}
	s.widths(25, 15, 10, 12, 12)
	return s.err
}

var sheetNameReplacer = strings.NewReplacer("*", "_", "?", "_", ":", "_", `\`, "_", "/", "_", "[", "_", "]", "_")

// safeSheetName replaces the characters Excel rejects and cuts the name to
// 31 characters.
func safeSheetName(s string) string {
	s = sheetNameReplacer.Replace(s)
	if utf8.RuneCountInString(s) > maxSheetName {
		s = string([]rune(s)[:maxSheetName])
	}
	return s
}

// uniqueSheetName suffixes repeated names with ~2, ~3 and so on. Excel
// compares sheet names case-insensitively.
func uniqueSheetName(name string, used map[string]bool) string {
	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := "~" + strconv.Itoa(n)
		base := []rune(name)
		if len(base)+len(suffix) > maxSheetName {
			base = base[:maxSheetName-len(suffix)]
		}
		candidate = string(base) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}
