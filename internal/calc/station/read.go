// Package station reads multi-station Vs survey workbooks and writes the
// computed results back to Excel.
//
// A survey sheet holds measurement blocks side by side, four columns apart.
// Each block carries the province, district and station code in its second
// column on three consecutive rows, then a "Derinlik" header row and one
// row per layer with top depth, bottom depth and Vs.
package station

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"

	"Vsa/internal/calc/vsa"
)

var ErrNoMeasurements = errors.New("station: workbook has no measurements")

const (
	stationMarker = "İSTASYON KODU"
	headerMarker  = "derinlik"
	blockWidth    = 4
	minSheetRows  = 5
	unknown       = "Unknown"
)

type Measurement struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	City     string      `json:"city"`
	District string      `json:"district"`
	Station  string      `json:"station"`
	Layers   []vsa.Layer `json:"layers"`
}

// Workbook is the content of a survey file together with the calculation
// settings such files are evaluated with.
type Workbook struct {
	Measurements []Measurement   `json:"measurements"`
	DefaultRho   float64         `json:"default_rho"`
	TargetDepth  float64         `json:"target_depth"`
	DepthPreset  vsa.DepthPreset `json:"depth_preset"`
}

// Inputs returns one calculation per measurement.
func (wb Workbook) Inputs(formula vsa.PeriodFormula) []vsa.Input {
	out := make([]vsa.Input, len(wb.Measurements))
	for i, m := range wb.Measurements {
		out[i] = vsa.Input{
			Layers:     m.Layers,
			DefaultRho: wb.DefaultRho,
			DepthM3:    wb.TargetDepth,
			Preset:     wb.DepthPreset,
			Formula:    formula,
		}
	}
	return out
}

// Read scans every sheet of the workbook for measurement blocks.
// Measurements without a valid first layer are dropped.
func Read(r io.Reader) (Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Workbook{}, fmt.Errorf("station: open workbook: %w", err)
	}
	defer f.Close()

	wb := Workbook{
		DefaultRho:  vsa.DefaultRho,
		TargetDepth: 30,
		DepthPreset: vsa.PresetSiteHs,
	}
	next := 1
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return Workbook{}, fmt.Errorf("station: sheet %q: %w", sheet, err)
		}
		if len(rows) < minSheetRows {
			continue
		}
		for ri, row := range rows {
			if !hasMarker(row) {
				continue
			}
			for col := 0; col < len(row); col += blockWidth {
				code := cell(rows, ri, col+1)
				if code == "" || !isHeader(cell(rows, ri+1, col)) {
					continue
				}
				m := Measurement{
					ID:       strconv.Itoa(next),
					City:     orDefault(cell(rows, ri-2, col+1), sheet),
					District: orDefault(cell(rows, ri-1, col+1), unknown),
					Station:  code,
				}
				next++
				m.Name = strings.TrimSpace(m.City + " - " + m.District + " - " + m.Station)
				m.Layers = readLayers(rows, ri+2, col)
				if len(m.Layers) > 0 {
					wb.Measurements = append(wb.Measurements, m)
				}
			}
		}
	}
	if len(wb.Measurements) == 0 {
		return wb, ErrNoMeasurements
	}
	return wb, nil
}

// readLayers stops at the first row that is short, blank or not a valid
// interval.
func readLayers(rows [][]string, start, col int) []vsa.Layer {
	var layers []vsa.Layer
	for r := start; r < len(rows); r++ {
		if len(rows[r]) <= col {
			break
		}
		top, ok1 := number(cell(rows, r, col))
		bottom, ok2 := number(cell(rows, r, col+1))
		vs, ok3 := number(cell(rows, r, col+2))
		if !ok1 || !ok2 || !ok3 || !(vs > 0) || !(bottom > top) {
			break
		}
		layers = append(layers, vsa.Layer{
			ID: strconv.Itoa(len(layers) + 1),
			D:  vsa.Num(bottom - top),
			Vs: vsa.Num(vs),
		})
	}
	return layers
}

func hasMarker(row []string) bool {
	for _, c := range row {
		if strings.Contains(c, stationMarker) {
			return true
		}
	}
	return false
}

func isHeader(s string) bool {
	return strings.Contains(strings.ToLower(s), headerMarker) ||
		strings.Contains(strings.ToLowerSpecial(unicode.TurkishCase, s), headerMarker)
}

func cell(rows [][]string, r, c int) string {
	if r < 0 || r >= len(rows) || c < 0 || c >= len(rows[r]) {
		return ""
	}
	return strings.TrimSpace(rows[r][c])
}

func number(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	x, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	return x, err == nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
