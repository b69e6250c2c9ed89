package station

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"Vsa/internal/calc/batch"
	"Vsa/internal/calc/vsa"
)

const xlsxType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct{}

type ImportResult struct {
	Workbook Workbook        `json:"workbook"`
	Count    int             `json:"count"`
	Results  []batch.Outcome `json:"results"`
}

// compute reads the uploaded workbook and evaluates every measurement with
// the formula of the "formula" form field. A non-empty message is the
// answer to send instead.
func compute(r *http.Request) (wb Workbook, out []batch.Outcome, status int, msg string) {
	file, _, err := r.FormFile("file")
	if err != nil {
		return wb, nil, http.StatusBadRequest, "File required"
	}
	defer file.Close()

	wb, err = Read(file)
	if errors.Is(err, ErrNoMeasurements) {
		return wb, nil, http.StatusUnprocessableEntity, "No measurements found"
	}
	if err != nil {
		return wb, nil, http.StatusBadRequest, "Invalid file"
	}
	formula := vsa.PeriodFormula(r.FormValue("formula"))
	if formula == "" {
		formula = vsa.FormulaMOC
	}
	if !formula.Valid() {
		return wb, nil, http.StatusBadRequest, "Invalid formula"
	}
	out, err = batch.Profiles(r.Context(), wb.Inputs(formula))
	if err != nil {
		return wb, nil, http.StatusInternalServerError, "Calculation error"
	}
	return wb, out, http.StatusOK, ""
}

func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	wb, out, status, msg := compute(r)
	if msg != "" {
		http.Error(w, msg, status)
		return
	}
	count := 0
	for _, o := range out {
		if o.Result != nil {
			count++
		}
	}
	vsa.WriteJSON(w, http.StatusOK, ImportResult{Workbook: wb, Count: count, Results: out})
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	wb, out, status, msg := compute(r)
	if msg != "" {
		http.Error(w, msg, status)
		return
	}
	results := make([]*vsa.Result, len(out))
	for i, o := range out {
		results[i] = o.Result
	}
	var buf bytes.Buffer
	if err := Export(&buf, wb, results); err != nil {
		slog.Error("station export", "error", err)
		http.Error(w, "Export error", http.StatusInternalServerError)
		return
	}
	writeFile(w, "vsa-results.xlsx", buf.Bytes())
}

func (h *Handler) Sample(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := WriteSample(&buf); err != nil {
		slog.Error("station sample", "error", err)
		http.Error(w, "Export error", http.StatusInternalServerError)
		return
	}
	writeFile(w, "vsa-sample.xlsx", buf.Bytes())
}

func writeFile(w http.ResponseWriter, name string, data []byte) {
	w.Header().Set("Content-Type", xlsxType)
	w.Header().Set("Content-Disposition", "attachment; filename=\""+name+"\"")
	if _, err := w.Write(data); err != nil {
		slog.Error("write workbook", "error", err)
	}
}
