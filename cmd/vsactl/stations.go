package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"Vsa/internal/calc/batch"
	"Vsa/internal/calc/station"
	"Vsa/internal/calc/vsa"
)

func newStationsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stations",
		Short: "Station measurement workbooks",
	}
	cmd.AddCommand(newStationsImportCmd(a), newStationsExportCmd(a), newStationsSampleCmd())
	return cmd
}

func (a *app) computeWorkbook(cmd *cobra.Command, path string) (station.Workbook, []batch.Outcome, error) {
	f, err := os.Open(path)
	if err != nil {
		return station.Workbook{}, nil, err
	}
	defer f.Close()
	wb, err := station.Read(f)
	if err != nil {
		return station.Workbook{}, nil, err
	}
	if cmd.Flags().Changed("rho") {
		wb.DefaultRho = a.rho()
	}
	formula, err := a.formula()
	if err != nil {
		return station.Workbook{}, nil, err
	}
	out, err := batch.Profiles(cmd.Context(), wb.Inputs(formula))
	return wb, out, err
}

type stationRow struct {
	Measurement station.Measurement `json:"measurement"`
	batch.Outcome
}

func newStationsImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "import FILE.xlsx",
		Short:   "Read a station workbook and compute every measurement",
		Example: `  vsactl stations import hatay.xlsx --formula EXACT`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wb, out, err := a.computeWorkbook(cmd, args[0])
			if err != nil {
				return err
			}
			rows := make([]stationRow, len(out))
			for i, o := range out {
				rows[i] = stationRow{Measurement: wb.Measurements[i], Outcome: o}
			}
			return a.render(rows, func(w io.Writer) {
				fmt.Fprintln(w, "ID\tMEASUREMENT\tLAYERS\tH (m)\tM1\tM2\tM3\tExact")
				for _, r := range rows {
					m := r.Measurement
					if r.Result == nil {
						fmt.Fprintf(w, "%s\t%s\t%d\t%.1f\terror: %s\n", m.ID, m.Name, len(m.Layers), vsa.ComputeH(m.Layers), r.Error)
						continue
					}
					res := r.Result
					fmt.Fprintf(w, "%s\t%s\t%d\t%.1f\t%.1f\t%.1f\t%.1f\t%.1f\n",
						m.ID, m.Name, len(m.Layers), res.HM12, res.VsaM1, res.VsaM2, res.VsaM3, res.VsaExact)
				}
			})
		},
	}
}

func newStationsExportCmd(a *app) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:     "export FILE.xlsx",
		Short:   "Compute a station workbook and write the results workbook",
		Example: `  vsactl stations export hatay.xlsx --out hatay-vsa.xlsx`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wb, out, err := a.computeWorkbook(cmd, args[0])
			if err != nil {
				return err
			}
			results := make([]*vsa.Result, len(out))
			for i, o := range out {
				results[i] = o.Result
			}
			if err := createFile(outPath, func(w io.Writer) error { return station.Export(w, wb, results) }); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d measurements)\n", outPath, len(results))
			return nil
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "vsa-results.xlsx", "output workbook")
	return cmd
}

func newStationsSampleCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write the template workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := createFile(outPath, station.WriteSample); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "vsa-sample.xlsx", "output workbook")
	return cmd
}
