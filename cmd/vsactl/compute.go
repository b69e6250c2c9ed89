package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"Vsa/internal/calc/calibrate"
	"Vsa/internal/calc/deviation"
	"Vsa/internal/calc/report"
	"Vsa/internal/calc/siteclass"
	"Vsa/internal/calc/vsa"
)

type computeOutput struct {
	Profile  string              `json:"profile"`
	Result   vsa.Result          `json:"result"`
	Analysis *deviation.Analysis `json:"analysis,omitempty"`
}

func newComputeCmd(a *app) *cobra.Command {
	var (
		presetName  string
		depthM12    float64
		depthM3     float64
		depthPreset string
		mode        string
	)
	cmd := &cobra.Command{
		Use:   "compute [profile.yaml]",
		Short: "Compare every method on one profile",
		Example: `  vsactl compute borehole.yaml
  vsactl compute --preset ozkan --depth-preset VS30
  vsactl compute --preset takabatake --depth-m12 20 -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := source(presetName, args)
			if err != nil {
				return err
			}
			formula, err := a.formula()
			if err != nil {
				return err
			}
			rho := p.DefaultRho
			if cmd.Flags().Changed("rho") || rho <= 0 {
				rho = a.rho()
			}
			res, err := vsa.Calculate(vsa.Input{
				Layers:     p.Layers,
				DefaultRho: rho,
				DepthM12:   depthM12,
				DepthM3:    depthM3,
				Mode:       vsa.DepthMode(mode),
				Formula:    formula,
				Preset:     vsa.DepthPreset(depthPreset),
			})
			if err != nil {
				return err
			}
			out := computeOutput{Profile: p.Name, Result: res}
			if len(p.Expected) > 0 {
				an := deviation.Analyze(res, p.Expected)
				out.Analysis = &an
			}
			return a.render(out, func(w io.Writer) {
				if p.Name != "" {
					fmt.Fprintf(w, "Profile\t%s\n", p.Name)
				}
				resultTable(w, res, p.Expected)
				if out.Analysis != nil {
					fmt.Fprintf(w, "\n%s\n", out.Analysis.Recommendation)
				}
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&presetName, "preset", "", "literature profile name")
	f.Float64Var(&depthM12, "depth-m12", 0, "depth for M1, M2, M4 and M5 in m (0 is the full profile)")
	f.Float64Var(&depthM3, "depth-m3", 0, "depth for the period methods in m (TARGET mode)")
	f.StringVar(&depthPreset, "depth-preset", "", "VS30, SITE_HS or CUSTOM (overrides --mode)")
	f.StringVar(&mode, "mode", string(vsa.ModeTotal), "period depth basis: TOTAL or TARGET")
	return cmd
}

func newCalibrateCmd(a *app) *cobra.Command {
	var (
		presetName string
		opt        calibrate.Options
	)
	cmd := &cobra.Command{
		Use:     "calibrate [profile.yaml] --target VSA",
		Short:   "Find the depth at which M3 reaches a target velocity",
		Example: `  vsactl calibrate --preset ozkan --target 300 --formula EXACT`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := source(presetName, args)
			if err != nil {
				return err
			}
			if opt.Formula, err = a.formula(); err != nil {
				return err
			}
			opt.DefaultRho = p.DefaultRho
			if cmd.Flags().Changed("rho") || opt.DefaultRho <= 0 {
				opt.DefaultRho = a.rho()
			}
			res, err := calibrate.Calibrate(calibrate.Input{Layers: p.Layers, Options: opt})
			if err != nil {
				return err
			}
			return a.render(res, func(w io.Writer) {
				fmt.Fprintf(w, "Depth\t%.2f m\n", res.DepthM)
				fmt.Fprintf(w, "Vsa (%s)\t%.2f m/s\n", res.Formula, res.Vsa)
				fmt.Fprintf(w, "Target\t%.2f m/s\n", res.Target)
				fmt.Fprintf(w, "Error\t%.3f m/s\n", res.Error)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&presetName, "preset", "", "literature profile name")
	f.Float64Var(&opt.Target, "target", 0, "target velocity in m/s")
	f.Float64Var(&opt.HMin, "h-min", 0, "smallest depth searched in m (default 5)")
	f.Float64Var(&opt.HMax, "h-max", 0, "largest depth searched in m (default 120)")
	f.Float64Var(&opt.Seed, "seed", 0, "start the search around this depth in m")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func newSiteClassCmd(a *app) *cobra.Command {
	var presetName, code string
	cmd := &cobra.Command{
		Use:     "siteclass [profile.yaml]",
		Short:   "Vs30 and seismic site class",
		Example: `  vsactl siteclass --preset antakya --code EC8`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := source(presetName, args)
			if err != nil {
				return err
			}
			res, err := siteclass.Calculate(siteclass.Input{Code: siteclass.Code(code), Layers: p.Layers})
			if err != nil {
				return err
			}
			return a.render(res, func(w io.Writer) {
				fmt.Fprintf(w, "Vs30\t%.1f m/s\n", res.Vs30)
				fmt.Fprintf(w, "Class (%s)\t%s\n", res.Code, res.Class)
				fmt.Fprintf(w, "Description\t%s\n", res.Description)
				if res.Extrapolated {
					fmt.Fprintln(w, "Note\tprofile shallower than 30 m, last layer extended")
				}
			})
		},
	}
	cmd.Flags().StringVar(&presetName, "preset", "", "literature profile name")
	cmd.Flags().StringVar(&code, "code", string(siteclass.CodeTBDY), "TBDY2018, EC8 or NEHRP")
	return cmd
}

func newReportCmd(a *app) *cobra.Command {
	var (
		in      report.Input
		pdfPath string
	)
	cmd := &cobra.Command{
		Use:   "report [profile.yaml]",
		Short: "Geotechnical report as JSON, or PDF with --pdf",
		Example: `  vsactl report --preset hasanoglu
  vsactl report borehole.yaml --depth-preset CUSTOM --target-depth 25 --pdf report.pdf`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				p, err := source("", args)
				if err != nil {
					return err
				}
				in.Name, in.Layers, in.DefaultRho, in.Expected = p.Name, p.Layers, p.DefaultRho, p.Expected
				if in.DepthPreset == "" && p.AutoDepth.Preset != "" {
					in.DepthPreset, in.TargetDepth = p.AutoDepth.Preset, p.AutoDepth.Value
				}
			} else if in.Preset == "" {
				return fmt.Errorf("a profile file or --preset is required")
			}
			if cmd.Flags().Changed("rho") {
				in.DefaultRho = a.rho()
			}
			var err error
			if in.Formula, err = a.formula(); err != nil {
				return err
			}
			rep, err := report.Build(in)
			if err != nil {
				return err
			}
			if pdfPath != "" {
				if err := createFile(pdfPath, func(w io.Writer) error { return report.WritePDF(w, rep) }); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", pdfPath)
				return nil
			}
			return report.WriteJSON(a.out, rep)
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Preset, "preset", "", "literature profile name")
	f.StringVar(&in.Project, "project", "", "project name")
	f.StringVar(&in.Author, "author", "", "report author")
	f.StringVar((*string)(&in.DepthPreset), "depth-preset", "", "VS30, SITE_HS or CUSTOM")
	f.Float64Var(&in.TargetDepth, "target-depth", 0, "depth for CUSTOM in m")
	f.BoolVar(&in.HidePeriods, "hide-periods", false, "leave the periods out")
	f.StringVar((*string)(&in.SiteCode), "code", "", "site class code: TBDY2018, EC8 or NEHRP")
	f.StringVar(&pdfPath, "pdf", "", "write a PDF to this path instead of JSON")
	return cmd
}
