package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"Vsa/internal/calc/batch"
	"Vsa/internal/calc/deviation"
	"Vsa/internal/calc/presets"
	"Vsa/internal/calc/vsa"
)

func newPresetsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "Literature profiles with published results",
	}
	cmd.AddCommand(newPresetsListCmd(a), newPresetsShowCmd(a))
	return cmd
}

type presetSummary struct {
	Name      string            `json:"name"`
	Layers    int               `json:"layers"`
	DepthM    float64           `json:"depth_m"`
	AutoDepth presets.AutoDepth `json:"auto_depth"`
}

func newPresetsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the literature profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := presets.All()
			if err != nil {
				return err
			}
			out := make([]presetSummary, 0, len(ps))
			for _, p := range ps {
				out = append(out, presetSummary{Name: p.Name, Layers: len(p.Layers), DepthM: vsa.ComputeH(p.Layers), AutoDepth: p.AutoDepth})
			}
			return a.render(out, func(w io.Writer) {
				fmt.Fprintln(w, "NAME\tLAYERS\tDEPTH (m)\tAUTO DEPTH")
				for _, s := range out {
					fmt.Fprintf(w, "%s\t%d\t%.1f\t%s %.0f m\n", s.Name, s.Layers, s.DepthM, s.AutoDepth.Preset, s.AutoDepth.Value)
				}
			})
		},
	}
}

type presetDetail struct {
	Preset   presets.Preset     `json:"preset"`
	Result   vsa.Result         `json:"result"`
	Analysis deviation.Analysis `json:"analysis"`
}

func newPresetsShowCmd(a *app) *cobra.Command {
	var auto, profileOnly bool
	cmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Compute a literature profile against its published values",
		Example: `  vsactl presets show ozkan
  vsactl presets show "Dulkadiroğlu" --auto-depth
  vsactl presets show takabatake --profile > takabatake.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := presets.Find(strings.Join(args, " "))
			if err != nil {
				return err
			}
			if profileOnly {
				b, err := presets.EncodeProfile(p)
				if err != nil {
					return err
				}
				_, err = a.out.Write(b)
				return err
			}
			in := p.Input()
			if auto {
				in.Preset, in.DepthM3 = presets.AutoConfigureDepth(p)
			}
			res, err := vsa.Calculate(in)
			if err != nil {
				return err
			}
			out := presetDetail{Preset: p, Result: res, Analysis: deviation.Analyze(res, p.Expected)}
			return a.render(out, func(w io.Writer) {
				fmt.Fprintf(w, "Profile\t%s\n", p.Name)
				resultTable(w, res, p.Expected)
				fmt.Fprintf(w, "\n%s\n", out.Analysis.Recommendation)
			})
		},
	}
	cmd.Flags().BoolVar(&auto, "auto-depth", false, "evaluate the period methods at the preset's usual depth")
	cmd.Flags().BoolVar(&profileOnly, "profile", false, "print the profile file instead of computing it")
	return cmd
}

func newBatchCmd(a *app) *cobra.Command {
	var (
		target float64
		names  []string
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Compute every literature profile side by side",
		Example: `  vsactl batch
  vsactl batch --target 30 --names ozkan,antakya -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := batch.Pick(names)
			if err != nil {
				return err
			}
			rep, err := batch.Presets(cmd.Context(), ps, target)
			if err != nil {
				return err
			}
			return a.render(rep, func(w io.Writer) {
				fmt.Fprint(w, "PRESET\tDEPTH")
				for _, m := range vsa.Methods {
					fmt.Fprintf(w, "\t%s", m)
				}
				fmt.Fprintln(w)
				for _, row := range rep.Results {
					fmt.Fprintf(w, "%s\t%s", row.Preset, row.DepthUsed)
					for _, m := range vsa.Methods {
						cell := fmt.Sprintf("%.1f", row.Vsa[m])
						if d := row.Diff[m]; d != "" && d != "-" {
							cell += " (" + d + ")"
						}
						fmt.Fprintf(w, "\t%s", cell)
					}
					fmt.Fprintln(w)
				}
				fmt.Fprintln(w)
				fmt.Fprintln(w, "METHOD\tN\tMEAN\tSTD DEV\tMIN\tMAX")
				for _, s := range rep.Summary {
					fmt.Fprintf(w, "%s\t%d\t%.1f\t%.1f\t%.1f\t%.1f\n", s.Method, s.N, s.Mean, s.StdDev, s.Min, s.Max)
				}
			})
		},
	}
	cmd.Flags().Float64Var(&target, "target", 0, "trim every profile to this depth in m (0 is the full profile)")
	cmd.Flags().StringSliceVar(&names, "names", nil, "preset names (default all)")
	return cmd
}
