package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-yaml"

	"Vsa/internal/calc/deviation"
	"Vsa/internal/calc/presets"
	"Vsa/internal/calc/vsa"
)

// render writes v as JSON or YAML, or calls table with a tabwriter.
func (a *app) render(v any, table func(w io.Writer)) error {
	switch format := strings.ToLower(a.v.GetString("format")); format {
	case "json":
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		b, err := yaml.MarshalWithOptions(v, yaml.Indent(2), yaml.UseJSONMarshaler())
		if err != nil {
			return err
		}
		_, err = a.out.Write(b)
		return err
	case "table", "":
		tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
		table(tw)
		return tw.Flush()
	default:
		return fmt.Errorf("invalid format %q (valid: table, json, yaml)", format)
	}
}

// resultTable prints one row per method, with the published value and
// signed difference when expected is not nil.
func resultTable(w io.Writer, res vsa.Result, expected deviation.Expected) {
	fmt.Fprintf(w, "H (M1, M2, M4, M5)\t%.2f m\n", res.HM12)
	fmt.Fprintf(w, "H (M3, M6, M7, Exact)\t%.2f m\n\n", res.HUsed)
	if expected != nil {
		fmt.Fprintln(w, "METHOD\tVSA (m/s)\tT (s)\tEXPECTED\tDIFF")
	} else {
		fmt.Fprintln(w, "METHOD\tVSA (m/s)\tT (s)")
	}
	for _, m := range vsa.Methods {
		v, _ := res.Vsa(m)
		t, _ := res.Period(m)
		if expected == nil {
			fmt.Fprintf(w, "%s\t%.2f\t%.4f\n", m, v, t)
			continue
		}
		exp, ok := expected[m]
		ref := "-"
		if ok {
			ref = fmt.Sprintf("%.2f", exp)
		}
		fmt.Fprintf(w, "%s\t%.2f\t%.4f\t%s\t%s\n", m, v, t, ref, deviation.FormatDiff(v, exp, ok))
	}
}

// source loads the profile of a command: the named preset, or the YAML or
// JSON profile file given as the only argument.
func source(presetName string, args []string) (presets.Preset, error) {
	switch {
	case presetName != "" && len(args) > 0:
		return presets.Preset{}, fmt.Errorf("give either --preset or a profile file, not both")
	case presetName != "":
		return presets.Find(presetName)
	case len(args) == 1:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return presets.Preset{}, err
		}
		return presets.DecodeProfile(data)
	}
	return presets.Preset{}, fmt.Errorf("a profile file or --preset is required")
}

func createFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
