package main

import (
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"text/tabwriter"

	"Vsa/internal/calc/deviation"
	"Vsa/internal/calc/presets"
	"Vsa/internal/calc/vsa"
)

const maxLayers = 50

const helpText = `Vsa calculator

/vsa 5:180 10:300 15:600 - layers as thickness:Vs, optionally thickness:Vs:rho
/preset Özkan - a literature profile with its published values
/presets - list the literature profiles
/help - this message`

type bot struct {
	api        *client
	defaultRho float64
}

// handle returns the reply to a message, or "" for text that is not a
// command.
func (b *bot) handle(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return ""
	}
	cmd, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")
	args := fields[1:]

	switch cmd {
	case "/start", "/help":
		return html.EscapeString(helpText)
	case "/vsa":
		return b.vsa(args)
	case "/preset":
		return b.preset(strings.Join(args, " "))
	case "/presets":
		return listPresets()
	}
	return "Unknown command. Send /help."
}

// parseLayers reads "d:vs" or "d:vs:rho" tokens.
func parseLayers(args []string) ([]vsa.Layer, error) {
	if len(args) == 0 {
		return nil, errors.New("no layers given")
	}
	if len(args) > maxLayers {
		return nil, fmt.Errorf("at most %d layers", maxLayers)
	}
	layers := make([]vsa.Layer, 0, len(args))
	for i, a := range args {
		parts := strings.Split(a, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("layer %d: %q is not thickness:Vs[:rho]", i+1, a)
		}
		nums := make([]float64, len(parts))
		for j, p := range parts {
			x, err := strconv.ParseFloat(strings.ReplaceAll(p, ",", "."), 64)
			if err != nil {
				return nil, fmt.Errorf("layer %d: %q is not a number", i+1, p)
			}
			nums[j] = x
		}
		l := vsa.Layer{ID: strconv.Itoa(i + 1), D: vsa.Num(nums[0]), Vs: vsa.Num(nums[1])}
		if len(nums) == 3 {
			l.Rho = vsa.Num(nums[2])
		}
		layers = append(layers, l)
	}
	if msgs := vsa.ValidateProfile(layers); len(msgs) > 0 {
		return nil, errors.New(strings.Join(msgs, "; "))
	}
	return layers, nil
}

func (b *bot) vsa(args []string) string {
	layers, err := parseLayers(args)
	if err != nil {
		return html.EscapeString("Invalid profile: " + err.Error())
	}
	res, err := vsa.Calculate(vsa.Input{Layers: layers, DefaultRho: b.defaultRho})
	if err != nil {
		return html.EscapeString("Calculation error: " + err.Error())
	}
	return fmt.Sprintf("H = %.1f m\n<pre>%s</pre>", res.HUsed, html.EscapeString(table(res, nil)))
}

func (b *bot) preset(name string) string {
	if name == "" {
		return "Usage: /preset &lt;name&gt;"
	}
	p, err := presets.Find(name)
	if errors.Is(err, presets.ErrNotFound) {
		return "No such preset. Send /presets."
	}
	if err != nil {
		return "Preset catalog unavailable."
	}
	res, err := vsa.Calculate(p.Input())
	if err != nil {
		return html.EscapeString("Calculation error: " + err.Error())
	}
	a := deviation.Analyze(res, p.Expected)
	return fmt.Sprintf("<b>%s</b>, H = %.1f m\n<pre>%s</pre>\n%s",
		html.EscapeString(p.Name), res.HUsed, html.EscapeString(table(res, p.Expected)), html.EscapeString(a.Recommendation))
}

func listPresets() string {
	ps, err := presets.All()
	if err != nil {
		return "Preset catalog unavailable."
	}
	var sb strings.Builder
	sb.WriteString("Literature profiles:\n")
	for _, p := range ps {
		fmt.Fprintf(&sb, "• %s (%d layers, %.1f m)\n", html.EscapeString(p.Name), len(p.Layers), vsa.ComputeH(p.Layers))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// table lays out the result per method, with the published value and
// signed difference when expected is given.
func table(res vsa.Result, expected deviation.Expected) string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	if expected != nil {
		fmt.Fprintln(tw, "Method\tVsa\tT (s)\tRef\tDiff")
	} else {
		fmt.Fprintln(tw, "Method\tVsa\tT (s)")
	}
	for _, m := range vsa.Methods {
		v, _ := res.Vsa(m)
		t, _ := res.Period(m)
		if expected == nil {
			fmt.Fprintf(tw, "%s\t%.1f\t%.3f\n", m, v, t)
			continue
		}
		exp, ok := expected[m]
		ref := "-"
		if ok {
			ref = fmt.Sprintf("%.1f", exp)
		}
		fmt.Fprintf(tw, "%s\t%.1f\t%.3f\t%s\t%s\n", m, v, t, ref, deviation.FormatDiff(v, exp, ok))
	}
	tw.Flush()
	return strings.TrimRight(sb.String(), "\n")
}
