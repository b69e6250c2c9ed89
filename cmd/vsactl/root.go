package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"Vsa/internal/calc/vsa"
	"Vsa/internal/logging"
)

type app struct {
	v       *viper.Viper
	out     io.Writer
	cfgFile string
	verbose bool
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{v: viper.New(), out: out}

	cmd := &cobra.Command{
		Use:   "vsactl",
		Short: "Average shear-wave velocity calculator",
		Long: `vsactl compares the averaging methods for the shear-wave velocity of a
layered soil profile (M1 to M7 and the exact transfer-matrix solution),
calibrates depths, classifies sites and reads station workbooks.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := "warn"
			if a.verbose {
				level = "debug"
			}
			logging.Setup(os.Stderr, level, "text")
			return a.initConfig()
		},
		SilenceUsage: true,
	}
	cmd.SetOut(out)

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.vsactl.yaml)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose output")
	pf.StringP("format", "o", "table", "output format: table, json, yaml")
	pf.Float64("rho", vsa.DefaultRho, "default density in kg/m3 for layers without one")
	pf.String("formula", string(vsa.FormulaMOC), "period formula for M3: MOC, RAYLEIGH, EXACT")
	_ = a.v.BindPFlag("format", pf.Lookup("format"))
	_ = a.v.BindPFlag("default_rho", pf.Lookup("rho"))
	_ = a.v.BindPFlag("formula", pf.Lookup("formula"))

	cmd.AddCommand(
		newComputeCmd(a),
		newPresetsCmd(a),
		newBatchCmd(a),
		newCalibrateCmd(a),
		newStationsCmd(a),
		newReportCmd(a),
		newSiteClassCmd(a),
	)
	return cmd
}

// initConfig loads the config file and VSA_* environment variables.
// Flags set on the command line win over both.
func (a *app) initConfig() error {
	a.v.SetEnvPrefix("VSA")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
		return a.v.ReadInConfig()
	}
	home, err := os.UserHomeDir()
	if err != nil {
		slog.Debug("no home directory", "error", err)
		return nil
	}
	a.v.AddConfigPath(home)
	a.v.SetConfigType("yaml")
	a.v.SetConfigName(".vsactl")
	var notFound viper.ConfigFileNotFoundError
	if err := a.v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
		return err
	}
	slog.Debug("config", "file", a.v.ConfigFileUsed())
	return nil
}

func (a *app) rho() float64 {
	if r := a.v.GetFloat64("default_rho"); r > 0 {
		return r
	}
	return vsa.DefaultRho
}

func (a *app) formula() (vsa.PeriodFormula, error) {
	f := vsa.PeriodFormula(strings.ToUpper(a.v.GetString("formula")))
	if !f.Valid() {
		return "", fmt.Errorf("invalid formula %q (valid: MOC, RAYLEIGH, EXACT)", f)
	}
	return f, nil
}
