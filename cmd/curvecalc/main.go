// curvecalc builds yield curves from a curve definition file and prints
// the resulting pillar discount factors and zero rates.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/meenmo/termstruct/bootstrap"
	"github.com/meenmo/termstruct/calendar"
	"github.com/meenmo/termstruct/config"
	"github.com/meenmo/termstruct/curve"
	"github.com/meenmo/termstruct/instrument"
	"github.com/meenmo/termstruct/interp"
	"github.com/meenmo/termstruct/registry"
	"github.com/meenmo/termstruct/utils"
)

func main() {
	root := &cobra.Command{
		Use:           "curvecalc",
		Short:         "Yield curve bootstrapping and analytics",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(buildCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "curvecalc:", err)
		os.Exit(1)
	}
}

func buildCmd() *cobra.Command {
	var (
		file    string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Bootstrap the curves defined in a YAML or JSON curve file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
			}

			cf, err := config.LoadCurveFile(file)
			if err != nil {
				return err
			}
			asOf, err := utils.ParseDate(cf.AsOf)
			if err != nil {
				return fmt.Errorf("asof: %w", err)
			}

			reg := registry.NewMap()
			for _, def := range cf.Curves {
				c, info, err := buildCurve(asOf, def)
				if err != nil {
					return err
				}
				reg.Register(registry.Key{Currency: def.Currency, CurveID: def.ID}, c)
				printCurve(cmd, c, info)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "curves.yaml", "curve definition file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	return cmd
}

func buildCurve(asOf time.Time, def config.CurveDef) (*curve.Curve, *curve.CalibrationInfo, error) {
	method, err := interp.ParseMethod(def.Method)
	if err != nil {
		return nil, nil, fmt.Errorf("curve %s: %w", def.ID, err)
	}
	variable, err := curve.ParseVariable(def.Variable)
	if err != nil {
		return nil, nil, fmt.Errorf("curve %s: %w", def.ID, err)
	}

	cal := calendar.CalendarID(def.Calendar)
	if def.Calendar == "" {
		cal = calendar.TARGET
	}

	var instruments []bootstrap.Instrument
	for _, d := range def.Deposits {
		instruments = append(instruments, instrument.Deposit{
			ID:       d.ID,
			Start:    asOf,
			Maturity: calendar.Adjust(cal, utils.AddMonth(asOf, d.Months)),
			Rate:     d.Rate,
			DayCount: d.DayCount,
		})
	}
	for _, s := range def.Swaps {
		instruments = append(instruments, instrument.ParSwap{
			ID:            s.ID,
			Start:         asOf,
			Maturity:      utils.AddMonth(asOf, 12*s.Years),
			Rate:          s.Rate,
			FixedMonths:   s.FixedMonths,
			FixedDayCount: s.FixedDayCount,
			Calendar:      cal,
		})
	}

	spec := bootstrap.Spec{
		CurveID:     def.ID,
		AsOf:        asOf,
		DayCount:    def.DayCount,
		Method:      method,
		Variable:    variable,
		Instruments: instruments,
		Extrapolate: def.Extrapolate,
	}
	if def.Bootstrap != nil {
		spec.Config = *def.Bootstrap
	}
	return bootstrap.Build(spec)
}

func printCurve(cmd *cobra.Command, c *curve.Curve, info *curve.CalibrationInfo) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "curve %s as of %s [%s/%s] %s, cost %.3e\n",
		c.ID(), c.AsOf().Format("2006-01-02"), c.Method(), c.Variable(), info.Status, info.Cost)

	fmt.Fprintf(out, "%-12s %-14s %-12s\n", "pillar", "discount", "zero")
	for _, p := range c.Pillars() {
		if p.Time == 0 {
			continue
		}
		df, err := c.DiscountTime(p.Time)
		if err != nil {
			fmt.Fprintf(out, "%-12s <error: %v>\n", p.Date.Format("2006-01-02"), err)
			continue
		}
		zero, _ := curve.RateFromDiscount(df, p.Time, curve.Continuous)
		fmt.Fprintf(out, "%-12s %-14.10f %-12.8f\n", p.Date.Format("2006-01-02"), df, zero)
	}
	for _, w := range info.Warnings {
		fmt.Fprintln(out, "warning:", w)
	}
	fmt.Fprintln(out)
}
