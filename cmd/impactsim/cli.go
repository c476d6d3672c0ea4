package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/urfave/cli/v2"

	"github.com/orbitwatch/neo-hazard-etl/internal/domain"
)

// referenceEvent is a historical impact with an observed crater diameter,
// used to sanity-check the estimator.
type referenceEvent struct {
	Name            string
	DiameterM       float64
	VelocityKmS     float64
	ObservedCraterM float64
}

var referenceEvents = []referenceEvent{
	{Name: "Barringer Crater", DiameterM: 50, VelocityKmS: 12.8, ObservedCraterM: 1200},
	{Name: "Tunguska Event", DiameterM: 50, VelocityKmS: 17.0, ObservedCraterM: 0},
	{Name: "Chelyabinsk", DiameterM: 20, VelocityKmS: 19.0, ObservedCraterM: 0},
	{Name: "Chicxulub", DiameterM: 10000, VelocityKmS: 20.0, ObservedCraterM: 180000},
	{Name: "Meteor Crater Small Test", DiameterM: 100, VelocityKmS: 20.0, ObservedCraterM: 2000},
}

// newCLIApp creates the CLI application with all commands. Output goes to out
// so tests can capture it.
func newCLIApp(out io.Writer) *cli.App {
	app := &cli.App{
		Name:    "impactsim",
		Usage:   "Meteor impact effect estimator",
		Version: Version,
		Writer:  out,
		Commands: []*cli.Command{
			estimateCmd(out),
			calibrateCmd(out),
			moidCmd(out),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func estimateCmd(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "estimate",
		Usage: "Estimate impact effects for a single impactor",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "diameter", Aliases: []string{"d"}, Required: true, Usage: "Impactor diameter in meters"},
			&cli.Float64Flag{Name: "velocity", Aliases: []string{"v"}, Required: true, Usage: "Impact velocity in km/s"},
			&cli.Float64Flag{Name: "density", Usage: "Impactor density in kg/m3 (default 3000)"},
			&cli.Float64Flag{Name: "target-density", Usage: "Target surface density in kg/m3 (default 2700)"},
			&cli.Float64Flag{Name: "gravity", Usage: "Surface gravity in m/s2 (default 9.81)"},
			&cli.BoolFlag{Name: "json", Usage: "Emit the estimate as JSON"},
		},
		Action: func(c *cli.Context) error {
			est, err := domain.EstimateImpact(domain.Impactor{
				DiameterM:         c.Float64("diameter"),
				VelocityKmS:       c.Float64("velocity"),
				DensityKgM3:       c.Float64("density"),
				TargetDensityKgM3: c.Float64("target-density"),
				GravityMS2:        c.Float64("gravity"),
			})
			if err != nil {
				return err
			}

			if c.Bool("json") {
				return outputJSON(out, est)
			}

			fmt.Fprintf(out, "Impact energy:    %.2f Mt TNT (%.3e J)\n", est.EnergyMegatonsTNT, est.EnergyJoules)
			fmt.Fprintf(out, "Mass:             %.3e kg\n", est.MassKg)
			fmt.Fprintf(out, "Event type:       %s\n", est.Description)
			if !est.Airburst {
				fmt.Fprintf(out, "Crater diameter:  %.1f m\n", est.CraterDiameterM)
			}
			fmt.Fprintf(out, "Damage radius:    %.2f km\n", est.DamageRadiusKm)
			fmt.Fprintf(out, "Damage level:     %s\n", est.DamageLevel)
			return nil
		},
	}
}

func calibrateCmd(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "calibrate",
		Usage: "Run the estimator against historical reference events",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Emit the calibration results as JSON"},
		},
		Action: func(c *cli.Context) error {
			report, err := runCalibration()
			if err != nil {
				return err
			}

			if c.Bool("json") {
				return outputJSON(out, report)
			}

			for _, r := range report.Events {
				fmt.Fprintf(out, "%-28s D=%6.0f m  V=%5.1f km/s  pred=%9.1f m  obs=%6.0f m  %s\n",
					r.Name, r.DiameterM, r.VelocityKmS, r.PredictedCraterM, r.ObservedCraterM, r.DamageLevel)
			}
			fmt.Fprintf(out, "MAE:  %.2f m\n", report.MAE)
			fmt.Fprintf(out, "RMSE: %.2f m\n", report.RMSE)
			return nil
		},
	}
}

func moidCmd(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "moid",
		Usage: "Classify a minimum orbit intersection distance against a threshold",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "au", Required: true, Usage: "MOID in astronomical units"},
			&cli.Float64Flag{Name: "threshold", Value: 0.001, Usage: "Intersection threshold in AU"},
			&cli.BoolFlag{Name: "json", Usage: "Emit the classification as JSON"},
		},
		Action: func(c *cli.Context) error {
			au := c.Float64("au")
			result, err := domain.ClassifyMOID(&au, c.Float64("threshold"))
			if err != nil {
				return err
			}

			if c.Bool("json") {
				return outputJSON(out, result)
			}

			fmt.Fprintf(out, "MOID:       %g AU (%.0f km)\n", result.MOIDAU, result.MOIDKm)
			fmt.Fprintf(out, "Intersects: %t\n", result.Intersects)
			return nil
		},
	}
}

// calibrationResult is one reference event with its prediction.
type calibrationResult struct {
	Name             string             `json:"name"`
	DiameterM        float64            `json:"diameter_m"`
	VelocityKmS      float64            `json:"velocity_km_s"`
	PredictedCraterM float64            `json:"predicted_crater_m"`
	ObservedCraterM  float64            `json:"observed_crater_m"`
	DamageLevel      domain.DamageLevel `json:"damage_level"`
}

type calibrationReport struct {
	Events []calibrationResult `json:"events"`
	MAE    float64             `json:"mae_m"`
	RMSE   float64             `json:"rmse_m"`
}

func runCalibration() (calibrationReport, error) {
	report := calibrationReport{Events: make([]calibrationResult, 0, len(referenceEvents))}

	var absSum, sqSum float64
	for _, e := range referenceEvents {
		est, err := domain.EstimateImpact(domain.Impactor{
			DiameterM:   e.DiameterM,
			VelocityKmS: e.VelocityKmS,
		})
		if err != nil {
			return calibrationReport{}, fmt.Errorf("calibrate %s: %w", e.Name, err)
		}

		diff := e.ObservedCraterM - est.CraterDiameterM
		absSum += math.Abs(diff)
		sqSum += diff * diff

		report.Events = append(report.Events, calibrationResult{
			Name:             e.Name,
			DiameterM:        e.DiameterM,
			VelocityKmS:      e.VelocityKmS,
			PredictedCraterM: est.CraterDiameterM,
			ObservedCraterM:  e.ObservedCraterM,
			DamageLevel:      est.DamageLevel,
		})
	}

	n := float64(len(referenceEvents))
	report.MAE = absSum / n
	report.RMSE = math.Sqrt(sqSum / n)
	return report, nil
}

func outputJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
