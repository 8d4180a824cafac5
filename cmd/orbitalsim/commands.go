package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/oxygene76/orbitalsim/internal/types"
	"github.com/oxygene76/orbitalsim/pkg/analysis"
	"github.com/oxygene76/orbitalsim/pkg/astronomy/ephemerides"
	"github.com/oxygene76/orbitalsim/pkg/astronomy/nbody"
	"github.com/oxygene76/orbitalsim/pkg/compute"
	"github.com/oxygene76/orbitalsim/pkg/utils"
)

// applyFlags copies explicitly set flags over the loaded config
func applyFlags(cmd *cobra.Command, c *utils.Config) {
	flags := cmd.Flags()
	if flags.Changed("catalog") {
		c.Simulation.Catalog, _ = flags.GetString("catalog")
	}
	if flags.Changed("asteroids") {
		c.Simulation.AsteroidCount, _ = flags.GetInt("asteroids")
	}
	if flags.Changed("policy") {
		c.Simulation.Policy, _ = flags.GetString("policy")
	}
	if flags.Changed("seed") {
		c.Simulation.Seed, _ = flags.GetUint64("seed")
	}
	if flags.Changed("seconds") {
		c.Simulation.Seconds, _ = flags.GetFloat64("seconds")
	}
	if flags.Changed("workers") {
		c.Simulation.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("snapshots") {
		c.Output.SnapshotFile, _ = flags.GetString("snapshots")
	}
}

func addSimulationFlags(cmd *cobra.Command) {
	cmd.Flags().String("catalog", "solar", "catalog: solar, alpha-centauri or a YAML file")
	cmd.Flags().Int("asteroids", 500, "number of asteroids to sample")
	cmd.Flags().String("policy", "star", "force policy: full, planet or star")
	cmd.Flags().Uint64("seed", nbody.DefaultSeed, "asteroid sampler seed")
	cmd.Flags().Int("workers", 1, "goroutines for the accumulation sweep")
}

// buildSimulation resolves the catalog and constructs the simulation
func buildSimulation(c *utils.Config, logger *log.Logger) (*nbody.Simulation, error) {
	catalog, err := ephemerides.Resolve(c.Simulation.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	policy, opts, err := c.SimulationOptions(logger)
	if err != nil {
		return nil, err
	}
	sim, err := nbody.New(catalog, c.TimeStep(), c.Simulation.AsteroidCount, policy, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create simulation: %w", err)
	}
	return sim, nil
}

// dateOverlay prints the simulated calendar date at every snapshot
type dateOverlay struct {
	w io.Writer
}

func (d dateOverlay) OnStart(int, int) error { return nil }

func (d dateOverlay) OnSnapshot(_ float64, date time.Time, _ []nbody.Body) error {
	_, err := fmt.Fprintf(d.w, "Date: %s\n", date.Format(time.DateOnly))
	return err
}

func (d dateOverlay) OnEnd(float64) error { return nil }
func (d dateOverlay) Close() error        { return nil }

// closeSink closes the snapshot sinks once a run returns. An interrupted run
// never reaches OnEnd, so a failed flush only shows up here.
func closeSink(sink nbody.SnapshotSink, logger *log.Logger, runErr error) error {
	if err := sink.Close(); err != nil {
		if runErr != nil && !errors.Is(runErr, context.Canceled) {
			logger.Error("failed to close snapshots", "err", err)
			return runErr
		}
		return fmt.Errorf("failed to close snapshots: %w", err)
	}
	return runErr
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Advance the simulation headless, one step per frame",
		RunE: func(cmd *cobra.Command, args []string) error {
			applyFlags(cmd, cfg)
			logger := newLogger(cfg)

			sim, err := buildSimulation(cfg, logger)
			if err != nil {
				return err
			}
			defer sim.Release()

			sinks := []nbody.SnapshotSink{dateOverlay{w: cmd.OutOrStdout()}}
			if path := cfg.Output.SnapshotFile; path != "" {
				w, err := nbody.NewJSONLSnapshotWriter(path)
				if err != nil {
					return fmt.Errorf("failed to open snapshot file: %w", err)
				}
				sinks = append(sinks, w)
			}
			sink := nbody.MultiSink(sinks...)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			report := types.RunReport{
				Catalog:     cfg.Simulation.Catalog,
				Policy:      sim.Policy().String(),
				Accumulator: sim.AccumulatorMode().String(),
				Bodies:      len(sim.Bodies()),
				Asteroids:   sim.AsteroidCount(),
				TimeStep:    sim.TimeStep(),
				Snapshots:   cfg.Output.SnapshotFile,
				EnergyStart: analysis.Energy(sim),
			}

			totalSteps := cfg.TotalSteps()
			logger.Info("starting run",
				"steps", totalSteps,
				"time_step", sim.TimeStep(),
				"bodies", report.Bodies,
			)

			start := time.Now()
			runErr := closeSink(sink, logger, sim.Run(ctx, totalSteps, cfg.Output.SnapshotEvery, sink, nbody.DefaultEpoch))
			if runErr != nil && !errors.Is(runErr, context.Canceled) {
				return runErr
			}
			if runErr != nil {
				logger.Warn("run interrupted", "steps", sim.Steps())
			}

			report.Steps = sim.Steps()
			report.Elapsed = sim.ElapsedTime()
			report.Date = sim.Date(nbody.DefaultEpoch).Format(time.DateOnly)
			report.Duration = time.Since(start)
			report.EnergyEnd = analysis.Energy(sim)
			if sim.AsteroidCount() > 0 {
				if report.Belt, err = analysis.BeltStatistics(sim, logger); err != nil {
					return err
				}
			}

			logger.Info("run finished",
				"steps", report.Steps,
				"date", report.Date,
				"energy_drift", report.EnergyDrift(),
				"duration", report.Duration,
			)

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				data, err := report.ToJSON()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			}
			return nil
		},
	}

	addSimulationFlags(cmd)
	cmd.Flags().Float64("seconds", 10, "frames to run, in seconds of playback at the configured fps")
	cmd.Flags().String("snapshots", "", "write JSONL snapshots to this file")
	cmd.Flags().Bool("json", false, "print the run report as JSON")

	return cmd
}

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Sample the asteroid belt and print its statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			applyFlags(cmd, cfg)
			logger := newLogger(cfg)

			sim, err := buildSimulation(cfg, logger)
			if err != nil {
				return err
			}
			defer sim.Release()

			belt, err := analysis.BeltStatistics(sim, logger)
			if err != nil {
				return err
			}
			data, err := types.RunReport{
				Catalog:     cfg.Simulation.Catalog,
				Policy:      sim.Policy().String(),
				Accumulator: sim.AccumulatorMode().String(),
				Bodies:      len(sim.Bodies()),
				Asteroids:   sim.AsteroidCount(),
				TimeStep:    sim.TimeStep(),
				Date:        nbody.DefaultEpoch.Format(time.DateOnly),
				EnergyStart: analysis.Energy(sim),
				Belt:        belt,
			}.ToJSON()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	addSimulationFlags(cmd)
	return cmd
}

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog [name]",
		Short: "Print a catalog as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := cfg.Simulation.Catalog
			if len(args) == 1 {
				name = args[0]
			}
			catalog, err := ephemerides.Resolve(name)
			if err != nil {
				return err
			}
			data, err := ephemerides.Marshal(catalog)
			if err != nil {
				return err
			}

			output, _ := cmd.Flags().GetString("output")
			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("failed to write catalog: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Catalog %s written to: %s\n", catalog.Name, output)
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", "write the catalog to a file")
	return cmd
}

func ensembleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ensemble",
		Short: "Run the same system over several asteroid seeds in parallel",
		RunE: func(cmd *cobra.Command, args []string) error {
			applyFlags(cmd, cfg)
			logger := newLogger(cfg)

			runs, _ := cmd.Flags().GetInt("runs")
			parallelRuns, _ := cmd.Flags().GetInt("parallel")
			if runs < 1 {
				return fmt.Errorf("runs must be positive, got %d", runs)
			}

			catalog, err := ephemerides.Resolve(cfg.Simulation.Catalog)
			if err != nil {
				return fmt.Errorf("failed to load catalog: %w", err)
			}
			policy, opts, err := cfg.SimulationOptions(logger)
			if err != nil {
				return err
			}

			jm := compute.NewJobManager(parallelRuns, runs, logger)
			defer jm.Shutdown(10 * time.Second)

			ids := make([]string, 0, runs)
			for i := 0; i < runs; i++ {
				// later options win, so the per-run seed overrides the configured one
				jobOpts := append(append([]nbody.Option{}, opts...), nbody.WithSeed(cfg.Simulation.Seed+uint64(i)))
				id, err := jm.SubmitJob(compute.JobSpec{
					Catalog:   catalog,
					TimeStep:  cfg.TimeStep(),
					Asteroids: cfg.Simulation.AsteroidCount,
					Policy:    policy,
					Options:   jobOpts,
					Steps:     cfg.TotalSteps(),
				})
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			var drifts, radii []float64
			out := cmd.OutOrStdout()
			for i, id := range ids {
				job, err := jm.Wait(ctx, id)
				if err != nil {
					return err
				}
				if job.Status != compute.StatusCompleted {
					return fmt.Errorf("%s %s: %s", id, job.Status, job.Error)
				}
				r := job.Report
				drifts = append(drifts, r.EnergyDrift())
				meanRadius := 0.0
				if r.Belt != nil {
					meanRadius = r.Belt.Radius.Mean
					radii = append(radii, meanRadius)
				}
				fmt.Fprintf(out, "%s seed=%d date=%s drift=%.3e mean_radius=%.4e\n",
					id, cfg.Simulation.Seed+uint64(i), r.Date, r.EnergyDrift(), meanRadius)
			}

			fmt.Fprintf(out, "energy drift: mean=%.3e stddev=%.3e\n", stat.Mean(drifts, nil), stat.StdDev(drifts, nil))
			if len(radii) > 0 {
				fmt.Fprintf(out, "belt mean radius: mean=%.4e stddev=%.4e\n", stat.Mean(radii, nil), stat.StdDev(radii, nil))
			}
			return nil
		},
	}

	addSimulationFlags(cmd)
	cmd.Flags().Float64("seconds", 10, "frames per run, in seconds of playback at the configured fps")
	cmd.Flags().Int("runs", 4, "number of runs, seeded seed, seed+1, ...")
	cmd.Flags().Int("parallel", 2, "runs executed concurrently")
	return cmd
}
