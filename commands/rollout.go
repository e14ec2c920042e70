package commands

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zeu5/leanrl/env"
	"github.com/zeu5/leanrl/policies"
	"github.com/zeu5/leanrl/rollout"
	"github.com/zeu5/leanrl/util"
)

func printable(name string, m map[string]interface{}) string {
	lines := []string{name + ":"}
	for k, v := range m {
		lines = append(lines, fmt.Sprintf("  %s: %v", k, v))
	}
	return strings.Join(lines, "\n")
}

func RolloutCommand() *cobra.Command {
	var algorithms []string
	var parallel bool
	var recordTraces bool
	var seed uint64
	var speedLimit float64
	var wallMargin float32

	cmd := &cobra.Command{
		Use:   "rollout",
		Short: "Run policies against a point mass and compare returns and invariant violations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, done := interruptContext()
			defer done()

			envConfig := env.DefaultEnvConfig()
			if speedLimit > 0 {
				envConfig.Invariants = append(envConfig.Invariants, rollout.SpeedBelow(speedLimit).Invariant("speed limit exceeded"))
			}
			if wallMargin > 0 {
				envConfig.Invariants = append(envConfig.Invariants, rollout.PushingOut(wallMargin).Not().Invariant("pushing into the wall"))
			}
			plantConfig := rollout.DefaultPointMassConfig()
			plantConfig.Seed = seed

			comparisonConfig := &rollout.ComparisonConfig{
				Runs:                   runs,
				Episodes:               episodes,
				Horizon:                horizon,
				RecordPath:             saveFile,
				RecordTraces:           recordTraces,
				Parallel:               parallel,
				ConsecutiveErrorsAbort: 10,
			}
			c, err := rollout.NewComparison(comparisonConfig)
			if err != nil {
				return err
			}
			c.AddAnalysis("returns", rollout.ReturnAnalyzer(), rollout.ReturnPlotter(path.Join(saveFile, "plots")))
			c.AddAnalysis("violations", rollout.ViolationAnalyzer(), rollout.ViolationPlotter(path.Join(saveFile, "plots")))

			if weightsFile != "" {
				blob, err := os.ReadFile(weightsFile)
				if err != nil {
					return err
				}
				e, err := env.NewEnv4x2(envConfig, blob)
				if err != nil {
					return fmt.Errorf("loading %s: %w", weightsFile, err)
				}
				c.AddExperiment(rollout.NewExperiment(path.Base(weightsFile), e, rollout.NewPointMass(plantConfig)))
			}
			for _, name := range algorithms {
				a, err := policies.ParseAlgorithm(name)
				if err != nil {
					return err
				}
				p, err := policies.NewDefault(a)
				if err != nil {
					return err
				}
				e, err := env.NewEnv4x2(envConfig, p.Encode())
				if err != nil {
					return err
				}
				c.AddExperiment(rollout.NewExperiment(a.String(), e, rollout.NewPointMass(plantConfig)))
			}
			if len(c.Experiments) == 0 {
				return fmt.Errorf("nothing to run, pass --weights or --algorithms")
			}

			if err := util.WriteToFile(path.Join(saveFile, "config.txt"),
				printable("comparison", comparisonConfig.Printable()),
				printable("env", envConfig.Printable()),
				printable("point mass", plantConfig.Printable()),
			); err != nil {
				return err
			}

			if err := c.Run(ctx); err != nil {
				return err
			}
			ok("results saved in %s", saveFile)
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&algorithms, "algorithms", "a", []string{"linear", "tinynn", "tabular"}, "Default initialised policies to compare")
	cmd.Flags().BoolVar(&parallel, "parallel", false, "Run the experiments of a run concurrently")
	cmd.Flags().BoolVar(&recordTraces, "traces", false, "Record every trace as jsonl")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "Seed of the initial point mass states")
	cmd.Flags().Float64Var(&speedLimit, "speed-limit", 0, "Add a speed limit invariant, 0 disables it")
	cmd.Flags().Float32Var(&wallMargin, "wall-margin", 0, "Flag actions pushing further out past this position, 0 disables it")
	return cmd
}
