package commands

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	episodes    int
	horizon     int
	saveFile    string
	runs        int
	weightsFile string
)

func GetRootCommand() *cobra.Command {
	// a missing .env is fine, the variables can come from the shell
	godotenv.Load()

	rootCommand := &cobra.Command{
		Use:          "leanrl",
		Short:        "4x2 policy environment: rollouts, weights tooling and an HTTP host",
		SilenceUsage: true,
	}
	rootCommand.PersistentFlags().IntVarP(&episodes, "episodes", "e", 100, "Number of episodes to run")
	rootCommand.PersistentFlags().IntVar(&horizon, "horizon", 200, "Horizon of each episode")
	rootCommand.PersistentFlags().StringVarP(&saveFile, "save", "s", "results", "Save the result data in the specified folder")
	rootCommand.PersistentFlags().IntVar(&runs, "runs", 1, "Number of experiment runs")
	rootCommand.PersistentFlags().StringVarP(&weightsFile, "weights", "w", "", "Weights blob to load")

	rootCommand.AddCommand(RolloutCommand())
	rootCommand.AddCommand(WeightsCommand())
	rootCommand.AddCommand(InspectCommand())
	rootCommand.AddCommand(ServeCommand())
	rootCommand.AddCommand(StoreCommand())
	return rootCommand
}
