package commands

import (
	"fmt"
	"os"

	"github.com/logrusorgru/aurora"
	"github.com/spf13/cobra"
	"github.com/zeu5/leanrl/env"
	"github.com/zeu5/leanrl/policies"
	"github.com/zeu5/leanrl/types"
)

func WeightsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weights",
		Short: "Weights blob tooling",
	}
	cmd.AddCommand(weightsGenCommand())
	return cmd
}

func weightsGenCommand() *cobra.Command {
	var out string
	var states, actions int
	var fixed []float32

	cmd := &cobra.Command{
		Use:   "gen ALGORITHM",
		Short: "Write the initial weights of an algorithm",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := policies.ParseAlgorithm(args[0])
			if err != nil {
				return err
			}
			var p policies.Encoder
			switch a {
			case policies.TabularQ:
				p = policies.NewTablePolicy(states, actions)
			case policies.Fixed:
				action, err := types.Action2FromSlice(fixed)
				if err != nil {
					return fmt.Errorf("--action: %w", err)
				}
				p = policies.NewFixedPolicy(action)
			default:
				if p, err = policies.NewDefault(a); err != nil {
					return err
				}
			}
			blob := p.Encode()
			// the blob has to build an environment before it is written out
			if _, err := env.CreateEnv4x2(blob); err != nil {
				return err
			}
			if err := os.WriteFile(out, blob, 0644); err != nil {
				return err
			}
			ok("wrote %s weights (%d bytes) to %s", a, len(blob), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "weights.bin", "Output file")
	cmd.Flags().IntVar(&states, "states", 10, "Number of states of a TabularQLearning table")
	cmd.Flags().IntVar(&actions, "actions", types.ActionDim, "Number of actions of a TabularQLearning table")
	cmd.Flags().Float32SliceVar(&fixed, "action", []float32{0, 0}, "Action returned by a Fixed policy")
	return cmd
}

func InspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "Describe a weights blob and check that it builds an environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			info, err := policies.Describe(blob)
			if err != nil {
				fmt.Println(aurora.Red(fmt.Sprintf("invalid weights (code %d): %s", types.Code(err), err)))
				return err
			}
			e, err := env.CreateEnv4x2(blob)
			if err != nil {
				return err
			}
			fmt.Printf("%s %s\n", aurora.Bold("algorithm:"), aurora.Cyan(info.Algorithm))
			fmt.Printf("%s %d bytes\n", aurora.Bold("size:"), info.Size)
			fmt.Printf("%s %s\n", aurora.Bold("details:"), info.Details)
			fmt.Printf("%s %s\n", aurora.Bold("sha256:"), e.Hash())
			action, err := e.Reset(types.Obs4{})
			if err != nil {
				warn("policy failed on the zero observation: %s", err)
				return nil
			}
			fmt.Printf("%s %s\n", aurora.Bold("action on zero observation:"), action)
			return nil
		},
	}
}
