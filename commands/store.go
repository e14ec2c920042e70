package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/logrusorgru/aurora"
	"github.com/spf13/cobra"
	"github.com/zeu5/leanrl/env"
	"github.com/zeu5/leanrl/store"
)

func StoreCommand() *cobra.Command {
	sf := &storeFlags{}
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage versioned weights",
	}
	sf.register(cmd.PersistentFlags())

	withStore := func(f func(context.Context, store.Store, []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			st, err := sf.open()
			if err != nil {
				return err
			}
			if st == nil {
				return errors.New("no store configured, pass --redis, --db or --dir")
			}
			defer st.Close()
			return f(cmd.Context(), st, args)
		}
	}

	var out string
	get := &cobra.Command{
		Use:   "get NAME [VERSION]",
		Short: "Write the active or given version to a file",
		Args:  cobra.RangeArgs(1, 2),
		RunE: withStore(func(ctx context.Context, st store.Store, args []string) error {
			var blob []byte
			var err error
			if len(args) == 2 {
				blob, err = st.GetVersion(ctx, args[0], args[1])
			} else {
				blob, err = st.Get(ctx, args[0])
			}
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, blob, 0644); err != nil {
				return err
			}
			ok("wrote %d bytes to %s", len(blob), out)
			return nil
		}),
	}
	get.Flags().StringVarP(&out, "out", "o", "weights.bin", "Output file")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "put NAME FILE",
			Short: "Validate a weights file and store it as the active version",
			Args:  cobra.ExactArgs(2),
			RunE: withStore(func(ctx context.Context, st store.Store, args []string) error {
				blob, err := os.ReadFile(args[1])
				if err != nil {
					return err
				}
				if _, err := env.CreateEnv4x2(blob); err != nil {
					return err
				}
				version, err := st.Put(ctx, args[0], blob)
				if err != nil {
					return err
				}
				ok("stored %s version %s", args[0], version)
				return nil
			}),
		},
		get,
		&cobra.Command{
			Use:   "versions NAME",
			Short: "List the versions of a name",
			Args:  cobra.ExactArgs(1),
			RunE: withStore(func(ctx context.Context, st store.Store, args []string) error {
				versions, err := st.Versions(ctx, args[0])
				if err != nil {
					return err
				}
				for _, v := range versions {
					line := fmt.Sprintf("%s  %s  %6d bytes  %s", v.ID, short(v.Hash), v.Size, v.CreatedAt.Format("2006-01-02 15:04:05"))
					if v.Active {
						fmt.Println(aurora.Green(line + "  (active)"))
					} else {
						fmt.Println(line)
					}
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "activate NAME VERSION",
			Short: "Make an existing version the active one",
			Args:  cobra.ExactArgs(2),
			RunE: withStore(func(ctx context.Context, st store.Store, args []string) error {
				if err := st.Activate(ctx, args[0], args[1]); err != nil {
					return err
				}
				ok("%s now at version %s", args[0], args[1])
				return nil
			}),
		},
	)
	return cmd
}
