package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zeu5/leanrl/env"
	"github.com/zeu5/leanrl/server"
)

func ServeCommand() *cobra.Command {
	var listen string
	var name string
	sf := &storeFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host an environment over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, done := interruptContext()
			defer done()

			st, err := sf.open()
			if err != nil {
				return err
			}
			if st != nil {
				defer st.Close()
			}

			var blob []byte
			switch {
			case weightsFile != "":
				if blob, err = os.ReadFile(weightsFile); err != nil {
					return err
				}
			case st != nil:
				if blob, err = st.Get(ctx, name); err != nil {
					return fmt.Errorf("loading %s from the store: %w", name, err)
				}
			default:
				return fmt.Errorf("pass --weights or a store holding %s", name)
			}

			e, err := env.CreateEnv4x2(blob)
			if err != nil {
				return err
			}
			ok("serving %s on %s", e, listen)
			return server.NewServer(ctx, listen, e, st, name).Run()
		},
	}
	cmd.Flags().StringVar(&listen, "listen", getenv("LEANRL_LISTEN", ":8080"), "Address to listen on")
	cmd.Flags().StringVar(&name, "name", "default", "Name of the weights in the store")
	sf.register(cmd.Flags())
	return cmd
}
