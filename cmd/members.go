package routecmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"gfx.cafe/gfx/pgroute/lib/discovery/patroni"
)

func init() {
	rootCmd.AddCommand(membersCmd())
}

func membersCmd() *cobra.Command {
	var endpoints []string
	var timeout time.Duration
	var port uint16

	cmd := &cobra.Command{
		Use:   "members",
		Short: "List cluster members as the membership service reports them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := newLogger(cmd)
			defer func() {
				_ = log.Sync()
			}()

			if len(endpoints) == 0 {
				return fmt.Errorf("discovery: --api endpoints required")
			}

			client := patroni.NewClient(patroni.Config{
				Endpoints:    endpoints,
				QueryTimeout: timeout,
				DatabasePort: port,
			}, log)

			members, err := client.Members(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "NAME\tROLE\tADDRESS")
			for _, member := range members {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", member.Name, member.Role, member.Address())
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringSliceVar(&endpoints, "api", nil, "membership API endpoints (host:port), tried in order")
	cmd.Flags().DurationVar(&timeout, "discovery-timeout", patroni.DefaultQueryTimeout, "timeout per membership query")
	cmd.Flags().Uint16VarP(&port, "port", "p", 5432, "database port assigned to members without one")

	return cmd
}
