package routecmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"gfx.cafe/gfx/pgroute/lib/conninfo"
	"gfx.cafe/gfx/pgroute/lib/router"
)

func init() {
	rootCmd.AddCommand(uriCmd())
}

func uriCmd() *cobra.Command {
	var config Config
	var format string
	var withPassword bool

	cmd := &cobra.Command{
		Use:   "uri",
		Short: "Print the resolved connection descriptor",
		Long: `Resolve the topology and print the connection descriptor for an external
client. The password is omitted unless --with-password is given.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := newLogger(cmd)
			defer func() {
				_ = log.Sync()
			}()

			intent, err := config.intent()
			if err != nil {
				return err
			}
			source, err := config.source(log)
			if err != nil {
				return err
			}
			candidates, err := router.Resolve(cmd.Context(), intent, source)
			if err != nil {
				return err
			}

			var password string
			if withPassword {
				if password, err = config.password(candidates); err != nil {
					return err
				}
			}

			descriptor := conninfo.Build(candidates, intent, config.database(), config.user(), password)
			descriptor.SSLMode = conninfo.SSLMode(config.SSLMode)
			descriptor.ConnectTimeout = config.ConnectTimeout

			switch format {
			case "url":
				_, err = fmt.Fprintln(cmd.OutOrStdout(), descriptor.URL())
			case "keywords":
				_, err = fmt.Fprintln(cmd.OutOrStdout(), descriptor.Keywords())
			default:
				err = fmt.Errorf("unknown format %q (want url or keywords)", format)
			}
			return err
		},
	}
	addTopologyFlags(cmd.Flags(), &config)
	addSessionFlags(cmd.Flags(), &config)
	cmd.Flags().StringVar(&format, "format", "url", "descriptor form: url or keywords")
	cmd.Flags().BoolVar(&withPassword, "with-password", false, "include the password in the output")

	return cmd
}
