package routecmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use: "pgroute",
	Long: `
	pgroute resolves a connection intent against a replicated PostgreSQL
	cluster and opens a session on the right member
`,
	Example: `  $ pgroute connect --discover --api node1:8008,node2:8008 -i read-write -c 'SELECT 1'
  `,

	// kind of annoying to have all the help text printed out if
	// resolution fails, for instance...
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "warn", "minimum log level (debug, info, warn, error)")
}

func Main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
