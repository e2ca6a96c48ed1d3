package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	intconfig "voyage/internal/config"
	api "voyage/internal/http"
	"voyage/internal/providers"
)

var routesCmd = &cobra.Command{
	Use:   "routes <service>",
	Short: "Print the route table of one service",
	Args:  serviceArg,
	RunE: func(cmd *cobra.Command, args []string) error {
		env := intconfig.LoadEnv(args[0])
		r, err := api.NewRouter(env, api.Deps{Logger: zap.NewNop(), Providers: providers.NewRegistry()})
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		for _, rt := range r.Routes() {
			fmt.Fprintf(w, "%s\t%s\n", rt.Method, rt.Path)
		}
		return w.Flush()
	},
}
