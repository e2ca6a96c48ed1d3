package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	intconfig "voyage/internal/config"
	intdb "voyage/internal/db"
	"voyage/internal/utils"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate <service>",
	Short: "Create the tables one service owns",
	Args:  serviceArg,
	RunE: func(cmd *cobra.Command, args []string) error {
		env := intconfig.LoadEnv(args[0])
		_, flush := utils.InitLogger(env.Service, env.LogLevel, env.IsProduction())
		defer flush()

		db, err := intconfig.ConnectDB(env.DBDSN)
		if err != nil {
			return err
		}
		defer intconfig.CloseDB()

		if err := intdb.Migrate(cmd.Context(), db, env.Service); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "migrated %s: %v\n", env.Service, intdb.Tables(env.Service))
		return nil
	},
}
