package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	intconfig "voyage/internal/config"
	"voyage/internal/domain/models"
	"voyage/internal/services"
	"voyage/internal/utils"
)

var (
	adminEmail     string
	adminFirstName string
	adminLastName  string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Create or promote the bootstrap admin account",
	Long: `Create the admin account in the user service database, or promote it
when the email already exists. The password is read from ADMIN_PASSWORD.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		password := os.Getenv("ADMIN_PASSWORD")
		if password == "" {
			return fmt.Errorf("ADMIN_PASSWORD is not set")
		}
		env := intconfig.LoadEnv(intconfig.ServiceUser)
		_, flush := utils.InitLogger(env.Service, env.LogLevel, env.IsProduction())
		defer flush()

		db, err := intconfig.ConnectDB(env.DBDSN)
		if err != nil {
			return err
		}
		defer intconfig.CloseDB()

		svc := services.NewUserService(db, services.NewTokenService(env.JWTSecret, env.JWTTTL))
		u, err := svc.EnsureAdmin(cmd.Context(), models.UserInput{
			FirstName: adminFirstName,
			LastName:  adminLastName,
			Email:     adminEmail,
			Password:  password,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "admin #%d %s\n", u.ID, u.Email)
		return nil
	},
}

func init() {
	adminCmd.Flags().StringVar(&adminEmail, "email", "", "admin email")
	adminCmd.Flags().StringVar(&adminFirstName, "first-name", "Admin", "first name")
	adminCmd.Flags().StringVar(&adminLastName, "last-name", "Voyage", "last name")
	_ = adminCmd.MarkFlagRequired("email")
}
