package command

import (
	"fmt"

	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/service"
	"yamdb/internal/notify"

	"github.com/spf13/cobra"
)

var (
	username string
	email    string
	role     string
)

var createSuperuserCmd = &cobra.Command{
	Use:   "createsuperuser",
	Short: "Create an admin account with superuser rights",
	Long: `Create an admin account with superuser rights. The account has no password;
request a confirmation code with "sendcode" and exchange it at /api/v1/auth/token.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		users := service.NewUserService(repository.NewUserRepository(db))
		user, err := users.CreateSuperuser(cmd.Context(), username, email)
		if err != nil {
			return fmt.Errorf("failed to create superuser: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Superuser %q created (id %s)\n", user.Username, user.ID)
		return nil
	},
}

var setRoleCmd = &cobra.Command{
	Use:   "setrole",
	Short: "Change a user's role (user, moderator, admin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		users := service.NewUserService(repository.NewUserRepository(db))
		if err := users.SetRole(cmd.Context(), username, models.Role(role)); err != nil {
			return fmt.Errorf("failed to set role: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "User %q is now %s\n", username, role)
		return nil
	},
}

var sendCodeCmd = &cobra.Command{
	Use:   "sendcode",
	Short: "Invalidate earlier confirmation codes and mail a new one",
	RunE: func(cmd *cobra.Command, args []string) error {
		mailer, err := notify.NewMailer(cfg, log)
		if err != nil {
			return err
		}
		codes, err := service.NewConfirmationCodes(cfg.JWTSecret, cfg.ConfirmationCodeTTL)
		if err != nil {
			return err
		}
		auth := service.NewAuthService(
			repository.NewUserRepository(db),
			codes,
			service.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL),
			mailer,
			log,
			cfg.AccessTokenTTL,
		)
		if err := auth.IssueConfirmationCode(cmd.Context(), username); err != nil {
			return fmt.Errorf("failed to issue code: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Confirmation code sent to %q\n", username)
		return nil
	},
}

func init() {
	createSuperuserCmd.Flags().StringVar(&username, "username", "", "username of the new superuser")
	createSuperuserCmd.Flags().StringVar(&email, "email", "", "email of the new superuser")
	_ = createSuperuserCmd.MarkFlagRequired("username")
	_ = createSuperuserCmd.MarkFlagRequired("email")

	setRoleCmd.Flags().StringVar(&username, "username", "", "user to change")
	setRoleCmd.Flags().StringVar(&role, "role", "", "new role: user, moderator or admin")
	_ = setRoleCmd.MarkFlagRequired("username")
	_ = setRoleCmd.MarkFlagRequired("role")

	sendCodeCmd.Flags().StringVar(&username, "username", "", "user to send the code to")
	_ = sendCodeCmd.MarkFlagRequired("username")

	rootCmd.AddCommand(createSuperuserCmd, setRoleCmd, sendCodeCmd)
}
