package main

import (
	"fmt"

	"github.com/gorilla/sessions"
	"github.com/spf13/cobra"

	"blockdocs/internal/auth"
)

var (
	flagUsername string
	flagPassword string
	flagEmail    string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

var adminCreateCmd = &cobra.Command{
	Use:     "create",
	Short:   "Create an admin account",
	Example: `  blockdocs admin create --username admin --password 'correct horse' --email admin@example.com`,
	Args:    cobra.NoArgs,
	RunE:    runAdminCreate,
}

var adminPasswdCmd = &cobra.Command{
	Use:     "passwd",
	Short:   "Set a new password for an admin account",
	Example: `  blockdocs admin passwd --username admin --password 'battery staple'`,
	Args:    cobra.NoArgs,
	RunE:    runAdminPasswd,
}

func init() {
	adminCreateCmd.Flags().StringVar(&flagUsername, "username", "", "Login name (required)")
	adminCreateCmd.Flags().StringVar(&flagPassword, "password", "", "Password, at least 8 characters (required)")
	adminCreateCmd.Flags().StringVar(&flagEmail, "email", "", "Contact email")
	adminCreateCmd.MarkFlagRequired("username")
	adminCreateCmd.MarkFlagRequired("password")

	adminPasswdCmd.Flags().StringVar(&flagUsername, "username", "", "Login name (required)")
	adminPasswdCmd.Flags().StringVar(&flagPassword, "password", "", "New password, at least 8 characters (required)")
	adminPasswdCmd.MarkFlagRequired("username")
	adminPasswdCmd.MarkFlagRequired("password")

	adminCmd.AddCommand(adminCreateCmd, adminPasswdCmd)
	rootCmd.AddCommand(adminCmd)
}

// withAuthService opens the database and runs fn with an auth service.
// Account commands never touch sessions, so the store is keyless.
func withAuthService(fn func(svc *auth.Service) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logData, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logData.Close()

	db, err := openDatabase(cfg, logData.Logger)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(auth.NewService(auth.NewRepository(db), sessions.NewCookieStore(), logData.Logger))
}

func runAdminCreate(cmd *cobra.Command, args []string) error {
	return withAuthService(func(svc *auth.Service) error {
		u, err := svc.CreateAdmin(cmd.Context(), flagUsername, flagEmail, flagPassword)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "admin %q created (id %d)\n", u.Username, u.ID)
		return nil
	})
}

func runAdminPasswd(cmd *cobra.Command, args []string) error {
	return withAuthService(func(svc *auth.Service) error {
		if err := svc.ChangePassword(cmd.Context(), flagUsername, flagPassword); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "password updated for %q\n", flagUsername)
		return nil
	})
}
