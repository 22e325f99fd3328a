package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"example.com/compost/console/internal/client"
)

var (
	loginUser string
	loginPass string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the backend and persist the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if loginUser == "" {
			return fmt.Errorf("--user is required")
		}

		store := newStore()
		store.Client().Credentials().Login(loginUser, loginPass)

		// Verify the credential with a cheap authenticated read before
		// persisting anything.
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.API.Timeout)
		defer cancel()
		if _, err := store.Client().DevicesTree(ctx, false); err != nil {
			return fmt.Errorf("login failed: %s", client.ErrorMessage(err, "backend rejected credentials"))
		}

		if err := client.SaveSessionToken(client.BasicToken(loginUser, loginPass)); err != nil {
			return fmt.Errorf("failed to persist session: %w", err)
		}
		fmt.Println("login ok")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the persisted session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := client.ClearSessionToken(); err != nil {
			return err
		}
		fmt.Println("logged out")
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginUser, "user", "u", "", "backend username")
	loginCmd.Flags().StringVarP(&loginPass, "pass", "p", "", "backend password")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}
