// ABOUTME: CLI commands for session management.
// ABOUTME: Provides login, logout, and whoami subcommands.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/j0chan/sesac-semi/internal/session"
)

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Sign in to the board",
	Long:  "Authenticate with your account email. The password is prompted without echo.",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out",
	Long:  "Discard the persisted credential.",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in identity",
	RunE:  runWhoami,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	email := strings.TrimSpace(args[0])
	if email == "" {
		return fmt.Errorf("email must not be empty")
	}

	fmt.Print("Password: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if len(raw) == 0 {
		return fmt.Errorf("password must not be empty")
	}

	if err := globalSession.Login(cmd.Context(), email, string(raw)); err != nil {
		var authErr *session.AuthError
		if errors.As(err, &authErr) {
			return fmt.Errorf("login rejected: %s", authErr.Message)
		}
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Printf("Logged in as %s\n", email)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	if err := globalSession.Logout(); err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}
	fmt.Println("Logged out.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	if !globalSession.IsLoggedIn() {
		fmt.Println("Not logged in.")
		return nil
	}
	identity := globalSession.CurrentIdentity()
	if identity == "" {
		fmt.Println("Logged in (identity unknown).")
		return nil
	}
	fmt.Println(identity)
	return nil
}
